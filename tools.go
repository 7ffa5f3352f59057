//go:build tools

package tools

// Developer tools, pinned by hand since none are imported:
//
//	moq   github.com/matryer/moq            regenerates the *_mock_test.go fakes
//	goose github.com/pressly/goose/v3/cmd/goose  writes new files under migrations/
//
// Migrations are applied by cmd/migrate, never by the goose CLI.
