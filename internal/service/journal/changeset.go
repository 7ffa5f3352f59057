package journal

import "github.com/heartmarshall/streamlog-backend/internal/domain"

// EntryChange is one entry written by a commit. Created entries are inserted
// in full; otherwise only Fields are written.
type EntryChange struct {
	Entry   domain.LogEntry
	Created bool
	Fields  []string
}

// ChangeSet is everything one engine command persists atomically.
type ChangeSet struct {
	Entries  []EntryChange
	Tags     []domain.Tag
	Sections []domain.Section
}

// IsEmpty reports whether the change set writes nothing.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.Entries) == 0 && len(c.Tags) == 0 && len(c.Sections) == 0
}
