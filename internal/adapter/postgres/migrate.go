package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/streamlog-backend/migrations"
)

// NewMigrator returns a goose provider over the embedded migrations.
// goose needs a *sql.DB; open one with OpenDB.
func NewMigrator(db *sql.DB) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// OpenDB opens a database/sql handle through the pgx stdlib driver.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// MigrateUp applies all pending migrations and returns how many ran.
func MigrateUp(ctx context.Context, dsn string) (int, error) {
	db, err := OpenDB(ctx, dsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	provider, err := NewMigrator(db)
	if err != nil {
		return 0, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}
