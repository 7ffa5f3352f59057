// Package application implements integration application persistence using PostgreSQL.
package application

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var appColumns = []string{"id", "name", "auth_key_hash", "read_log", "write_links", "creation_user", "created_at"}

// Repo provides application persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new application repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Create inserts a new application.
func (r *Repo) Create(ctx context.Context, a domain.Application) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	insert := postgres.Builder().
		Insert("applications").
		Columns(appColumns...).
		Values(a.ID, a.Name, a.KeyHash, a.ReadLog, a.WriteLinks, a.CreatedBy, a.CreatedAt)

	if _, err := postgres.Exec(ctx, q, insert); err != nil {
		return postgres.MapError(err, "application", a.ID)
	}
	return nil
}

// GetByID returns an application by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetByName returns an application by its unique name.
func (r *Repo) GetByName(ctx context.Context, name string) (domain.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, uuid.Nil)
}

func (r *Repo) getOne(ctx context.Context, where squirrel.Eq, id uuid.UUID) (domain.Application, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().Select(appColumns...).From("applications").Where(where).ToSql()
	if err != nil {
		return domain.Application{}, fmt.Errorf("build get application: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return domain.Application{}, postgres.MapError(err, "application", id)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanApplication)
	if err != nil {
		return domain.Application{}, postgres.MapError(err, "application", id)
	}
	return a, nil
}

// List returns all applications ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.Application, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().Select(appColumns...).From("applications").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list applications: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps, err := pgx.CollectRows(rows, scanApplication)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// SetKeyHash replaces the key hash. A nil hash revokes the application.
func (r *Repo) SetKeyHash(ctx context.Context, id uuid.UUID, hash *string) error {
	return r.update(ctx, id, postgres.Builder().Update("applications").Set("auth_key_hash", hash))
}

// SetCapabilities replaces the read_log and write_links grants.
func (r *Repo) SetCapabilities(ctx context.Context, id uuid.UUID, readLog, writeLinks bool) error {
	return r.update(ctx, id, postgres.Builder().Update("applications").
		Set("read_log", readLog).
		Set("write_links", writeLinks))
}

func (r *Repo) update(ctx context.Context, id uuid.UUID, b squirrel.UpdateBuilder) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	n, err := postgres.Exec(ctx, q, b.Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "application", id)
	}
	if n == 0 {
		return fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanApplication(row pgx.CollectableRow) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(&a.ID, &a.Name, &a.KeyHash, &a.ReadLog, &a.WriteLinks, &a.CreatedBy, &a.CreatedAt)
	return a, err
}
