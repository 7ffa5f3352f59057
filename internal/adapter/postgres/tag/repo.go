// Package tag implements event tag persistence using PostgreSQL.
package tag

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

const tableTags = "tags"

// Repo provides tag persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new tag repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ListByEvent returns every tag of the event, removed ones included.
func (r *Repo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("id", "event", "name", "description", "playlist", "deleted").
		From(tableTags).
		Where(squirrel.Eq{"event": eventID}).
		OrderBy("lower(name)", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tags: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Tag, error) {
		var t domain.Tag
		err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.Description, &t.Playlist, &t.Deleted)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("get tags for event %s: %w", eventID, err)
	}
	return tags, nil
}

// Upsert inserts the tag or overwrites its mutable columns.
func (r *Repo) Upsert(ctx context.Context, t domain.Tag) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	insert := postgres.Builder().
		Insert(tableTags).
		Columns("id", "event", "name", "description", "playlist", "deleted").
		Values(t.ID, t.EventID, t.Name, t.Description, t.Playlist, t.Deleted).
		Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			playlist = EXCLUDED.playlist, deleted = EXCLUDED.deleted
			WHERE tags.event = EXCLUDED.event`)

	n, err := postgres.Exec(ctx, q, insert)
	if err != nil {
		return postgres.MapError(err, "tag", t.ID)
	}
	if n == 0 {
		return fmt.Errorf("tag %s in event %s: %w", t.ID, t.EventID, domain.ErrNotFound)
	}
	return nil
}
