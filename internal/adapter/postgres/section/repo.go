// Package section implements event section persistence using PostgreSQL.
package section

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

const tableSections = "event_sections"

// Repo provides section persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new section repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ListByEvent returns the sections of an event ordered by start time.
func (r *Repo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Section, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("id", "event", "name", "start_time").
		From(tableSections).
		Where(squirrel.Eq{"event": eventID}).
		OrderBy("start_time", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sections: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	sections, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Section, error) {
		var s domain.Section
		err := row.Scan(&s.ID, &s.EventID, &s.Name, &s.StartTime)
		s.StartTime = s.StartTime.UTC()
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("get sections for event %s: %w", eventID, err)
	}
	return sections, nil
}

// Insert persists a new section.
func (r *Repo) Insert(ctx context.Context, s domain.Section) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	insert := postgres.Builder().
		Insert(tableSections).
		Columns("id", "event", "name", "start_time").
		Values(s.ID, s.EventID, s.Name, s.StartTime)

	if _, err := postgres.Exec(ctx, q, insert); err != nil {
		return postgres.MapError(err, "section", s.ID)
	}
	return nil
}
