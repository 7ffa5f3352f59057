// Package event implements read access to events and their entry types.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var eventColumns = []string{
	"id", "name", "start_time", "end_time", "editor_link_format", "first_section_name", "default_role",
}

// Repo provides event persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new event repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// List returns every event, most recent first.
func (r *Repo) List(ctx context.Context) ([]domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(eventColumns...).
		From("events").
		OrderBy("start_time DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events, err := pgx.CollectRows(rows, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetByID returns an event by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetByName returns an event by its unique name.
func (r *Repo) GetByName(ctx context.Context, name string) (domain.Event, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, uuid.Nil)
}

func (r *Repo) getOne(ctx context.Context, where squirrel.Eq, id uuid.UUID) (domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(eventColumns...).
		From("events").
		Where(where).
		ToSql()
	if err != nil {
		return domain.Event{}, fmt.Errorf("build get event: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return domain.Event{}, postgres.MapError(err, "event", id)
	}
	ev, err := pgx.CollectExactlyOneRow(rows, scanEvent)
	if err != nil {
		return domain.Event{}, postgres.MapError(err, "event", id)
	}
	return ev, nil
}

// EntryTypes returns the entry types available to an event.
func (r *Repo) EntryTypes(ctx context.Context, eventID uuid.UUID) ([]domain.EntryType, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("t.id", "t.name", "t.color", "t.description", "t.require_end_time").
		From("entry_types t").
		Join("available_entry_types_for_event a ON a.entry_type = t.id").
		Where(squirrel.Eq{"a.event": eventID}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list entry types: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EntryType, error) {
		var t domain.EntryType
		err := row.Scan(&t.ID, &t.Name, &t.Color, &t.Description, &t.RequireEndTime)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("get entry types for event %s: %w", eventID, err)
	}
	return types, nil
}

// SetDefaultRole changes the capability granted to users without a group grant.
func (r *Repo) SetDefaultRole(ctx context.Context, id uuid.UUID, role domain.Capability) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	update := postgres.Builder().
		Update("events").
		Set("default_role", int16(role)).
		Where(squirrel.Eq{"id": id})

	n, err := postgres.Exec(ctx, q, update)
	if err != nil {
		return postgres.MapError(err, "event", id)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanEvent(row pgx.CollectableRow) (domain.Event, error) {
	var (
		ev      domain.Event
		endTime *time.Time
		role    int16
	)
	if err := row.Scan(&ev.ID, &ev.Name, &ev.StartTime, &endTime, &ev.EditorLinkFormat, &ev.FirstSectionName, &role); err != nil {
		return domain.Event{}, err
	}
	ev.StartTime = ev.StartTime.UTC()
	if endTime != nil {
		t := endTime.UTC()
		ev.EndTime = &t
	}
	ev.DefaultRole = domain.Capability(role)
	return ev, nil
}
