// Package entry implements log entry persistence using PostgreSQL.
package entry

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

const (
	tableEntries = "event_log"
	tableTags    = "event_log_tags"
)

var entryColumns = []string{
	"id", "event", "start_time", "end_time", "end_time_incomplete", "entry_type",
	"description", "media_links", "submitter_or_winner", "notes_to_editor",
	"editor_link", "editor", "video_link", "parent", "poster_moment",
	"video_edit_state", "video_processing_state", "video_errors",
	"marked_incomplete", "manual_sort_key", "section", "created_at", "deleted_by",
}

// Repo provides log entry persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new entry repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByEvent returns every entry of the event, deleted ones included, with
// their tag sets attached.
func (r *Repo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.LogEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(entryColumns...).
		From(tableEntries).
		Where(squirrel.Eq{"event": eventID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list entries: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}

	tags, err := r.tagsByEvent(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Tags = tags[entries[i].ID]
		if entries[i].Tags == nil {
			entries[i].Tags = []uuid.UUID{}
		}
	}
	return entries, nil
}

// EventIDForEntry returns the event owning a non-deleted entry.
func (r *Repo) EventIDForEntry(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("event").
		From(tableEntries).
		Where(squirrel.Eq{"id": entryID, "deleted_by": nil}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("build event for entry: %w", err)
	}

	var eventID uuid.UUID
	if err := q.QueryRow(ctx, sql, args...).Scan(&eventID); err != nil {
		return uuid.Nil, postgres.MapError(err, "entry", entryID)
	}
	return eventID, nil
}

func (r *Repo) tagsByEvent(ctx context.Context, q postgres.Querier, eventID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	sql, args, err := postgres.Builder().
		Select("t.entry", "t.tag").
		From(tableTags + " t").
		Join(tableEntries + " e ON e.id = t.entry").
		Where(squirrel.Eq{"e.event": eventID}).
		OrderBy("t.entry", "t.tag").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list entry tags: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var entryID, tagID uuid.UUID
		if err := rows.Scan(&entryID, &tagID); err != nil {
			return nil, fmt.Errorf("scan entry tag: %w", err)
		}
		out[entryID] = append(out[entryID], tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert persists a new entry and its tag set.
func (r *Repo) Insert(ctx context.Context, e domain.LogEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	values := make([]any, 0, len(entryColumns))
	for _, col := range entryColumns {
		values = append(values, columnValue(e, col))
	}
	insert := postgres.Builder().
		Insert(tableEntries).
		Columns(entryColumns...).
		Values(values...)

	if _, err := postgres.Exec(ctx, q, insert); err != nil {
		return postgres.MapError(err, "entry", e.ID)
	}
	if len(e.Tags) > 0 {
		return r.SetTags(ctx, e.ID, e.Tags)
	}
	return nil
}

// UpdateFields writes only the named columns of e. The tags pseudo-field
// replaces the entry's tag set.
func (r *Repo) UpdateFields(ctx context.Context, e domain.LogEntry, fields []string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	update := postgres.Builder().Update(tableEntries).Where(squirrel.Eq{"id": e.ID})
	columns := 0
	setTags := false
	for _, f := range fields {
		if f == domain.FieldTags {
			setTags = true
			continue
		}
		update = update.Set(f, columnValue(e, f))
		columns++
	}

	if columns > 0 {
		n, err := postgres.Exec(ctx, q, update)
		if err != nil {
			return postgres.MapError(err, "entry", e.ID)
		}
		if n == 0 {
			return fmt.Errorf("entry %s: %w", e.ID, domain.ErrNotFound)
		}
	}
	if setTags {
		return r.SetTags(ctx, e.ID, e.Tags)
	}
	return nil
}

// SetTags replaces the tag set of an entry.
func (r *Repo) SetTags(ctx context.Context, entryID uuid.UUID, tags []uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	del := postgres.Builder().Delete(tableTags).Where(squirrel.Eq{"entry": entryID})
	if _, err := postgres.Exec(ctx, q, del); err != nil {
		return postgres.MapError(err, "entry", entryID)
	}
	if len(tags) == 0 {
		return nil
	}

	insert := postgres.Builder().Insert(tableTags).Columns("entry", "tag")
	for _, tag := range tags {
		insert = insert.Values(entryID, tag)
	}
	if _, err := postgres.Exec(ctx, q, insert.Suffix("ON CONFLICT DO NOTHING")); err != nil {
		return postgres.MapError(err, "entry", entryID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func columnValue(e domain.LogEntry, col string) any {
	switch col {
	case "id":
		return e.ID
	case "event":
		return e.EventID
	case domain.FieldStartTime:
		return e.StartTime
	case domain.FieldEndTime:
		return e.EndTime
	case domain.FieldEndTimeIncomplete:
		return e.EndTimeIncomplete
	case domain.FieldEntryType:
		return e.EntryTypeID
	case domain.FieldDescription:
		return e.Description
	case domain.FieldMediaLinks:
		if e.MediaLinks == nil {
			return []string{}
		}
		return e.MediaLinks
	case domain.FieldSubmitterOrWinner:
		return e.SubmitterOrWinner
	case domain.FieldNotesToEditor:
		return e.NotesToEditor
	case domain.FieldEditorLink:
		return e.EditorLink
	case domain.FieldEditor:
		return e.Editor
	case domain.FieldVideoLink:
		return e.VideoLink
	case domain.FieldParent:
		return e.Parent
	case domain.FieldPosterMoment:
		return e.PosterMoment
	case domain.FieldVideoEditState:
		return string(e.VideoEditState)
	case domain.FieldVideoProcessingState:
		if e.VideoProcessingState == nil {
			return nil
		}
		return string(*e.VideoProcessingState)
	case domain.FieldVideoErrors:
		return e.VideoErrors
	case domain.FieldMarkedIncomplete:
		return e.MarkedIncomplete
	case domain.FieldManualSortKey:
		return e.ManualSortKey
	case domain.FieldSection:
		return e.SectionID
	case "created_at":
		return e.CreatedAt
	case domain.FieldDeletedBy:
		return e.DeletedBy
	}
	panic("entry: unknown column " + col)
}

func scanEntry(row pgx.CollectableRow) (domain.LogEntry, error) {
	var (
		e          domain.LogEntry
		editState  string
		procState  *string
		mediaLinks []string
		endTime    *time.Time
	)
	err := row.Scan(
		&e.ID, &e.EventID, &e.StartTime, &endTime, &e.EndTimeIncomplete, &e.EntryTypeID,
		&e.Description, &mediaLinks, &e.SubmitterOrWinner, &e.NotesToEditor,
		&e.EditorLink, &e.Editor, &e.VideoLink, &e.Parent, &e.PosterMoment,
		&editState, &procState, &e.VideoErrors,
		&e.MarkedIncomplete, &e.ManualSortKey, &e.SectionID, &e.CreatedAt, &e.DeletedBy,
	)
	if err != nil {
		return domain.LogEntry{}, err
	}

	e.StartTime = e.StartTime.UTC()
	if endTime != nil {
		t := endTime.UTC()
		e.EndTime = &t
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.VideoEditState = domain.VideoEditState(editState)
	if procState != nil {
		s := domain.VideoProcessingState(*procState)
		e.VideoProcessingState = &s
	}
	e.MediaLinks = mediaLinks
	if e.MediaLinks == nil {
		e.MediaLinks = []string{}
	}
	return e, nil
}
