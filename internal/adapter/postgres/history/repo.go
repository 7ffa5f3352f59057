// Package history implements the append-only entry history using PostgreSQL.
// Each record stores a full JSON snapshot of the entry after an edit.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

const tableHistory = "event_log_history"

// Repo provides history persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new history repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts one history record. Records are never updated or deleted.
func (r *Repo) Append(ctx context.Context, rec domain.HistoryRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if (rec.EditUser == nil) == (rec.EditApplication == nil) {
		return domain.NewValidationError("history", "exactly one of edit_user and edit_application must be set")
	}

	snapshot, err := json.Marshal(rec.Entry)
	if err != nil {
		return fmt.Errorf("history_record %s marshal snapshot: %w", rec.ID, err)
	}

	insert := postgres.Builder().
		Insert(tableHistory).
		Columns("id", "entry", "event", "edit_time", "edit_user", "edit_application", "snapshot").
		Values(rec.ID, rec.Entry.ID, rec.Entry.EventID, rec.EditTime, rec.EditUser, rec.EditApplication, snapshot)

	if _, err := postgres.Exec(ctx, q, insert); err != nil {
		return postgres.MapError(err, "history_record", rec.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByEntry returns the edits of an entry, oldest first.
func (r *Repo) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]domain.HistoryRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("id", "edit_time", "edit_user", "edit_application", "snapshot").
		From(tableHistory).
		Where(squirrel.Eq{"entry": entryID}).
		OrderBy("edit_time", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list history: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "entry", entryID)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("get history by entry %s: %w", entryID, err)
	}
	return records, nil
}

// EntryIDsEditedSince returns the distinct entries of an event edited at or
// after since.
func (r *Repo) EntryIDsEditedSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("DISTINCT entry").
		From(tableHistory).
		Where(squirrel.Eq{"event": eventID}).
		Where(squirrel.GtOrEq{"edit_time": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build edited since: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "event", eventID)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("get edited entries for event %s: %w", eventID, err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanRecord(row pgx.CollectableRow) (domain.HistoryRecord, error) {
	var (
		rec      domain.HistoryRecord
		snapshot []byte
	)
	if err := row.Scan(&rec.ID, &rec.EditTime, &rec.EditUser, &rec.EditApplication, &snapshot); err != nil {
		return domain.HistoryRecord{}, err
	}
	if err := json.Unmarshal(snapshot, &rec.Entry); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("history_record %s unmarshal snapshot: %w", rec.ID, err)
	}
	rec.EditTime = rec.EditTime.UTC()
	return rec, nil
}
