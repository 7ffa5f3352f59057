// Package journal persists event log changes and rebuilds event stores.
//
// Every commit runs inside one transaction holding the event's advisory
// lock, writes only the touched columns and appends one history record per
// touched entry. Transient failures are retried with exponential backoff
// before the commit is reported as failed.
package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

type entryRepo interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.LogEntry, error)
	Insert(ctx context.Context, e domain.LogEntry) error
	UpdateFields(ctx context.Context, e domain.LogEntry, fields []string) error
	EventIDForEntry(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error)
}

type historyRepo interface {
	Append(ctx context.Context, rec domain.HistoryRecord) error
	ListByEntry(ctx context.Context, entryID uuid.UUID) ([]domain.HistoryRecord, error)
	EntryIDsEditedSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]uuid.UUID, error)
}

type tagRepo interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error)
	Upsert(ctx context.Context, t domain.Tag) error
}

type sectionRepo interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Section, error)
	Insert(ctx context.Context, s domain.Section) error
}

type eventRepo interface {
	List(ctx context.Context) ([]domain.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	GetByName(ctx context.Context, name string) (domain.Event, error)
	EntryTypes(ctx context.Context, eventID uuid.UUID) ([]domain.EntryType, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInEventTx(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error
}

// RetryPolicy bounds the retries of a commit hitting transient failures.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy is used when a zero policy is supplied.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}

// Service provides event log persistence.
type Service struct {
	entries  entryRepo
	history  historyRepo
	tags     tagRepo
	sections sectionRepo
	events   eventRepo
	tx       txManager
	retry    RetryPolicy
	log      *slog.Logger
}

// NewService creates a new journal service.
func NewService(
	log *slog.Logger,
	entries entryRepo,
	history historyRepo,
	tags tagRepo,
	sections sectionRepo,
	events eventRepo,
	tx txManager,
	retry RetryPolicy,
) *Service {
	if retry.Attempts < 1 {
		retry = DefaultRetryPolicy
	}
	return &Service{
		entries:  entries,
		history:  history,
		tags:     tags,
		sections: sections,
		events:   events,
		tx:       tx,
		retry:    retry,
		log:      log.With("service", "journal"),
	}
}
