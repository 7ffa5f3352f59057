package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
)

// Load rebuilds the in-memory store of an event from the database.
// Hierarchy corruption is reported as eventlog.ErrCorrupt.
func (s *Service) Load(ctx context.Context, eventID uuid.UUID) (*eventlog.Store, error) {
	var (
		event    domain.Event
		types    []domain.EntryType
		entries  []domain.LogEntry
		tags     []domain.Tag
		sections []domain.Section
	)
	// One transaction so the rows form a consistent cut.
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if event, err = s.events.GetByID(ctx, eventID); err != nil {
			return err
		}
		if types, err = s.events.EntryTypes(ctx, eventID); err != nil {
			return err
		}
		if entries, err = s.entries.ListByEvent(ctx, eventID); err != nil {
			return err
		}
		if tags, err = s.tags.ListByEvent(ctx, eventID); err != nil {
			return err
		}
		sections, err = s.sections.ListByEvent(ctx, eventID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("journal.Load: %w", err)
	}

	store, err := eventlog.Load(event, types, entries, tags, sections)
	if err != nil {
		return nil, fmt.Errorf("journal.Load: %w", err)
	}
	return store, nil
}

// Event returns the current event header.
func (s *Service) Event(ctx context.Context, eventID uuid.UUID) (domain.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("journal.Event: %w", err)
	}
	return ev, nil
}

// Events lists every event.
func (s *Service) Events(ctx context.Context) ([]domain.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("journal.Events: %w", err)
	}
	return events, nil
}

// EventByName looks an event up by its unique name.
func (s *Service) EventByName(ctx context.Context, name string) (domain.Event, error) {
	ev, err := s.events.GetByName(ctx, name)
	if err != nil {
		return domain.Event{}, fmt.Errorf("journal.EventByName: %w", err)
	}
	return ev, nil
}

// ListTags returns the persisted tags of an event, removed ones included.
func (s *Service) ListTags(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error) {
	tags, err := s.tags.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("journal.ListTags: %w", err)
	}
	return tags, nil
}

// EventForEntry returns the event owning a live entry.
func (s *Service) EventForEntry(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error) {
	id, err := s.entries.EventIDForEntry(ctx, entryID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("journal.EventForEntry: %w", err)
	}
	return id, nil
}

// EditedSince returns the entries of an event edited at or after since.
func (s *Service) EditedSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]uuid.UUID, error) {
	ids, err := s.history.EntryIDsEditedSince(ctx, eventID, since)
	if err != nil {
		return nil, fmt.Errorf("journal.EditedSince: %w", err)
	}
	return ids, nil
}

// History returns every recorded edit of an entry, oldest first.
func (s *Service) History(ctx context.Context, entryID uuid.UUID) ([]domain.HistoryRecord, error) {
	recs, err := s.history.ListByEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("journal.History: %w", err)
	}
	return recs, nil
}
