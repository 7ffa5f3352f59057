package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// Commit persists cs for eventID on behalf of actor, stamping history with at.
//
// Transient failures before the commit statement are retried. A failed
// commit statement is never retried since the transaction may have landed;
// the caller receives domain.ErrCommitUncertain.
func (s *Service) Commit(ctx context.Context, eventID uuid.UUID, actor domain.Actor, cs ChangeSet, at time.Time) error {
	if cs.IsEmpty() {
		return nil
	}

	// History ids are fixed up front so every attempt writes the same rows.
	records := make([]domain.HistoryRecord, len(cs.Entries))
	for i, ch := range cs.Entries {
		records[i] = domain.NewHistoryRecord(ch.Entry, actor, at)
	}

	backoff := retry.WithMaxRetries(uint64(s.retry.Attempts-1),
		retry.WithCappedDuration(s.retry.MaxDelay, retry.NewExponential(s.retry.BaseDelay)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.tx.RunInEventTx(ctx, eventID, func(txCtx context.Context) error {
			return s.write(txCtx, cs, records)
		})
		if domain.IsRetryable(err) {
			s.log.WarnContext(ctx, "transient commit failure",
				slog.String("event_id", eventID.String()),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("journal.Commit: %w", err)
	}

	s.log.DebugContext(ctx, "changes committed",
		slog.String("event_id", eventID.String()),
		slog.String("actor", actor.String()),
		slog.Int("entries", len(cs.Entries)),
		slog.Int("tags", len(cs.Tags)),
		slog.Int("sections", len(cs.Sections)),
	)
	return nil
}

func (s *Service) write(ctx context.Context, cs ChangeSet, records []domain.HistoryRecord) error {
	// Sections and tags first: entries may reference them.
	for _, sec := range cs.Sections {
		if err := s.sections.Insert(ctx, sec); err != nil {
			return fmt.Errorf("insert section: %w", err)
		}
	}
	for _, t := range cs.Tags {
		if err := s.tags.Upsert(ctx, t); err != nil {
			return fmt.Errorf("upsert tag: %w", err)
		}
	}
	for i, ch := range cs.Entries {
		if ch.Created {
			if err := s.entries.Insert(ctx, ch.Entry); err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
		} else if err := s.entries.UpdateFields(ctx, ch.Entry, ch.Fields); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if err := s.history.Append(ctx, records[i]); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	return nil
}
