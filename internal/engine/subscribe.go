package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
)

type subscriber struct {
	connID     uuid.UUID
	user       domain.User
	capability domain.Capability
	sink       Sink
}

// Subscribe registers a connection for an event's updates. The snapshot is
// delivered through sink before Subscribe returns, so the next message the
// sink receives is the first commit after it.
func (e *Engine) Subscribe(ctx context.Context, eventID, connID uuid.UUID, user domain.User, sink Sink) (domain.Capability, error) {
	val, err := e.do(ctx, eventID, "subscribe", func(ctx context.Context, w *worker) (any, error) {
		c, err := e.resolver.Resolve(ctx, user.ID, eventID)
		if err != nil {
			return nil, err
		}
		if !c.AtLeast(domain.CapabilityView) {
			return nil, fmt.Errorf("subscribe to event %s: %w", eventID, domain.ErrForbidden)
		}

		snap := w.message(TypeSnapshot, SnapshotPayload{Snapshot: w.store.Snapshot(), Capability: c})
		if !sink.Deliver(snap) {
			return nil, ErrSubscriberGone
		}
		w.add(&subscriber{connID: connID, user: user, capability: c, sink: sink})
		return c, nil
	})
	if err != nil {
		return domain.CapabilityNone, fmt.Errorf("engine.Subscribe: %w", err)
	}

	e.log.DebugContext(ctx, "subscribed",
		slog.String("event_id", eventID.String()),
		slog.String("conn_id", connID.String()),
	)
	return val.(domain.Capability), nil
}

// Unsubscribe removes a connection's subscription. It is a no-op when the
// connection is not subscribed.
func (e *Engine) Unsubscribe(ctx context.Context, eventID, connID uuid.UUID) error {
	for _, w := range e.existingWorkers(eventID) {
		err := e.send(ctx, w, func(ctx context.Context, w *worker) (any, error) {
			w.remove(connID)
			return nil, nil
		})
		if err != nil {
			return fmt.Errorf("engine.Unsubscribe: %w", err)
		}
	}
	return nil
}

// SnapshotResult is an event's current state with the sequence it reflects.
type SnapshotResult struct {
	Seq uint64
	eventlog.Snapshot
}

// Snapshot returns the event's current view-level state.
func (e *Engine) Snapshot(ctx context.Context, eventID uuid.UUID) (SnapshotResult, error) {
	val, err := e.do(ctx, eventID, "snapshot", func(ctx context.Context, w *worker) (any, error) {
		return SnapshotResult{Seq: w.seq, Snapshot: w.store.Snapshot()}, nil
	})
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("engine.Snapshot: %w", err)
	}
	return val.(SnapshotResult), nil
}

// RefreshPermissions re-resolves the capability of every subscriber of
// eventID, or of every running event when eventID is uuid.Nil. Subscribers
// whose capability changed receive "permission_changed"; those that fell
// below view are unsubscribed as well.
func (e *Engine) RefreshPermissions(ctx context.Context, eventID uuid.UUID) error {
	for _, w := range e.existingWorkers(eventID) {
		err := e.send(ctx, w, func(ctx context.Context, w *worker) (any, error) {
			return nil, w.refreshPermissions(ctx)
		})
		if err != nil {
			return fmt.Errorf("engine.RefreshPermissions: %w", err)
		}
	}
	return nil
}

func (w *worker) refreshPermissions(ctx context.Context) error {
	if ev, err := w.engine.journal.Event(ctx, w.eventID); err == nil {
		w.store.SetEvent(ev)
	} else {
		w.log().WarnContext(ctx, "reload event header", slog.String("error", err.Error()))
	}

	for _, id := range append([]uuid.UUID(nil), w.order...) {
		sub := w.subs[id]
		c, err := w.engine.resolver.Resolve(ctx, sub.user.ID, w.eventID)
		if err != nil {
			// Keep the current capability; the next notification retries.
			w.log().WarnContext(ctx, "resolve capability",
				slog.String("conn_id", id.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if c == sub.capability {
			continue
		}

		sub.capability = c
		ok := sub.sink.Deliver(w.message(TypePermissionChanged, PermissionChangedPayload{Capability: c}))
		if !c.AtLeast(domain.CapabilityView) {
			if ok {
				sub.sink.Deliver(w.message(TypeUnsubscribed, UnsubscribedPayload{Reason: ReasonPermission}))
			}
			w.remove(id)
			w.log().InfoContext(ctx, "subscriber demoted below view", slog.String("conn_id", id.String()))
			continue
		}
		if !ok {
			w.remove(id)
		}
	}
	return nil
}
