package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
	"github.com/heartmarshall/streamlog-backend/internal/service/journal"
)

type request struct {
	ctx   context.Context
	fn    func(ctx context.Context, w *worker) (any, error)
	reply chan result
}

// worker owns one event's store and subscribers. All fields below requests
// are touched only from the worker goroutine.
type worker struct {
	engine   *Engine
	eventID  uuid.UUID
	requests chan request
	done     chan struct{}
	// err is set before done is closed when the worker stopped abnormally.
	err error

	store *eventlog.Store
	seq   uint64
	subs  map[uuid.UUID]*subscriber
	order []uuid.UUID
	fatal error
}

func newWorker(e *Engine, eventID uuid.UUID) *worker {
	return &worker{
		engine:   e,
		eventID:  eventID,
		requests: make(chan request),
		done:     make(chan struct{}),
		subs:     make(map[uuid.UUID]*subscriber),
	}
}

func (w *worker) log() *slog.Logger {
	return w.engine.log.With(slog.String("event_id", w.eventID.String()))
}

func (w *worker) run(ctx context.Context) {
	defer close(w.done)

	store, err := w.engine.journal.Load(ctx, w.eventID)
	if err != nil {
		halt := errors.Is(err, eventlog.ErrCorrupt)
		if halt {
			w.log().Error("event store corrupt", slog.String("error", err.Error()))
			w.err = fmt.Errorf("load event %s: %w: %w: %w", w.eventID, ErrEventHalted, domain.ErrTransient, err)
		} else {
			w.err = fmt.Errorf("load event %s: %w", w.eventID, err)
		}
		w.engine.detach(w, halt)
		return
	}
	w.store = store
	w.log().Debug("worker started")

	idle := time.NewTimer(w.engine.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			w.closeAll(ReasonShutdown)
			w.err = ErrStopped
			w.engine.detach(w, false)
			return

		case req := <-w.requests:
			val, err := req.fn(req.ctx, w)
			req.reply <- result{val: val, err: err}

			if w.fatal != nil {
				w.log().Error("event halted", slog.String("error", w.fatal.Error()))
				w.closeAll(ReasonHalted)
				w.err = fmt.Errorf("event %s: %w: %w", w.eventID, ErrEventHalted, domain.ErrTransient)
				w.engine.detach(w, true)
				return
			}
			idle.Reset(w.engine.cfg.IdleTimeout)

		case <-idle.C:
			if len(w.subs) > 0 {
				idle.Reset(w.engine.cfg.IdleTimeout)
				continue
			}
			w.engine.detach(w, false)
			w.log().Debug("worker retired")
			return
		}
	}
}

// halt stops the worker after the current request. The returned error is
// what the requester sees.
func (w *worker) halt(cause error) error {
	w.fatal = cause
	return fmt.Errorf("%w: %w: %w", ErrEventHalted, domain.ErrTransient, cause)
}

// persist writes cs through the journal. Domain rejections leave the event
// running; any other failure halts it, since the store can no longer be
// trusted to match the database.
func (w *worker) persist(ctx context.Context, actor domain.Actor, cs journal.ChangeSet, at time.Time) error {
	err := w.engine.journal.Commit(ctx, w.eventID, actor, cs, at)
	if err == nil {
		return nil
	}
	if isRejection(err) && !errors.Is(err, domain.ErrTransient) {
		return err
	}
	return w.halt(err)
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}

// ---------------------------------------------------------------------------
// Fan-out
// ---------------------------------------------------------------------------

// broadcast delivers msgs to every subscriber able to view the event, in
// subscription order. Subscribers that cannot keep up are dropped.
func (w *worker) broadcast(msgs []Message, except uuid.UUID) {
	if len(msgs) == 0 {
		return
	}
	for _, id := range w.order {
		if id == except {
			continue
		}
		sub := w.subs[id]
		if !sub.capability.AtLeast(domain.CapabilityView) {
			continue
		}
		for _, m := range msgs {
			if !sub.sink.Deliver(m) {
				w.log().Warn("subscriber dropped: outbound queue full",
					slog.String("conn_id", id.String()),
				)
				w.remove(id)
				break
			}
		}
	}
}

func (w *worker) add(sub *subscriber) {
	if _, ok := w.subs[sub.connID]; !ok {
		w.order = append(w.order, sub.connID)
	}
	w.subs[sub.connID] = sub
}

func (w *worker) remove(connID uuid.UUID) bool {
	if _, ok := w.subs[connID]; !ok {
		return false
	}
	delete(w.subs, connID)
	for i, id := range w.order {
		if id == connID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// closeAll unsubscribes everyone with the given reason.
func (w *worker) closeAll(reason string) {
	msg := w.message(TypeUnsubscribed, UnsubscribedPayload{Reason: reason})
	for _, id := range w.order {
		w.subs[id].sink.Deliver(msg)
	}
	w.subs = make(map[uuid.UUID]*subscriber)
	w.order = nil
}

func (w *worker) message(typ string, payload any) Message {
	return Message{Type: typ, EventID: w.eventID, Seq: w.seq, Payload: payload}
}
