// Package engine is the per-event synchronization point. Every mutation of
// an event passes through that event's worker goroutine one at a time: the
// worker checks capability, prepares the change on its in-memory store,
// persists it, commits it to the store and fans the result out to the
// event's subscribers in commit order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
	"github.com/heartmarshall/streamlog-backend/internal/service/journal"
)

var (
	// ErrEventHalted is returned while an event is halted after a fatal
	// store or persistence failure.
	ErrEventHalted = errors.New("event halted")

	// ErrStopped is returned after the engine has shut down.
	ErrStopped = errors.New("engine stopped")

	// ErrSubscriberGone is returned when a subscriber cannot accept its snapshot.
	ErrSubscriberGone = errors.New("subscriber cannot accept messages")
)

type journalService interface {
	Load(ctx context.Context, eventID uuid.UUID) (*eventlog.Store, error)
	Commit(ctx context.Context, eventID uuid.UUID, actor domain.Actor, cs journal.ChangeSet, at time.Time) error
	ListTags(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error)
	Event(ctx context.Context, eventID uuid.UUID) (domain.Event, error)
}

type resolver interface {
	Resolve(ctx context.Context, userID, eventID uuid.UUID) (domain.Capability, error)
}

// Config holds engine tunables.
type Config struct {
	// IdleTimeout retires a worker that has had no subscribers and no
	// requests for this long.
	IdleTimeout time.Duration
	// HaltCooldown is how long a halted event rejects requests before a
	// fresh worker is loaded from the database.
	HaltCooldown time.Duration
	// MaxCreateCount bounds CreateEntries.Count.
	MaxCreateCount int
}

// DefaultConfig is used for zero fields of the Config passed to New.
var DefaultConfig = Config{
	IdleTimeout:    5 * time.Minute,
	HaltCooldown:   30 * time.Second,
	MaxCreateCount: 50,
}

// Engine owns one worker per active event.
type Engine struct {
	cfg      Config
	journal  journalService
	resolver resolver
	log      *slog.Logger
	tracer   trace.Tracer

	now   func() time.Time
	newID func() uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers map[uuid.UUID]*worker
	halted  map[uuid.UUID]time.Time
}

// New creates an engine. Workers start on demand; call Run to tie the
// engine's lifetime to a context.
func New(log *slog.Logger, cfg Config, j journalService, r resolver) *Engine {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig.IdleTimeout
	}
	if cfg.HaltCooldown <= 0 {
		cfg.HaltCooldown = DefaultConfig.HaltCooldown
	}
	if cfg.MaxCreateCount <= 0 {
		cfg.MaxCreateCount = DefaultConfig.MaxCreateCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:      cfg,
		journal:  j,
		resolver: r,
		log:      log.With("service", "engine"),
		tracer:   otel.Tracer("github.com/heartmarshall/streamlog-backend/internal/engine"),
		now:      time.Now,
		newID:    uuid.New,
		ctx:      ctx,
		cancel:   cancel,
		workers:  make(map[uuid.UUID]*worker),
		halted:   make(map[uuid.UUID]time.Time),
	}
}

// Run blocks until ctx is cancelled, then stops every worker and waits for
// them to exit. Subscribers receive an "unsubscribed" message with reason
// "shutdown".
func (e *Engine) Run(ctx context.Context) error {
	<-ctx.Done()
	e.cancel()
	e.wg.Wait()
	e.log.Info("engine stopped")
	return nil
}

// Stats is a point-in-time view of the engine's workers.
type Stats struct {
	Events int `json:"events"`
	Halted int `json:"halted"`
}

// Stats counts running workers and events still in their halt cooldown.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Stats{Events: len(e.workers)}
	now := e.now()
	for _, until := range e.halted {
		if now.Before(until) {
			st.Halted++
		}
	}
	return st
}

// workerFor returns the live worker for eventID, starting one if needed.
func (e *Engine) workerFor(eventID uuid.UUID) (*worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx.Err() != nil {
		return nil, ErrStopped
	}
	if w, ok := e.workers[eventID]; ok {
		return w, nil
	}
	if until, ok := e.halted[eventID]; ok {
		if e.now().Before(until) {
			return nil, fmt.Errorf("event %s: %w: %w", eventID, ErrEventHalted, domain.ErrTransient)
		}
		delete(e.halted, eventID)
	}

	w := newWorker(e, eventID)
	e.workers[eventID] = w
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		w.run(e.ctx)
	}()
	return w, nil
}

// existingWorkers returns the workers currently running, or just the one
// for eventID when it is not uuid.Nil.
func (e *Engine) existingWorkers(eventID uuid.UUID) []*worker {
	e.mu.Lock()
	defer e.mu.Unlock()

	if eventID != uuid.Nil {
		if w, ok := e.workers[eventID]; ok {
			return []*worker{w}
		}
		return nil
	}
	out := make([]*worker, 0, len(e.workers))
	for _, w := range e.workers {
		out = append(out, w)
	}
	return out
}

// detach removes w from the worker table. halt starts the event's cooldown.
func (e *Engine) detach(w *worker, halt bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.workers[w.eventID] == w {
		delete(e.workers, w.eventID)
	}
	if halt {
		e.halted[w.eventID] = e.now().Add(e.cfg.HaltCooldown)
	}
}

type result struct {
	val any
	err error
}

// do runs fn on the event's worker and waits for its result. fn runs with a
// context detached from the caller's cancellation: once accepted, a request
// completes even if the caller goes away.
func (e *Engine) do(ctx context.Context, eventID uuid.UUID, op string, fn func(ctx context.Context, w *worker) (any, error)) (any, error) {
	ctx, span := e.tracer.Start(ctx, "engine."+op, trace.WithAttributes(
		attribute.String("event.id", eventID.String()),
	))
	defer span.End()

	val, err := e.dispatch(ctx, eventID, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return val, err
}

func (e *Engine) dispatch(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context, w *worker) (any, error)) (any, error) {
	for {
		w, err := e.workerFor(eventID)
		if err != nil {
			return nil, err
		}

		reply := make(chan result, 1)
		select {
		case w.requests <- request{ctx: context.WithoutCancel(ctx), fn: fn, reply: reply}:
		case <-w.done:
			if w.err != nil {
				return nil, w.err
			}
			continue // retired while idle; start a fresh one
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		select {
		case r := <-reply:
			return r.val, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// send runs fn on an already running worker without starting one. Workers
// that have exited are skipped.
func (e *Engine) send(ctx context.Context, w *worker, fn func(ctx context.Context, w *worker) (any, error)) error {
	reply := make(chan result, 1)
	select {
	case w.requests <- request{ctx: context.WithoutCancel(ctx), fn: fn, reply: reply}:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case r := <-reply:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
