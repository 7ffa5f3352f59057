// Package notify carries cross-process signals over PostgreSQL LISTEN/NOTIFY.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
)

// ChannelPermissions is signalled whenever grants, memberships or default
// roles change. The payload is an event id or AllEvents.
const ChannelPermissions = "permissions_changed"

// AllEvents is the payload meaning every event may be affected.
const AllEvents = "*"

// Notifier sends notifications on the querier found in ctx, so a
// notification issued inside a transaction is delivered only on commit.
type Notifier struct {
	db postgres.Querier
}

// NewNotifier creates a Notifier.
func NewNotifier(db postgres.Querier) *Notifier {
	return &Notifier{db: db}
}

// Notify sends payload on channel.
func (n *Notifier) Notify(ctx context.Context, channel, payload string) error {
	q := postgres.QuerierFromCtx(ctx, n.db)
	if _, err := q.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}

// PermissionsChanged announces that capabilities on eventID may have
// changed. uuid.Nil means every event.
func (n *Notifier) PermissionsChanged(ctx context.Context, eventID uuid.UUID) error {
	payload := AllEvents
	if eventID != uuid.Nil {
		payload = eventID.String()
	}
	return n.Notify(ctx, ChannelPermissions, payload)
}

// ParseEventPayload turns a permissions payload back into an event id;
// uuid.Nil for AllEvents or anything unparsable.
func ParseEventPayload(payload string) uuid.UUID {
	id, err := uuid.Parse(payload)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Handler receives notification payloads.
type Handler func(ctx context.Context, payload string)

// Listener holds a dedicated connection LISTENing on one channel and
// reconnects with exponential backoff when the connection is lost.
type Listener struct {
	pool       *pgxpool.Pool
	channel    string
	handler    Handler
	log        *slog.Logger
	maxBackoff time.Duration
	listening  atomic.Bool
}

// NewListener creates a Listener for channel.
func NewListener(pool *pgxpool.Pool, channel string, handler Handler, log *slog.Logger) *Listener {
	return &Listener{
		pool:       pool,
		channel:    channel,
		handler:    handler,
		log:        log.With("component", "listener", "channel", channel),
		maxBackoff: 30 * time.Second,
	}
}

// WithMaxBackoff caps the delay between reconnect attempts.
func (l *Listener) WithMaxBackoff(d time.Duration) *Listener {
	if d > 0 {
		l.maxBackoff = d
	}
	return l
}

// Run listens until ctx is cancelled. After every reconnect the handler is
// invoked with AllEvents since notifications may have been missed.
func (l *Listener) Run(ctx context.Context) error {
	backoff := retry.WithCappedDuration(l.maxBackoff, retry.NewExponential(100*time.Millisecond))

	first := true
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if !first {
			l.handler(ctx, AllEvents)
		}
		first = false

		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.WarnContext(ctx, "listener connection lost", slog.String("error", err.Error()))
		return retry.RetryableError(err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Listening reports whether the LISTEN session is currently established.
func (l *Listener) Listening() bool {
	return l.listening.Load()
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()
	// The session keeps its LISTEN state, so it is never returned to the pool.
	defer conn.Conn().Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.log.InfoContext(ctx, "listening")
	l.listening.Store(true)
	defer l.listening.Store(false)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.handler(ctx, n.Payload)
	}
}
