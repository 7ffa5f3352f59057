package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
)

// maxDecodeErrors closes a connection that keeps sending garbage.
const maxDecodeErrors = 5

// connection is one client. The read loop handles frames one at a time, so
// a connection's commands reach the engine in the order they were sent;
// the write loop drains the bounded outbound queue.
type connection struct {
	id  uuid.UUID
	h   *Handler
	ws  *websocket.Conn
	log *slog.Logger

	out       chan any
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	user  *domain.User
	event uuid.UUID
}

func newConnection(h *Handler, wsConn *websocket.Conn) *connection {
	id := uuid.New()
	return &connection{
		id:   id,
		h:    h,
		ws:   wsConn,
		log:  h.log.With("conn_id", id.String()),
		out:  make(chan any, h.cfg.OutboundQueue),
		done: make(chan struct{}),
	}
}

// Deliver implements engine.Sink. It never blocks: when the outbound
// queue is full the connection is closed and false is returned.
func (c *connection) Deliver(m engine.Message) bool {
	if m.Type == engine.TypeUnsubscribed {
		c.mu.Lock()
		if c.event == m.EventID {
			c.event = uuid.Nil
		}
		c.mu.Unlock()
	}
	return c.enqueue(m)
}

func (c *connection) enqueue(v any) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- v:
		return true
	default:
		c.log.Warn("outbound queue full, disconnecting", slog.Int("queue", cap(c.out)))
		c.close()
		return false
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *connection) setUser(u domain.User) {
	c.mu.Lock()
	c.user = &u
	c.mu.Unlock()
}

func (c *connection) currentUser() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *connection) currentEvent() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.event
}

func (c *connection) setEvent(id uuid.UUID) {
	c.mu.Lock()
	c.event = id
	c.mu.Unlock()
}

func (c *connection) run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop()
	}()

	c.readLoop(ctx)

	c.close()
	wg.Wait()

	if ev := c.currentEvent(); ev != uuid.Nil {
		unsubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.h.engine.Unsubscribe(unsubCtx, ev, c.id); err != nil {
			c.log.WarnContext(ctx, "unsubscribe on disconnect", slog.String("error", err.Error()))
		}
	}
}

func (c *connection) writeLoop() {
	ping := time.NewTicker(c.h.cfg.PingInterval)
	defer ping.Stop()
	defer c.ws.Close()

	for {
		select {
		case <-c.done:
			return
		case v := <-c.out:
			if err := c.write(v); err != nil {
				c.log.Debug("write failed", slog.String("error", err.Error()))
				c.close()
				return
			}
		case <-ping.C:
			if err := c.write(outFrame{Type: framePing}); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *connection) write(v any) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.h.cfg.WriteTimeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(c.ws, v)
}

func (c *connection) readLoop(ctx context.Context) {
	decodeErrors := 0
	for {
		timeout := c.h.cfg.PongTimeout
		if c.currentUser() == nil {
			timeout = c.h.cfg.AuthTimeout
		}
		if err := c.ws.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return
		}

		var f inFrame
		if err := websocket.JSON.Receive(c.ws, &f); err != nil {
			switch {
			case errors.Is(err, io.EOF), isClosed(c.done):
				return
			case errors.Is(err, websocket.ErrFrameTooLarge):
				c.reply(errorFrame("", errpresenter.Error{Code: errpresenter.CodeValidation, Message: "frame too large"}))
			case isDecodeError(err):
				c.reply(errorFrame("", errpresenter.Error{Code: errpresenter.CodeValidation, Message: "invalid frame"}))
			default:
				// Read deadline or network failure.
				c.log.DebugContext(ctx, "read failed", slog.String("error", err.Error()))
				return
			}
			decodeErrors++
			if decodeErrors >= maxDecodeErrors {
				return
			}
			continue
		}
		decodeErrors = 0

		c.handle(ctx, f)
		if isClosed(c.done) {
			return
		}
	}
}

func (c *connection) handle(ctx context.Context, f inFrame) {
	switch f.Type {
	case framePong:
		return
	case frameAuthenticate:
		c.authenticate(ctx, f)
		return
	}

	user := c.currentUser()
	if user == nil {
		c.fail(ctx, f.RequestID, domain.ErrUnauthorized)
		return
	}

	switch f.Type {
	case frameSubscribe:
		c.subscribe(ctx, *user, f)
	case frameUnsubscribe:
		c.unsubscribe(ctx, f)
	case frameListEvents:
		c.listEvents(ctx, *user, f)
	default:
		c.submit(ctx, *user, f)
	}
}

func (c *connection) authenticate(ctx context.Context, f inFrame) {
	var p authenticatePayload
	if err := decodePayload(f, &p); err != nil || p.Token == "" {
		c.fail(ctx, f.RequestID, domain.NewValidationError("token", "required"))
		return
	}
	u, err := c.h.users.Authenticate(ctx, p.Token)
	if err != nil {
		c.fail(ctx, f.RequestID, err)
		return
	}
	if prev := c.currentUser(); prev != nil && prev.ID != u.ID {
		// Switching identity drops the previous identity's subscription;
		// if that fails the connection stays with the previous identity.
		if err := c.leave(ctx); err != nil {
			c.fail(ctx, f.RequestID, err)
			return
		}
	}
	c.setUser(u)
	c.log.InfoContext(ctx, "connection authenticated", slog.String("user_id", u.ID.String()))

	ack := authenticatedAck{UserID: u.ID, Name: u.Name, Color: u.Color, IsAdmin: u.IsAdmin}
	events, err := c.h.events.VisibleEvents(ctx, u.ID)
	if err != nil {
		c.log.WarnContext(ctx, "list events after authentication", slog.String("error", err.Error()))
	} else {
		ack.Events = events
	}
	c.reply(ackFrame(f.RequestID, ack))
}

func (c *connection) listEvents(ctx context.Context, user domain.User, f inFrame) {
	events, err := c.h.events.VisibleEvents(ctx, user.ID)
	if err != nil {
		c.fail(ctx, f.RequestID, err)
		return
	}
	if events == nil {
		events = []domain.EventAccess{}
	}
	c.reply(ackFrame(f.RequestID, eventsAck{Events: events}))
}

func (c *connection) subscribe(ctx context.Context, user domain.User, f inFrame) {
	var p subscribePayload
	if err := decodePayload(f, &p); err != nil || p.EventID == uuid.Nil {
		c.fail(ctx, f.RequestID, domain.NewValidationError("event_id", "required"))
		return
	}

	if c.currentEvent() != uuid.Nil {
		if err := c.leave(ctx); err != nil {
			c.fail(ctx, f.RequestID, err)
			return
		}
	}

	// Set before subscribing so that an "unsubscribed" delivered right
	// after the snapshot is matched against this event.
	c.setEvent(p.EventID)
	capability, err := c.h.engine.Subscribe(ctx, p.EventID, c.id, user, c)
	if err != nil {
		c.setEvent(uuid.Nil)
		c.fail(ctx, f.RequestID, err)
		return
	}
	c.reply(ackFrame(f.RequestID, subscribedAck{EventID: p.EventID, Capability: capability}))
}

func (c *connection) unsubscribe(ctx context.Context, f inFrame) {
	if err := c.leave(ctx); err != nil {
		c.fail(ctx, f.RequestID, err)
		return
	}
	c.reply(ackFrame(f.RequestID, struct{}{}))
}

// leave drops the current subscription, if any.
func (c *connection) leave(ctx context.Context) error {
	ev := c.currentEvent()
	if ev == uuid.Nil {
		return nil
	}
	if err := c.h.engine.Unsubscribe(ctx, ev, c.id); err != nil {
		return err
	}
	c.setEvent(uuid.Nil)
	return nil
}

func (c *connection) submit(ctx context.Context, user domain.User, f inFrame) {
	cmd, err := decodeCommand(f)
	if err != nil {
		c.fail(ctx, f.RequestID, err)
		return
	}
	ev := c.currentEvent()
	if ev == uuid.Nil {
		c.fail(ctx, f.RequestID, domain.NewValidationError("event", "subscribe to an event first"))
		return
	}

	res, err := c.h.engine.Submit(ctx, ev, engine.Principal{User: &user, ConnID: c.id}, cmd)
	if err != nil {
		c.fail(ctx, f.RequestID, err)
		return
	}
	c.reply(ackFrame(f.RequestID, res))
}

func (c *connection) fail(ctx context.Context, requestID string, err error) {
	e, _ := errpresenter.Present(ctx, c.log, err)
	c.reply(errorFrame(requestID, e))
}

func (c *connection) reply(f outFrame) {
	c.enqueue(f)
}

func decodePayload(f inFrame, v any) error {
	if len(f.Payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(f.Payload, v)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
