package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/internal/transport/middleware"
)

// ---------------------------------------------------------------------------
// Fake engine
// ---------------------------------------------------------------------------

type submitted struct {
	EventID uuid.UUID
	P       engine.Principal
	Cmd     engine.Command
}

// fakeEngine keeps subscriptions in memory and broadcasts every accepted
// command as entry_created.
type fakeEngine struct {
	mu        sync.Mutex
	caps      map[uuid.UUID]domain.Capability
	subs      map[uuid.UUID]map[uuid.UUID]engine.Sink
	seq       uint64
	submits   []submitted
	submitErr error
	unsubErr  error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		caps: make(map[uuid.UUID]domain.Capability),
		subs: make(map[uuid.UUID]map[uuid.UUID]engine.Sink),
	}
}

func (f *fakeEngine) Subscribe(_ context.Context, eventID, connID uuid.UUID, user domain.User, sink engine.Sink) (domain.Capability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.caps[user.ID]
	if !c.AtLeast(domain.CapabilityView) {
		return domain.CapabilityNone, fmt.Errorf("subscribe: %w", domain.ErrForbidden)
	}
	sink.Deliver(engine.Message{Type: engine.TypeSnapshot, EventID: eventID, Seq: f.seq, Payload: engine.SnapshotPayload{Capability: c}})
	if f.subs[eventID] == nil {
		f.subs[eventID] = make(map[uuid.UUID]engine.Sink)
	}
	f.subs[eventID][connID] = sink
	return c, nil
}

func (f *fakeEngine) Unsubscribe(_ context.Context, eventID, connID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsubErr != nil {
		return f.unsubErr
	}
	delete(f.subs[eventID], connID)
	return nil
}

func (f *fakeEngine) Submit(_ context.Context, eventID uuid.UUID, p engine.Principal, cmd engine.Command) (engine.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submits = append(f.submits, submitted{EventID: eventID, P: p, Cmd: cmd})
	if f.submitErr != nil {
		return engine.Result{}, f.submitErr
	}
	if _, ok := cmd.(engine.Typing); ok {
		return engine.Result{Seq: f.seq}, nil
	}
	f.seq++
	for connID, sink := range f.subs[eventID] {
		if !sink.Deliver(engine.Message{Type: engine.TypeEntryCreated, EventID: eventID, Seq: f.seq}) {
			delete(f.subs[eventID], connID)
		}
	}
	return engine.Result{Seq: f.seq}, nil
}

// kick drops every subscriber of eventID the way a permission downgrade does.
func (f *fakeEngine) kick(eventID uuid.UUID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for connID, sink := range f.subs[eventID] {
		sink.Deliver(engine.Message{Type: engine.TypeUnsubscribed, EventID: eventID, Seq: f.seq, Payload: engine.UnsubscribedPayload{Reason: reason}})
		delete(f.subs[eventID], connID)
	}
}

func (f *fakeEngine) subscribers(eventID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[eventID])
}

func (f *fakeEngine) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func (f *fakeEngine) lastSubmit() submitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits[len(f.submits)-1]
}

func (f *fakeEngine) failUnsubscribe(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubErr = err
}

// fakeDirectory lists events per user. Set before dialing.
type fakeDirectory struct {
	events map[uuid.UUID][]domain.EventAccess
	err    error
}

func (d *fakeDirectory) VisibleEvents(_ context.Context, userID uuid.UUID) ([]domain.EventAccess, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.events[userID], nil
}

// ---------------------------------------------------------------------------
// Server and client helpers
// ---------------------------------------------------------------------------

var (
	alice = domain.User{ID: uuid.New(), Subject: "alice", Name: "Alice", Color: "#e6194b"}
	bob   = domain.User{ID: uuid.New(), Subject: "bob", Name: "Bob", Color: "#3cb44b"}
)

func testUsers() *userAuthenticatorMock {
	return &userAuthenticatorMock{
		AuthenticateFunc: func(ctx context.Context, token string) (domain.User, error) {
			switch token {
			case "alice-token":
				return alice, nil
			case "bob-token":
				return bob, nil
			}
			return domain.User{}, fmt.Errorf("bad token: %w", domain.ErrUnauthorized)
		},
	}
}

type testServer struct {
	*httptest.Server
	handler *Handler
	eng     *fakeEngine
	dir     *fakeDirectory
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := newFakeEngine()
	users := testUsers()
	dir := &fakeDirectory{events: make(map[uuid.UUID][]domain.EventAccess)}
	h := NewHandler(log, cfg, eng, users, dir)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.Auth(users, "streamlog_session")(h))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		h.CloseAll()
		srv.Close()
	})
	return &testServer{Server: srv, handler: h, eng: eng, dir: dir}
}

func dialErr(srv *testServer, token, origin string) (*websocket.Conn, error) {
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if origin == "" {
		origin = srv.URL
	}
	cfg, err := websocket.NewConfig(wsURL, origin)
	if err != nil {
		return nil, err
	}
	if token != "" {
		cfg.Header = make(http.Header)
		cfg.Header.Set("Authorization", "Bearer "+token)
	}
	return websocket.DialConfig(cfg)
}

func dial(t *testing.T, srv *testServer, token string) *websocket.Conn {
	t.Helper()
	conn, err := dialErr(srv, token, "")
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type testFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	EventID   uuid.UUID       `json:"event_id"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

type testError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := websocket.JSON.Send(conn, frame); err != nil {
		t.Fatalf("send frame: %v", err)
	}
}

// readFrame returns the next frame that is not a ping.
func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got testFrame
		if err := websocket.JSON.Receive(conn, &got); err != nil {
			t.Fatalf("receive frame: %v", err)
		}
		if got.Type != framePing {
			return got
		}
	}
}

func readError(t *testing.T, conn *websocket.Conn) (testFrame, testError) {
	t.Helper()
	f := readFrame(t, conn)
	if f.Type != frameError {
		t.Fatalf("frame type = %q, want %q (payload %s)", f.Type, frameError, f.Payload)
	}
	var e testError
	if err := json.Unmarshal(f.Payload, &e); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return f, e
}

func subscribe(t *testing.T, conn *websocket.Conn, eventID uuid.UUID) {
	t.Helper()
	writeFrame(t, conn, map[string]any{
		"type":       frameSubscribe,
		"request_id": "sub-" + eventID.String(),
		"payload":    map[string]any{"event_id": eventID},
	})
	if got := readFrame(t, conn); got.Type != engine.TypeSnapshot {
		t.Fatalf("frame type = %q, want %q", got.Type, engine.TypeSnapshot)
	}
	if got := readFrame(t, conn); got.Type != frameAck {
		t.Fatalf("frame type = %q, want %q", got.Type, frameAck)
	}
}

// waitClosed reads until the server closes the connection.
func waitClosed(t *testing.T, conn *websocket.Conn, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	_ = conn.SetReadDeadline(deadline)
	for {
		var f testFrame
		if err := websocket.JSON.Receive(conn, &f); err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("connection still open after %v", within)
			}
			return
		}
	}
}
