// Package ws is the update channel: a WebSocket endpoint through which
// authenticated users subscribe to one event at a time, receive its
// snapshot and live changes, and submit edits.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/internal/transport/middleware"
)

type syncEngine interface {
	Subscribe(ctx context.Context, eventID, connID uuid.UUID, user domain.User, sink engine.Sink) (domain.Capability, error)
	Unsubscribe(ctx context.Context, eventID, connID uuid.UUID) error
	Submit(ctx context.Context, eventID uuid.UUID, p engine.Principal, cmd engine.Command) (engine.Result, error)
}

type userAuthenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

type eventDirectory interface {
	VisibleEvents(ctx context.Context, userID uuid.UUID) ([]domain.EventAccess, error)
}

// Config holds connection tunables.
type Config struct {
	// OutboundQueue bounds the frames waiting to be written to one
	// connection. A connection whose queue is full is disconnected.
	OutboundQueue int
	PingInterval  time.Duration
	// PongTimeout closes a connection that has sent nothing for this long.
	PongTimeout time.Duration
	// AuthTimeout closes a connection that has not authenticated in time.
	AuthTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxFrameBytes int
	// Origins restricts browser origins. Empty allows any.
	Origins []string
}

// DefaultConfig is used for zero fields of the Config passed to NewHandler.
var DefaultConfig = Config{
	OutboundQueue: 256,
	PingInterval:  20 * time.Second,
	PongTimeout:   60 * time.Second,
	AuthTimeout:   10 * time.Second,
	WriteTimeout:  10 * time.Second,
	MaxFrameBytes: 1 << 20,
}

// Handler accepts update channel connections.
type Handler struct {
	cfg    Config
	engine syncEngine
	users  userAuthenticator
	events eventDirectory
	log    *slog.Logger
	server websocket.Server

	mu    sync.Mutex
	conns map[uuid.UUID]*connection
}

// NewHandler creates the update channel handler.
func NewHandler(log *slog.Logger, cfg Config, eng syncEngine, users userAuthenticator, events eventDirectory) *Handler {
	if cfg.OutboundQueue <= 0 {
		cfg.OutboundQueue = DefaultConfig.OutboundQueue
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultConfig.PingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = DefaultConfig.PongTimeout
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = DefaultConfig.AuthTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig.WriteTimeout
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = DefaultConfig.MaxFrameBytes
	}

	h := &Handler{
		cfg:    cfg,
		engine: eng,
		users:  users,
		events: events,
		log:    log.With("handler", "ws"),
		conns:  make(map[uuid.UUID]*connection),
	}
	h.server = websocket.Server{Handshake: h.handshake, Handler: h.serve}
	return h
}

// ServeHTTP upgrades the request. A user already authenticated by the
// middleware starts out authenticated; otherwise the first frame must be
// "authenticate".
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.server.ServeHTTP(w, r)
}

func (h *Handler) handshake(_ *websocket.Config, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.Origins) == 0 {
		return nil
	}
	if !slices.Contains(h.cfg.Origins, origin) {
		return fmt.Errorf("origin %q not allowed", origin)
	}
	return nil
}

func (h *Handler) serve(wsConn *websocket.Conn) {
	wsConn.MaxPayloadBytes = h.cfg.MaxFrameBytes
	ctx, cancel := context.WithCancel(wsConn.Request().Context())
	defer cancel()

	c := newConnection(h, wsConn)
	if u, ok := middleware.UserFromCtx(ctx); ok {
		c.setUser(u)
	}

	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, c.id)
		h.mu.Unlock()
	}()

	h.log.DebugContext(ctx, "connection opened", slog.String("conn_id", c.id.String()))
	c.run(ctx)
	h.log.DebugContext(ctx, "connection closed", slog.String("conn_id", c.id.String()))
}

// Connections returns the number of open connections.
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// CloseAll disconnects every open connection. http.Server.Shutdown does
// not track hijacked connections, so the server calls this on shutdown.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	conns := make([]*connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}
