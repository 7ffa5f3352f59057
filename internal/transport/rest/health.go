package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/heartmarshall/streamlog-backend/internal/engine"
)

const probeTimeout = 3 * time.Second

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type engineStats interface {
	Stats() engine.Stats
}

type connCounter interface {
	Connections() int
}

type listenerState interface {
	Listening() bool
}

// HealthHandler serves the liveness, readiness and health probes.
type HealthHandler struct {
	db       dbPinger
	engine   engineStats
	conns    connCounter
	listener listenerState
	version  string
	now      func() time.Time
}

// NewHealthHandler creates a HealthHandler. eng and conns may be nil.
func NewHealthHandler(db dbPinger, eng engineStats, conns connCounter, version string) *HealthHandler {
	return &HealthHandler{db: db, engine: eng, conns: conns, version: version, now: time.Now}
}

// WithListener adds the permission listener to /health.
func (h *HealthHandler) WithListener(l listenerState) *HealthHandler {
	h.listener = l
	return h
}

// HealthResponse is the body of every probe.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is one component of /health.
type CompStatus struct {
	Status  string         `json:"status"`
	Latency string         `json:"latency,omitempty"`
	Details map[string]int `json:"details,omitempty"`
}

// Live always answers 200.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: h.now()})
}

// Ready answers 503 while the database is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	db := h.database(r.Context())
	writeJSON(w, httpStatus(db.Status), HealthResponse{Status: db.Status, Timestamp: h.now()})
}

// Health reports every component. Only a database outage fails it; a halted
// event or a lost listener leaves the service degraded but serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]CompStatus{"database": h.database(r.Context())}
	if h.engine != nil || h.conns != nil {
		components["sync"] = h.sync()
	}
	if h.listener != nil {
		l := CompStatus{Status: statusOK}
		if !h.listener.Listening() {
			l.Status = statusDegraded
		}
		components["listener"] = l
	}

	overall := statusOK
	for _, c := range components {
		switch {
		case c.Status == statusDown:
			overall = statusDown
		case c.Status == statusDegraded && overall == statusOK:
			overall = statusDegraded
		}
	}

	writeJSON(w, httpStatus(overall), HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  h.now(),
	})
}

func (h *HealthHandler) database(ctx context.Context) CompStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CompStatus{Status: statusDown}
	}
	return CompStatus{Status: statusOK, Latency: time.Since(start).String()}
}

func (h *HealthHandler) sync() CompStatus {
	c := CompStatus{Status: statusOK, Details: make(map[string]int)}
	if h.engine != nil {
		st := h.engine.Stats()
		c.Details["events"] = st.Events
		c.Details["halted"] = st.Halted
		if st.Halted > 0 {
			c.Status = statusDegraded
		}
	}
	if h.conns != nil {
		c.Details["connections"] = h.conns.Connections()
	}
	return c
}

func httpStatus(s string) int {
	if s == statusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
