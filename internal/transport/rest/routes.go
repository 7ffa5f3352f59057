package rest

import (
	"context"
	"net/http"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/transport/middleware"
)

type appAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (domain.Application, error)
}

// Register mounts the integration API on mux. limit runs after the key is
// checked so that quotas are kept per application.
func (h *APIHandler) Register(mux *http.ServeMux, apps appAuthenticator, limit middleware.Middleware) {
	read := middleware.Chain(
		middleware.AppKeyAuth(apps),
		limit,
		middleware.RequireAppCapability(middleware.CanReadLog),
	)
	write := middleware.Chain(
		middleware.AppKeyAuth(apps),
		limit,
		middleware.RequireAppCapability(middleware.CanWriteLinks),
	)

	mux.Handle("GET /api/v1/events", read(http.HandlerFunc(h.ListEvents)))
	mux.Handle("GET /api/v1/event_by_name/{name}", read(http.HandlerFunc(h.EventByName)))
	mux.Handle("GET /api/v1/event/{id}/log", read(http.HandlerFunc(h.EventLog)))
	mux.Handle("GET /api/v1/event/{id}/tags", read(http.HandlerFunc(h.EventTags)))
	mux.Handle("GET /api/v1/entry/{id}/history", read(http.HandlerFunc(h.EntryHistory)))

	mux.Handle("POST /api/v1/entry/{id}/video", write(http.HandlerFunc(h.SetVideoLink)))
	mux.Handle("DELETE /api/v1/entry/{id}/video", write(http.HandlerFunc(h.DeleteVideoLink)))
	mux.Handle("POST /api/v1/entry/{id}/video_processing_state", write(http.HandlerFunc(h.SetVideoProcessingState)))
	mux.Handle("POST /api/v1/entry/{id}/video_errors", write(http.HandlerFunc(h.SetVideoErrors)))
	mux.Handle("POST /api/v1/entry/{id}/editor", write(http.HandlerFunc(h.SetEditorLink)))
	mux.Handle("DELETE /api/v1/entry/{id}/editor", write(http.HandlerFunc(h.DeleteEditorLink)))
}

// RegisterHealth mounts the health probes on mux.
func (h *HealthHandler) RegisterHealth(mux *http.ServeMux) {
	mux.HandleFunc("GET /live", h.Live)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /health", h.Health)
}
