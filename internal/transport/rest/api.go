package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
	"github.com/heartmarshall/streamlog-backend/internal/transport/middleware"
	"github.com/heartmarshall/streamlog-backend/internal/video"
)

// maxBodyBytes caps the plain-text bodies of the write endpoints.
const maxBodyBytes = 64 << 10

type logReader interface {
	Events(ctx context.Context) ([]domain.Event, error)
	EventByName(ctx context.Context, name string) (domain.Event, error)
	ListTags(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error)
	EventForEntry(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error)
	EditedSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]uuid.UUID, error)
	History(ctx context.Context, entryID uuid.UUID) ([]domain.HistoryRecord, error)
}

type logEngine interface {
	Snapshot(ctx context.Context, eventID uuid.UUID) (engine.SnapshotResult, error)
	Submit(ctx context.Context, eventID uuid.UUID, p engine.Principal, cmd engine.Command) (engine.Result, error)
}

// APIHandler serves the integration API. Every route expects an
// application in the context (middleware.AppKeyAuth).
type APIHandler struct {
	journal logReader
	engine  logEngine
	log     *slog.Logger
	now     func() time.Time
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(log *slog.Logger, journal logReader, eng logEngine) *APIHandler {
	return &APIHandler{
		journal: journal,
		engine:  eng,
		log:     log.With("handler", "api"),
		now:     time.Now,
	}
}

// EventResponse is an event as listed to integrations.
type EventResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// LogResponse is an event's log. RetrievedAt may be passed back as "since"
// to fetch exactly the changes made after this response.
type LogResponse struct {
	Event       EventResponse      `json:"event"`
	RetrievedAt time.Time          `json:"retrieved_at"`
	Seq         uint64             `json:"seq"`
	Entries     []domain.LogEntry  `json:"entries"`
	Sections    []domain.Section   `json:"sections"`
	EntryTypes  []domain.EntryType `json:"entry_types"`
}

// WriteResponse reports the commit a write produced.
type WriteResponse struct {
	Seq uint64 `json:"seq"`
}

func toEventResponse(e domain.Event) EventResponse {
	return EventResponse{ID: e.ID, Name: e.Name, StartTime: e.StartTime, EndTime: e.EndTime}
}

// ListEvents handles GET /api/v1/events.
func (h *APIHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.journal.Events(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// EventByName handles GET /api/v1/event_by_name/{name}.
func (h *APIHandler) EventByName(w http.ResponseWriter, r *http.Request) {
	ev, err := h.journal.EventByName(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

// EventLog handles GET /api/v1/event/{id}/log[?since=RFC3339].
func (h *APIHandler) EventLog(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.fail(w, r, domain.NewValidationError("since", "must be an RFC 3339 timestamp"))
			return
		}
		since = &t
	}

	// Taken before reading so that nothing committed meanwhile is skipped
	// by a follow-up request.
	retrievedAt := h.now().UTC()

	snap, err := h.engine.Snapshot(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries := snap.Entries
	if since != nil {
		edited, err := h.journal.EditedSince(r.Context(), eventID, *since)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		entries = slices.DeleteFunc(slices.Clone(entries), func(e domain.LogEntry) bool {
			return !slices.Contains(edited, e.ID)
		})
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}

	writeJSON(w, http.StatusOK, LogResponse{
		Event:       toEventResponse(snap.Event),
		RetrievedAt: retrievedAt,
		Seq:         snap.Seq,
		Entries:     entries,
		Sections:    snap.Sections,
		EntryTypes:  snap.EntryTypes,
	})
}

// EventTags handles GET /api/v1/event/{id}/tags. Removed tags are omitted.
func (h *APIHandler) EventTags(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	tags, err := h.journal.ListTags(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	active := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		if !t.Deleted {
			active = append(active, t)
		}
	}
	writeJSON(w, http.StatusOK, active)
}

// EntryHistory handles GET /api/v1/entry/{id}/history. Deleted entries are
// reported as not found, as they are to viewers.
func (h *APIHandler) EntryHistory(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.journal.EventForEntry(r.Context(), entryID); err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.journal.History(r.Context(), entryID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []domain.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// SetVideoLink handles POST /api/v1/entry/{id}/video. The body is the link.
func (h *APIHandler) SetVideoLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.requiredBody(w, r, domain.FieldVideoLink)
	if !ok {
		return
	}
	h.update(w, r, domain.EntryPatch{VideoLink: domain.Some(link)})
}

// DeleteVideoLink handles DELETE /api/v1/entry/{id}/video.
func (h *APIHandler) DeleteVideoLink(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, domain.EntryPatch{VideoLink: domain.Null[string]()})
}

// SetVideoProcessingState handles POST /api/v1/entry/{id}/video_processing_state.
// The body is the state name.
func (h *APIHandler) SetVideoProcessingState(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.requiredBody(w, r, domain.FieldVideoProcessingState)
	if !ok {
		return
	}
	state, err := video.ParseProcessingState(raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.update(w, r, domain.EntryPatch{VideoProcessingState: domain.Some(state)})
}

// SetVideoErrors handles POST /api/v1/entry/{id}/video_errors. An empty
// body clears the errors.
func (h *APIHandler) SetVideoErrors(w http.ResponseWriter, r *http.Request) {
	text, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.update(w, r, domain.EntryPatch{VideoErrors: &text})
}

// SetEditorLink handles POST /api/v1/entry/{id}/editor. The body is the link.
func (h *APIHandler) SetEditorLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.requiredBody(w, r, domain.FieldEditorLink)
	if !ok {
		return
	}
	h.update(w, r, domain.EntryPatch{EditorLink: domain.Some(link)})
}

// DeleteEditorLink handles DELETE /api/v1/entry/{id}/editor.
func (h *APIHandler) DeleteEditorLink(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, domain.EntryPatch{EditorLink: domain.Null[string]()})
}

// update routes an integration write through the event's engine worker so
// that it is sequenced and broadcast like any other edit.
func (h *APIHandler) update(w http.ResponseWriter, r *http.Request, patch domain.EntryPatch) {
	entryID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, ok := middleware.ApplicationFromCtx(r.Context())
	if !ok {
		h.fail(w, r, domain.ErrUnauthorized)
		return
	}

	eventID, err := h.journal.EventForEntry(r.Context(), entryID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.engine.Submit(r.Context(), eventID, engine.Principal{App: &app},
		engine.IntegrationUpdate{EntryID: entryID, Patch: patch})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "integration update",
		slog.String("entry_id", entryID.String()),
		slog.Any("fields", patch.Fields()),
		slog.Uint64("seq", res.Seq),
	)
	writeJSON(w, http.StatusOK, WriteResponse{Seq: res.Seq})
}

func (h *APIHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, domain.NewValidationError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *APIHandler) requiredBody(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	body, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return "", false
	}
	if body == "" {
		h.fail(w, r, domain.NewValidationError(field, "request body is required"))
		return "", false
	}
	return body, true
}

func readBody(r *http.Request) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return "", domain.NewValidationError("body", "could not be read")
	}
	if len(b) > maxBodyBytes {
		return "", domain.NewValidationError("body", "too large")
	}
	return strings.TrimSpace(string(b)), nil
}

// ErrorResponse is the body of every failed API request, including those
// rejected by middleware.
type ErrorResponse = errpresenter.Envelope

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e, status := errpresenter.Present(r.Context(), h.log, err)
	if errors.Is(err, engine.ErrEventHalted) {
		w.Header().Set("Retry-After", "5")
	}
	errpresenter.Write(w, status, e)
}
