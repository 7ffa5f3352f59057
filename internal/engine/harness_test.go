package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
	"github.com/heartmarshall/streamlog-backend/internal/service/journal"
)

// ---------------------------------------------------------------------------
// Test harness
// ---------------------------------------------------------------------------

// harness wires an Engine to mocks backed by an in-memory "database".
type harness struct {
	t         *testing.T
	eng       *Engine
	journal   *journalServiceMock
	resolver  *resolverMock
	event     domain.Event
	entryType domain.EntryType
	clock     *fakeClock

	mu        sync.Mutex
	caps      map[uuid.UUID]domain.Capability
	entries   map[uuid.UUID]domain.LogEntry
	tags      map[uuid.UUID]domain.Tag
	sections  map[uuid.UUID]domain.Section
	commits   []journal.ChangeSet
	otherTags []domain.Tag
	commitErr error
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		t:         t,
		event:     domain.Event{ID: uuid.New(), Name: "Marathon", StartTime: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)},
		entryType: domain.EntryType{ID: uuid.New(), Name: "Highlight", Color: "#ff0000"},
		clock:     &fakeClock{now: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)},
		caps:      make(map[uuid.UUID]domain.Capability),
		entries:   make(map[uuid.UUID]domain.LogEntry),
		tags:      make(map[uuid.UUID]domain.Tag),
		sections:  make(map[uuid.UUID]domain.Section),
	}

	h.journal = &journalServiceMock{
		LoadFunc: func(ctx context.Context, eventID uuid.UUID) (*eventlog.Store, error) {
			if eventID != h.event.ID {
				return nil, domain.ErrNotFound
			}
			h.mu.Lock()
			defer h.mu.Unlock()
			return eventlog.Load(h.event, []domain.EntryType{h.entryType},
				values(h.entries), values(h.tags), values(h.sections))
		},
		CommitFunc: func(ctx context.Context, eventID uuid.UUID, actor domain.Actor, cs journal.ChangeSet, at time.Time) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.commitErr != nil {
				return h.commitErr
			}
			for _, sec := range cs.Sections {
				h.sections[sec.ID] = sec
			}
			for _, tg := range cs.Tags {
				h.tags[tg.ID] = tg
			}
			for _, ch := range cs.Entries {
				h.entries[ch.Entry.ID] = ch.Entry.Clone()
			}
			h.commits = append(h.commits, cs)
			return nil
		},
		ListTagsFunc: func(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.otherTags, nil
		},
		EventFunc: func(ctx context.Context, eventID uuid.UUID) (domain.Event, error) {
			return h.event, nil
		},
	}
	h.resolver = &resolverMock{
		ResolveFunc: func(ctx context.Context, userID, eventID uuid.UUID) (domain.Capability, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.caps[userID], nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	h.eng = New(logger, cfg, h.journal, h.resolver)
	h.eng.now = h.clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = h.eng.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return h
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// user registers a user holding capability c on the harness event.
func (h *harness) user(name string, c domain.Capability) Principal {
	u := &domain.User{ID: uuid.New(), Name: name, Color: "#00ff00"}
	h.setCap(u.ID, c)
	return Principal{User: u, ConnID: uuid.New()}
}

func (h *harness) setCap(userID uuid.UUID, c domain.Capability) {
	h.mu.Lock()
	h.caps[userID] = c
	h.mu.Unlock()
}

func (h *harness) commitCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.commits)
}

func (h *harness) persisted(id uuid.UUID) domain.LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[id]
}

func (h *harness) submit(p Principal, cmd Command) (Result, error) {
	return h.eng.Submit(context.Background(), h.event.ID, p, cmd)
}

func (h *harness) newEntry() domain.NewEntry {
	return domain.NewEntry{
		StartTime:   h.event.StartTime.Add(time.Hour),
		EntryTypeID: h.entryType.ID,
		Description: "something happened",
	}
}

// createOne creates a single entry and returns it.
func (h *harness) createOne(p Principal) domain.LogEntry {
	h.t.Helper()
	res, err := h.submit(p, CreateEntries{Entry: h.newEntry()})
	require.NoError(h.t, err)
	require.Len(h.t, res.Entries, 1)
	return res.Entries[0]
}

func (h *harness) subscribe(p Principal, sink Sink) domain.Capability {
	h.t.Helper()
	c, err := h.eng.Subscribe(context.Background(), h.event.ID, p.ConnID, *p.User, sink)
	require.NoError(h.t, err)
	return c
}

// sink records delivered messages. When limit is reached Deliver reports
// failure, emulating a full outbound queue.
type sink struct {
	mu    sync.Mutex
	msgs  []Message
	limit int
}

func (s *sink) Deliver(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.msgs) >= s.limit {
		return false
	}
	s.msgs = append(s.msgs, m)
	return true
}

func (s *sink) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

func (s *sink) types() []string {
	var out []string
	for _, m := range s.messages() {
		out = append(out, m.Type)
	}
	return out
}

func (s *sink) last() Message {
	msgs := s.messages()
	if len(msgs) == 0 {
		return Message{}
	}
	return msgs[len(msgs)-1]
}

func ptr[T any](v T) *T { return &v }
