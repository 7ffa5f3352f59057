// Package eventlog is the in-memory event log store for a single event.
//
// A Store is owned by exactly one event worker and is not safe for
// concurrent use. Mutations are two-phase: Prepare* computes and validates
// the next state without touching the store, the caller persists it, and
// Commit* applies it. A failed persist therefore leaves the store unchanged.
package eventlog

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// Store holds the entries, tags, sections and entry types of one event.
type Store struct {
	event      domain.Event
	entries    map[uuid.UUID]*domain.LogEntry
	tree       *hierarchy
	tags       map[uuid.UUID]*domain.Tag
	sections   map[uuid.UUID]*domain.Section
	entryTypes map[uuid.UUID]domain.EntryType
}

// Snapshot is the full view delivered to a newly subscribed reader.
type Snapshot struct {
	Event      domain.Event       `json:"event"`
	Entries    []domain.LogEntry  `json:"entries"`
	Tags       []domain.Tag       `json:"tags"`
	Sections   []domain.Section   `json:"sections"`
	EntryTypes []domain.EntryType `json:"entry_types"`
}

// New returns an empty store for event.
func New(event domain.Event, types []domain.EntryType) *Store {
	s := &Store{
		event:      event,
		entries:    make(map[uuid.UUID]*domain.LogEntry),
		tree:       newHierarchy(),
		tags:       make(map[uuid.UUID]*domain.Tag),
		sections:   make(map[uuid.UUID]*domain.Section),
		entryTypes: make(map[uuid.UUID]domain.EntryType, len(types)),
	}
	for _, t := range types {
		s.entryTypes[t.ID] = t
	}
	return s
}

// Load rebuilds a store from persisted rows, including soft-deleted entries.
// It fails with ErrCorrupt when parents point outside the event or form a cycle.
func Load(event domain.Event, types []domain.EntryType, entries []domain.LogEntry, tags []domain.Tag, sections []domain.Section) (*Store, error) {
	s := New(event, types)
	for i := range entries {
		e := entries[i].Clone()
		if e.EventID != event.ID {
			return nil, fmt.Errorf("entry %s belongs to event %s: %w", e.ID, e.EventID, ErrCorrupt)
		}
		s.entries[e.ID] = &e
		s.tree.set(e.ID, e.Parent)
	}
	for id, e := range s.entries {
		if e.Parent == nil {
			continue
		}
		if _, ok := s.entries[*e.Parent]; !ok {
			return nil, fmt.Errorf("entry %s has parent %s outside the event: %w", id, *e.Parent, ErrCorrupt)
		}
		if err := s.tree.ancestors(id, func(uuid.UUID) bool { return true }); err != nil {
			return nil, err
		}
	}
	for i := range tags {
		t := tags[i]
		s.tags[t.ID] = &t
	}
	for i := range sections {
		sec := sections[i]
		s.sections[sec.ID] = &sec
	}
	return s, nil
}

// Event returns the event the store belongs to.
func (s *Store) Event() domain.Event { return s.event }

// SetEvent replaces the event header (for example after a default-role change).
func (s *Store) SetEvent(e domain.Event) { s.event = e }

// Entry returns an entry by id, including soft-deleted ones.
func (s *Store) Entry(id uuid.UUID) (domain.LogEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return domain.LogEntry{}, false
	}
	return e.Clone(), true
}

// Tag returns a tag by id, including deleted ones.
func (s *Store) Tag(id uuid.UUID) (domain.Tag, bool) {
	t, ok := s.tags[id]
	if !ok {
		return domain.Tag{}, false
	}
	return *t, true
}

// Children returns the ordered live children of id.
func (s *Store) Children(id uuid.UUID) []domain.LogEntry {
	var out []domain.LogEntry
	for _, cid := range s.tree.childrenOf(id) {
		if e := s.entries[cid]; e != nil && !e.IsDeleted() {
			out = append(out, e.Clone())
		}
	}
	slices.SortFunc(out, compareEntries)
	return out
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// PrepareCreate validates a new entry against the store.
func (s *Store) PrepareCreate(e domain.LogEntry) (domain.LogEntry, error) {
	if _, exists := s.entries[e.ID]; exists {
		return domain.LogEntry{}, fmt.Errorf("entry %s: %w", e.ID, domain.ErrConflict)
	}
	e.EventID = s.event.ID
	if err := s.validateEntry(e, nil); err != nil {
		return domain.LogEntry{}, err
	}
	return e, nil
}

// PrepareUpdate applies patch to a live entry and validates the result.
// A re-parent that would make the entry its own ancestor is rejected.
func (s *Store) PrepareUpdate(id uuid.UUID, patch *domain.EntryPatch) (prev, next domain.LogEntry, err error) {
	cur, err := s.liveEntry(id)
	if err != nil {
		return prev, next, err
	}
	prev = cur.Clone()
	next = patch.Apply(prev)

	if patch.Parent.Set && next.Parent != nil {
		cycle, walkErr := s.tree.wouldCycle(id, *next.Parent)
		if walkErr != nil {
			return prev, next, walkErr
		}
		if cycle {
			return prev, next, domain.NewValidationError("parent", "would make the entry its own ancestor")
		}
	}
	if err := s.validateEntry(next, &prev); err != nil {
		return prev, next, err
	}
	return prev, next, nil
}

// PrepareDelete soft-deletes a live entry. Entries with a published video or
// live children are kept.
func (s *Store) PrepareDelete(id, deletedBy uuid.UUID) (domain.LogEntry, error) {
	cur, err := s.liveEntry(id)
	if err != nil {
		return domain.LogEntry{}, err
	}
	if cur.VideoLink != nil {
		return domain.LogEntry{}, domain.NewValidationError("video_link", "entry has a published video")
	}
	if len(s.Children(id)) > 0 {
		return domain.LogEntry{}, domain.NewValidationError("parent", "entry has child entries")
	}
	next := cur.Clone()
	next.DeletedBy = &deletedBy
	return next, nil
}

// Commit stores a prepared entry and updates the hierarchy index.
func (s *Store) Commit(e domain.LogEntry) error {
	c := e.Clone()
	s.entries[c.ID] = &c
	s.tree.set(c.ID, c.Parent)
	return s.tree.ancestors(c.ID, func(uuid.UUID) bool { return true })
}

// Entries returns live entries in display order.
func (s *Store) Entries() []domain.LogEntry {
	out := make([]domain.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsDeleted() {
			out = append(out, e.Clone())
		}
	}
	slices.SortFunc(out, compareEntries)
	return out
}

func (s *Store) liveEntry(id uuid.UUID) (*domain.LogEntry, error) {
	e, ok := s.entries[id]
	if !ok || e.IsDeleted() {
		return nil, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

// validateEntry checks e against the store. prev is the state before an
// update; tags already attached in prev are accepted even if since removed.
func (s *Store) validateEntry(e domain.LogEntry, prev *domain.LogEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	et, ok := s.entryTypes[e.EntryTypeID]
	if !ok {
		return domain.NewValidationError("entry_type", "not available for this event")
	}
	if et.RequireEndTime && e.EndTime == nil && !e.EndTimeIncomplete {
		return domain.NewValidationError("end_time", fmt.Sprintf("required for %s entries", et.Name))
	}

	if e.Parent != nil {
		p, ok := s.entries[*e.Parent]
		if !ok || p.IsDeleted() || p.EventID != s.event.ID {
			return domain.NewValidationError("parent", "must be a live entry of the same event")
		}
	}

	for _, tagID := range e.Tags {
		if prev != nil && slices.Contains(prev.Tags, tagID) {
			continue
		}
		t, ok := s.tags[tagID]
		if !ok || t.Deleted {
			return domain.NewValidationError("tags", fmt.Sprintf("tag %s is not available", tagID))
		}
	}

	if e.SectionID != nil {
		if _, ok := s.sections[*e.SectionID]; !ok {
			return domain.NewValidationError("section", "not found")
		}
	}
	return nil
}

// compareEntries orders by start time, then manual sort key (nulls last),
// then creation time.
func compareEntries(a, b domain.LogEntry) int {
	if c := a.StartTime.Compare(b.StartTime); c != 0 {
		return c
	}
	switch {
	case a.ManualSortKey != nil && b.ManualSortKey != nil:
		if c := cmp.Compare(*a.ManualSortKey, *b.ManualSortKey); c != 0 {
			return c
		}
	case a.ManualSortKey != nil:
		return -1
	case b.ManualSortKey != nil:
		return 1
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// Flatten orders entries depth-first: each entry is followed by its
// children. Entries whose parent is absent from the input become roots.
func Flatten(entries []domain.LogEntry) []domain.LogEntry {
	present := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		present[e.ID] = true
	}
	kids := make(map[uuid.UUID][]domain.LogEntry)
	var roots []domain.LogEntry
	for _, e := range entries {
		if e.Parent != nil && present[*e.Parent] {
			kids[*e.Parent] = append(kids[*e.Parent], e)
			continue
		}
		roots = append(roots, e)
	}

	out := make([]domain.LogEntry, 0, len(entries))
	var walk func(list []domain.LogEntry)
	walk = func(list []domain.LogEntry) {
		slices.SortFunc(list, compareEntries)
		for _, e := range list {
			out = append(out, e)
			walk(kids[e.ID])
		}
	}
	walk(roots)
	return out
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

// PrepareTag validates a new or updated tag. Names must be unique
// (case-insensitively) among the event's active tags.
func (s *Store) PrepareTag(t domain.Tag) (prev *domain.Tag, err error) {
	if existing, ok := s.tags[t.ID]; ok {
		if existing.Deleted {
			return nil, fmt.Errorf("tag %s: %w", t.ID, domain.ErrNotFound)
		}
		cp := *existing
		prev = &cp
	}
	t.EventID = s.event.ID
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	for _, other := range s.tags {
		if other.ID != t.ID && !other.Deleted && strings.EqualFold(other.Name, t.Name) {
			return nil, fmt.Errorf("tag %q: %w", t.Name, domain.ErrConflict)
		}
	}
	return prev, nil
}

// CommitTag stores a prepared tag.
func (s *Store) CommitTag(t domain.Tag) {
	t.EventID = s.event.ID
	t.Name = strings.TrimSpace(t.Name)
	s.tags[t.ID] = &t
}

// PrepareTagRemoval returns the soft-deleted form of an active tag.
func (s *Store) PrepareTagRemoval(id uuid.UUID) (domain.Tag, error) {
	t, ok := s.tags[id]
	if !ok || t.Deleted {
		return domain.Tag{}, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	removed := *t
	removed.Deleted = true
	return removed, nil
}

// PrepareTagReplace moves every live entry from tag `from` to tag `to` and
// soft-deletes `from`. It returns the removed tag and the updated entries.
func (s *Store) PrepareTagReplace(from, to uuid.UUID) (domain.Tag, []domain.LogEntry, error) {
	if from == to {
		return domain.Tag{}, nil, domain.NewValidationError("tag", "replacement must differ from the removed tag")
	}
	removed, err := s.PrepareTagRemoval(from)
	if err != nil {
		return domain.Tag{}, nil, err
	}
	if t, ok := s.tags[to]; !ok || t.Deleted {
		return domain.Tag{}, nil, fmt.Errorf("tag %s: %w", to, domain.ErrNotFound)
	}

	var updated []domain.LogEntry
	for _, e := range s.Entries() {
		if !slices.Contains(e.Tags, from) {
			continue
		}
		next := e.Clone()
		next.Tags = next.Tags[:0]
		for _, id := range e.Tags {
			if id == from {
				id = to
			}
			if !slices.Contains(next.Tags, id) {
				next.Tags = append(next.Tags, id)
			}
		}
		updated = append(updated, next)
	}
	return removed, updated, nil
}

// PrepareTagCopies returns copies of src tags whose names do not overlap
// this event's active tags. newID supplies identifiers for the copies.
func (s *Store) PrepareTagCopies(src []domain.Tag, newID func() uuid.UUID) []domain.Tag {
	var out []domain.Tag
	taken := func(name string) bool {
		for _, t := range s.tags {
			if !t.Deleted && strings.EqualFold(t.Name, name) {
				return true
			}
		}
		for _, t := range out {
			if strings.EqualFold(t.Name, name) {
				return true
			}
		}
		return false
	}
	for _, t := range src {
		if t.Deleted || taken(t.Name) {
			continue
		}
		out = append(out, domain.Tag{
			ID:          newID(),
			EventID:     s.event.ID,
			Name:        t.Name,
			Description: t.Description,
			Playlist:    t.Playlist,
		})
	}
	return out
}

// Tags returns active tags sorted by name.
func (s *Store) Tags() []domain.Tag {
	out := make([]domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if !t.Deleted {
			out = append(out, *t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Tag) int {
		return cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), bytes.Compare(a.ID[:], b.ID[:]))
	})
	return out
}

// ---------------------------------------------------------------------------
// Sections
// ---------------------------------------------------------------------------

// PrepareSection validates a new section.
func (s *Store) PrepareSection(sec domain.Section) (domain.Section, error) {
	if _, exists := s.sections[sec.ID]; exists {
		return domain.Section{}, fmt.Errorf("section %s: %w", sec.ID, domain.ErrConflict)
	}
	sec.EventID = s.event.ID
	sec.Name = strings.TrimSpace(sec.Name)
	sec.StartTime = sec.StartTime.Truncate(domain.TimeGranularity)
	if err := sec.Validate(); err != nil {
		return domain.Section{}, err
	}
	return sec, nil
}

// CommitSection stores a prepared section.
func (s *Store) CommitSection(sec domain.Section) {
	s.sections[sec.ID] = &sec
}

// Sections returns sections ordered by start time.
func (s *Store) Sections() []domain.Section {
	out := make([]domain.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		out = append(out, *sec)
	}
	slices.SortFunc(out, func(a, b domain.Section) int {
		return cmp.Or(a.StartTime.Compare(b.StartTime), bytes.Compare(a.ID[:], b.ID[:]))
	})
	return out
}

// EntryTypes returns the entry types available for the event, by name.
func (s *Store) EntryTypes() []domain.EntryType {
	out := make([]domain.EntryType, 0, len(s.entryTypes))
	for _, t := range s.entryTypes {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.EntryType) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Snapshot returns the current view of the event.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Event:      s.event,
		Entries:    s.Entries(),
		Tags:       s.Tags(),
		Sections:   s.Sections(),
		EntryTypes: s.EntryTypes(),
	}
}
