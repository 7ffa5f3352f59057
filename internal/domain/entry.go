package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeGranularity is the resolution at which entry times are stored.
const TimeGranularity = time.Minute

// LogEntry is one documented occurrence within an event.
type LogEntry struct {
	ID                   uuid.UUID             `json:"id"`
	EventID              uuid.UUID             `json:"event_id"`
	StartTime            time.Time             `json:"start_time"`
	EndTime              *time.Time            `json:"end_time"`
	EndTimeIncomplete    bool                  `json:"end_time_incomplete"`
	EntryTypeID          uuid.UUID             `json:"entry_type"`
	Description          string                `json:"description"`
	MediaLinks           []string              `json:"media_links"`
	SubmitterOrWinner    string                `json:"submitter_or_winner"`
	NotesToEditor        string                `json:"notes_to_editor"`
	EditorLink           *string               `json:"editor_link"`
	Editor               *uuid.UUID            `json:"editor"`
	VideoLink            *string               `json:"video_link"`
	Parent               *uuid.UUID            `json:"parent"`
	Tags                 []uuid.UUID           `json:"tags"`
	PosterMoment         bool                  `json:"poster_moment"`
	VideoEditState       VideoEditState        `json:"video_edit_state"`
	VideoProcessingState *VideoProcessingState `json:"video_processing_state"`
	VideoErrors          string                `json:"video_errors"`
	MarkedIncomplete     bool                  `json:"marked_incomplete"`
	ManualSortKey        *int32                `json:"manual_sort_key"`
	SectionID            *uuid.UUID            `json:"section"`
	CreatedAt            time.Time             `json:"created_at"`
	DeletedBy            *uuid.UUID            `json:"deleted_by,omitempty"`
}

// IsDeleted reports whether the entry has been soft-deleted.
func (e *LogEntry) IsDeleted() bool { return e.DeletedBy != nil }

// Clone returns a deep copy so arena state never aliases caller slices.
func (e LogEntry) Clone() LogEntry {
	e.MediaLinks = slices.Clone(e.MediaLinks)
	e.Tags = slices.Clone(e.Tags)
	e.EndTime = clonePtr(e.EndTime)
	e.EditorLink = clonePtr(e.EditorLink)
	e.Editor = clonePtr(e.Editor)
	e.VideoLink = clonePtr(e.VideoLink)
	e.Parent = clonePtr(e.Parent)
	e.VideoProcessingState = clonePtr(e.VideoProcessingState)
	e.ManualSortKey = clonePtr(e.ManualSortKey)
	e.SectionID = clonePtr(e.SectionID)
	e.DeletedBy = clonePtr(e.DeletedBy)
	return e
}

// Validate checks the entry's self-contained invariants.
// Cross-entry rules (parent existence, cycles, tag ownership) live in the store.
func (e *LogEntry) Validate() error {
	var errs []FieldError

	if e.EntryTypeID == uuid.Nil {
		errs = append(errs, FieldError{Field: "entry_type", Message: "required"})
	}
	if e.EndTimeIncomplete && e.EndTime != nil {
		errs = append(errs, FieldError{Field: "end_time", Message: "must be empty when marked incomplete"})
	}
	if e.EndTime != nil && !e.EndTimeIncomplete && e.EndTime.Before(e.StartTime) {
		errs = append(errs, FieldError{Field: "end_time", Message: "must not be before start_time"})
	}
	if e.Parent != nil && *e.Parent == e.ID {
		errs = append(errs, FieldError{Field: "parent", Message: "entry cannot be its own parent"})
	}
	for _, link := range e.MediaLinks {
		if strings.TrimSpace(link) == "" {
			errs = append(errs, FieldError{Field: "media_links", Message: "links must not be empty"})
			break
		}
	}
	if !e.VideoEditState.IsValid() {
		errs = append(errs, FieldError{Field: "video_edit_state", Message: "unknown state"})
	}
	if e.VideoProcessingState != nil && !e.VideoProcessingState.IsValid() {
		errs = append(errs, FieldError{Field: "video_processing_state", Message: "unknown state"})
	}

	return NewValidationErrors(errs)
}

// NewEntry is the client-supplied content of an entry to create.
type NewEntry struct {
	StartTime         time.Time      `json:"start_time"`
	EndTime           *time.Time     `json:"end_time"`
	EndTimeIncomplete bool           `json:"end_time_incomplete"`
	EntryTypeID       uuid.UUID      `json:"entry_type"`
	Description       string         `json:"description"`
	MediaLinks        []string       `json:"media_links"`
	SubmitterOrWinner string         `json:"submitter_or_winner"`
	NotesToEditor     string         `json:"notes_to_editor"`
	Editor            *uuid.UUID     `json:"editor"`
	Parent            *uuid.UUID     `json:"parent"`
	Tags              []uuid.UUID    `json:"tags"`
	PosterMoment      bool           `json:"poster_moment"`
	VideoEditState    VideoEditState `json:"video_edit_state"`
	MarkedIncomplete  bool           `json:"marked_incomplete"`
	ManualSortKey     *int32         `json:"manual_sort_key"`
	SectionID         *uuid.UUID     `json:"section"`
}

// Build materialises a LogEntry with the given identity and creation time.
func (n NewEntry) Build(id, eventID uuid.UUID, createdAt time.Time) LogEntry {
	state := n.VideoEditState
	if state == "" {
		state = VideoEditStateNoVideo
	}
	e := LogEntry{
		ID:                id,
		EventID:           eventID,
		StartTime:         n.StartTime.Truncate(TimeGranularity),
		EndTime:           truncatePtr(n.EndTime),
		EndTimeIncomplete: n.EndTimeIncomplete,
		EntryTypeID:       n.EntryTypeID,
		Description:       n.Description,
		MediaLinks:        slices.Clone(n.MediaLinks),
		SubmitterOrWinner: n.SubmitterOrWinner,
		NotesToEditor:     n.NotesToEditor,
		Editor:            clonePtr(n.Editor),
		Parent:            clonePtr(n.Parent),
		Tags:              dedupe(n.Tags),
		PosterMoment:      n.PosterMoment,
		VideoEditState:    state,
		MarkedIncomplete:  n.MarkedIncomplete,
		ManualSortKey:     clonePtr(n.ManualSortKey),
		SectionID:         clonePtr(n.SectionID),
		CreatedAt:         createdAt,
	}
	if e.MediaLinks == nil {
		e.MediaLinks = []string{}
	}
	if e.EndTimeIncomplete {
		e.EndTime = nil
	}
	return e
}

// EntryPatch is a field-level update. Nil pointers and unset Nullables are untouched.
type EntryPatch struct {
	StartTime         *time.Time          `json:"start_time,omitempty"`
	EndTime           Nullable[time.Time] `json:"end_time,omitzero"`
	EndTimeIncomplete *bool               `json:"end_time_incomplete,omitempty"`
	EntryTypeID       *uuid.UUID          `json:"entry_type,omitempty"`
	Description       *string             `json:"description,omitempty"`
	MediaLinks        *[]string           `json:"media_links,omitempty"`
	SubmitterOrWinner *string             `json:"submitter_or_winner,omitempty"`
	NotesToEditor     *string             `json:"notes_to_editor,omitempty"`
	Editor            Nullable[uuid.UUID] `json:"editor,omitzero"`
	Parent            Nullable[uuid.UUID] `json:"parent,omitzero"`
	Tags              *[]uuid.UUID        `json:"tags,omitempty"`
	PosterMoment      *bool               `json:"poster_moment,omitempty"`
	VideoEditState    *VideoEditState     `json:"video_edit_state,omitempty"`
	MarkedIncomplete  *bool               `json:"marked_incomplete,omitempty"`
	ManualSortKey     Nullable[int32]     `json:"manual_sort_key,omitzero"`
	SectionID         Nullable[uuid.UUID] `json:"section,omitzero"`

	VideoLink            Nullable[string]               `json:"video_link,omitzero"`
	EditorLink           Nullable[string]               `json:"editor_link,omitzero"`
	VideoProcessingState Nullable[VideoProcessingState] `json:"video_processing_state,omitzero"`
	VideoErrors          *string                        `json:"video_errors,omitempty"`
}

// Entry column names as persisted; Fields reports them for a patch.
const (
	FieldStartTime            = "start_time"
	FieldEndTime              = "end_time"
	FieldEndTimeIncomplete    = "end_time_incomplete"
	FieldEntryType            = "entry_type"
	FieldDescription          = "description"
	FieldMediaLinks           = "media_links"
	FieldSubmitterOrWinner    = "submitter_or_winner"
	FieldNotesToEditor        = "notes_to_editor"
	FieldEditor               = "editor"
	FieldParent               = "parent"
	FieldTags                 = "tags"
	FieldPosterMoment         = "poster_moment"
	FieldVideoEditState       = "video_edit_state"
	FieldMarkedIncomplete     = "marked_incomplete"
	FieldManualSortKey        = "manual_sort_key"
	FieldSection              = "section"
	FieldVideoLink            = "video_link"
	FieldEditorLink           = "editor_link"
	FieldVideoProcessingState = "video_processing_state"
	FieldVideoErrors          = "video_errors"
	FieldDeletedBy            = "deleted_by"
)

// IntegrationFields are the only fields an application may write.
var IntegrationFields = []string{FieldVideoLink, FieldEditorLink, FieldVideoProcessingState, FieldVideoErrors}

// Fields returns the persisted fields the patch writes, in a stable order.
func (p *EntryPatch) Fields() []string {
	var f []string
	add := func(cond bool, name string) {
		if cond && !slices.Contains(f, name) {
			f = append(f, name)
		}
	}
	add(p.StartTime != nil, FieldStartTime)
	add(p.EndTime.Set, FieldEndTime)
	add(p.EndTime.Set && p.EndTime.Value != nil, FieldEndTimeIncomplete)
	add(p.EndTimeIncomplete != nil, FieldEndTimeIncomplete)
	add(p.EndTimeIncomplete != nil && *p.EndTimeIncomplete, FieldEndTime)
	add(p.EntryTypeID != nil, FieldEntryType)
	add(p.Description != nil, FieldDescription)
	add(p.MediaLinks != nil, FieldMediaLinks)
	add(p.SubmitterOrWinner != nil, FieldSubmitterOrWinner)
	add(p.NotesToEditor != nil, FieldNotesToEditor)
	add(p.Editor.Set, FieldEditor)
	add(p.Parent.Set, FieldParent)
	add(p.Tags != nil, FieldTags)
	add(p.PosterMoment != nil, FieldPosterMoment)
	add(p.VideoEditState != nil, FieldVideoEditState)
	add(p.MarkedIncomplete != nil, FieldMarkedIncomplete)
	add(p.ManualSortKey.Set, FieldManualSortKey)
	add(p.SectionID.Set, FieldSection)
	add(p.VideoLink.Set, FieldVideoLink)
	add(p.EditorLink.Set, FieldEditorLink)
	add(p.VideoProcessingState.Set, FieldVideoProcessingState)
	add(p.VideoErrors != nil, FieldVideoErrors)
	return f
}

// IsEmpty reports whether the patch touches nothing.
func (p *EntryPatch) IsEmpty() bool { return len(p.Fields()) == 0 }

// Apply returns a copy of e with the patch applied. It does not validate.
func (p *EntryPatch) Apply(e LogEntry) LogEntry {
	next := e.Clone()

	if p.StartTime != nil {
		next.StartTime = p.StartTime.Truncate(TimeGranularity)
	}
	if p.EndTime.Set {
		next.EndTime = truncatePtr(p.EndTime.Value)
		if next.EndTime != nil {
			next.EndTimeIncomplete = false
		}
	}
	if p.EndTimeIncomplete != nil {
		next.EndTimeIncomplete = *p.EndTimeIncomplete
		if next.EndTimeIncomplete {
			next.EndTime = nil
		}
	}
	if p.EntryTypeID != nil {
		next.EntryTypeID = *p.EntryTypeID
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.MediaLinks != nil {
		next.MediaLinks = slices.Clone(*p.MediaLinks)
		if next.MediaLinks == nil {
			next.MediaLinks = []string{}
		}
	}
	if p.SubmitterOrWinner != nil {
		next.SubmitterOrWinner = *p.SubmitterOrWinner
	}
	if p.NotesToEditor != nil {
		next.NotesToEditor = *p.NotesToEditor
	}
	if p.Editor.Set {
		next.Editor = clonePtr(p.Editor.Value)
	}
	if p.Parent.Set {
		next.Parent = clonePtr(p.Parent.Value)
	}
	if p.Tags != nil {
		next.Tags = dedupe(*p.Tags)
	}
	if p.PosterMoment != nil {
		next.PosterMoment = *p.PosterMoment
	}
	if p.VideoEditState != nil {
		next.VideoEditState = *p.VideoEditState
	}
	if p.MarkedIncomplete != nil {
		next.MarkedIncomplete = *p.MarkedIncomplete
	}
	if p.ManualSortKey.Set {
		next.ManualSortKey = clonePtr(p.ManualSortKey.Value)
	}
	if p.SectionID.Set {
		next.SectionID = clonePtr(p.SectionID.Value)
	}
	if p.VideoLink.Set {
		next.VideoLink = clonePtr(p.VideoLink.Value)
	}
	if p.EditorLink.Set {
		next.EditorLink = clonePtr(p.EditorLink.Value)
	}
	if p.VideoProcessingState.Set {
		next.VideoProcessingState = clonePtr(p.VideoProcessingState.Value)
	}
	if p.VideoErrors != nil {
		next.VideoErrors = *p.VideoErrors
	}
	return next
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func truncatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Truncate(TimeGranularity)
	return &v
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
