package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a livestream occurrence being logged.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	EditorLinkFormat string     `json:"editor_link_format"`
	FirstSectionName string     `json:"first_section_name"`
	DefaultRole      Capability `json:"default_role"`
}

// EventAccess is an event listed together with the caller's capability on it.
type EventAccess struct {
	Event
	Capability Capability `json:"capability"`
}

// Section is a named temporal grouping of entries within an event.
type Section struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
}

// Validate checks a section before it is stored.
func (s *Section) Validate() error {
	if s.Name == "" {
		return NewValidationError("name", "required")
	}
	return nil
}

// EntryType classifies log entries. Color is "#rrggbb".
type EntryType struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	Description    string    `json:"description"`
	RequireEndTime bool      `json:"require_end_time"`
}
