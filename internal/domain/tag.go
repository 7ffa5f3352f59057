package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Tag labels entries within one event. Name uniqueness holds only among
// non-deleted tags of the same event.
type Tag struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Playlist    bool      `json:"playlist"`
	Deleted     bool      `json:"deleted"`
}

// Validate checks tag content.
func (t *Tag) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if strings.Contains(t.Name, ",") {
		errs = append(errs, FieldError{Field: "name", Message: "must not contain a comma"})
	}
	if strings.TrimSpace(t.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	return NewValidationErrors(errs)
}
