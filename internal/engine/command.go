package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// Principal is who submits a command: a user on a connection, or an
// application.
type Principal struct {
	User   *domain.User
	App    *domain.Application
	ConnID uuid.UUID
}

func (p Principal) actor() domain.Actor {
	if p.App != nil {
		return domain.ApplicationActor(p.App.ID, p.App.Name)
	}
	return domain.UserActor(p.User.ID, p.User.Name)
}

func (p Principal) editor() Editor {
	if p.App != nil {
		return Editor{Kind: domain.ActorApplication, ID: p.App.ID, Name: p.App.Name}
	}
	return Editor{Kind: domain.ActorUser, ID: p.User.ID, Name: p.User.Name, Color: p.User.Color}
}

// Command is a request to change an event.
type Command interface {
	commandName() string
}

// CreateEntries creates Count identical entries.
type CreateEntries struct {
	Entry domain.NewEntry `json:"entry"`
	Count int             `json:"count"`
}

// UpdateEntry writes the fields set in Patch.
type UpdateEntry struct {
	ID    uuid.UUID         `json:"id"`
	Patch domain.EntryPatch `json:"patch"`
}

// DeleteEntry soft-deletes an entry.
type DeleteEntry struct {
	ID uuid.UUID `json:"id"`
}

// Typing relays in-progress input to other subscribers. It is not persisted.
type Typing struct {
	Entry *uuid.UUID `json:"entry"`
	Field string     `json:"field"`
	Value string     `json:"value"`
}

// SaveTag creates a tag (nil ID) or updates an existing one.
type SaveTag struct {
	Tag domain.Tag `json:"tag"`
}

// RemoveTag soft-deletes a tag. Entries keep it attached.
type RemoveTag struct {
	ID uuid.UUID `json:"id"`
}

// ReplaceTag moves every entry from one tag to another and removes the first.
type ReplaceTag struct {
	From uuid.UUID `json:"from"`
	To   uuid.UUID `json:"to"`
}

// CopyTags copies another event's active tags whose names are free here.
type CopyTags struct {
	FromEvent uuid.UUID `json:"from_event"`
}

// AddSection adds a section.
type AddSection struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
}

// IntegrationUpdate is an application's write to the video fields of an entry.
type IntegrationUpdate struct {
	EntryID uuid.UUID
	Patch   domain.EntryPatch
}

func (CreateEntries) commandName() string     { return "create_entries" }
func (UpdateEntry) commandName() string       { return "update_entry" }
func (DeleteEntry) commandName() string       { return "delete_entry" }
func (Typing) commandName() string            { return "typing" }
func (SaveTag) commandName() string           { return "save_tag" }
func (RemoveTag) commandName() string         { return "remove_tag" }
func (ReplaceTag) commandName() string        { return "replace_tag" }
func (CopyTags) commandName() string          { return "copy_tags" }
func (AddSection) commandName() string        { return "add_section" }
func (IntegrationUpdate) commandName() string { return "integration_update" }

// Result reports what a command committed.
type Result struct {
	Seq      uint64            `json:"seq"`
	Entries  []domain.LogEntry `json:"entries,omitempty"`
	Tags     []domain.Tag      `json:"tags,omitempty"`
	Sections []domain.Section  `json:"sections,omitempty"`
}
