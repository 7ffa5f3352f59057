package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actor is the party responsible for an edit: a user or an application.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

// UserActor builds an Actor for a human editor.
func UserActor(id uuid.UUID, name string) Actor {
	return Actor{Kind: ActorUser, ID: id, Name: name}
}

// ApplicationActor builds an Actor for an integration.
func ApplicationActor(id uuid.UUID, name string) Actor {
	return Actor{Kind: ActorApplication, ID: id, Name: name}
}

func (a Actor) IsUser() bool        { return a.Kind == ActorUser }
func (a Actor) IsApplication() bool { return a.Kind == ActorApplication }

func (a Actor) String() string { return fmt.Sprintf("%s:%s", a.Kind, a.ID) }

// HistoryRecord is an immutable snapshot of an entry taken at edit time.
// Exactly one of EditUser and EditApplication is set.
type HistoryRecord struct {
	ID              uuid.UUID  `json:"id"`
	Entry           LogEntry   `json:"entry"`
	EditTime        time.Time  `json:"edit_time"`
	EditUser        *uuid.UUID `json:"edit_user"`
	EditApplication *uuid.UUID `json:"edit_application"`
}

// NewHistoryRecord attributes a snapshot of e to actor.
func NewHistoryRecord(e LogEntry, actor Actor, at time.Time) HistoryRecord {
	rec := HistoryRecord{
		ID:       uuid.New(),
		Entry:    e.Clone(),
		EditTime: at,
	}
	id := actor.ID
	if actor.IsApplication() {
		rec.EditApplication = &id
	} else {
		rec.EditUser = &id
	}
	return rec
}
