package engine

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
)

// Message types delivered to subscribers.
const (
	TypeSnapshot          = "snapshot"
	TypeEntryCreated      = "entry_created"
	TypeEntryUpdated      = "entry_updated"
	TypeEntryDeleted      = "entry_deleted"
	TypeEntryReparented   = "entry_reparented"
	TypeTagAdded          = "tag_added"
	TypeTagUpdated        = "tag_updated"
	TypeTagRemoved        = "tag_removed"
	TypeSectionAdded      = "section_added"
	TypeTyping            = "typing"
	TypePermissionChanged = "permission_changed"
	TypeUnsubscribed      = "unsubscribed"
)

// Unsubscribe reasons.
const (
	ReasonPermission = "permission"
	ReasonHalted     = "halted"
	ReasonShutdown   = "shutdown"
)

// Message is one notification for a subscriber. Seq is the event's commit
// sequence after the change; every message produced by one commit shares
// it, and consecutive commits differ by exactly one.
type Message struct {
	Type    string    `json:"type"`
	EventID uuid.UUID `json:"event_id"`
	Seq     uint64    `json:"seq"`
	Payload any       `json:"payload"`
}

// Sink receives a subscriber's messages. Deliver must not block; returning
// false drops the subscription.
type Sink interface {
	Deliver(Message) bool
}

// Editor identifies who made a change.
type Editor struct {
	Kind  domain.ActorKind `json:"kind"`
	ID    uuid.UUID        `json:"id"`
	Name  string           `json:"name"`
	Color string           `json:"color,omitempty"`
}

// SnapshotPayload is the full view sent on subscribe.
type SnapshotPayload struct {
	eventlog.Snapshot
	Capability domain.Capability `json:"capability"`
}

// EntryPayload carries a created, updated or deleted entry. Fields lists
// the fields an update wrote.
type EntryPayload struct {
	Entry  domain.LogEntry `json:"entry"`
	Fields []string        `json:"fields,omitempty"`
	Editor Editor          `json:"editor"`
}

// ReparentedPayload carries an update that moved an entry in the hierarchy.
type ReparentedPayload struct {
	EntryPayload
	PreviousParent *uuid.UUID `json:"previous_parent"`
}

// TagPayload carries a tag change.
type TagPayload struct {
	Tag domain.Tag `json:"tag"`
}

// SectionPayload carries a new section.
type SectionPayload struct {
	Section domain.Section `json:"section"`
}

// TypingPayload relays in-progress input. A nil Entry means a new entry
// being drafted; Field "clear" ends the indication.
type TypingPayload struct {
	Editor Editor     `json:"editor"`
	Entry  *uuid.UUID `json:"entry"`
	Field  string     `json:"field"`
	Value  string     `json:"value"`
}

// PermissionChangedPayload tells a subscriber its capability changed.
type PermissionChangedPayload struct {
	Capability domain.Capability `json:"capability"`
}

// UnsubscribedPayload tells a subscriber it no longer receives updates.
type UnsubscribedPayload struct {
	Reason string `json:"reason"`
}
