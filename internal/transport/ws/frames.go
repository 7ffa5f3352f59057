package ws

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
)

// Client frame types.
const (
	frameAuthenticate = "authenticate"
	frameSubscribe    = "subscribe"
	frameUnsubscribe  = "unsubscribe"
	frameListEvents   = "list_events"
	framePong         = "pong"
	frameCreateEntry  = "create_entry"
	frameUpdateEntry  = "update_entry"
	frameDeleteEntry  = "delete_entry"
	frameTyping       = "typing"
	frameSaveTag      = "save_tag"
	frameRemoveTag    = "remove_tag"
	frameReplaceTag   = "replace_tag"
	frameCopyTags     = "copy_tags"
	frameAddSection   = "add_section"
)

// Server frame types. Engine messages are written as they are, with their
// own type.
const (
	frameAck   = "ack"
	frameError = "error"
	framePing  = "ping"
)

type inFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type outFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

type authenticatePayload struct {
	Token string `json:"token"`
}

type subscribePayload struct {
	EventID uuid.UUID `json:"event_id"`
}

type subscribedAck struct {
	EventID    uuid.UUID         `json:"event_id"`
	Capability domain.Capability `json:"capability"`
}

// authenticatedAck carries the events the user can open, unless listing
// them failed; list_events fetches them again.
type authenticatedAck struct {
	UserID  uuid.UUID            `json:"user_id"`
	Name    string               `json:"name"`
	Color   string               `json:"color"`
	IsAdmin bool                 `json:"is_admin"`
	Events  []domain.EventAccess `json:"events,omitempty"`
}

type eventsAck struct {
	Events []domain.EventAccess `json:"events"`
}

func ackFrame(requestID string, payload any) outFrame {
	return outFrame{Type: frameAck, RequestID: requestID, Payload: payload}
}

func errorFrame(requestID string, e errpresenter.Error) outFrame {
	return outFrame{Type: frameError, RequestID: requestID, Payload: e}
}

// decodeCommand maps a command frame to its engine command.
func decodeCommand(f inFrame) (engine.Command, error) {
	switch f.Type {
	case frameCreateEntry:
		return decodeInto[engine.CreateEntries](f)
	case frameUpdateEntry:
		return decodeInto[engine.UpdateEntry](f)
	case frameDeleteEntry:
		return decodeInto[engine.DeleteEntry](f)
	case frameTyping:
		return decodeInto[engine.Typing](f)
	case frameSaveTag:
		return decodeInto[engine.SaveTag](f)
	case frameRemoveTag:
		return decodeInto[engine.RemoveTag](f)
	case frameReplaceTag:
		return decodeInto[engine.ReplaceTag](f)
	case frameCopyTags:
		return decodeInto[engine.CopyTags](f)
	case frameAddSection:
		return decodeInto[engine.AddSection](f)
	default:
		return nil, domain.NewValidationError("type", fmt.Sprintf("unsupported frame type %q", f.Type))
	}
}

func decodeInto[T engine.Command](f inFrame) (engine.Command, error) {
	var cmd T
	if len(f.Payload) == 0 {
		return nil, domain.NewValidationError("payload", "required")
	}
	if err := json.Unmarshal(f.Payload, &cmd); err != nil {
		return nil, domain.NewValidationError("payload", "invalid "+f.Type+" payload")
	}
	return cmd, nil
}
