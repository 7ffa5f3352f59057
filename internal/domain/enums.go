package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Capability is a user's resolved permission level on an event.
// Values are totally ordered: none < view < edit < supervisor.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityView
	CapabilityEdit
	CapabilitySupervisor
)

func (c Capability) String() string {
	switch c {
	case CapabilityView:
		return "view"
	case CapabilityEdit:
		return "edit"
	case CapabilitySupervisor:
		return "supervisor"
	default:
		return "none"
	}
}

func (c Capability) IsValid() bool {
	return c >= CapabilityNone && c <= CapabilitySupervisor
}

// AtLeast reports whether c grants at least the required level.
func (c Capability) AtLeast(required Capability) bool { return c >= required }

// ParseCapability parses a capability name (case-insensitive).
func ParseCapability(s string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CapabilityNone, nil
	case "view":
		return CapabilityView, nil
	case "edit":
		return CapabilityEdit, nil
	case "supervisor":
		return CapabilitySupervisor, nil
	}
	return CapabilityNone, fmt.Errorf("unknown capability %q", s)
}

func (c Capability) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *Capability) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCapability(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// VideoEditState is the interactive video-editing lifecycle of an entry.
// VideoEditStateNoVideo marks entries that do not require a video.
type VideoEditState string

const (
	VideoEditStateNoVideo          VideoEditState = "no_video"
	VideoEditStateUnedited         VideoEditState = "unedited"
	VideoEditStateMarkedForEditing VideoEditState = "marked_for_editing"
	VideoEditStateDoneEditing      VideoEditState = "done_editing"
)

func (s VideoEditState) String() string { return string(s) }

func (s VideoEditState) IsValid() bool {
	switch s {
	case VideoEditStateNoVideo, VideoEditStateUnedited, VideoEditStateMarkedForEditing, VideoEditStateDoneEditing:
		return true
	}
	return false
}

// RequiresVideo reports whether the state is tracked by the edit lifecycle.
func (s VideoEditState) RequiresVideo() bool {
	return s != VideoEditStateNoVideo && s != ""
}

// Rank is the position of s in the forward editing order; no_video ranks below unedited.
func (s VideoEditState) Rank() int {
	switch s {
	case VideoEditStateUnedited:
		return 1
	case VideoEditStateMarkedForEditing:
		return 2
	case VideoEditStateDoneEditing:
		return 3
	default:
		return 0
	}
}

// VideoProcessingState is the publishing pipeline state reported by integrations.
type VideoProcessingState string

const (
	VideoProcessingUnedited    VideoProcessingState = "unedited"
	VideoProcessingEdited      VideoProcessingState = "edited"
	VideoProcessingClaimed     VideoProcessingState = "claimed"
	VideoProcessingFinalizing  VideoProcessingState = "finalizing"
	VideoProcessingTranscoding VideoProcessingState = "transcoding"
	VideoProcessingDone        VideoProcessingState = "done"
	VideoProcessingModified    VideoProcessingState = "modified"
	VideoProcessingUnlisted    VideoProcessingState = "unlisted"
)

func (s VideoProcessingState) String() string { return string(s) }

func (s VideoProcessingState) IsValid() bool {
	switch s {
	case VideoProcessingUnedited, VideoProcessingEdited, VideoProcessingClaimed, VideoProcessingFinalizing,
		VideoProcessingTranscoding, VideoProcessingDone, VideoProcessingModified, VideoProcessingUnlisted:
		return true
	}
	return false
}

// ActorKind distinguishes human editors from integrations.
type ActorKind string

const (
	ActorUser        ActorKind = "user"
	ActorApplication ActorKind = "application"
)
