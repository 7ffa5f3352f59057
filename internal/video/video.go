// Package video holds the per-entry video lifecycle rules: the interactive
// editing order and the processing states reported by integrations.
package video

import (
	"fmt"
	"slices"
	"strings"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// CheckEditTransition validates an interactive change of the edit state.
//
// Editors may only move forward through unedited → marked_for_editing →
// done_editing, and may toggle the "requires video" flag (no_video ↔ unedited)
// only while no editing work has been recorded. Supervisors may move backwards.
func CheckEditTransition(from, to domain.VideoEditState, c domain.Capability) error {
	if !to.IsValid() {
		return domain.NewValidationError("video_edit_state", fmt.Sprintf("unknown state %q", to))
	}
	if from == to {
		return nil
	}
	if c.AtLeast(domain.CapabilitySupervisor) {
		return nil
	}
	if !c.AtLeast(domain.CapabilityEdit) {
		return fmt.Errorf("change video state: %w", domain.ErrForbidden)
	}

	if !to.RequiresVideo() {
		if from != domain.VideoEditStateUnedited {
			return domain.NewValidationError("video_edit_state",
				fmt.Sprintf("cannot clear video requirement from %s", from))
		}
		return nil
	}
	if !from.RequiresVideo() {
		if to != domain.VideoEditStateUnedited {
			return domain.NewValidationError("video_edit_state",
				fmt.Sprintf("an entry without video must first become %s", domain.VideoEditStateUnedited))
		}
		return nil
	}
	if to.Rank() < from.Rank() {
		return domain.NewValidationError("video_edit_state",
			fmt.Sprintf("cannot move back from %s to %s", from, to))
	}
	return nil
}

// ParseProcessingState parses a processing state name, ignoring case and surrounding space.
func ParseProcessingState(s string) (domain.VideoProcessingState, error) {
	state := domain.VideoProcessingState(strings.ToLower(strings.TrimSpace(s)))
	if !state.IsValid() {
		return "", domain.NewValidationError("video_processing_state", fmt.Sprintf("unknown state %q", s))
	}
	return state, nil
}

// CheckIntegrationPatch rejects patches that reach outside the integration-writable fields.
func CheckIntegrationPatch(p *domain.EntryPatch) error {
	fields := p.Fields()
	if len(fields) == 0 {
		return domain.NewValidationError("patch", "no fields to update")
	}
	for _, f := range fields {
		if !slices.Contains(domain.IntegrationFields, f) {
			return fmt.Errorf("integration may not write %s: %w", f, domain.ErrForbidden)
		}
	}
	if p.VideoProcessingState.Value != nil && !p.VideoProcessingState.Value.IsValid() {
		return domain.NewValidationError("video_processing_state", "unknown state")
	}
	return nil
}

// CheckInteractivePatch rejects interactive patches touching integration-owned fields.
func CheckInteractivePatch(p *domain.EntryPatch) error {
	for _, f := range p.Fields() {
		if slices.Contains(domain.IntegrationFields, f) {
			return domain.NewValidationError(f, "managed by the video pipeline")
		}
	}
	return nil
}
