package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

type subjectRepo interface {
	Subject(ctx context.Context, userID, eventID uuid.UUID) (isAdmin bool, granted, defaultRole domain.Capability, err error)
	Grants(ctx context.Context, userID uuid.UUID) (isAdmin bool, grants map[uuid.UUID]domain.Capability, err error)
}

type eventLister interface {
	List(ctx context.Context) ([]domain.Event, error)
}

// Resolver computes a user's capability on an event.
type Resolver struct {
	repo   subjectRepo
	events eventLister
}

// NewResolver creates a Resolver.
func NewResolver(repo subjectRepo, events eventLister) *Resolver {
	return &Resolver{repo: repo, events: events}
}

// Resolve returns the highest of the user's group grants on the event. The
// event's default role applies only when no group grants anything, so a
// grant may also restrict a user below the default. Admins are supervisors
// everywhere.
func (r *Resolver) Resolve(ctx context.Context, userID, eventID uuid.UUID) (domain.Capability, error) {
	admin, granted, def, err := r.repo.Subject(ctx, userID, eventID)
	if err != nil {
		return domain.CapabilityNone, fmt.Errorf("permission.Resolve: %w", err)
	}
	return effective(admin, granted, def), nil
}

func effective(admin bool, granted, def domain.Capability) domain.Capability {
	if admin {
		return domain.CapabilitySupervisor
	}
	if granted > domain.CapabilityNone {
		return granted
	}
	return def
}

// VisibleEvents lists the events the user may at least view, in the
// order of the event listing, with the capability the user holds on each.
func (r *Resolver) VisibleEvents(ctx context.Context, userID uuid.UUID) ([]domain.EventAccess, error) {
	admin, grants, err := r.repo.Grants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("permission.VisibleEvents: %w", err)
	}
	events, err := r.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("permission.VisibleEvents: %w", err)
	}

	out := make([]domain.EventAccess, 0, len(events))
	for _, ev := range events {
		c := effective(admin, grants[ev.ID], ev.DefaultRole)
		if c.AtLeast(domain.CapabilityView) {
			out = append(out, domain.EventAccess{Event: ev, Capability: c})
		}
	}
	return out, nil
}
