package permission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// GrantGroup gives group (created on first use) capability c on an event.
func (s *Service) GrantGroup(ctx context.Context, group string, eventID uuid.UUID, c domain.Capability) error {
	group = strings.TrimSpace(group)
	if err := validateGrant(group, c); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		g, err := s.perms.EnsureGroup(txCtx, group)
		if err != nil {
			return err
		}
		if err := s.perms.UpsertGrant(txCtx, domain.GroupGrant{GroupID: g.ID, EventID: eventID, Capability: c}); err != nil {
			return err
		}
		return s.notify.PermissionsChanged(txCtx, eventID)
	})
	if err != nil {
		return fmt.Errorf("permission.GrantGroup: %w", err)
	}

	s.log.InfoContext(ctx, "group granted",
		slog.String("group", group),
		slog.String("event_id", eventID.String()),
		slog.String("capability", c.String()),
	)
	return nil
}

// RevokeGroup removes a group's grant on an event.
func (s *Service) RevokeGroup(ctx context.Context, group string, eventID uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		g, err := s.perms.GroupByName(txCtx, group)
		if err != nil {
			return err
		}
		if err := s.perms.DeleteGrant(txCtx, g.ID, eventID); err != nil {
			return err
		}
		return s.notify.PermissionsChanged(txCtx, eventID)
	})
	if err != nil {
		return fmt.Errorf("permission.RevokeGroup: %w", err)
	}

	s.log.InfoContext(ctx, "group grant revoked",
		slog.String("group", group),
		slog.String("event_id", eventID.String()),
	)
	return nil
}

// AddMember adds the user with the given identity subject to a group.
func (s *Service) AddMember(ctx context.Context, group, subject string) error {
	return s.changeMembership(ctx, "AddMember", group, subject, s.perms.AddMember)
}

// RemoveMember removes the user with the given identity subject from a group.
func (s *Service) RemoveMember(ctx context.Context, group, subject string) error {
	return s.changeMembership(ctx, "RemoveMember", group, subject, s.perms.RemoveMember)
}

func (s *Service) changeMembership(
	ctx context.Context,
	op, group, subject string,
	apply func(ctx context.Context, groupID, userID uuid.UUID) error,
) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		g, err := s.perms.GroupByName(txCtx, group)
		if err != nil {
			return err
		}
		u, err := s.users.GetBySubject(txCtx, subject)
		if err != nil {
			return err
		}
		if err := apply(txCtx, g.ID, u.ID); err != nil {
			return err
		}
		events, err := s.perms.EventsForGroup(txCtx, g.ID)
		if err != nil {
			return err
		}
		for _, eventID := range events {
			if err := s.notify.PermissionsChanged(txCtx, eventID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("permission.%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "group membership changed",
		slog.String("op", op),
		slog.String("group", group),
		slog.String("subject", subject),
	)
	return nil
}

// SetDefaultRole changes the capability users without a grant hold on an event.
func (s *Service) SetDefaultRole(ctx context.Context, eventID uuid.UUID, c domain.Capability) error {
	if !c.IsValid() {
		return domain.NewValidationError("capability", "unknown capability")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.SetDefaultRole(txCtx, eventID, c); err != nil {
			return err
		}
		return s.notify.PermissionsChanged(txCtx, eventID)
	})
	if err != nil {
		return fmt.Errorf("permission.SetDefaultRole: %w", err)
	}

	s.log.InfoContext(ctx, "default role changed",
		slog.String("event_id", eventID.String()),
		slog.String("capability", c.String()),
	)
	return nil
}

func validateGrant(group string, c domain.Capability) error {
	var errs []domain.FieldError
	if group == "" {
		errs = append(errs, domain.FieldError{Field: "group", Message: "required"})
	}
	if !c.IsValid() || c == domain.CapabilityNone {
		errs = append(errs, domain.FieldError{Field: "capability", Message: "must be view, edit or supervisor"})
	}
	return domain.NewValidationErrors(errs)
}
