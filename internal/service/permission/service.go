// Package permission resolves per-event capabilities and manages the
// groups, grants and default roles they derive from.
package permission

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

type permissionRepo interface {
	EnsureGroup(ctx context.Context, name string) (domain.PermissionGroup, error)
	GroupByName(ctx context.Context, name string) (domain.PermissionGroup, error)
	UpsertGrant(ctx context.Context, g domain.GroupGrant) error
	DeleteGrant(ctx context.Context, groupID, eventID uuid.UUID) error
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	EventsForGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

type userRepo interface {
	GetBySubject(ctx context.Context, subject string) (domain.User, error)
}

type eventRepo interface {
	SetDefaultRole(ctx context.Context, id uuid.UUID, role domain.Capability) error
}

type notifier interface {
	PermissionsChanged(ctx context.Context, eventID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages permission groups and event default roles. Every change
// is followed by a permissions notification delivered on commit.
type Service struct {
	perms  permissionRepo
	users  userRepo
	events eventRepo
	notify notifier
	tx     txManager
	log    *slog.Logger
}

// NewService creates a new permission service.
func NewService(
	log *slog.Logger,
	perms permissionRepo,
	users userRepo,
	events eventRepo,
	notify notifier,
	tx txManager,
) *Service {
	return &Service{
		perms:  perms,
		users:  users,
		events: events,
		notify: notify,
		tx:     tx,
		log:    log.With("service", "permission"),
	}
}
