// Package user resolves identity tokens to local users and manages the
// admin flag.
package user

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

type userRepo interface {
	GetBySubject(ctx context.Context, subject string) (domain.User, error)
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error
}

// notifier announces permission changes to running servers.
type notifier interface {
	PermissionsChanged(ctx context.Context, eventID uuid.UUID) error
}

// tokenVerifier checks identity tokens issued by the identity provider.
type tokenVerifier interface {
	VerifyIdentityToken(token string) (domain.Identity, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service maps identity-provider subjects to users. A user row is created
// on first sign-in and refreshed from the token claims afterwards.
type Service struct {
	log    *slog.Logger
	users  userRepo
	tokens tokenVerifier
	notify notifier
	tx     txManager
}

// NewService creates a Service.
func NewService(
	logger *slog.Logger,
	users userRepo,
	tokens tokenVerifier,
	notify notifier,
	tx txManager,
) *Service {
	return &Service{
		log:    logger.With("service", "user"),
		users:  users,
		tokens: tokens,
		notify: notify,
		tx:     tx,
	}
}
