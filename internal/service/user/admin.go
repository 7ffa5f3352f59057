package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// SetAdmin grants or removes the global admin flag of the user with the
// given identity subject. Admins resolve to supervisor on every event, so
// running servers are told to re-resolve all subscriptions.
func (s *Service) SetAdmin(ctx context.Context, subject string, admin bool) (domain.User, error) {
	var u domain.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		u, err = s.users.GetBySubject(txCtx, subject)
		if err != nil {
			return err
		}
		if err := s.users.SetAdmin(txCtx, u.ID, admin); err != nil {
			return err
		}
		u.IsAdmin = admin
		return s.notify.PermissionsChanged(txCtx, uuid.Nil)
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("user.SetAdmin: %w", err)
	}

	s.log.InfoContext(ctx, "user admin flag updated",
		slog.String("user_id", u.ID.String()),
		slog.Bool("admin", admin),
	)
	return u, nil
}
