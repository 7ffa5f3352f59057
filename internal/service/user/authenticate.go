package user

import (
	"context"
	"fmt"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// Authenticate verifies an identity token and returns the matching user,
// creating it on first sight. Every verification failure wraps
// domain.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	identity, err := s.tokens.VerifyIdentityToken(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("user.Authenticate: %w", err)
	}
	return s.EnsureUser(ctx, identity)
}
