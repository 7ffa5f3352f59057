package user

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// palette holds the colors assigned to new users for typing indicators.
var palette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4",
	"#42d4f4", "#f032e6", "#9a6324", "#469990", "#808000",
}

// EnsureUser returns the user for an authenticated identity, creating it on
// first sight. The stored display name follows the identity provider.
func (s *Service) EnsureUser(ctx context.Context, identity domain.Identity) (domain.User, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return domain.User{}, domain.NewValidationError("subject", "required")
	}
	name := strings.TrimSpace(identity.DisplayName)
	if name == "" {
		name = subject
	}

	u, err := s.users.Upsert(ctx, domain.User{
		ID:        uuid.New(),
		Subject:   subject,
		Name:      name,
		Color:     colorFor(subject),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("user.EnsureUser: %w", err)
	}

	s.log.DebugContext(ctx, "user ensured",
		slog.String("user_id", u.ID.String()),
		slog.String("subject", subject),
	)
	return u, nil
}

func colorFor(subject string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return palette[h.Sum32()%uint32(len(palette))]
}
