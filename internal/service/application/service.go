// Package application manages integration applications and their keys.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/auth"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

type appRepo interface {
	Create(ctx context.Context, a domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Application, error)
	GetByName(ctx context.Context, name string) (domain.Application, error)
	List(ctx context.Context) ([]domain.Application, error)
	SetKeyHash(ctx context.Context, id uuid.UUID, hash *string) error
	SetCapabilities(ctx context.Context, id uuid.UUID, readLog, writeLinks bool) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Verified keys are trusted for keyCacheTTL as long as the stored hash is
// unchanged.
const (
	keyCacheSize = 1024
	keyCacheTTL  = 5 * time.Minute
)

// Service implements application management and key authentication.
type Service struct {
	apps appRepo
	tx   txManager
	keys *auth.KeyCache
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a new application service.
func NewService(log *slog.Logger, apps appRepo, tx txManager) *Service {
	return &Service{
		apps: apps,
		tx:   tx,
		keys: auth.NewKeyCache(keyCacheSize, keyCacheTTL),
		log:  log.With("service", "application"),
		now:  time.Now,
	}
}
