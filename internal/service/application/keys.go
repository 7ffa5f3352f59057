package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/auth"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// CreateInput describes a new application.
type CreateInput struct {
	Name       string
	ReadLog    bool
	WriteLinks bool
	CreatedBy  *uuid.UUID
}

// Create registers an application and returns its raw key. The raw key is
// not stored and cannot be recovered later.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Application, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Application{}, "", domain.NewValidationError("name", "required")
	}

	id := uuid.New()
	raw, hash, err := auth.GenerateAppKey(id)
	if err != nil {
		return domain.Application{}, "", fmt.Errorf("application.Create: %w", err)
	}

	app := domain.Application{
		ID:         id,
		Name:       name,
		KeyHash:    &hash,
		ReadLog:    in.ReadLog,
		WriteLinks: in.WriteLinks,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return domain.Application{}, "", fmt.Errorf("application.Create: %w", err)
	}

	s.log.InfoContext(ctx, "application created",
		slog.String("application_id", id.String()),
		slog.String("name", name),
	)
	return app, raw, nil
}

// RotateKey replaces the application's key and returns the new raw key.
// The previous key stops working immediately. Rotating a revoked
// application re-enables it.
func (s *Service) RotateKey(ctx context.Context, name string) (string, error) {
	var raw string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.GetByName(txCtx, name)
		if err != nil {
			return err
		}
		var hash string
		raw, hash, err = auth.GenerateAppKey(app.ID)
		if err != nil {
			return err
		}
		return s.apps.SetKeyHash(txCtx, app.ID, &hash)
	})
	if err != nil {
		return "", fmt.Errorf("application.RotateKey: %w", err)
	}

	s.log.InfoContext(ctx, "application key rotated", slog.String("name", name))
	return raw, nil
}

// Revoke clears the application's key. Every later request is denied.
func (s *Service) Revoke(ctx context.Context, name string) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.GetByName(txCtx, name)
		if err != nil {
			return err
		}
		return s.apps.SetKeyHash(txCtx, app.ID, nil)
	})
	if err != nil {
		return fmt.Errorf("application.Revoke: %w", err)
	}

	s.log.InfoContext(ctx, "application revoked", slog.String("name", name))
	return nil
}

// SetCapabilities replaces the application's read_log and write_links flags.
func (s *Service) SetCapabilities(ctx context.Context, name string, readLog, writeLinks bool) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.GetByName(txCtx, name)
		if err != nil {
			return err
		}
		return s.apps.SetCapabilities(txCtx, app.ID, readLog, writeLinks)
	})
	if err != nil {
		return fmt.Errorf("application.SetCapabilities: %w", err)
	}

	s.log.InfoContext(ctx, "application capabilities changed",
		slog.String("name", name),
		slog.Bool("read_log", readLog),
		slog.Bool("write_links", writeLinks),
	)
	return nil
}

// List returns all applications ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("application.List: %w", err)
	}
	return apps, nil
}

// Authenticate resolves a raw key to its application. The application is
// read on every call and the key must match its current hash, so rotation
// and revocation take effect at once.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (domain.Application, error) {
	id, secret, err := auth.SplitAppKey(rawKey)
	if err != nil {
		return domain.Application{}, err
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Application{}, fmt.Errorf("unknown application: %w", domain.ErrUnauthorized)
		}
		return domain.Application{}, fmt.Errorf("application.Authenticate: %w", err)
	}

	if err := s.keys.Compare(app.ID, app.KeyHash, secret); err != nil {
		return domain.Application{}, err
	}
	return app, nil
}
