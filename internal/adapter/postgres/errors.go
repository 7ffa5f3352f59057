package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// constraintKinds maps integrity violations to the domain error they mean.
var constraintKinds = map[string]error{
	"23505": domain.ErrConflict,   // unique_violation
	"23P01": domain.ErrConflict,   // exclusion_violation
	"23503": domain.ErrNotFound,   // foreign_key_violation
	"23514": domain.ErrValidation, // check_violation
	"23502": domain.ErrValidation, // not_null_violation
}

// transientCodes are SQLSTATEs worth retrying outside the 08 class.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"53300": true, // too_many_connections
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
}

// MapError translates a driver error about entity id into a domain error,
// keeping the original in the chain. Context errors pass through unchanged
// apart from the prefix.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	prefix := entity + " " + id.String()

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", prefix, err)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if kind, ok := constraintKinds[pgErr.Code]; ok {
			if pgErr.ConstraintName != "" {
				return fmt.Errorf("%s: %w (%s)", prefix, kind, pgErr.ConstraintName)
			}
			return fmt.Errorf("%s: %w", prefix, kind)
		}
	}

	if IsTransient(err) {
		return fmt.Errorf("%s: %w: %w", prefix, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// IsTransient reports whether err is a persistence failure worth retrying:
// a lost or refused connection, a serialization failure, a deadlock or a
// server restart.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrTransient):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCodes[pgErr.Code] || strings.HasPrefix(pgErr.Code, "08")
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	return errors.As(err, &connErr) || pgconn.SafeToRetry(err) || errors.As(err, &netErr)
}

// markTransient tags retryable failures with domain.ErrTransient.
func markTransient(err error) error {
	if err == nil || errors.Is(err, domain.ErrTransient) || !IsTransient(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTransient, err)
}
