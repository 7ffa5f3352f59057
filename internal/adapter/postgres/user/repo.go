// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var userColumns = []string{"id", "subject", "name", "color", "is_admin", "created_at"}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetBySubject returns a user by identity subject.
func (r *Repo) GetBySubject(ctx context.Context, subject string) (domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"subject": subject}, uuid.Nil)
}

func (r *Repo) getOne(ctx context.Context, where squirrel.Eq, id uuid.UUID) (domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build get user: %w", err)
	}
	var u domain.User
	err = q.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.Subject, &u.Name, &u.Color, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return domain.User{}, postgres.MapError(err, "user", id)
	}
	return u, nil
}

// IsAdmin reports whether the user holds the global admin flag.
func (r *Repo) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert inserts u or, when its subject is already known, refreshes the
// display name. The persisted row is returned.
func (r *Repo) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Subject, u.Name, u.Color, u.IsAdmin, u.CreatedAt).
		Suffix("ON CONFLICT (subject) DO UPDATE SET name = EXCLUDED.name RETURNING id, subject, name, color, is_admin, created_at").
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build upsert user: %w", err)
	}

	var out domain.User
	err = q.QueryRow(ctx, sql, args...).Scan(&out.ID, &out.Subject, &out.Name, &out.Color, &out.IsAdmin, &out.CreatedAt)
	if err != nil {
		return domain.User{}, postgres.MapError(err, "user", u.ID)
	}
	return out, nil
}

// SetAdmin grants or removes the global admin flag.
func (r *Repo) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	n, err := postgres.Exec(ctx, q, postgres.Builder().
		Update("users").
		Set("is_admin", admin).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
