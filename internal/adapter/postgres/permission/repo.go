// Package permission implements permission group persistence using PostgreSQL.
package permission

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// Repo provides permission persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new permission repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Subject returns the inputs of capability resolution for one user and
// event: the admin flag, the highest group grant (0 without one) and the
// event default role.
func (r *Repo) Subject(ctx context.Context, userID, eventID uuid.UUID) (isAdmin bool, granted, defaultRole domain.Capability, err error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	const query = `
		SELECT u.is_admin,
		       COALESCE((SELECT max(pe.level)
		                 FROM user_permissions up
		                 JOIN permission_events pe ON pe.permission_group = up.permission_group
		                 WHERE up.user_id = u.id AND pe.event = e.id), 0),
		       e.default_role
		FROM users u, events e
		WHERE u.id = $1 AND e.id = $2`

	var g, d int16
	if err := q.QueryRow(ctx, query, userID, eventID).Scan(&isAdmin, &g, &d); err != nil {
		return false, 0, 0, postgres.MapError(err, "permission subject", userID)
	}
	return isAdmin, domain.Capability(g), domain.Capability(d), nil
}

// Grants returns the admin flag of a user and, per event, the highest
// capability any of the user's groups grants. Events without a grant are
// absent from the map.
func (r *Repo) Grants(ctx context.Context, userID uuid.UUID) (isAdmin bool, grants map[uuid.UUID]domain.Capability, err error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if err := q.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1`, userID).Scan(&isAdmin); err != nil {
		return false, nil, postgres.MapError(err, "permission subject", userID)
	}

	rows, err := q.Query(ctx, `
		SELECT pe.event, max(pe.level)
		FROM user_permissions up
		JOIN permission_events pe ON pe.permission_group = up.permission_group
		WHERE up.user_id = $1
		GROUP BY pe.event`, userID)
	if err != nil {
		return false, nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	grants = make(map[uuid.UUID]domain.Capability)
	for rows.Next() {
		var (
			eventID uuid.UUID
			level   int16
		)
		if err := rows.Scan(&eventID, &level); err != nil {
			return false, nil, fmt.Errorf("scan grant: %w", err)
		}
		grants[eventID] = domain.Capability(level)
	}
	if err := rows.Err(); err != nil {
		return false, nil, fmt.Errorf("list grants: %w", err)
	}
	return isAdmin, grants, nil
}

// ---------------------------------------------------------------------------
// Groups and grants
// ---------------------------------------------------------------------------

// EnsureGroup returns the group with the given name, creating it if needed.
func (r *Repo) EnsureGroup(ctx context.Context, name string) (domain.PermissionGroup, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert("permission_groups").
		Columns("id", "name").
		Values(uuid.New(), name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name").
		ToSql()
	if err != nil {
		return domain.PermissionGroup{}, fmt.Errorf("build ensure group: %w", err)
	}

	var g domain.PermissionGroup
	if err := q.QueryRow(ctx, sql, args...).Scan(&g.ID, &g.Name); err != nil {
		return domain.PermissionGroup{}, postgres.MapError(err, "permission_group", uuid.Nil)
	}
	return g, nil
}

// GroupByName returns a group by its unique name.
func (r *Repo) GroupByName(ctx context.Context, name string) (domain.PermissionGroup, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var g domain.PermissionGroup
	err := q.QueryRow(ctx, `SELECT id, name FROM permission_groups WHERE name = $1`, name).Scan(&g.ID, &g.Name)
	if err != nil {
		return domain.PermissionGroup{}, postgres.MapError(err, "permission_group", uuid.Nil)
	}
	return g, nil
}

// UpsertGrant sets the capability a group holds on an event.
func (r *Repo) UpsertGrant(ctx context.Context, g domain.GroupGrant) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	insert := postgres.Builder().
		Insert("permission_events").
		Columns("permission_group", "event", "level").
		Values(g.GroupID, g.EventID, int16(g.Capability)).
		Suffix("ON CONFLICT (permission_group, event) DO UPDATE SET level = EXCLUDED.level")

	if _, err := postgres.Exec(ctx, q, insert); err != nil {
		return postgres.MapError(err, "permission_grant", g.GroupID)
	}
	return nil
}

// DeleteGrant removes a group's grant on an event.
func (r *Repo) DeleteGrant(ctx context.Context, groupID, eventID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	del := postgres.Builder().
		Delete("permission_events").
		Where(squirrel.Eq{"permission_group": groupID, "event": eventID})

	n, err := postgres.Exec(ctx, q, del)
	if err != nil {
		return postgres.MapError(err, "permission_grant", groupID)
	}
	if n == 0 {
		return fmt.Errorf("permission_grant %s: %w", groupID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Membership
// ---------------------------------------------------------------------------

// AddMember adds a user to a group. Adding an existing member is a no-op.
func (r *Repo) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	insert := postgres.Builder().
		Insert("user_permissions").
		Columns("user_id", "permission_group").
		Values(userID, groupID).
		Suffix("ON CONFLICT DO NOTHING")

	if _, err := postgres.Exec(ctx, q, insert); err != nil {
		return postgres.MapError(err, "user", userID)
	}
	return nil
}

// RemoveMember removes a user from a group.
func (r *Repo) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	del := postgres.Builder().
		Delete("user_permissions").
		Where(squirrel.Eq{"permission_group": groupID, "user_id": userID})

	n, err := postgres.Exec(ctx, q, del)
	if err != nil {
		return postgres.MapError(err, "user", userID)
	}
	if n == 0 {
		return fmt.Errorf("membership %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// EventsForGroup returns the events a group holds grants on.
func (r *Repo) EventsForGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT event FROM permission_events WHERE permission_group = $1 ORDER BY event`, groupID)
	if err != nil {
		return nil, postgres.MapError(err, "permission_group", groupID)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("get events for group %s: %w", groupID, err)
	}
	return ids, nil
}
