package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a non-admin user with a unique subject.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()

	suffix := uniqueSuffix()
	user := domain.User{
		ID:        uuid.New(),
		Subject:   "subject-" + suffix,
		Name:      "Test User " + suffix,
		Color:     "#808080",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, subject, name, color, is_admin, created_at) VALUES ($1, $2, $3, $4, false, $5)`,
		user.ID, user.Subject, user.Name, user.Color, user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}
	return user
}

// SeedEvent creates an event with the given default role and one available
// entry type, which is returned alongside it.
func SeedEvent(t *testing.T, pool *pgxpool.Pool, defaultRole domain.Capability) (domain.Event, domain.EntryType) {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	event := domain.Event{
		ID:          uuid.New(),
		Name:        "Event " + suffix,
		StartTime:   time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC),
		DefaultRole: defaultRole,
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO events (id, name, start_time, default_role) VALUES ($1, $2, $3, $4)`,
		event.ID, event.Name, event.StartTime, int16(event.DefaultRole),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent insert event: %v", err)
	}

	et := domain.EntryType{ID: uuid.New(), Name: "Type " + suffix, Color: "#112233"}
	_, err = pool.Exec(ctx,
		`INSERT INTO entry_types (id, name, color, description, require_end_time) VALUES ($1, $2, $3, '', false)`,
		et.ID, et.Name, et.Color,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent insert entry type: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO available_entry_types_for_event (entry_type, event) VALUES ($1, $2)`,
		et.ID, event.ID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent link entry type: %v", err)
	}

	return event, et
}

// SeedGroupGrant creates a group granting capability on eventID and adds userID to it.
func SeedGroupGrant(t *testing.T, pool *pgxpool.Pool, userID, eventID uuid.UUID, c domain.Capability) domain.PermissionGroup {
	t.Helper()
	ctx := context.Background()

	group := domain.PermissionGroup{ID: uuid.New(), Name: "group-" + uniqueSuffix()}
	if _, err := pool.Exec(ctx, `INSERT INTO permission_groups (id, name) VALUES ($1, $2)`, group.ID, group.Name); err != nil {
		t.Fatalf("testhelper: SeedGroupGrant insert group: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO permission_events (permission_group, event, level) VALUES ($1, $2, $3)`,
		group.ID, eventID, int16(c),
	); err != nil {
		t.Fatalf("testhelper: SeedGroupGrant insert grant: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO user_permissions (user_id, permission_group) VALUES ($1, $2)`,
		userID, group.ID,
	); err != nil {
		t.Fatalf("testhelper: SeedGroupGrant insert membership: %v", err)
	}
	return group
}

// SeedApplication creates an application with the given key hash (nil = revoked).
func SeedApplication(t *testing.T, pool *pgxpool.Pool, keyHash *string, readLog, writeLinks bool) domain.Application {
	t.Helper()

	app := domain.Application{
		ID:         uuid.New(),
		Name:       "app-" + uniqueSuffix(),
		KeyHash:    keyHash,
		ReadLog:    readLog,
		WriteLinks: writeLinks,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO applications (id, name, auth_key_hash, read_log, write_links) VALUES ($1, $2, $3, $4, $5)`,
		app.ID, app.Name, app.KeyHash, app.ReadLog, app.WriteLinks,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication: %v", err)
	}
	return app
}
