package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a human collaborator, keyed by the identity provider's subject.
type User struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is what the external identity provider vouches for.
type Identity struct {
	Subject     string
	DisplayName string
}

// PermissionGroup is a named set of users sharing event grants.
type PermissionGroup struct {
	ID   uuid.UUID
	Name string
}

// GroupGrant grants a capability on one event to every member of a group.
type GroupGrant struct {
	GroupID    uuid.UUID
	EventID    uuid.UUID
	Capability Capability
}

// Application is a non-human integration identity.
// A nil KeyHash means the key is revoked and every request is denied.
type Application struct {
	ID         uuid.UUID
	Name       string
	KeyHash    *string
	ReadLog    bool
	WriteLinks bool
	CreatedBy  *uuid.UUID
	CreatedAt  time.Time
}

// Revoked reports whether the application's key has been cleared.
func (a *Application) Revoked() bool { return a.KeyHash == nil }
