package domain

import (
	"context"
	"slices"
	"time"
)

// RoleAdmin grants access to event moderation by administrators.
const RoleAdmin = "admin"

// User is a registered user as seen by this service. Users are managed elsewhere.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID int64
	Roles  []string
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// TokenIssuer issues tokens (e.g. JWT) for a user.
type TokenIssuer interface {
	Issue(userID int64, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// UserDirectory is the read-only view of the user registry.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// CategoryDirectory is the read-only view of event categories.
type CategoryDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
