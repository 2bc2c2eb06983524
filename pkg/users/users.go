// Package users stores the principals behind JWT logins and supplies the
// display names shown next to leads and history entries.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/policy"
)

var (
	// ErrNotFound means no user matches the id or email.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// SystemName is displayed when a referenced user no longer exists, e.g. a
// lead whose creator account was deleted.
const SystemName = "System"

// User is an account that can authenticate against the API.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           policy.Role
	OrganizationID string
	CreatedAt      time.Time
}

// Principal converts the user into its policy representation.
func (u *User) Principal() policy.Principal {
	return policy.Principal{ID: u.ID, Role: u.Role, OrganizationID: u.OrganizationID}
}

// Store is the persistence contract for users.
type Store interface {
	// Insert persists a new user, assigning ID and CreatedAt. Returns
	// ErrEmailTaken when the email is already in use.
	Insert(ctx context.Context, u *User) error

	// GetByEmail returns the user with the given email or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns the user or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// NamesByID resolves display names for the given user ids. Ids without a
	// matching user are absent from the map; callers fall back to SystemName.
	NamesByID(ctx context.Context, ids []string) (map[string]string, error)
}
