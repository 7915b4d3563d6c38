// Package users declares the server-side repository contract for persisted
// user accounts.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/mpetrenko/accountd/internal/server/models"
)

var (
	// ErrDuplicateUsername and ErrDuplicateEmail report which unique
	// constraint rejected an insert, so callers can surface a field-scoped
	// validation error. The database constraint is the authority for races
	// that slip past the advisory pre-check.
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

// Repository defines operations over the users table.
type Repository interface {
	// Create inserts a new user row. The caller supplies the ID and the
	// bcrypt password hash. Unique violations map to ErrDuplicateUsername /
	// ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username, or a
	// not-found error.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail returns the user with the given email, or a not-found error.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given ID, or a not-found error.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateLastLogin sets the last_login timestamp.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// UpdateBasicInfo updates the mutable display fields.
	UpdateBasicInfo(ctx context.Context, id, firstName, lastName string) error

	// SetActive flips the active flag.
	SetActive(ctx context.Context, id string, active bool) error
}
