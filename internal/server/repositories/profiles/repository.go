// Package profiles declares the repository contract for the 1:1 profile
// extension record of a user.
package profiles

import (
	"context"

	"github.com/mpetrenko/accountd/internal/server/models"
)

// Repository defines operations over the profiles table. At most one profile
// exists per user; a missing profile is reported as not-found and the caller
// lazily creates it.
type Repository interface {
	// Create inserts a profile row for its UserID. The caller supplies the ID.
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	// GetByUserID returns the profile owned by userID, or a not-found error.
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)

	// Update persists the mutable attribute fields of the given profile and
	// bumps updated_at. Merging partial input into the row is the caller's job.
	Update(ctx context.Context, profile *models.Profile) error
}
