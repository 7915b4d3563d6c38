// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/mpetrenko/accountd/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh
// tokens. Revocation state lives in the same durable store as the tokens, so
// a concurrent revoke+verify of one token resolves on a single row.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns its
	// metadata, including revocation state. Implementations should return a
	// not-found error when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks a refresh token revoked. Revoking a token that is already
	// revoked or absent is not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser revokes every live refresh token owned by userID.
	RevokeAllForUser(ctx context.Context, userID string) error
}
