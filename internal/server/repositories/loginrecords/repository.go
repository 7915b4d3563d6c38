// Package loginrecords declares the repository contract for the append-only
// login audit log.
package loginrecords

import (
	"context"
	"time"

	"github.com/mpetrenko/accountd/internal/server/models"
)

// Repository defines operations over the login_records table. Records are
// never updated or deleted by the application.
type Repository interface {
	// Create appends one audit record. UserID may be NULL when the login
	// identifier did not resolve to an account.
	Create(ctx context.Context, record *models.LoginRecord) error

	// ListByUser returns the user's records with login_time >= since,
	// newest first.
	ListByUser(ctx context.Context, userID string, since time.Time) ([]*models.LoginRecord, error)

	// Stats aggregates the user's audit log; recentSince bounds the
	// "recent" bucket.
	Stats(ctx context.Context, userID string, recentSince time.Time) (*models.LoginStats, error)
}
