package models

import "time"

// RefreshToken is a server-stored opaque refresh credential. Revoked tokens
// stay on record until natural expiry so revocation survives restarts and is
// visible to every verifier.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	Revoked   bool
	CreatedAt time.Time
}
