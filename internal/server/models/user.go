// Package models holds the persisted server-side entities.
package models

import (
	"database/sql"
	"time"
)

// User is a registered account. Username and Email are globally unique;
// PasswordHash is a bcrypt hash, never the plaintext password.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	DateJoined   time.Time
	LastLogin    sql.NullTime
}

// FullName returns "First Last" or falls back to the username, matching the
// display rule used for profile responses.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
