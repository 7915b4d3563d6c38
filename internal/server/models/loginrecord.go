package models

import (
	"database/sql"
	"time"
)

// LoginMethodPassword is the only login method currently issued; the column
// keeps room for social/sms methods.
const LoginMethodPassword = "password"

// LoginRecord is an append-only audit entry for a single login attempt.
// UserID is NULL when the identifier could not be resolved to an account.
type LoginRecord struct {
	ID            string
	UserID        sql.NullString
	IPAddress     string
	UserAgent     string
	LoginMethod   string
	IsSuccessful  bool
	FailureReason string
	LoginTime     time.Time
}

// LoginStats aggregates a user's audit log for the dashboard.
type LoginStats struct {
	TotalLogins      int64
	RecentLogins     int64
	SuccessfulLogins int64
	FailedLogins     int64
}
