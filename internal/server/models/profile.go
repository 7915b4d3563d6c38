package models

import (
	"database/sql"
	"time"
)

// Gender codes accepted on profiles.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Profile is the 1:1 extension record of a User. All attribute fields are
// optional. AvatarKey is an object-storage key, resolved to a presigned URL
// when the profile is rendered.
type Profile struct {
	ID         string
	UserID     string
	AvatarKey  sql.NullString
	Phone      sql.NullString
	BirthDate  sql.NullTime
	Bio        string
	Location   string
	Website    string
	Gender     sql.NullString
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Age computes full years since BirthDate, or nil when no birth date is set.
func (p *Profile) Age(now time.Time) *int {
	if !p.BirthDate.Valid {
		return nil
	}
	b := p.BirthDate.Time
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return &age
}
