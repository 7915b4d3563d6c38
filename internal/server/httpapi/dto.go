package httpapi

import (
	"time"

	"github.com/mpetrenko/accountd/internal/server/models"
)

type tokensJSON struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type userJSON struct {
	ID         string       `json:"id"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	IsActive   bool         `json:"is_active"`
	DateJoined time.Time    `json:"date_joined"`
	LastLogin  *time.Time   `json:"last_login"`
	Profile    *profileJSON `json:"profile,omitempty"`
}

type profileJSON struct {
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Avatar     *string    `json:"avatar"`
	Phone      *string    `json:"phone"`
	BirthDate  *string    `json:"birth_date"`
	Bio        string     `json:"bio"`
	Location   string     `json:"location"`
	Website    string     `json:"website"`
	Gender     *string    `json:"gender"`
	IsVerified bool       `json:"is_verified"`
	Age        *int       `json:"age"`
	FullName   string     `json:"full_name"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

type loginRecordJSON struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	LoginTime     time.Time `json:"login_time"`
	LoginMethod   string    `json:"login_method"`
	IsSuccessful  bool      `json:"is_successful"`
	FailureReason string    `json:"failure_reason"`
}

type dashboardJSON struct {
	UserInfo   dashboardUserJSON  `json:"user_info"`
	LoginStats dashboardStatsJSON `json:"login_stats"`
	Profile    *profileJSON       `json:"profile"`
}

type dashboardUserJSON struct {
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
	IsActive   bool       `json:"is_active"`
}

type dashboardStatsJSON struct {
	TotalLogins      int64 `json:"total_logins"`
	RecentLogins     int64 `json:"recent_logins"`
	SuccessfulLogins int64 `json:"successful_logins"`
	FailedLogins     int64 `json:"failed_logins"`
}

func newUserJSON(u *models.User) *userJSON {
	out := &userJSON{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		out.LastLogin = &t
	}
	return out
}

func newProfileJSON(u *models.User, p *models.Profile) *profileJSON {
	out := &profileJSON{
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bio:        p.Bio,
		Location:   p.Location,
		Website:    p.Website,
		IsVerified: p.IsVerified,
		Age:        p.Age(time.Now()),
		FullName:   u.FullName(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		DateJoined: u.DateJoined,
	}
	if p.AvatarKey.Valid {
		v := p.AvatarKey.String
		out.Avatar = &v
	}
	if p.Phone.Valid {
		v := p.Phone.String
		out.Phone = &v
	}
	if p.BirthDate.Valid {
		v := p.BirthDate.Time.Format("2006-01-02")
		out.BirthDate = &v
	}
	if p.Gender.Valid {
		v := p.Gender.String
		out.Gender = &v
	}
	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		out.LastLogin = &t
	}
	return out
}

func newLoginRecordJSON(username string, r *models.LoginRecord) *loginRecordJSON {
	return &loginRecordJSON{
		ID:            r.ID,
		Username:      username,
		IPAddress:     r.IPAddress,
		UserAgent:     r.UserAgent,
		LoginTime:     r.LoginTime,
		LoginMethod:   r.LoginMethod,
		IsSuccessful:  r.IsSuccessful,
		FailureReason: r.FailureReason,
	}
}
