package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/mpetrenko/accountd/internal/common"
	"github.com/mpetrenko/accountd/internal/server/services"
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// handleRegister implements POST /register.
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	user, pair, err := s.accounts.Register(c.Request().Context(), services.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return c.JSON(http.StatusBadRequest, verrs)
		}
		return internalError(c)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"user":    newUserJSON(user),
		"tokens":  tokensJSON{Access: pair.AccessToken, Refresh: pair.RefreshToken},
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin implements POST /login. The username field also accepts an
// email address.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	user, profile, pair, err := s.accounts.Login(c.Request().Context(), services.LoginInput{
		Identifier: req.Username,
		Password:   req.Password,
		IPAddress:  clientIP(c),
		UserAgent:  c.Request().UserAgent(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "login failed",
				"errors":  echo.Map{"non_field_errors": "unable to log in with the provided credentials"},
			})
		}
		return internalError(c)
	}

	out := newUserJSON(user)
	out.Profile = newProfileJSON(user, profile)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"user":    out,
		"tokens":  tokensJSON{Access: pair.AccessToken, Refresh: pair.RefreshToken},
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// handleLogout implements POST /logout. The refresh token from the body is
// revoked; revoking an unknown or already revoked token still logs out fine.
func (s *Server) handleLogout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Refresh != "" {
		if err := s.tokens.Revoke(c.Request().Context(), req.Refresh); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "logout failed",
				"error":   "could not revoke refresh token",
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// handleRefresh implements POST /refresh, minting a new access token. The
// refresh token itself is not rotated.
func (s *Server) handleRefresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Refresh == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh token is required"})
	}

	access, err := s.tokens.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		return internalError(c)
	}

	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// handleMe implements GET /me.
func (s *Server) handleMe(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := s.accounts.GetUser(ctx, authUserID(c))
	if err != nil {
		return internalError(c)
	}
	profile, err := s.accounts.GetOrCreateProfile(ctx, user.ID)
	if err != nil {
		return internalError(c)
	}

	out := newUserJSON(user)
	out.Profile = newProfileJSON(user, profile)
	return c.JSON(http.StatusOK, echo.Map{"user": out})
}

// handleGetProfile implements GET /profile.
func (s *Server) handleGetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := s.accounts.GetUser(ctx, authUserID(c))
	if err != nil {
		return internalError(c)
	}
	profile, err := s.accounts.GetOrCreateProfile(ctx, user.ID)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(http.StatusOK, newProfileJSON(user, profile))
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	Website   *string `json:"website"`
	Gender    *string `json:"gender"`
}

// handleUpdateProfile implements PATCH /profile. Absent fields keep their
// current values.
func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	in := services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarKey: req.Avatar,
		Phone:     req.Phone,
		Bio:       req.Bio,
		Location:  req.Location,
		Website:   req.Website,
		Gender:    req.Gender,
	}
	if req.BirthDate != nil {
		t, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"errors": echo.Map{"birth_date": "must be a date in YYYY-MM-DD format"},
			})
		}
		in.BirthDate = &t
	}

	user, profile, err := s.accounts.UpdateProfile(c.Request().Context(), authUserID(c), in)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": verrs})
		}
		return internalError(c)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated",
		"data":    newProfileJSON(user, profile),
	})
}

type changePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// handleChangePassword implements POST /change-password.
func (s *Server) handleChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	err := s.accounts.ChangePassword(c.Request().Context(), authUserID(c),
		req.OldPassword, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "password change failed",
				"errors":  echo.Map{"old_password": "wrong password"},
			})
		}
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "password change failed",
				"errors":  verrs,
			})
		}
		return internalError(c)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// handleLoginRecords implements GET /login-records?days=N.
func (s *Server) handleLoginRecords(c echo.Context) error {
	ctx := c.Request().Context()

	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}

	user, err := s.accounts.GetUser(ctx, authUserID(c))
	if err != nil {
		return internalError(c)
	}
	records, err := s.accounts.LoginRecords(ctx, user.ID, days)
	if err != nil {
		return internalError(c)
	}

	out := make([]*loginRecordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, newLoginRecordJSON(user.Username, r))
	}
	return c.JSON(http.StatusOK, out)
}

// handleDashboard implements GET /dashboard.
func (s *Server) handleDashboard(c echo.Context) error {
	d, err := s.accounts.Dashboard(c.Request().Context(), authUserID(c))
	if err != nil {
		return internalError(c)
	}

	var lastLogin *time.Time
	if d.User.LastLogin.Valid {
		t := d.User.LastLogin.Time
		lastLogin = &t
	}

	return c.JSON(http.StatusOK, dashboardJSON{
		UserInfo: dashboardUserJSON{
			Username:   d.User.Username,
			Email:      d.User.Email,
			DateJoined: d.User.DateJoined,
			LastLogin:  lastLogin,
			IsActive:   d.User.IsActive,
		},
		LoginStats: dashboardStatsJSON{
			TotalLogins:      d.Stats.TotalLogins,
			RecentLogins:     d.Stats.RecentLogins,
			SuccessfulLogins: d.Stats.SuccessfulLogins,
			FailedLogins:     d.Stats.FailedLogins,
		},
		Profile: newProfileJSON(d.User, d.Profile),
	})
}

type deactivateRequest struct {
	Password string `json:"password"`
}

// handleDeactivate implements POST /deactivate.
func (s *Server) handleDeactivate(c echo.Context) error {
	var req deactivateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}

	err := s.accounts.Deactivate(c.Request().Context(), authUserID(c), req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "wrong password"})
		}
		return internalError(c)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated"})
}

// handleAvatarUploadURL implements POST /profile/avatar-url. The client
// uploads the image to the returned URL and then PATCHes the key into the
// profile's avatar field.
func (s *Server) handleAvatarUploadURL(c echo.Context) error {
	key, url, err := s.avatars.PresignUpload(c.Request().Context())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"key": key, "upload_url": url})
}

// handleAvatarDownloadURL implements GET /profile/avatar-url for the current
// avatar.
func (s *Server) handleAvatarDownloadURL(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := s.accounts.GetOrCreateProfile(ctx, authUserID(c))
	if err != nil {
		return internalError(c)
	}
	if !profile.AvatarKey.Valid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no avatar set"})
	}

	url, err := s.avatars.PresignDownload(ctx, profile.AvatarKey.String)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"download_url": url})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
