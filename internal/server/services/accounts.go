package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mpetrenko/accountd/internal/common"
	"github.com/mpetrenko/accountd/internal/dbx"
	"github.com/mpetrenko/accountd/internal/logging"
	"github.com/mpetrenko/accountd/internal/server/mailer"
	"github.com/mpetrenko/accountd/internal/server/models"
	"github.com/mpetrenko/accountd/internal/server/repositories/repomanager"
	"github.com/mpetrenko/accountd/internal/server/repositories/users"
)

// loginFailureInvalidCredentials is the only reason recorded for unresolved
// identities and wrong passwords; the distinction never leaves the audit log.
const (
	loginFailureInvalidCredentials = "invalid credentials"
	loginFailureInactiveAccount    = "account is inactive"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// LoginInput carries a login attempt. Identifier is a username or an email.
type LoginInput struct {
	Identifier string
	Password   string
	IPAddress  string
	UserAgent  string
}

// UpdateProfileInput carries a partial profile update; nil pointers leave the
// current value untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	AvatarKey *string
	Phone     *string
	BirthDate *time.Time
	Bio       *string
	Location  *string
	Website   *string
	Gender    *string
}

// DashboardStats aggregates the data shown on a user's dashboard.
type DashboardStats struct {
	User    *models.User
	Stats   *models.LoginStats
	Profile *models.Profile
}

// AccountService orchestrates registration, login, profile management, and
// account lifecycle flows. Credential failures surface as the generic
// common.ErrorUnauthorized so responses cannot be used to enumerate accounts.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	mail        mailer.Mailer
	logger      logging.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, mail mailer.Mailer, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		mail:        mail,
		logger:      logger.With("module", "accounts"),
	}
}

// Register validates the input, creates the user and its profile in one
// transaction, and issues a token pair. Validation failures are returned as a
// field-keyed validation.Errors map with every failing field reported.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	errs := validateRegistration(in)

	userRepo := s.repomanager.Users(s.db)

	// Advisory uniqueness pre-check. The unique constraints remain the
	// authority; a racing writer is caught again at insert time below.
	if errs["username"] == nil {
		if _, err := userRepo.GetByUsername(ctx, in.Username); err == nil {
			errs["username"] = errors.New("username already exists")
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInternal
		}
	}
	if errs["email"] == nil {
		if _, err := userRepo.GetByEmail(ctx, in.Email); err == nil {
			errs["email"] = errors.New("email already registered")
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInternal
		}
	}

	if err := errs.Filter(); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		profile := &models.Profile{ID: uuid.NewString(), UserID: user.ID}
		if _, err := s.repomanager.Profiles(tx).Create(ctx, profile); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		return nil
	})
	if err != nil {
		// the constraint caught a race the pre-check missed
		if errors.Is(err, users.ErrDuplicateUsername) {
			return nil, nil, validation.Errors{"username": errors.New("username already exists")}
		}
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, nil, validation.Errors{"email": errors.New("email already registered")}
		}
		return nil, nil, common.ErrorInternal
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "username", user.Username)
	s.notify(ctx, user.Email, "Welcome",
		fmt.Sprintf("Hello %s,\n\nYour account has been created.", user.Username))

	return user, pair, nil
}

// resolveIdentifier maps a login identifier to an account, trying username
// first and falling back to email.
func (s *AccountService) resolveIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	return repo.GetByEmail(ctx, identifier)
}

// Login verifies credentials and, on success, audits the attempt, updates the
// last-login timestamp, ensures a profile exists, and issues a token pair.
// Every attempt produces exactly one audit record; failures with an
// unresolved identifier are recorded without a user reference.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, *models.Profile, *TokenPair, error) {
	user, err := s.resolveIdentifier(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.recordLogin(ctx, in, nil, false, loginFailureInvalidCredentials)
			return nil, nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.recordLogin(ctx, in, user, false, loginFailureInvalidCredentials)
		return nil, nil, nil, common.ErrorUnauthorized
	}

	if !user.IsActive {
		s.recordLogin(ctx, in, user, false, loginFailureInactiveAccount)
		return nil, nil, nil, common.ErrorUnauthorized
	}

	s.recordLogin(ctx, in, user, true, "")

	now := time.Now()
	if err := s.repomanager.Users(s.db).UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, nil, common.ErrorInternal
	}
	user.LastLogin = sql.NullTime{Time: now, Valid: true}

	profile, err := s.GetOrCreateProfile(ctx, user.ID)
	if err != nil {
		return nil, nil, nil, common.ErrorInternal
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user logged in", "username", user.Username)
	return user, profile, pair, nil
}

// recordLogin appends one audit record. Audit failures are logged and never
// fail the login flow itself.
func (s *AccountService) recordLogin(ctx context.Context, in LoginInput, user *models.User, successful bool, reason string) {
	record := &models.LoginRecord{
		ID:            uuid.NewString(),
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
		LoginMethod:   models.LoginMethodPassword,
		IsSuccessful:  successful,
		FailureReason: reason,
	}
	if user != nil {
		record.UserID = sql.NullString{String: user.ID, Valid: true}
	}

	if err := s.repomanager.LoginRecords(s.db).Create(ctx, record); err != nil {
		s.logger.Error(ctx, "failed to record login attempt", "error", err)
	}
}

// GetUser returns the account with the given ID.
func (s *AccountService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// GetOrCreateProfile returns the user's profile, lazily creating an empty one
// when missing.
func (s *AccountService) GetOrCreateProfile(ctx context.Context, userID string) (*models.Profile, error) {
	repo := s.repomanager.Profiles(s.db)

	profile, err := repo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	return repo.Create(ctx, &models.Profile{ID: uuid.NewString(), UserID: userID})
}

// UpdateProfile merges the provided fields into the user's profile and basic
// info. Both writes happen in one transaction so partial updates are never
// observable.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, *models.Profile, error) {
	if err := validateProfileUpdate(in).Filter(); err != nil {
		return nil, nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.AvatarKey != nil {
		profile.AvatarKey = sql.NullString{String: *in.AvatarKey, Valid: *in.AvatarKey != ""}
	}
	if in.Phone != nil {
		profile.Phone = sql.NullString{String: *in.Phone, Valid: *in.Phone != ""}
	}
	if in.BirthDate != nil {
		profile.BirthDate = sql.NullTime{Time: *in.BirthDate, Valid: true}
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Location != nil {
		profile.Location = *in.Location
	}
	if in.Website != nil {
		profile.Website = *in.Website
	}
	if in.Gender != nil {
		profile.Gender = sql.NullString{String: *in.Gender, Valid: *in.Gender != ""}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateBasicInfo(ctx, user.ID, user.FirstName, user.LastName); err != nil {
			return err
		}
		return s.repomanager.Profiles(tx).Update(ctx, profile)
	})
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "profile updated", "username", user.Username)
	return user, profile, nil
}

// ChangePassword verifies the old password, validates and persists the new
// one, and revokes all outstanding refresh tokens so stolen sessions do not
// outlive the password change. Access tokens already issued stay valid until
// their own expiry.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, newPasswordConfirm string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return common.ErrorUnauthorized
	}

	if err := validateNewPassword(newPassword, newPasswordConfirm).Filter(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, string(hash)); err != nil {
		return common.ErrorInternal
	}

	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed", "username", user.Username)
	s.notify(ctx, user.Email, "Password changed",
		fmt.Sprintf("Hello %s,\n\nYour password was just changed. If this was not you, contact support immediately.", user.Username))

	return nil
}

// Deactivate verifies the password and marks the account inactive. Inactive
// accounts can no longer log in.
func (s *AccountService) Deactivate(ctx context.Context, userID, password string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return common.ErrorUnauthorized
	}

	if err := s.repomanager.Users(s.db).SetActive(ctx, userID, false); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "account deactivated", "username", user.Username)
	return nil
}

// LoginRecords returns the user's audit records for the last days days,
// newest first. Non-positive values fall back to 30.
func (s *AccountService) LoginRecords(ctx context.Context, userID string, days int) ([]*models.LoginRecord, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repomanager.LoginRecords(s.db).ListByUser(ctx, userID, since)
}

// Dashboard aggregates the user's account info, 30-day login statistics, and
// profile.
func (s *AccountService) Dashboard(ctx context.Context, userID string) (*DashboardStats, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repomanager.LoginRecords(s.db).Stats(ctx, userID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{User: user, Stats: stats, Profile: profile}, nil
}

// notify sends an email without ever failing the caller.
func (s *AccountService) notify(ctx context.Context, to, subject, body string) {
	if err := s.mail.Send(ctx, to, subject, body); err != nil {
		s.logger.Error(ctx, "failed to send notification email", "to", to, "error", err)
	}
}
