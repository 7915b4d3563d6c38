package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mpetrenko/accountd/internal/common"
	"github.com/mpetrenko/accountd/internal/dbx"
	"github.com/mpetrenko/accountd/internal/logging"
	"github.com/mpetrenko/accountd/internal/server/config"
	"github.com/mpetrenko/accountd/internal/server/models"
	loginrecordsrepo "github.com/mpetrenko/accountd/internal/server/repositories/loginrecords"
	profilesrepo "github.com/mpetrenko/accountd/internal/server/repositories/profiles"
	refreshtokensrepo "github.com/mpetrenko/accountd/internal/server/repositories/refreshtokens"
	"github.com/mpetrenko/accountd/internal/server/repositories/repomanager"
	usersrepo "github.com/mpetrenko/accountd/internal/server/repositories/users"
)

// --- shared helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

type fakeUsersRepo struct {
	byUsername  *models.User
	usernameErr error

	byEmail  *models.User
	emailErr error

	byID  *models.User
	idErr error

	created   *models.User
	createErr error

	lastLoginAt    time.Time
	lastLoginErr   error
	passwordHash   string
	passwordErr    error
	basicInfoErr   error
	setActiveValue *bool
	setActiveErr   error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.usernameErr != nil {
		return nil, f.usernameErr
	}
	if f.byUsername == nil {
		return nil, common.ErrorNotFound
	}
	return f.byUsername, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	if f.byEmail == nil {
		return nil, common.ErrorNotFound
	}
	return f.byEmail, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.idErr != nil {
		return nil, f.idErr
	}
	if f.byID == nil {
		return nil, common.ErrorNotFound
	}
	return f.byID, nil
}

func (f *fakeUsersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	f.lastLoginAt = at
	return f.lastLoginErr
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if f.passwordErr != nil {
		return f.passwordErr
	}
	f.passwordHash = passwordHash
	return nil
}

func (f *fakeUsersRepo) UpdateBasicInfo(ctx context.Context, id, firstName, lastName string) error {
	return f.basicInfoErr
}

func (f *fakeUsersRepo) SetActive(ctx context.Context, id string, active bool) error {
	if f.setActiveErr != nil {
		return f.setActiveErr
	}
	f.setActiveValue = &active
	return nil
}

type fakeProfilesRepo struct {
	byUser *models.Profile
	getErr error

	created   *models.Profile
	createErr error

	updated   *models.Profile
	updateErr error
}

func (f *fakeProfilesRepo) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = p
	return p, nil
}

func (f *fakeProfilesRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.byUser == nil {
		return nil, common.ErrorNotFound
	}
	return f.byUser, nil
}

func (f *fakeProfilesRepo) Update(ctx context.Context, p *models.Profile) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = p
	return nil
}

type fakeLoginRecordsRepo struct {
	records   []*models.LoginRecord
	createErr error

	listSince time.Time
	listOut   []*models.LoginRecord
	listErr   error

	statsOut *models.LoginStats
	statsErr error
}

func (f *fakeLoginRecordsRepo) Create(ctx context.Context, r *models.LoginRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeLoginRecordsRepo) ListByUser(ctx context.Context, userID string, since time.Time) ([]*models.LoginRecord, error) {
	f.listSince = since
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeLoginRecordsRepo) Stats(ctx context.Context, userID string, recentSince time.Time) (*models.LoginStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.statsOut, nil
}

type fakeRefreshRepo struct {
	createdTokens []string
	createErr     error

	findOut *models.RefreshToken
	findErr error

	revoked   []string
	revokeErr error

	revokedUsers []string
	revokeAllErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdTokens = append(f.createdTokens, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, token string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeRefreshRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	if f.revokeAllErr != nil {
		return f.revokeAllErr
	}
	f.revokedUsers = append(f.revokedUsers, userID)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakeProfilesRepo
	l *fakeLoginRecordsRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profilesrepo.Repository {
	return m.p
}
func (m *fakeRepoManager) LoginRecords(db dbx.DBTX) loginrecordsrepo.Repository {
	return m.l
}
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}

type recordingMailer struct {
	to       []string
	subjects []string
	err      error
}

func (m *recordingMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, toEmail)
	m.subjects = append(m.subjects, subject)
	return nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newAccountService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager, mail *recordingMailer) *AccountService {
	t.Helper()
	tokens := NewTokenService(db, rm, newTestConfig())
	return NewAccountService(db, rm, tokens, mail, discardLogger())
}
