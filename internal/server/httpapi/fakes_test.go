package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/mpetrenko/accountd/internal/common"
	"github.com/mpetrenko/accountd/internal/dbx"
	"github.com/mpetrenko/accountd/internal/logging"
	"github.com/mpetrenko/accountd/internal/server/config"
	"github.com/mpetrenko/accountd/internal/server/mailer"
	"github.com/mpetrenko/accountd/internal/server/models"
	loginrecordsrepo "github.com/mpetrenko/accountd/internal/server/repositories/loginrecords"
	profilesrepo "github.com/mpetrenko/accountd/internal/server/repositories/profiles"
	refreshtokensrepo "github.com/mpetrenko/accountd/internal/server/repositories/refreshtokens"
	usersrepo "github.com/mpetrenko/accountd/internal/server/repositories/users"
	"github.com/mpetrenko/accountd/internal/server/services"
)

type fakeUsersRepo struct {
	byUsername *models.User
	byEmail    *models.User
	byID       *models.User

	created *models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.byUsername == nil {
		return nil, common.ErrorNotFound
	}
	return f.byUsername, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmail == nil {
		return nil, common.ErrorNotFound
	}
	return f.byEmail, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byID == nil {
		return nil, common.ErrorNotFound
	}
	return f.byID, nil
}

func (f *fakeUsersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return nil
}

func (f *fakeUsersRepo) UpdateBasicInfo(ctx context.Context, id, firstName, lastName string) error {
	return nil
}

func (f *fakeUsersRepo) SetActive(ctx context.Context, id string, active bool) error {
	if f.byID != nil {
		f.byID.IsActive = active
	}
	return nil
}

type fakeProfilesRepo struct {
	byUser *models.Profile
}

func (f *fakeProfilesRepo) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	f.byUser = p
	return p, nil
}

func (f *fakeProfilesRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if f.byUser == nil {
		return nil, common.ErrorNotFound
	}
	return f.byUser, nil
}

func (f *fakeProfilesRepo) Update(ctx context.Context, p *models.Profile) error {
	f.byUser = p
	return nil
}

type fakeLoginRecordsRepo struct {
	records []*models.LoginRecord
	listOut []*models.LoginRecord
	stats   *models.LoginStats
}

func (f *fakeLoginRecordsRepo) Create(ctx context.Context, r *models.LoginRecord) error {
	f.records = append(f.records, r)
	return nil
}

func (f *fakeLoginRecordsRepo) ListByUser(ctx context.Context, userID string, since time.Time) ([]*models.LoginRecord, error) {
	return f.listOut, nil
}

func (f *fakeLoginRecordsRepo) Stats(ctx context.Context, userID string, recentSince time.Time) (*models.LoginStats, error) {
	if f.stats == nil {
		return &models.LoginStats{}, nil
	}
	return f.stats, nil
}

type fakeRefreshRepo struct {
	byToken map[string]*models.RefreshToken
	revoked []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.byToken == nil {
		f.byToken = map[string]*models.RefreshToken{}
	}
	f.byToken[token] = &models.RefreshToken{
		UserID:  userID,
		Token:   token,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	if t, ok := f.byToken[token]; ok {
		t.Revoked = true
	}
	return nil
}

func (f *fakeRefreshRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	for _, t := range f.byToken {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
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

type testServer struct {
	srv  *Server
	rm   *fakeRepoManager
	mock sqlmock.Sqlmock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{},
		p: &fakeProfilesRepo{},
		l: &fakeLoginRecordsRepo{},
		r: &fakeRefreshRepo{},
	}
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		S3Region:                     "us-east-1",
		S3AccessKey:                  "minioadmin",
		S3SecretKey:                  "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "avatars",
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	tokens := services.NewTokenService(db, rm, cfg)
	accounts := services.NewAccountService(db, rm, tokens, mailer.Noop{}, logger)
	avatars := services.NewAvatarService(cfg)

	return &testServer{
		srv:  NewServer("127.0.0.1:0", logger, accounts, tokens, avatars),
		rm:   rm,
		mock: mock,
	}
}

func (ts *testServer) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	return ts.doWithHeaders(method, path, body, bearer, nil)
}

func (ts *testServer) doWithHeaders(method, path, body, bearer string, headers map[string]string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)
	return rec
}

// seedUser installs an active account with the given password and returns it.
func (ts *testServer) seedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &models.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   time.Now().Add(-24 * time.Hour),
	}
	ts.rm.u.byUsername = user
	ts.rm.u.byEmail = user
	ts.rm.u.byID = user
	return user
}

// accessTokenFor issues a valid access token for the seeded user.
func (ts *testServer) accessTokenFor(t *testing.T, userID string) string {
	t.Helper()
	pair, err := ts.srv.tokens.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pair.AccessToken
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	return out
}
