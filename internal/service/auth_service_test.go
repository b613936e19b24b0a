package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

type mockAuthUsers struct {
	db               *sqlx.DB
	userByEmail      *models.User
	findByEmailErr   error
	emailTaken       bool
	createdUsers     []*models.User
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
}

func (m *mockAuthUsers) Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-1"
	}
	m.createdUsers = append(m.createdUsers, user)
	return nil
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByEmail != nil && m.userByEmail.ID == id {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockAuthUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthUsers) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthUsers) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthUsers) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthUsers) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, opts)
}

type mockAuthCompanies struct {
	created []*models.Company
	err     error
}

func (m *mockAuthCompanies) Create(ctx context.Context, exec sqlx.ExtContext, company *models.Company) error {
	if m.err != nil {
		return m.err
	}
	if company.ID == "" {
		company.ID = "company-1"
	}
	m.created = append(m.created, company)
	return nil
}

func authTestConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "vibe-calendar",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegisterCompany(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer rawDB.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	users := &mockAuthUsers{db: sqlx.NewDb(rawDB, "sqlmock")}
	companies := &mockAuthCompanies{}
	svc := NewAuthService(users, companies, nil, nil, authTestConfig())

	resp, err := svc.RegisterCompany(context.Background(), models.RegisterCompanyRequest{
		CompanyName: "Acme",
		Email:       "admin@acme.test",
		Password:    "supersecret",
		FullName:    "Admin User",
	})
	require.NoError(t, err)
	require.Len(t, companies.created, 1)
	require.Len(t, users.createdUsers, 1)
	assert.Equal(t, companies.created[0].ID, users.createdUsers[0].CompanyID)
	assert.Equal(t, models.RoleAdmin, users.createdUsers[0].Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthServiceRegisterCompanyRejectsTakenEmail(t *testing.T) {
	users := &mockAuthUsers{emailTaken: true}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	_, err := svc.RegisterCompany(context.Background(), models.RegisterCompanyRequest{
		CompanyName: "Acme",
		Email:       "admin@acme.test",
		Password:    "supersecret",
		FullName:    "Admin User",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
}

func TestAuthServiceLogin(t *testing.T) {
	users := &mockAuthUsers{userByEmail: &models.User{
		ID:           "user-1",
		CompanyID:    "company-1",
		Email:        "admin@acme.test",
		PasswordHash: hashPassword(t, "supersecret"),
		FullName:     "Admin User",
		Role:         models.RoleAdmin,
		Active:       true,
	}}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@acme.test",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "company-1", resp.User.CompanyID)
	assert.True(t, users.lastLoginUpdated)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "company-1", claims.CompanyID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	users := &mockAuthUsers{userByEmail: &models.User{
		ID:           "user-1",
		Email:        "admin@acme.test",
		PasswordHash: hashPassword(t, "supersecret"),
		Active:       true,
	}}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@acme.test",
		Password: "wrong",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	users := &mockAuthUsers{userByEmail: &models.User{
		ID:           "user-1",
		Email:        "admin@acme.test",
		PasswordHash: hashPassword(t, "supersecret"),
		Active:       false,
	}}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@acme.test",
		Password: "supersecret",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	user := &models.User{
		ID:           "user-1",
		CompanyID:    "company-1",
		Email:        "admin@acme.test",
		PasswordHash: hashPassword(t, "supersecret"),
		Active:       true,
	}
	users := &mockAuthUsers{userByEmail: user}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@acme.test",
		Password: "supersecret",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, users.refreshTokens[login.RefreshToken].Revoked, "used refresh token must be revoked")

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err, "revoked token cannot be reused")
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	users := &mockAuthUsers{
		userByEmail: &models.User{ID: "user-1", Active: true},
		refreshTokens: map[string]*models.RefreshToken{
			"stale": {ID: "rt-1", UserID: "user-1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
		},
	}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceLogout(t *testing.T) {
	users := &mockAuthUsers{
		refreshTokens: map[string]*models.RefreshToken{
			"tok": {ID: "rt-1", UserID: "user-1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(users, &mockAuthCompanies{}, nil, nil, authTestConfig())

	require.NoError(t, svc.Logout(context.Background(), "tok", "user-1"))
	assert.True(t, users.refreshTokens["tok"].Revoked)

	err := svc.Logout(context.Background(), "tok", "someone-else")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAuthServiceValidateRejectsGarbageToken(t *testing.T) {
	svc := NewAuthService(&mockAuthUsers{}, &mockAuthCompanies{}, nil, nil, authTestConfig())

	_, err := svc.ValidateAccessToken("not-a-jwt")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
