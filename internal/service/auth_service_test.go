package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type mockUserRepo struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	tokens        map[string]*models.RefreshToken
	createdUser   *models.User
	createdProf   *models.Student
	revokedTokens []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
	}
}

func (m *mockUserRepo) addUser(user *models.User) {
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.usersByEmail[email]
	return ok, nil
}

func (m *mockUserRepo) CreateWithStudent(ctx context.Context, user *models.User, student *models.Student) error {
	if user.ID == "" {
		user.ID = "new-user"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	student.UserID = user.ID
	m.addUser(user)
	m.createdUser = user
	m.createdProf = student
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedTokens = append(m.revokedTokens, id)
	for _, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "dance-studio-api",
	}
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Email:     "jane@example.com",
		Password:  "supersecret",
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     "555-0101",
		BirthDate: "1995-04-12",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	require.NotNil(t, repo.createdUser)
	require.NotNil(t, repo.createdProf)
	assert.Equal(t, models.RoleStudent, repo.createdUser.Role)
	assert.Equal(t, repo.createdUser.ID, repo.createdProf.UserID)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.createdUser.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "jane@example.com"})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Nil(t, repo.createdUser)
}

func TestAuthServiceRegisterInvalidBirthDate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	req := validRegisterRequest()
	req.BirthDate = "12/04/1995"

	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, repo.createdUser)
}

func TestAuthServiceLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "jane@example.com", PasswordHash: string(hash), Role: models.RoleStudent, Active: true})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "user-1", res.User.ID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "jane@example.com", PasswordHash: string(hash), Active: true})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "jane@example.com", PasswordHash: string(hash), Active: false})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "supersecret"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "jane@example.com", Active: true, Role: models.RoleStudent})
	repo.tokens["old-token"] = &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.Contains(t, repo.revokedTokens, "tok-1")
}

func TestAuthServiceRefreshRejectsExpired(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "jane@example.com", Active: true})
	repo.tokens["stale"] = &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := newMockUserRepo()
	repo.tokens["owned-by-other"] = &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-2",
		Token:     "owned-by-other",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "owned-by-other", "user-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.revokedTokens)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	token, err := other.generateAccessToken(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
