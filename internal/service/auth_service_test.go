package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	createErr error
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	repo := &mockAuthRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[strings.ToLower(u.Username)] = u
	}
	return repo
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[strings.ToLower(username)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u-" + user.Username
	m.users[strings.ToLower(user.Username)] = user
	return nil
}

func newAuthFixture(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "uni-timetable-api",
	})
}

func TestAuthServiceRegisterCreatesStudent(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthFixture(repo)

	user, err := svc.Register(context.Background(), models.RegisterRequest{Username: "asha", Email: "Asha@Uni.edu", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "asha@uni.edu", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password1")))

	_, err = svc.Register(context.Background(), models.RegisterRequest{Username: "ASHA", Password: "password2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterShortPassword(t *testing.T) {
	svc := newAuthFixture(newMockAuthRepo())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "asha", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := newMockAuthRepo(&models.User{ID: "123", Username: "admin", PasswordHash: string(password), Role: models.RoleAdmin})
	svc := newAuthFixture(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "123", claims.UserID)
	assert.Equal(t, "uni-timetable-api", claims.Issuer)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	svc := newAuthFixture(newMockAuthRepo(&models.User{ID: "123", Username: "admin", PasswordHash: string(password)}))

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignSignatures(t *testing.T) {
	svc := newAuthFixture(newMockAuthRepo())

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "x"}).SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID:           "x",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	require.Error(t, err)
}
