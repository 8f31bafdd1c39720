package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type authMock struct {
	login models.LoginRequest
}

func (m *authMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return &models.User{ID: "u1", Username: req.Username, Role: models.RoleStudent}, nil
}

func (m *authMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.login = req
	if req.Password != "secret123" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	return &models.LoginResponse{AccessToken: "token"}, nil
}

func (m *authMock) Me(ctx context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Username: "admin", Role: models.RoleAdmin}, nil
}

func TestAuthLogin(t *testing.T) {
	mockSvc := &authMock{}
	handler := &AuthHandler{service: mockSvc}
	c, w := testContext(http.MethodPost, "/auth/login", []byte(`{"username":"admin","password":"secret123"}`), nil)

	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", mockSvc.login.Username)
	assert.Contains(t, w.Body.String(), "token")
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	handler := &AuthHandler{service: &authMock{}}
	c, w := testContext(http.MethodPost, "/auth/login", []byte(`{"username":"admin","password":"nope"}`), nil)

	handler.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestAuthRegisterCreated(t *testing.T) {
	handler := &AuthHandler{service: &authMock{}}
	c, w := testContext(http.MethodPost, "/auth/register", []byte(`{"username":"neo","email":"neo@uni.edu","password":"secret123"}`), nil)

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthMe(t *testing.T) {
	handler := &AuthHandler{service: &authMock{}}
	c, w := testContext(http.MethodGet, "/auth/me", nil, adminClaims())

	handler.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin-1")

	c, w = testContext(http.MethodGet, "/auth/me", nil, nil)
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
