package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Wrap(errors.New("bad signature"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return v.claims, nil
}

type observerStub struct {
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.path = path
	o.status = status
}

func newProtectedRouter(role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(validatorStub{claims: &models.JWTClaims{UserID: "u1", Role: role}}))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).UserID) })
	r.POST("/generate", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusAccepted) })
	return r
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := newProtectedRouter(models.RoleStudent)
	cases := map[string]int{
		"":             http.StatusUnauthorized,
		"Basic abc":    http.StatusUnauthorized,
		"Bearer wrong": http.StatusUnauthorized,
		"bearer good":  http.StatusOK,
	}
	for header, want := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "header %q", header)
	}
}

func TestRequireRoles(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.Header.Set("Authorization", "Bearer good")
	newProtectedRouter(models.RoleTeacher).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	newProtectedRouter(models.RoleAdmin).ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/streams/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/streams/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/streams/:id", observer.path)
	assert.Equal(t, http.StatusOK, observer.status)
}
