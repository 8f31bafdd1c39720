package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, incoming string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var fromGin, fromCtx string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(Header, incoming)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, fromGin, fromCtx
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	w, fromGin, fromCtx := serve(t, "gen-run-42")

	assert.Equal(t, "gen-run-42", w.Header().Get(Header))
	assert.Equal(t, "gen-run-42", fromGin)
	assert.Equal(t, "gen-run-42", fromCtx)
}

func TestMiddlewareMintsUUID(t *testing.T) {
	w, fromGin, _ := serve(t, "")

	_, err := uuid.Parse(fromGin)
	require.NoError(t, err)
	assert.Equal(t, fromGin, w.Header().Get(Header))
}

func TestMiddlewareReplacesMalformedID(t *testing.T) {
	for _, bad := range []string{"has space", strings.Repeat("x", 65)} {
		_, fromGin, _ := serve(t, bad)
		assert.NotEqual(t, bad, fromGin)
		_, err := uuid.Parse(fromGin)
		assert.NoError(t, err)
	}
}
