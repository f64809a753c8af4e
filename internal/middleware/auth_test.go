package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/session/toggle", HostAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestHostAuthAcceptsValidToken(t *testing.T) {
	token, err := jwt.Sign(jwt.RoleHost, time.Hour)
	require.NoError(t, err)

	r := hostProtectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/toggle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The token is also accepted as a query parameter, for websocket-style
	// clients that cannot set headers.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/session/toggle?token="+token, nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHostAuthRejections(t *testing.T) {
	r := hostProtectedRouter()

	studentToken, err := jwt.Sign("student", time.Hour)
	require.NoError(t, err)
	expired, err := jwt.Sign(jwt.RoleHost, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong role", "Bearer " + studentToken},
		{"expired token", "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/session/toggle", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
