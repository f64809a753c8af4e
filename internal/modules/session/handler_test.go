package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, _ := newTestService(config.SessionConfig{LateThreshold: 15 * time.Minute})
	passthrough := func(c *gin.Context) { c.Next() }

	r := gin.New()
	api := r.Group("/api")
	NewHandler(svc).RegisterRoutes(api, passthrough)
	return r, svc
}

func TestSessionStatusEndpoint(t *testing.T) {
	r, svc := sessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)

	_, _, err := svc.Toggle("10.0.0.3", "Lecture 1", 0)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)
	assert.Contains(t, w.Body.String(), "Lecture 1")
}

func TestToggleEndpoint(t *testing.T) {
	r, _ := sessionRouter(t)

	// Empty body starts a session.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/toggle", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.3")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)
	assert.Contains(t, w.Body.String(), `"hostIp":"10.0.0.3"`)

	// Second toggle stops it.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/session/toggle", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.3")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}

func TestToggleEndpointWithOptions(t *testing.T) {
	r, _ := sessionRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/toggle",
		strings.NewReader(`{"name":"Seminar","lateThreshold":30}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Seminar")
	assert.Contains(t, w.Body.String(), `"lateThreshold":30`)
}

func TestToggleEndpointRejectsBadBody(t *testing.T) {
	r, _ := sessionRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/toggle",
		strings.NewReader(`{"lateThreshold":-1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionRecordsEndpoint(t *testing.T) {
	r, svc := sessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/nope/records", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, sess, err := svc.Toggle("10.0.0.3", "", 0)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/records", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records":[]`)
}
