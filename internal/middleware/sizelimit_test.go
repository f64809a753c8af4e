package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizeLimitedRouter(events *guard.SecurityLog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestSize(events))
	r.POST("/api/attendance", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestRequestSizeRejectsLongURL(t *testing.T) {
	events := guard.NewSecurityLog(nil)
	r := sizeLimitedRouter(events)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/attendance?pad="+strings.Repeat("x", maxURLLength), nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestURITooLong, w.Code)
	assert.Contains(t, w.Body.String(), "Request URI Too Long")

	recorded := events.Recent(1)
	require.Len(t, recorded, 1)
	assert.Equal(t, guard.EventSuspiciousRequest, recorded[0].Type)
	assert.Equal(t, "URL too long", recorded[0].Details["reason"])
}

func TestRequestSizeRejectsOversizedBody(t *testing.T) {
	events := guard.NewSecurityLog(nil)
	r := sizeLimitedRouter(events)

	w := httptest.NewRecorder()
	body := strings.NewReader(strings.Repeat("a", maxBodyBytes+1))
	req := httptest.NewRequest(http.MethodPost, "/api/attendance", body)
	req.Header.Set("X-Forwarded-For", "10.0.0.7")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Payload Too Large")

	recorded := events.Recent(1)
	require.Len(t, recorded, 1)
	assert.Equal(t, guard.EventLargeRequest, recorded[0].Type)
	assert.Equal(t, "10.0.0.7", recorded[0].IP)
}

func TestRequestSizeAdmitsNormalRequest(t *testing.T) {
	events := guard.NewSecurityLog(nil)
	r := sizeLimitedRouter(events)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/attendance",
		strings.NewReader(`{"name":"Li Lei","studentId":"20250001"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, events.Recent(10))
}
