package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(limits map[string]config.EndpointLimit, events *guard.SecurityLog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := guard.NewRateGuard(config.GuardConfig{Endpoints: limits})
	r := gin.New()
	r.Use(RateLimit(g, events))
	r.GET("/api/session", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("X-Forwarded-For", ip)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitHeadersOnAdmittedRequest(t *testing.T) {
	r := rateLimitedRouter(map[string]config.EndpointLimit{
		"/api/session": {Window: time.Minute, MaxRequests: 5},
	}, nil)

	w := doRequest(r, "10.0.0.7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitDenialShape(t *testing.T) {
	events := guard.NewSecurityLog(nil)
	r := rateLimitedRouter(map[string]config.EndpointLimit{
		"/api/session": {Window: time.Minute, MaxRequests: 1, BlockDuration: 2 * time.Minute},
	}, events)

	require.Equal(t, http.StatusOK, doRequest(r, "10.0.0.7").Code)

	w := doRequest(r, "10.0.0.7")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "120", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "retryAfter")

	recorded := events.Recent(1)
	require.Len(t, recorded, 1)
	assert.Equal(t, guard.EventRateLimit, recorded[0].Type)

	// A different origin is not affected.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.8").Code)
}
