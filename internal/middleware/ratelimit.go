package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

// RateLimit enforces the guard's per-(IP, endpoint) ceilings ahead of
// business logic and stamps the X-RateLimit-* headers on admitted requests.
func RateLimit(g *guard.RateGuard, events *guard.SecurityLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ResolveClientIP(c)
		path := c.Request.URL.Path

		verdict := g.Check(ip, path)
		if !verdict.Allowed {
			if events != nil {
				events.Record(guard.EventRateLimit, ip, path, c.Request.Method, map[string]interface{}{
					"limit":      verdict.Limit,
					"retryAfter": verdict.RetryAfter,
				})
			}
			c.Header("Retry-After", strconv.Itoa(verdict.RetryAfter))
			response.RateLimited(c,
				fmt.Sprintf("Rate limit exceeded. Please try again after %d seconds.", verdict.RetryAfter),
				verdict.RetryAfter)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(verdict.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(verdict.Remaining))
		c.Header("X-RateLimit-Reset", verdict.Reset.UTC().Format(time.RFC3339))
		c.Next()
	}
}

// Anomaly observes request patterns and logs suspicious origins. It never
// blocks; rate limiting handles enforcement.
func Anomaly(d *guard.AnomalyDetector, events *guard.SecurityLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ResolveClientIP(c)
		if suspicious, reason := d.Observe(ip, c.Request.URL.Path); suspicious && events != nil {
			events.Record(guard.EventSuspiciousRequest, ip, c.Request.URL.Path, c.Request.Method,
				map[string]interface{}{"reason": reason})
		}
		c.Next()
	}
}
