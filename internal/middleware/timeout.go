package middleware

import (
	"time"

	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

// Deadline bounds handler time. A request still unanswered after d gets a
// 408 and a security event; the abandoned handler keeps writing into a
// buffer that is discarded. The websocket endpoint is mounted outside this
// middleware since its connections are long-lived.
func Deadline(d time.Duration, events *guard.SecurityLog) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(d),
		timeout.WithHandler(func(c *gin.Context) {
			c.Next()
		}),
		timeout.WithResponse(func(c *gin.Context) {
			if events != nil {
				events.Record(guard.EventSuspiciousRequest, ResolveClientIP(c),
					c.Request.URL.Path, c.Request.Method,
					map[string]interface{}{"reason": "Request timeout"})
			}
			response.Timeout(c)
		}),
	)
}
