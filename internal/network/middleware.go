package network

import (
	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/middleware"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

// Admission returns a middleware that rejects requests from origins the
// filter does not admit. Denials are structured 403s, never panics.
func Admission(filter *Filter, activeHostIP func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := middleware.ResolveClientIP(c)
		decision := filter.Check(clientIP, activeHostIP())
		if !decision.Allowed {
			response.AdmissionDenied(c, decision.Reason, NormalizeIP(clientIP))
			return
		}
		c.Next()
	}
}
