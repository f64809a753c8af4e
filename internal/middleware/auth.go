package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/pkg/jwt"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

const contextKeyRole = "auth_role"

// HostAuth returns a middleware that restricts a route to the moderator.
func HostAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil || claims.Role != jwt.RoleHost {
			response.Unauthorized(c, "Host authentication required")
			return
		}
		c.Set(contextKeyRole, claims.Role)
		c.Next()
	}
}

// IsHost reports whether the request carries a valid host token.
func IsHost(c *gin.Context) bool {
	v, _ := c.Get(contextKeyRole)
	role, _ := v.(string)
	return role == jwt.RoleHost
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return normalizeToken(auth)
	}
	return normalizeToken(c.Query("token"))
}

// normalizeToken trims spaces and strips an optional Bearer prefix.
func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
