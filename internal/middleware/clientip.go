package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ResolveClientIP returns the request origin: the first X-Forwarded-For
// segment when present, otherwise the transport peer address, with
// IPv4-mapped IPv6 notation reduced to plain IPv4. Returns "unknown" when
// no origin can be determined.
func ResolveClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return stripMapped(first)
		}
	}

	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	remote = stripMapped(strings.TrimSpace(remote))
	if remote == "" {
		return "unknown"
	}
	return remote
}

// DeviceClass derives a coarse device label from the User-Agent.
func DeviceClass(c *gin.Context) string {
	ua := c.GetHeader("User-Agent")
	if ua == "" {
		return "Unknown"
	}
	if strings.Contains(ua, "Mobile") {
		return "Mobile Browser"
	}
	return "Desktop Browser"
}

func stripMapped(ip string) string {
	if strings.HasPrefix(ip, "::ffff:") {
		return ip[len("::ffff:"):]
	}
	return ip
}
