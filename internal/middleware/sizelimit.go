package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

const (
	maxURLLength = 2048
	// maxBodyBytes caps JSON bodies; every legitimate payload here is a
	// short form or a toggle.
	maxBodyBytes = 10 * 1024
)

// RequestSize rejects oversized URLs (414) and bodies (413) before any
// handler reads them. Declared sizes are checked against Content-Length;
// chunked bodies are hard-capped by MaxBytesReader so a missing header
// cannot bypass the limit.
func RequestSize(events *guard.SecurityLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ResolveClientIP(c)

		if n := len(c.Request.RequestURI); n > maxURLLength {
			if events != nil {
				events.Record(guard.EventSuspiciousRequest, ip, c.Request.URL.Path, c.Request.Method,
					map[string]interface{}{"reason": "URL too long", "length": n})
			}
			response.URITooLong(c, maxURLLength)
			return
		}

		if c.Request.ContentLength > maxBodyBytes {
			if events != nil {
				events.Record(guard.EventLargeRequest, ip, c.Request.URL.Path, c.Request.Method,
					map[string]interface{}{"size": c.Request.ContentLength, "maxSize": maxBodyBytes})
			}
			response.PayloadTooLarge(c, maxBodyBytes)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
	}
}
