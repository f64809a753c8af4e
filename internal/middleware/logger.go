package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger emits one structured line per request. Client errors log at warn
// so throttled or rejected submissions stand out when tailing the log on
// the host machine.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", ResolveClientIP(c)),
			zap.String("requestId", c.Writer.Header().Get(headerRequestID)),
		}
		if status >= 400 {
			log.Warn("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
