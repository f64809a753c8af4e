package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rollcall-app/rollcall/internal/middleware"
	"github.com/rollcall-app/rollcall/internal/network"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-network tool served over plain HTTP; origin checks add nothing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades /ws connections and registers the viewer with the hub.
// Foreign-subnet origins are admitted but logged: the dashboard is read-only
// and the submission endpoints still block them.
func ServeWS(hub *Hub, filter *network.Filter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := middleware.ResolveClientIP(c)
		if decision := filter.Check(clientIP, ""); !decision.Allowed && logger != nil {
			logger.Warn("viewer connected from outside the subnet",
				zap.String("ip", clientIP),
				zap.String("reason", decision.Reason),
			)
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			if logger != nil {
				logger.Warn("websocket upgrade failed", zap.Error(err))
			}
			return
		}

		// Register before the pumps start so the read side cannot report a
		// disconnect for a client the hub has not seen yet.
		client := newClient(conn, network.NormalizeIP(clientIP))
		hub.register <- client
		go client.writePump()
		go client.readPump(hub)
	}
}

// RegisterRoutes mounts the viewer-count diagnostic.
func RegisterRoutes(rg *gin.RouterGroup, hub *Hub) {
	rg.GET("/gateway/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewers": hub.ClientCount()})
	})
}
