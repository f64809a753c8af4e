package security

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

const defaultEventLimit = 100

// Handler exposes the security audit trail to the host.
type Handler struct {
	events *guard.SecurityLog
}

func NewHandler(events *guard.SecurityLog) *Handler {
	return &Handler{events: events}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, hostMW gin.HandlerFunc) {
	rg.GET("/security/events", hostMW, h.list)
}

func (h *Handler) list(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	events := h.events.Recent(limit)
	response.OK(c, gin.H{"events": events, "count": len(events)})
}
