package network

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/middleware"
)

// Handler serves the network diagnostic endpoint the client UI uses to
// pre-explain an admission denial.
type Handler struct {
	filter *Filter
	// activeHostIP reports the authorized origin of the active session, if
	// any; consulted only under the session-lock policy.
	activeHostIP func() string
}

func NewHandler(filter *Filter, activeHostIP func() string) *Handler {
	return &Handler{filter: filter, activeHostIP: activeHostIP}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/network/check", h.check)
}

func (h *Handler) check(c *gin.Context) {
	clientIP := middleware.ResolveClientIP(c)
	decision := h.filter.Check(clientIP, h.activeHostIP())

	message := "You are on the same network"
	if !decision.Allowed {
		message = decision.Reason
	}
	c.JSON(http.StatusOK, gin.H{
		"clientIp": NormalizeIP(clientIP),
		"serverIp": h.filter.ServerIP(),
		"allowed":  decision.Allowed,
		"message":  message,
	})
}
