package session

import (
	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/middleware"
	"github.com/rollcall-app/rollcall/internal/network"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, hostMW gin.HandlerFunc) {
	rg.GET("/session", h.current)
	rg.POST("/session/toggle", hostMW, h.toggle)
	rg.GET("/sessions", hostMW, h.history)
	rg.GET("/sessions/:id/records", hostMW, h.records)
}

func (h *Handler) current(c *gin.Context) {
	sess, err := h.svc.Current()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"active": sess != nil, "session": sess})
}

type toggleRequest struct {
	Name          string `json:"name"`
	LateThreshold int    `json:"lateThreshold"`
}

func (h *Handler) toggle(c *gin.Context) {
	var req toggleRequest
	// An empty body is a valid toggle.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "malformed toggle request", nil)
			return
		}
	}
	if req.LateThreshold < 0 {
		response.BadRequest(c, "lateThreshold must be positive", nil)
		return
	}

	hostIP := network.NormalizeIP(middleware.ResolveClientIP(c))
	active, sess, err := h.svc.Toggle(hostIP, req.Name, req.LateThreshold)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"active": active, "session": sess})
}

func (h *Handler) history(c *gin.Context) {
	sessions, err := h.svc.History()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"sessions": sessions})
}

func (h *Handler) records(c *gin.Context) {
	id := c.Param("id")
	sess, err := h.svc.Get(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sess == nil {
		response.NotFound(c, "unknown session")
		return
	}
	records, err := h.svc.Records(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"records": records})
}
