package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/middleware"
	"github.com/rollcall-app/rollcall/internal/pkg/jwt"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

// Handler issues host tokens against the configured password hash.
type Handler struct {
	cfg     *config.AppConfig
	limiter *guard.LoginLimiter
	events  *guard.SecurityLog
}

func NewHandler(cfg *config.AppConfig, limiter *guard.LoginLimiter, events *guard.SecurityLog) *Handler {
	return &Handler{cfg: cfg, limiter: limiter, events: events}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	ip := middleware.ResolveClientIP(c)

	allowed, remaining := h.limiter.Allowed(ip)
	if !allowed {
		h.events.Record(guard.EventAuthFailure, ip, c.Request.URL.Path, c.Request.Method,
			map[string]interface{}{"reason": "login lockout"})
		response.RateLimited(c, "Too many failed login attempts. Try again later.", 0)
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		response.BadRequest(c, "Password is required", nil)
		return
	}

	sum := sha256.Sum256([]byte(req.Password))
	got := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.cfg.Host.PasswordHash)) != 1 {
		h.limiter.Record(ip, false)
		h.events.Record(guard.EventAuthFailure, ip, c.Request.URL.Path, c.Request.Method,
			map[string]interface{}{"attemptsRemaining": remaining - 1})
		response.Unauthorized(c, "Invalid password")
		return
	}

	token, err := jwt.Sign(jwt.RoleHost, h.cfg.Host.TokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	h.limiter.Record(ip, true)
	h.events.Record(guard.EventAuthSuccess, ip, c.Request.URL.Path, c.Request.Method, nil)
	response.OK(c, gin.H{"token": token, "expiresIn": int(h.cfg.Host.TokenTTL.Seconds())})
}
