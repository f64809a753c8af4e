package attendance

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/middleware"
	sessionmod "github.com/rollcall-app/rollcall/internal/modules/session"
	"github.com/rollcall-app/rollcall/internal/network"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

const maxFieldLength = 500

type Handler struct {
	svc    *Service
	events *guard.SecurityLog
}

func NewHandler(svc *Service, events *guard.SecurityLog) *Handler {
	return &Handler{svc: svc, events: events}
}

// RegisterRoutes mounts the ledger endpoints. admissionMW gates the
// submission route on network origin; reads and host operations skip it
// (they are token protected instead).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, hostMW, admissionMW gin.HandlerFunc) {
	rg.GET("/attendance", hostMW, h.list)
	rg.POST("/attendance", admissionMW, h.submit)
	rg.DELETE("/attendance", hostMW, h.clear)
	rg.DELETE("/attendance/:id", hostMW, h.delete)
}

type submitRequest struct {
	Name       string `json:"name"`
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
	DeviceID   string `json:"deviceId"`
}

func (h *Handler) submit(c *gin.Context) {
	clientIP := network.NormalizeIP(middleware.ResolveClientIP(c))

	// Closed session wins over every body problem: a submitter outside an
	// active session learns nothing about what the body should look like.
	sess, err := h.svc.Active()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sess == nil {
		response.SessionInactive(c)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "malformed submission body", nil)
		return
	}

	req.Name = sanitize(req.Name)
	req.StudentID = sanitize(req.StudentID)
	req.Department = sanitize(req.Department)

	var details []gin.H
	if utf8.RuneCountInString(req.Name) < 2 {
		details = append(details, gin.H{"field": "name", "message": "Name must be at least 2 characters"})
	}
	if utf8.RuneCountInString(req.StudentID) < 3 {
		details = append(details, gin.H{"field": "studentId", "message": "ID must be at least 3 characters"})
	}
	if details != nil {
		if h.events != nil {
			h.events.Record(guard.EventInvalidInput, clientIP, c.Request.URL.Path, c.Request.Method, nil)
		}
		response.BadRequest(c, "submission failed validation", details)
		return
	}

	device := middleware.DeviceClass(c)
	deviceID := sanitize(c.GetHeader("x-device-id"))
	if deviceID == "" {
		deviceID = sanitize(req.DeviceID)
	}
	persistent := deviceID != ""
	if !persistent {
		deviceID = clientIP + "::" + device
	}

	record, err := h.svc.Submit(SubmitInput{
		Name:       req.Name,
		StudentID:  req.StudentID,
		Department: req.Department,
		IPAddress:  clientIP,
		Device:     device,
		DeviceID:   deviceID,
		Persistent: persistent,
	})
	if err != nil {
		h.rejectSubmission(c, err)
		return
	}
	response.Created(c, gin.H{"record": record})
}

func (h *Handler) rejectSubmission(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionInactive):
		response.SessionInactive(c)
	case errors.Is(err, ErrDuplicate):
		response.Conflict(c, "You have already submitted attendance for this session")
	case errors.Is(err, ErrIPQuota):
		response.RateLimited(c, "Maximum submissions per IP address reached. Please contact the host.", 0)
	case errors.Is(err, sessionmod.ErrClaimMissingID):
		response.Forbidden(c, "Device claim conflict",
			"Another device has already claimed this active session. Supply a persistent device ID "+
				"(x-device-id header or deviceId field) so submissions can be told apart reliably.")
	case errors.Is(err, sessionmod.ErrClaimMismatch):
		response.Forbidden(c, "Device claim conflict",
			"A different device ID has already claimed this session. Ask the host to toggle the session to reset the claim.")
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) list(c *gin.Context) {
	records, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"records": records})
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.svc.Clear(); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "All records cleared"})
}

func (h *Handler) delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !deleted {
		response.NotFound(c, "unknown record")
		return
	}
	response.NoContent(c)
}

// sanitize trims whitespace, strips NUL bytes and caps field length before
// validation sees the value. The cap counts runes so truncation never
// leaves a split UTF-8 sequence behind.
func sanitize(in string) string {
	out := strings.ReplaceAll(in, "\x00", "")
	out = strings.TrimSpace(out)
	if utf8.RuneCountInString(out) > maxFieldLength {
		out = string([]rune(out)[:maxFieldLength])
	}
	return out
}
