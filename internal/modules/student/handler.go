package student

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	{
		students.POST("/register", h.register)
		students.POST("/login", h.login)
		students.GET("/:studentId", h.profile)
		students.GET("/:studentId/history", h.history)
	}
}

type registerRequest struct {
	StudentID  string `json:"studentId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Year       string `json:"year"`
	Password   string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", nil)
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.Department = strings.TrimSpace(req.Department)

	details := map[string]string{}
	if utf8.RuneCountInString(req.StudentID) < 3 {
		details["studentId"] = "ID must be at least 3 characters"
	}
	if utf8.RuneCountInString(req.Name) < 2 {
		details["name"] = "Name must be at least 2 characters"
	}
	if req.Department == "" {
		details["department"] = "Department is required"
	}
	if len(req.Password) < 6 {
		details["password"] = "Password must be at least 6 characters"
	}
	if len(details) > 0 {
		response.BadRequest(c, "Validation failed", details)
		return
	}

	student, err := h.svc.Register(RegisterInput{
		StudentID:  req.StudentID,
		Name:       req.Name,
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Department: req.Department,
		Year:       strings.TrimSpace(req.Year),
		Password:   req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrExists) {
			response.Conflict(c, "This student ID is already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, student)
}

type loginRequest struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", nil)
		return
	}

	student, err := h.svc.Login(strings.TrimSpace(req.StudentID), req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			response.Unauthorized(c, "Invalid student ID or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, student)
}

func (h *Handler) profile(c *gin.Context) {
	student, err := h.svc.Get(c.Param("studentId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if student == nil {
		response.NotFound(c, "Student not found")
		return
	}
	response.OK(c, student)
}

func (h *Handler) history(c *gin.Context) {
	student, err := h.svc.Get(c.Param("studentId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if student == nil {
		response.NotFound(c, "Student not found")
		return
	}
	records, err := h.svc.History(student.StudentID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"student": student, "records": records})
}
