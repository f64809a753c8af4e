package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// devMode controls whether 500 bodies carry the underlying error text.
var devMode = false

// SetDevMode configures error redaction (call on startup).
func SetDevMode(dev bool) { devMode = dev }

// OK sends a 200 response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 validation failure, optionally with field detail.
func BadRequest(c *gin.Context, message string, details interface{}) {
	body := gin.H{"error": "Validation failed", "message": message}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": message})
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, errName, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errName, "message": message})
}

// AdmissionDenied sends the 403 shape for a failed network admission check,
// echoing the resolved client IP so the UI can explain the denial.
func AdmissionDenied(c *gin.Context, reason, clientIP string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error":    "Network Access Denied",
		"message":  reason,
		"clientIp": clientIP,
	})
}

// SessionInactive sends the 403 used when no collection window is open.
func SessionInactive(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error":   "Session is not active",
		"message": "Attendance collection is currently closed.",
	})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not Found", "message": message})
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": message})
}

// Timeout sends the 408 used when a handler exceeds the request deadline.
func Timeout(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestTimeout, gin.H{
		"error":   "Request Timeout",
		"message": "Request took too long to process",
	})
}

// URITooLong sends a 414 for request URLs past the configured cap.
func URITooLong(c *gin.Context, max int) {
	c.AbortWithStatusJSON(http.StatusRequestURITooLong, gin.H{
		"error":   "Request URI Too Long",
		"message": fmt.Sprintf("URL exceeds maximum length of %d characters", max),
	})
}

// PayloadTooLarge sends a 413 for oversized request bodies.
func PayloadTooLarge(c *gin.Context, max int64) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"error":   "Payload Too Large",
		"message": fmt.Sprintf("Request body exceeds maximum size of %d bytes", max),
	})
}

// RateLimited sends a 429 with the retry hint in both header and body.
func RateLimited(c *gin.Context, message string, retryAfter int) {
	body := gin.H{"error": "Too Many Requests", "message": message}
	if retryAfter > 0 {
		body["retryAfter"] = retryAfter
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
}

// InternalError sends a 500 with a redacted message outside development
// mode. The request ID lets operators correlate with the server log.
func InternalError(c *gin.Context, err error) {
	message := "Internal Server Error"
	if devMode && err != nil {
		message = err.Error()
	}
	body := gin.H{"error": "Internal Server Error", "message": message}
	if requestID := c.Writer.Header().Get("X-Request-ID"); requestID != "" {
		body["requestId"] = requestID
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
