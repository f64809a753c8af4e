package guard

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Security event types recorded by the guard and auth flows.
const (
	EventRateLimit         = "rate_limit"
	EventSuspiciousRequest = "suspicious_request"
	EventLargeRequest      = "large_request"
	EventAuthFailure       = "auth_failure"
	EventAuthSuccess       = "auth_success"
	EventInvalidInput      = "invalid_input"
)

const maxSecurityEvents = 1000

// SecurityEvent is one entry in the bounded audit trail.
type SecurityEvent struct {
	Type      string                 `json:"type"`
	IP        string                 `json:"ip"`
	Path      string                 `json:"path"`
	Method    string                 `json:"method"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// SecurityLog keeps the most recent security events in memory and mirrors
// them to the structured log.
type SecurityLog struct {
	mu     sync.Mutex
	events []SecurityEvent
	logger *zap.Logger
	now    func() time.Time
}

func NewSecurityLog(logger *zap.Logger) *SecurityLog {
	return &SecurityLog{logger: logger, now: time.Now}
}

// Record appends an event, evicting the oldest past the retention cap.
func (l *SecurityLog) Record(eventType, ip, path, method string, details map[string]interface{}) {
	event := SecurityEvent{
		Type:      eventType,
		IP:        ip,
		Path:      path,
		Method:    method,
		Timestamp: l.now(),
		Details:   details,
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	if len(l.events) > maxSecurityEvents {
		l.events = l.events[len(l.events)-maxSecurityEvents:]
	}
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Warn("security event",
			zap.String("security", eventType),
			zap.String("ip", ip),
			zap.String("path", path),
			zap.String("method", method),
			zap.Any("details", details),
		)
	}
}

// Recent returns up to limit events, newest first.
func (l *SecurityLog) Recent(limit int) []SecurityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.events) {
		limit = len(l.events)
	}
	out := make([]SecurityEvent, limit)
	for i := 0; i < limit; i++ {
		out[i] = l.events[len(l.events)-1-i]
	}
	return out
}
