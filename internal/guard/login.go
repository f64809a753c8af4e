package guard

import (
	"sync"
	"time"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

type loginEntry struct {
	count     int
	resetTime time.Time
}

// LoginLimiter throttles host login attempts per IP. A successful login
// clears the counter; failures accumulate within a fixed window.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginEntry
	now      func() time.Time
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{attempts: make(map[string]*loginEntry), now: time.Now}
}

// Allowed reports whether ip may attempt a login, and how many attempts
// remain before lockout.
func (l *LoginLimiter) Allowed(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.attempts[ip]
	if e == nil || !e.resetTime.After(l.now()) {
		return true, maxLoginAttempts
	}
	if e.count >= maxLoginAttempts {
		return false, 0
	}
	return true, maxLoginAttempts - e.count
}

// Record notes the outcome of one attempt.
func (l *LoginLimiter) Record(ip string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if success {
		delete(l.attempts, ip)
		return
	}
	now := l.now()
	e := l.attempts[ip]
	if e == nil || !e.resetTime.After(now) {
		e = &loginEntry{resetTime: now.Add(loginAttemptWindow)}
		l.attempts[ip] = e
	}
	e.count++
}
