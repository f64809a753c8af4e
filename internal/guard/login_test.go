package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoginLimiter() (*LoginLimiter, *time.Time) {
	l := NewLoginLimiter()
	current := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestLoginLimiterLocksAfterMaxFailures(t *testing.T) {
	l, _ := newTestLoginLimiter()

	for i := 0; i < maxLoginAttempts; i++ {
		allowed, remaining := l.Allowed("10.0.0.7")
		require.True(t, allowed)
		assert.Equal(t, maxLoginAttempts-i, remaining)
		l.Record("10.0.0.7", false)
	}

	allowed, remaining := l.Allowed("10.0.0.7")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// Other origins are untouched.
	allowed, _ = l.Allowed("10.0.0.8")
	assert.True(t, allowed)
}

func TestLoginLimiterSuccessClearsCounter(t *testing.T) {
	l, _ := newTestLoginLimiter()

	for i := 0; i < maxLoginAttempts-1; i++ {
		l.Record("10.0.0.7", false)
	}
	l.Record("10.0.0.7", true)

	allowed, remaining := l.Allowed("10.0.0.7")
	assert.True(t, allowed)
	assert.Equal(t, maxLoginAttempts, remaining)
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	l, current := newTestLoginLimiter()

	for i := 0; i < maxLoginAttempts; i++ {
		l.Record("10.0.0.7", false)
	}
	allowed, _ := l.Allowed("10.0.0.7")
	require.False(t, allowed)

	*current = current.Add(loginAttemptWindow + time.Second)
	allowed, remaining := l.Allowed("10.0.0.7")
	assert.True(t, allowed)
	assert.Equal(t, maxLoginAttempts, remaining)
}
