package guard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector() (*AnomalyDetector, *time.Time) {
	d := NewAnomalyDetector()
	current := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }
	return d, &current
}

func TestAnomalyQuietTrafficIsClean(t *testing.T) {
	d, _ := newTestDetector()

	for i := 0; i < 50; i++ {
		suspicious, _ := d.Observe("10.0.0.7", "/api/session")
		assert.False(t, suspicious)
	}
}

func TestAnomalyFlagsHighVolume(t *testing.T) {
	d, _ := newTestDetector()

	var suspicious bool
	var reason string
	for i := 0; i <= volumeThreshold; i++ {
		suspicious, reason = d.Observe("10.0.0.7", "/api/session")
	}
	assert.True(t, suspicious)
	assert.Equal(t, "too many requests in short time", reason)

	// Other origins are unaffected.
	clean, _ := d.Observe("10.0.0.8", "/api/session")
	assert.False(t, clean)
}

func TestAnomalyFlagsSensitiveEndpointHammering(t *testing.T) {
	d, _ := newTestDetector()

	var suspicious bool
	var reason string
	for i := 0; i <= sensitiveThreshold; i++ {
		suspicious, reason = d.Observe("10.0.0.7", "/api/auth/login")
	}
	assert.True(t, suspicious)
	assert.Equal(t, "excessive hits on auth/submission endpoints", reason)
}

func TestAnomalyFlagsPathScanning(t *testing.T) {
	d, _ := newTestDetector()

	var suspicious bool
	var reason string
	for i := 0; i <= distinctPathLimit; i++ {
		suspicious, reason = d.Observe("10.0.0.7", fmt.Sprintf("/scan/%d", i))
	}
	assert.True(t, suspicious)
	assert.Equal(t, "scanning behavior detected", reason)
}

func TestAnomalyWindowExpiry(t *testing.T) {
	d, current := newTestDetector()

	for i := 0; i <= volumeThreshold; i++ {
		d.Observe("10.0.0.7", "/api/session")
	}
	suspicious, _ := d.Observe("10.0.0.7", "/api/session")
	require.True(t, suspicious)

	// After the window lapses the slate is clean.
	*current = current.Add(anomalyWindow + time.Second)
	suspicious, _ = d.Observe("10.0.0.7", "/api/session")
	assert.False(t, suspicious)
}
