package guard

import (
	"strings"
	"sync"
	"time"
)

const (
	maxRecentRequests = 1000
	anomalyWindow     = 5 * time.Minute

	volumeThreshold    = 100
	sensitiveThreshold = 20
	distinctPathLimit  = 50
)

type requestPattern struct {
	ip        string
	path      string
	timestamp time.Time
}

// AnomalyDetector keeps a bounded ring of recent requests and flags origins
// whose pattern looks like flooding, credential stuffing or path scanning.
// Its output is advisory: callers log the flag, rate limiting does the
// blocking, so a false positive never locks anyone out.
type AnomalyDetector struct {
	mu     sync.Mutex
	recent []requestPattern
	now    func() time.Time
}

func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{now: time.Now}
}

// Observe records one request and reports whether the origin now looks
// suspicious, with a reason when it does.
func (d *AnomalyDetector) Observe(ip, path string) (suspicious bool, reason string) {
	now := d.now()
	cutoff := now.Add(-anomalyWindow)

	d.mu.Lock()
	defer d.mu.Unlock()

	// Drop expired entries from the front; the ring is append-only otherwise.
	start := 0
	for start < len(d.recent) && d.recent[start].timestamp.Before(cutoff) {
		start++
	}
	d.recent = d.recent[start:]

	d.recent = append(d.recent, requestPattern{ip: ip, path: path, timestamp: now})
	if len(d.recent) > maxRecentRequests {
		d.recent = d.recent[len(d.recent)-maxRecentRequests:]
	}

	fromIP := 0
	sensitive := 0
	paths := make(map[string]struct{})
	for _, r := range d.recent {
		if r.ip != ip {
			continue
		}
		fromIP++
		if strings.Contains(r.path, "/auth/login") || strings.Contains(r.path, "/api/attendance") {
			sensitive++
		}
		paths[r.path] = struct{}{}
	}

	switch {
	case fromIP > volumeThreshold:
		return true, "too many requests in short time"
	case sensitive > sensitiveThreshold:
		return true, "excessive hits on auth/submission endpoints"
	case len(paths) > distinctPathLimit:
		return true, "scanning behavior detected"
	}
	return false, ""
}
