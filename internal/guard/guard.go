package guard

import (
	"sync"
	"time"

	"github.com/rollcall-app/rollcall/internal/config"
)

// Verdict is the outcome of one rate-limit check.
type Verdict struct {
	Allowed bool
	// Limit/Remaining/Reset back the X-RateLimit-* response headers.
	Limit     int
	Remaining int
	Reset     time.Time
	// RetryAfter is how long a denied caller should wait, in whole seconds.
	RetryAfter int
}

type entry struct {
	count      int
	resetTime  time.Time
	blocked    bool
	blockUntil time.Time
}

// RateGuard enforces fixed-window per-(IP, endpoint) ceilings with temporary
// blocking. Counting is intentionally approximate: bursts straddling a window
// boundary can admit up to twice the nominal ceiling, which is acceptable for
// abuse mitigation. All state is in-memory and resets with the process.
type RateGuard struct {
	mu        sync.Mutex
	entries   map[string]*entry
	endpoints map[string]config.EndpointLimit
	fallback  config.EndpointLimit

	now func() time.Time
}

// NewRateGuard builds a guard from the per-endpoint limit table.
func NewRateGuard(cfg config.GuardConfig) *RateGuard {
	endpoints := make(map[string]config.EndpointLimit, len(cfg.Endpoints))
	for path, limit := range cfg.Endpoints {
		endpoints[path] = limit
	}
	return &RateGuard{
		entries:   make(map[string]*entry),
		endpoints: endpoints,
		fallback:  config.DefaultLimit(),
		now:       time.Now,
	}
}

// Limit returns the ceiling applied to the given endpoint path.
func (g *RateGuard) Limit(path string) config.EndpointLimit {
	if limit, ok := g.endpoints[path]; ok {
		return limit
	}
	return g.fallback
}

// Check counts one request against (ip, path) and returns the verdict.
func (g *RateGuard) Check(ip, path string) Verdict {
	limit := g.Limit(path)
	key := ip + ":" + path
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	e := g.entries[key]

	// A block outlives the counting window; it denies without counting until
	// it expires, after which the next request starts a fresh window.
	if e != nil && e.blocked {
		if e.blockUntil.After(now) {
			return Verdict{
				Allowed:    false,
				Limit:      limit.MaxRequests,
				Reset:      e.blockUntil,
				RetryAfter: ceilSeconds(e.blockUntil.Sub(now)),
			}
		}
		e = nil
	}
	if e != nil && !e.resetTime.After(now) {
		e = nil
	}
	if e == nil {
		e = &entry{resetTime: now.Add(limit.Window)}
		g.entries[key] = e
	}

	e.count++
	if e.count > limit.MaxRequests {
		retryAfter := ceilSeconds(e.resetTime.Sub(now))
		if limit.BlockDuration > 0 {
			e.blocked = true
			e.blockUntil = now.Add(limit.BlockDuration)
			retryAfter = ceilSeconds(limit.BlockDuration)
		}
		return Verdict{
			Allowed:    false,
			Limit:      limit.MaxRequests,
			Reset:      e.resetTime,
			RetryAfter: retryAfter,
		}
	}

	return Verdict{
		Allowed:   true,
		Limit:     limit.MaxRequests,
		Remaining: limit.MaxRequests - e.count,
		Reset:     e.resetTime,
	}
}

// ClearEndpoint drops all counters for one endpoint path, used when a new
// session starts so students throttled during the previous session are not
// locked out of the new one.
func (g *RateGuard) ClearEndpoint(path string) {
	suffix := ":" + path
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.entries {
		if len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			delete(g.entries, key)
		}
	}
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
