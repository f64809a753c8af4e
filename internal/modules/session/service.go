package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/rollcall-app/rollcall/internal/models"
	"github.com/rollcall-app/rollcall/internal/store"
)

// Device-claim rejections, distinguished so the client can tell a user to
// supply a persistent device ID versus telling them the session is taken.
var (
	ErrClaimMissingID = errors.New("another device has already claimed this active session; no persistent device id was supplied")
	ErrClaimMismatch  = errors.New("a different device id has already claimed this active session")
)

// Notifier receives session state transitions for fan-out.
type Notifier interface {
	NotifySessionToggled(active bool, s *models.Session)
}

// Limiter lets the service drop stale rate-limit counters when a new
// collection window opens.
type Limiter interface {
	ClearEndpoint(path string)
}

// Service is the session state machine: the single authority on whether
// collection is open and who may submit. All check-then-act sequences run
// under one mutex so racing toggles or claims cannot interleave.
type Service struct {
	store    store.Store
	cfg      config.SessionConfig
	notifier Notifier
	limiter  Limiter

	mu    sync.Mutex
	claim string // device that claimed the active session, "" = unclaimed

	now func() time.Time
}

func NewService(st store.Store, cfg config.SessionConfig, notifier Notifier, limiter Limiter) *Service {
	return &Service{
		store:    st,
		cfg:      cfg,
		notifier: notifier,
		limiter:  limiter,
		now:      time.Now,
	}
}

// Current returns the active session, or nil when collection is closed.
func (s *Service) Current() (*models.Session, error) {
	return s.store.ActiveSession()
}

// ActiveHostIP returns the origin that started the active session, or ""
// when none is active. Used by the session-lock admission policy.
func (s *Service) ActiveHostIP() string {
	active, err := s.store.ActiveSession()
	if err != nil || active == nil {
		return ""
	}
	return active.HostIP
}

// Toggle flips the collection state. The server, not the caller, decides the
// direction from current state, which keeps two racing toggles from both
// starting (or both stopping) a session. Returns the resulting state and the
// session that was opened or closed.
func (s *Service) Toggle(hostIP, name string, lateThresholdMinutes int) (bool, *models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.store.ActiveSession()
	if err != nil {
		return false, nil, err
	}

	// Either direction invalidates the device claim.
	s.claim = ""

	if active != nil {
		closed, err := s.store.CloseSession(active.ID, s.now())
		if err != nil {
			return false, nil, err
		}
		if closed == nil {
			closed = active
		}
		if s.notifier != nil {
			s.notifier.NotifySessionToggled(false, closed)
		}
		return false, closed, nil
	}

	threshold := lateThresholdMinutes
	if threshold <= 0 {
		threshold = int(s.cfg.LateThreshold / time.Minute)
	}
	sess := &models.Session{
		Name:          strings.TrimSpace(name),
		StartTime:     s.now(),
		IsActive:      true,
		HostIP:        hostIP,
		LateThreshold: threshold,
	}
	if err := s.store.CreateSession(sess); err != nil {
		return false, nil, err
	}

	// Students throttled during the previous session get a clean slate.
	if s.limiter != nil {
		s.limiter.ClearEndpoint("/api/attendance")
	}
	if s.notifier != nil {
		s.notifier.NotifySessionToggled(true, sess)
	}
	return true, sess, nil
}

// Classify derives the submission status from elapsed time since the
// session opened.
func (s *Service) Classify(sess *models.Session, at time.Time) string {
	threshold := time.Duration(sess.LateThreshold) * time.Minute
	if threshold <= 0 {
		threshold = s.cfg.LateThreshold
	}
	if at.Sub(sess.StartTime) > threshold {
		return models.StatusLate
	}
	return models.StatusPresent
}

// CheckAndClaim enforces the optional one-device-per-session lock. The first
// accepted submission claims the session; later submissions must present the
// same device identifier. persistent reports whether the caller supplied a
// client-generated ID rather than the IP+device fallback.
func (s *Service) CheckAndClaim(deviceID string, persistent bool) error {
	if !s.cfg.DeviceClaiming {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claim == "" {
		s.claim = deviceID
		return nil
	}
	if s.claim == deviceID {
		return nil
	}
	if !persistent {
		return ErrClaimMissingID
	}
	return ErrClaimMismatch
}

// History returns all sessions, newest first.
func (s *Service) History() ([]models.Session, error) {
	return s.store.ListSessions()
}

// Records returns the attendance records of one session.
func (s *Service) Records(sessionID string) ([]models.AttendanceRecord, error) {
	return s.store.ListSessionRecords(sessionID)
}

// Get returns one session by ID, nil when unknown.
func (s *Service) Get(sessionID string) (*models.Session, error) {
	return s.store.GetSession(sessionID)
}
