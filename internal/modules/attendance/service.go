package attendance

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rollcall-app/rollcall/internal/models"
	sessionmod "github.com/rollcall-app/rollcall/internal/modules/session"
	"github.com/rollcall-app/rollcall/internal/store"
)

// Ledger rejections. Each precondition failure maps to its own error so the
// handler can answer with a distinct status and message.
var (
	ErrSessionInactive = errors.New("no active session")
	ErrDuplicate       = errors.New("attendance already submitted for this session")
	ErrIPQuota         = errors.New("maximum submissions per IP address reached")
)

// Notifier receives ledger mutations for fan-out.
type Notifier interface {
	NotifyAttendanceRecorded(r *models.AttendanceRecord)
	NotifyRecordsCleared()
}

// SubmitInput is one validated submission attempt.
type SubmitInput struct {
	Name       string
	StudentID  string
	Department string
	IPAddress  string
	Device     string

	// DeviceID identifies the submitting device for session claiming;
	// Persistent reports whether the client supplied it (vs the IP+device
	// fallback).
	DeviceID   string
	Persistent bool
}

// Service is the attendance ledger: append-mostly, one record per
// (session, student), per-IP volume capped.
type Service struct {
	store    store.Store
	sessions *sessionmod.Service
	notifier Notifier
	ipCap    int

	// mu serializes submissions so the duplicate and quota checks and the
	// decisive write form one step.
	mu  sync.Mutex
	now func() time.Time
}

func NewService(st store.Store, sessions *sessionmod.Service, notifier Notifier, perIPCap int) *Service {
	return &Service{
		store:    st,
		sessions: sessions,
		notifier: notifier,
		ipCap:    perIPCap,
		now:      time.Now,
	}
}

// Submit runs the precondition chain and, on acceptance, stores the record
// and hands it to the notifier. The caller's response and the broadcast
// carry the same stored record.
func (s *Service) Submit(in SubmitInput) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionInactive
	}

	existing, err := s.store.FindRecord(sess.ID, in.StudentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicate
	}

	count, err := s.store.CountRecordsByIP(in.IPAddress)
	if err != nil {
		return nil, err
	}
	if s.ipCap > 0 && count >= s.ipCap {
		return nil, fmt.Errorf("%w (%d)", ErrIPQuota, s.ipCap)
	}

	if err := s.sessions.CheckAndClaim(in.DeviceID, in.Persistent); err != nil {
		return nil, err
	}

	now := s.now()
	record := &models.AttendanceRecord{
		SessionID:  sess.ID,
		Name:       in.Name,
		StudentID:  in.StudentID,
		Department: in.Department,
		IPAddress:  in.IPAddress,
		Device:     in.Device,
		Timestamp:  now,
		Status:     s.sessions.Classify(sess, now),
	}
	if err := s.store.CreateRecord(record); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyAttendanceRecorded(record)
	}
	return record, nil
}

// Active reports the current session, nil when none is open. Submit
// re-checks under its own lock; this read only orders the handler's
// precondition responses.
func (s *Service) Active() (*models.Session, error) {
	return s.sessions.Current()
}

// List returns all records, newest first.
func (s *Service) List() ([]models.AttendanceRecord, error) {
	return s.store.ListRecords()
}

// Delete removes one record; false means it did not exist.
func (s *Service) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteRecord(id)
}

// Clear empties the ledger and broadcasts the reset. Clearing an empty
// ledger is not an error and still broadcasts, so viewers reconcile.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.ClearRecords(); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyRecordsCleared()
	}
	return nil
}
