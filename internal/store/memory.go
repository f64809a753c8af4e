package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rollcall-app/rollcall/internal/models"
)

// Memory is the default store: plain maps behind one mutex. All state is
// volatile and owned by the single server process.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	records  map[string]models.AttendanceRecord
	students map[string]models.Student // keyed by StudentID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]models.Session),
		records:  make(map[string]models.AttendanceRecord),
		students: make(map[string]models.Student),
	}
}

func (m *Memory) ActiveSession() (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.IsActive {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetSession(id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (m *Memory) CreateSession(s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) CloseSession(id string, end time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	s.IsActive = false
	s.EndTime = &end
	m.sessions[id] = s
	out := s
	return &out, nil
}

func (m *Memory) ListSessions() ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m *Memory) CreateRecord(r *models.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.records[r.ID] = *r
	return nil
}

func (m *Memory) ListRecords() ([]models.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(models.AttendanceRecord) bool { return true }), nil
}

func (m *Memory) ListSessionRecords(sessionID string) ([]models.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(r models.AttendanceRecord) bool { return r.SessionID == sessionID }), nil
}

func (m *Memory) ListStudentRecords(studentID string) ([]models.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(r models.AttendanceRecord) bool { return r.StudentID == studentID }), nil
}

// collect returns matching records newest first. Callers hold m.mu.
func (m *Memory) collect(match func(models.AttendanceRecord) bool) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(m.records))
	for _, r := range m.records {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (m *Memory) FindRecord(sessionID, studentID string) (*models.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.SessionID == sessionID && r.StudentID == studentID {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) CountRecordsByIP(ip string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.records {
		if r.IPAddress == ip {
			count++
		}
	}
	return count, nil
}

func (m *Memory) DeleteRecord(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func (m *Memory) ClearRecords() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]models.AttendanceRecord)
	return nil
}

func (m *Memory) CreateStudent(s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	m.students[s.StudentID] = *s
	return nil
}

func (m *Memory) FindStudent(studentID string) (*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.students[studentID]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}
