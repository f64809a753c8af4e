package store

import (
	"time"

	"github.com/rollcall-app/rollcall/internal/models"
)

// Store is the persistence boundary for sessions, attendance records and the
// student directory. Lookups return (nil, nil) when the row does not exist;
// errors are reserved for backend failures. Core modules depend only on this
// interface so the memory and relational backends stay interchangeable.
type Store interface {
	// Sessions
	ActiveSession() (*models.Session, error)
	GetSession(id string) (*models.Session, error)
	CreateSession(s *models.Session) error
	CloseSession(id string, end time.Time) (*models.Session, error)
	ListSessions() ([]models.Session, error)

	// Attendance records
	CreateRecord(r *models.AttendanceRecord) error
	ListRecords() ([]models.AttendanceRecord, error)
	ListSessionRecords(sessionID string) ([]models.AttendanceRecord, error)
	ListStudentRecords(studentID string) ([]models.AttendanceRecord, error)
	FindRecord(sessionID, studentID string) (*models.AttendanceRecord, error)
	CountRecordsByIP(ip string) (int, error)
	DeleteRecord(id string) (bool, error)
	ClearRecords() error

	// Student directory
	CreateStudent(s *models.Student) error
	FindStudent(studentID string) (*models.Student, error)
}
