package student

import (
	"errors"
	"sync"

	"github.com/rollcall-app/rollcall/internal/models"
	"github.com/rollcall-app/rollcall/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrExists         = errors.New("student ID is already registered")
	ErrBadCredentials = errors.New("invalid student ID or password")
)

// RegisterInput is a validated registration request.
type RegisterInput struct {
	StudentID  string
	Name       string
	Email      string
	Phone      string
	Department string
	Year       string
	Password   string
}

// Service manages the registered-student directory.
type Service struct {
	store store.Store
	// mu serializes the exists-check-then-create pair in Register.
	mu sync.Mutex
}

func NewService(st store.Store) *Service { return &Service{store: st} }

// Register creates a directory entry with a bcrypt-hashed password.
func (s *Service) Register(in RegisterInput) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.FindStudent(in.StudentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		StudentID:  in.StudentID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Year:       in.Year,
		Password:   string(hash),
	}
	if err := s.store.CreateStudent(student); err != nil {
		return nil, err
	}
	return student, nil
}

// Login verifies credentials and returns the profile for client-side
// pre-fill. Unknown IDs and wrong passwords are indistinguishable.
func (s *Service) Login(studentID, password string) (*models.Student, error) {
	student, err := s.store.FindStudent(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return student, nil
}

// Get returns a profile by student ID, nil when unknown.
func (s *Service) Get(studentID string) (*models.Student, error) {
	return s.store.FindStudent(studentID)
}

// History returns every attendance record the student has submitted.
func (s *Service) History(studentID string) ([]models.AttendanceRecord, error) {
	return s.store.ListStudentRecords(studentID)
}
