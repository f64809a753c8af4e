package store

import (
	"errors"
	"time"

	"github.com/rollcall-app/rollcall/internal/models"
	"gorm.io/gorm"
)

// Gorm backs the store with a relational database (sqlite or mysql).
type Gorm struct{ db *gorm.DB }

// NewGorm wraps an open gorm connection.
func NewGorm(db *gorm.DB) *Gorm { return &Gorm{db: db} }

func (g *Gorm) ActiveSession() (*models.Session, error) {
	var s models.Session
	err := g.db.Where("is_active = ?", true).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *Gorm) GetSession(id string) (*models.Session, error) {
	var s models.Session
	err := g.db.First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *Gorm) CreateSession(s *models.Session) error {
	return g.db.Create(s).Error
}

func (g *Gorm) CloseSession(id string, end time.Time) (*models.Session, error) {
	res := g.db.Model(&models.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "end_time": end})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return g.GetSession(id)
}

func (g *Gorm) ListSessions() ([]models.Session, error) {
	var out []models.Session
	err := g.db.Order("start_time DESC").Find(&out).Error
	return out, err
}

func (g *Gorm) CreateRecord(r *models.AttendanceRecord) error {
	return g.db.Create(r).Error
}

func (g *Gorm) ListRecords() ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := g.db.Order("timestamp DESC").Find(&out).Error
	return out, err
}

func (g *Gorm) ListSessionRecords(sessionID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := g.db.Where("session_id = ?", sessionID).Order("timestamp DESC").Find(&out).Error
	return out, err
}

func (g *Gorm) ListStudentRecords(studentID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := g.db.Where("student_id = ?", studentID).Order("timestamp DESC").Find(&out).Error
	return out, err
}

func (g *Gorm) FindRecord(sessionID, studentID string) (*models.AttendanceRecord, error) {
	var r models.AttendanceRecord
	err := g.db.Where("session_id = ? AND student_id = ?", sessionID, studentID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (g *Gorm) CountRecordsByIP(ip string) (int, error) {
	var n int64
	err := g.db.Model(&models.AttendanceRecord{}).Where("ip_address = ?", ip).Count(&n).Error
	return int(n), err
}

func (g *Gorm) DeleteRecord(id string) (bool, error) {
	res := g.db.Delete(&models.AttendanceRecord{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (g *Gorm) ClearRecords() error {
	return g.db.Where("1 = 1").Delete(&models.AttendanceRecord{}).Error
}

func (g *Gorm) CreateStudent(s *models.Student) error {
	return g.db.Create(s).Error
}

func (g *Gorm) FindStudent(studentID string) (*models.Student, error) {
	var s models.Student
	err := g.db.Where("student_id = ?", studentID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
