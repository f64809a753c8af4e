package models

import "time"

// Submission status values derived at write time.
const (
	StatusPresent = "present"
	StatusLate    = "late"
)

// AttendanceRecord is a single accepted submission. Records are immutable
// after creation; the only mutations the ledger allows are deletes.
type AttendanceRecord struct {
	Base
	SessionID  string    `json:"sessionId"            gorm:"index;not null"`
	Name       string    `json:"name"                 gorm:"not null"`
	StudentID  string    `json:"studentId"            gorm:"index;not null"`
	Department string    `json:"department,omitempty"`
	IPAddress  string    `json:"ipAddress"            gorm:"index;not null"`
	Device     string    `json:"device"               gorm:"not null"`
	Timestamp  time.Time `json:"timestamp"            gorm:"not null"`
	Status     string    `json:"status"               gorm:"not null;default:present"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }
