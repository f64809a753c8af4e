package models

// Student is a registered directory entry used to pre-fill submissions and
// show per-student history. Password is a bcrypt hash, never serialized.
type Student struct {
	Base
	StudentID  string `json:"studentId"        gorm:"uniqueIndex;not null"`
	Name       string `json:"name"             gorm:"not null"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department"       gorm:"not null"`
	Year       string `json:"year,omitempty"`
	Password   string `json:"-"                gorm:"not null"`
}

func (Student) TableName() string { return "students" }
