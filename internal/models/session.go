package models

import "time"

// Session is one bounded collection window. At most one session row has
// IsActive=true at any time; closed sessions are retained as history.
type Session struct {
	Base
	Name      string     `json:"name,omitempty"`
	StartTime time.Time  `json:"startTime"     gorm:"not null;index"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	IsActive  bool       `json:"isActive"      gorm:"not null;index"`

	// HostIP is the origin that started the session. Under the session-lock
	// admission policy it is the sole authorized submission origin.
	HostIP string `json:"hostIp,omitempty"`

	// LateThreshold is minutes after StartTime before a submission is
	// classified late.
	LateThreshold int `json:"lateThreshold" gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }
