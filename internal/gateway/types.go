package gateway

import "github.com/rollcall-app/rollcall/internal/models"

// Message kinds pushed to connected viewers. initial_data is connect-time
// only; the other three follow ledger/session mutations.
const (
	TypeInitialData        = "initial_data"
	TypeAttendanceRecorded = "attendance_recorded"
	TypeSessionToggled     = "session_toggled"
	TypeRecordsCleared     = "records_cleared"
)

// Message is the envelope for every frame on the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Snapshot is the catch-up payload a viewer receives on connect. Viewers
// that miss broadcasts resynchronize by reconnecting for a fresh snapshot;
// there is no replay.
type Snapshot struct {
	Records       []models.AttendanceRecord `json:"records"`
	SessionActive bool                      `json:"sessionActive"`
	Session       *models.Session           `json:"session,omitempty"`
}

// SnapshotFunc produces the current ledger/session state for a newly
// connected viewer. It runs inside the hub loop, so it observes a state no
// broadcast can overtake.
type SnapshotFunc func() (Snapshot, error)

// ToggleEvent is the payload of a session_toggled frame.
type ToggleEvent struct {
	Active  bool            `json:"active"`
	Session *models.Session `json:"session,omitempty"`
}
