package models

import "time"

// Notification levels.
const (
	NoticeError = "error"
	NoticeInfo  = "info"
)

// Notification is a one-shot user-visible message: it is delivered to the
// session once and then discarded, never stored as persistent state.
type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
