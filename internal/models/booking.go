package models

import (
	"time"

	"fieldesk/internal/timeutil"
)

// Booking is the canonical record every screen works with after
// normalization. Timestamps stay in their raw wire form; parsed values are
// derived on demand so an unparseable upstream value is never lost.
type Booking struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Note      string `json:"note,omitempty"`
	StartsAt  string `json:"starts_at,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Completed bool   `json:"completed"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// StartTime parses the raw start timestamp. ok is false when the value is
// absent or not a recognizable timestamp.
func (b *Booking) StartTime() (time.Time, bool) {
	return timeutil.ParseTimestamp(b.StartsAt)
}

// CreatedTime parses the raw created timestamp, falling back to the start
// time when the record carries no created_at. Used by the "newest" sort.
func (b *Booking) CreatedTime() (time.Time, bool) {
	if t, ok := timeutil.ParseTimestamp(b.CreatedAt); ok {
		return t, true
	}
	return b.StartTime()
}
