package models

// Time-range selector values for the booking list.
const (
	RangeToday  = "today"
	RangeNext7  = "next7"
	RangeNext30 = "next30"
	RangeAll    = "all"
)

// Sort keys for the booking list.
const (
	SortUpcoming = "upcoming"
	SortNewest   = "newest"
)

// ViewState is the ephemeral per-session view configuration for the booking
// screen. It is never persisted past the session TTL.
type ViewState struct {
	SessionID      string `json:"session_id,omitempty"`
	Search         string `json:"search"`
	Range          string `json:"range"`
	HidePast       bool   `json:"hide_past"`
	Sort           string `json:"sort"`
	CompletedOnly  bool   `json:"completed_only"`
	IncompleteOnly bool   `json:"incomplete_only"`
}

// DefaultViewState returns the state a fresh session starts with.
func DefaultViewState(sessionID string) *ViewState {
	return &ViewState{
		SessionID: sessionID,
		Range:     RangeAll,
		Sort:      SortUpcoming,
	}
}

// SetCompletedOnly enables or disables the completed filter. Enabling it
// clears IncompleteOnly: the two flags are mutually exclusive by
// construction, enforced here at the mutation boundary rather than inside
// the list derivation.
func (v *ViewState) SetCompletedOnly(on bool) {
	v.CompletedOnly = on
	if on {
		v.IncompleteOnly = false
	}
}

// SetIncompleteOnly enables or disables the incomplete filter, clearing
// CompletedOnly when enabled.
func (v *ViewState) SetIncompleteOnly(on bool) {
	v.IncompleteOnly = on
	if on {
		v.CompletedOnly = false
	}
}

// ValidRange reports whether the value is a known range selector.
func ValidRange(r string) bool {
	switch r {
	case RangeToday, RangeNext7, RangeNext30, RangeAll:
		return true
	}
	return false
}

// ValidSort reports whether the value is a known sort key.
func ValidSort(s string) bool {
	return s == SortUpcoming || s == SortNewest
}
