package models

const (
	// DefaultSlotMinutes is the booking length when the form does not ask
	// for an end time.
	DefaultSlotMinutes = 60

	// DefaultDisplayZone is where the business physically operates; list
	// times render in this zone, not the viewer's.
	DefaultDisplayZone = "America/New_York"

	// DefaultSessionTTL bounds how long per-session view state lives in
	// the state store, in seconds.
	DefaultSessionTTL = 24 * 60 * 60

	// RateLimitRequests is the per-session mutation budget within
	// RateLimitWindow seconds.
	RateLimitRequests = 30
	RateLimitWindow   = 60

	// AuditRecentLimit caps the admin audit listing.
	AuditRecentLimit = 100
)
