package models

// TenantProfile holds the per-tenant branding and link settings editable
// from the settings screen.
type TenantProfile struct {
	Slug            string `json:"slug"`
	FromName        string `json:"from_name"`
	BookingLink     string `json:"booking_link,omitempty"`
	ReviewGoogleURL string `json:"review_google_url,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}
