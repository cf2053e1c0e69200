package models

// Lead statuses mirror the upstream pipeline.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

type Lead struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// ValidLeadStatus reports whether s is a recognized pipeline status.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}
