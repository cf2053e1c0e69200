package models

// Finance summary range keys accepted by the upstream API.
const (
	FinanceRangeToday = "today"
	FinanceRangeWeek  = "week"
	FinanceRangeMonth = "month"
)

// RevenueEntry is a single revenue row, optionally linked to the booking or
// lead it came from. Amounts travel as decimal strings to avoid float
// rounding on money.
type RevenueEntry struct {
	ID        int64  `json:"id,omitempty"`
	Amount    string `json:"amount"`
	Source    string `json:"source,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
	LeadID    int64  `json:"lead_id,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CostEntry is a single cost row.
type CostEntry struct {
	ID        int64  `json:"id,omitempty"`
	Amount    string `json:"amount"`
	Category  string `json:"category,omitempty"`
	Vendor    string `json:"vendor,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FinanceSummary is the P&L snapshot the finance screen renders.
type FinanceSummary struct {
	Range        string            `json:"range"`
	RevenueTotal string            `json:"revenue_total"`
	CostTotal    string            `json:"cost_total"`
	GrossProfit  string            `json:"gross_profit"`
	MarginPct    string            `json:"margin_pct"`
	BySource     map[string]string `json:"by_source,omitempty"`
}

// ValidFinanceRange reports whether r is a known summary range.
func ValidFinanceRange(r string) bool {
	switch r {
	case FinanceRangeToday, FinanceRangeWeek, FinanceRangeMonth:
		return true
	}
	return false
}
