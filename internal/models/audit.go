package models

import "time"

// AuditEntry is one recorded portal operation.
type AuditEntry struct {
	ID        int64     `json:"id,omitempty"`
	TenantID  string    `json:"tenant_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Op        string    `json:"op"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	OK        bool      `json:"ok"`
	CreatedAt time.Time `json:"created_at"`
}
