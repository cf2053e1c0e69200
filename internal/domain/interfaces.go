package domain

import (
	"context"
	"encoding/json"
	"time"

	"fieldesk/internal/models"
	"fieldesk/internal/upstream"
)

// BookingAPI is the external booking API contract the view-model consumes.
type BookingAPI interface {
	ListBookings(ctx context.Context) ([]map[string]any, error)
	CreateBooking(ctx context.Context, req upstream.CreateBookingRequest) error
	CompleteBooking(ctx context.Context, id string) error
	DeleteBooking(ctx context.Context, id string) error
}

// PortalAPI covers the simpler screens: leads, finance, tenant settings and
// the QuickBooks exporter.
type PortalAPI interface {
	ListLeads(ctx context.Context) ([]models.Lead, error)
	CreateLead(ctx context.Context, req upstream.CreateLeadRequest) error
	UpdateLeadStatus(ctx context.Context, id int64, status string) error
	AddRevenue(ctx context.Context, entry models.RevenueEntry) error
	AddCost(ctx context.Context, entry models.CostEntry) error
	FinanceSummary(ctx context.Context, rangeKey string) (*models.FinanceSummary, error)
	TenantProfile(ctx context.Context) (*models.TenantProfile, error)
	UpdateTenantProfile(ctx context.Context, profile models.TenantProfile) error
	QBOPlan(ctx context.Context, req upstream.QBOExportRequest) (json.RawMessage, error)
	QBOCommit(ctx context.Context, req upstream.QBOExportRequest) (json.RawMessage, error)
}

// ViewStateRepository stores per-session view state.
type ViewStateRepository interface {
	GetState(ctx context.Context, sessionID string) (*models.ViewState, error)
	SetState(ctx context.Context, state *models.ViewState) error
	ClearState(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers one-shot user-visible notifications to a session.
type Notifier interface {
	Notify(sessionID, level, message string)
}

// AuditLog records portal operations.
type AuditLog interface {
	Record(ctx context.Context, entry models.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}
