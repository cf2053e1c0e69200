package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"fieldesk/internal/models"
	"fieldesk/internal/normalize"
)

// Leads, finance, tenant settings and the QuickBooks exporter are single
// fetch/submit surfaces: no local state beyond what one request returns.

func (c *Client) ListLeads(ctx context.Context) ([]models.Lead, error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/leads", nil)
	if err != nil {
		return nil, err
	}

	result := normalize.DecodeList(body)
	if result.Kind == normalize.ListUnrecognized {
		c.logger.Warn().Str("endpoint", "/admin/leads").Msg("unrecognized lead list shape, treating as empty")
	}

	leads := make([]models.Lead, 0, len(result.Records))
	for _, rec := range result.Records {
		leads = append(leads, leadFromRecord(rec))
	}
	return leads, nil
}

type CreateLeadRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *Client) CreateLead(ctx context.Context, req CreateLeadRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/lead", req)
	return err
}

func (c *Client) UpdateLeadStatus(ctx context.Context, id int64, status string) error {
	payload := map[string]string{"status": status}
	_, err := c.do(ctx, http.MethodPost, "/admin/leads/"+strconv.FormatInt(id, 10)+"/status", payload)
	return err
}

func (c *Client) AddRevenue(ctx context.Context, entry models.RevenueEntry) error {
	_, err := c.do(ctx, http.MethodPost, "/finance/revenue", entry)
	return err
}

func (c *Client) AddCost(ctx context.Context, entry models.CostEntry) error {
	_, err := c.do(ctx, http.MethodPost, "/finance/cost", entry)
	return err
}

func (c *Client) FinanceSummary(ctx context.Context, rangeKey string) (*models.FinanceSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/finance/summary?range="+url.QueryEscape(rangeKey), nil)
	if err != nil {
		return nil, err
	}

	var summary models.FinanceSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("decode finance summary: %w", err)
	}
	return &summary, nil
}

func (c *Client) TenantProfile(ctx context.Context) (*models.TenantProfile, error) {
	body, err := c.do(ctx, http.MethodGet, "/tenant/profile", nil)
	if err != nil {
		return nil, err
	}

	var profile models.TenantProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decode tenant profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) UpdateTenantProfile(ctx context.Context, profile models.TenantProfile) error {
	_, err := c.do(ctx, http.MethodPut, "/tenant/profile", profile)
	return err
}

// QBOExportRequest selects the finance window to export.
type QBOExportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// QBOPlan returns the exporter's dry-run response verbatim; the panel
// renders it as-is.
func (c *Client) QBOPlan(ctx context.Context, req QBOExportRequest) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPost, "/qbo/export/plan", req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) QBOCommit(ctx context.Context, req QBOExportRequest) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPost, "/qbo/export/commit", req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func leadFromRecord(rec map[string]any) models.Lead {
	lead := models.Lead{
		Name:      asString(rec["name"]),
		Phone:     asString(rec["phone"]),
		Email:     asString(rec["email"]),
		Message:   asString(rec["message"]),
		Status:    asString(rec["status"]),
		Source:    asString(rec["source"]),
		CreatedAt: asString(rec["created_at"]),
		TenantID:  asString(rec["tenant_id"]),
	}
	if id, ok := rec["id"].(float64); ok {
		lead.ID = int64(id)
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	return lead
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
