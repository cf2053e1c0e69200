package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fieldesk/internal/export"
	"fieldesk/internal/models"
	"fieldesk/internal/service"
	"fieldesk/internal/upstream"
)

// writeServiceError maps rejected input onto 400 and everything else onto
// the upstream error path.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeUpstreamError(w, err)
}

func (s *HTTPServer) handleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		leads, err := s.leads.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "total": len(leads)})
	case http.MethodPost:
		var req upstream.CreateLeadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.leads.Create(r.Context(), req); err != nil {
			writeServiceError(w, err)
			return
		}
		s.recordAudit(r, "lead.create", req.Name, "", true)
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleLeadStatus serves POST /api/v1/leads/{id}/status.
func (s *HTTPServer) handleLeadStatus(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/leads/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "status" || r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !models.ValidLeadStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "unknown lead status")
		return
	}

	if err := s.leads.UpdateStatus(r.Context(), id, body.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	s.recordAudit(r, "lead.status", parts[0], body.Status, true)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleRevenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var entry models.RevenueEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.finance.AddRevenue(r.Context(), entry); err != nil {
		writeServiceError(w, err)
		return
	}
	s.recordAudit(r, "finance.revenue", entry.Source, entry.Amount, true)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

func (s *HTTPServer) handleCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var entry models.CostEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.finance.AddCost(r.Context(), entry); err != nil {
		writeServiceError(w, err)
		return
	}
	s.recordAudit(r, "finance.cost", entry.Category, entry.Amount, true)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

func (s *HTTPServer) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := s.finance.Summary(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *HTTPServer) handleTenant(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.tenant.Profile(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodPut:
		var profile models.TenantProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.tenant.UpdateProfile(r.Context(), profile); err != nil {
			writeServiceError(w, err)
			return
		}
		s.recordAudit(r, "tenant.update", profile.Slug, "", true)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleQBOPlan(w http.ResponseWriter, r *http.Request) {
	s.handleQBO(w, r, "qbo.plan", s.tenant.QBOPlan)
}

func (s *HTTPServer) handleQBOCommit(w http.ResponseWriter, r *http.Request) {
	s.handleQBO(w, r, "qbo.commit", s.tenant.QBOCommit)
}

func (s *HTTPServer) handleQBO(w http.ResponseWriter, r *http.Request, op string, call func(ctx context.Context, req upstream.QBOExportRequest) (json.RawMessage, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req upstream.QBOExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	raw, err := call(r.Context(), req)
	if err != nil {
		s.recordAudit(r, op, req.From+".."+req.To, err.Error(), false)
		writeServiceError(w, err)
		return
	}

	s.recordAudit(r, op, req.From+".."+req.To, "", true)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// handleExportBookings writes the current list to a workbook and streams it
// back.
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path, err := export.BookingsWorkbook(s.bookings.Bookings(), s.exports.Path, s.zone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAudit(r, "export.bookings", path, "", true)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

func (s *HTTPServer) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.audit == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []models.AuditEntry{}})
		return
	}

	limit := models.AuditRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
