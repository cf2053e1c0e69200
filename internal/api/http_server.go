package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fieldesk/internal/alerts"
	"fieldesk/internal/config"
	"fieldesk/internal/domain"
	"fieldesk/internal/metrics"
	"fieldesk/internal/models"
	"fieldesk/internal/service"
	"fieldesk/internal/view"
)

// sessionHeader carries the SPA's session id; the server mints one when the
// client has none yet.
const sessionHeader = "X-Session-Id"

// HTTPServer exposes the portal JSON API the admin SPA talks to.
type HTTPServer struct {
	cfg      config.HTTPConfig
	bookings *view.BookingModel
	leads    *service.LeadService
	finance  *service.FinanceService
	tenant   *service.TenantService
	states   domain.ViewStateRepository
	audit    domain.AuditLog
	alerts   *alerts.Center
	exports  config.ExportConfig
	zone     *time.Location
	tenantID string
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

type Deps struct {
	Bookings *view.BookingModel
	Leads    *service.LeadService
	Finance  *service.FinanceService
	Tenant   *service.TenantService
	States   domain.ViewStateRepository
	Audit    domain.AuditLog
	Alerts   *alerts.Center
	Exports  config.ExportConfig
	Zone     *time.Location
	TenantID string
}

func NewHTTPServer(cfg config.HTTPConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: deps.Bookings,
		leads:    deps.Leads,
		finance:  deps.Finance,
		tenant:   deps.Tenant,
		states:   deps.States,
		audit:    deps.Audit,
		alerts:   deps.Alerts,
		exports:  deps.Exports,
		zone:     deps.Zone,
		tenantID: deps.TenantID,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/view", srv.handleViewState)
	mux.HandleFunc("/api/v1/notifications", srv.handleNotifications)
	mux.HandleFunc("/api/v1/leads", srv.handleLeads)
	mux.HandleFunc("/api/v1/leads/", srv.handleLeadStatus)
	mux.HandleFunc("/api/v1/finance/revenue", srv.handleRevenue)
	mux.HandleFunc("/api/v1/finance/cost", srv.handleCost)
	mux.HandleFunc("/api/v1/finance/summary", srv.handleFinanceSummary)
	mux.HandleFunc("/api/v1/tenant", srv.handleTenant)
	mux.HandleFunc("/api/v1/qbo/plan", srv.handleQBOPlan)
	mux.HandleFunc("/api/v1/qbo/commit", srv.handleQBOCommit)
	mux.HandleFunc("/api/v1/export/bookings.xlsx", srv.handleExportBookings)
	mux.HandleFunc("/api/v1/audit", srv.handleAudit)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.sessionMiddleware(srv.auth.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("portal HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionMiddleware guarantees every request carries a session id and
// echoes it back so the SPA can persist it.
func (s *HTTPServer) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
			r.Header.Set(sessionHeader, sessionID)
		}
		w.Header().Set(sessionHeader, sessionID)
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path, strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func sessionID(r *http.Request) string {
	return r.Header.Get(sessionHeader)
}

// viewStateFor loads the session's stored view state, falling back to
// defaults when the session is new or the store is unavailable.
func (s *HTTPServer) viewStateFor(r *http.Request) *models.ViewState {
	sid := sessionID(r)
	state, err := s.states.GetState(r.Context(), sid)
	if err != nil {
		s.logger.Warn().Err(err).Msg("load view state")
	}
	if state == nil {
		state = models.DefaultViewState(sid)
	}
	return state
}

func (s *HTTPServer) recordAudit(r *http.Request, op, subject, detail string, ok bool) {
	if s.audit == nil {
		return
	}
	entry := models.AuditEntry{
		TenantID:  s.tenantID,
		SessionID: sessionID(r),
		Op:        op,
		Subject:   subject,
		Detail:    detail,
		OK:        ok,
	}
	if err := s.audit.Record(r.Context(), entry); err != nil {
		s.logger.Warn().Err(err).Str("op", op).Msg("record audit entry")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
