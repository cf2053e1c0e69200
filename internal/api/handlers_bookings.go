package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fieldesk/internal/models"
	"fieldesk/internal/timeutil"
	"fieldesk/internal/upstream"
	"fieldesk/internal/view"
)

// bookingRow is a display-ready booking for the list table.
type bookingRow struct {
	models.Booking
	DisplayTime string `json:"display_time,omitempty"`
}

// handleBookings serves the visible list (GET) and the create form (POST).
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listBookings derives the visible list from the session's view state,
// with query parameters as per-request overrides. The list is loaded lazily
// on the first request of a process lifetime.
func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	if s.bookings.State() == view.StateIdle {
		if err := s.bookings.Load(r.Context(), sessionID(r)); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}

	vs := s.viewStateFor(r)
	applyQueryOverrides(vs, r)

	visible := s.bookings.VisibleBookings(*vs)
	rows := make([]bookingRow, 0, len(visible))
	for _, b := range visible {
		rows = append(rows, bookingRow{
			Booking:     b,
			DisplayTime: timeutil.FormatForDisplay(b.StartsAt, s.zone),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":    s.bookings.State().String(),
		"bookings": rows,
		"total":    len(rows),
	})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	if !s.allowMutation(w, r) {
		return
	}

	var input view.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.bookings.Create(r.Context(), sessionID(r), input)
	if err != nil {
		s.recordAudit(r, "booking.create", input.Name, err.Error(), false)
		if errors.Is(err, view.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}

	s.recordAudit(r, "booking.create", input.Name, "", true)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

// handleBookingByID routes /api/v1/bookings/{id}[/complete] and the reload
// intent. Complete and delete are irreversible downstream, so both demand
// confirm=true from the client.
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	rest = strings.Trim(rest, "/")

	if rest == "reload" {
		s.handleReload(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "complete" && r.Method == http.MethodPost:
		s.completeBooking(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.deleteBooking(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) completeBooking(w http.ResponseWriter, r *http.Request, id string) {
	if !s.confirmed(w, r) || !s.allowMutation(w, r) {
		return
	}

	if err := s.bookings.Complete(r.Context(), sessionID(r), id); err != nil {
		s.recordAudit(r, "booking.complete", id, err.Error(), false)
		if errors.Is(err, view.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}

	s.recordAudit(r, "booking.complete", id, "", true)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) deleteBooking(w http.ResponseWriter, r *http.Request, id string) {
	if !s.confirmed(w, r) || !s.allowMutation(w, r) {
		return
	}

	if err := s.bookings.Delete(r.Context(), sessionID(r), id); err != nil {
		s.recordAudit(r, "booking.delete", id, err.Error(), false)
		if errors.Is(err, view.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}

	s.recordAudit(r, "booking.delete", id, "", true)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.bookings.Load(r.Context(), sessionID(r)); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "total": len(s.bookings.Bookings())})
}

// handleViewState reads (GET) or updates (PUT) the session's view state.
// The completed/incomplete flags go through the ViewState setters so mutual
// exclusion holds at this boundary.
func (s *HTTPServer) handleViewState(w http.ResponseWriter, r *http.Request) {
	vs := s.viewStateFor(r)

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, vs)
	case http.MethodPut:
		var update struct {
			Search         *string `json:"search"`
			Range          *string `json:"range"`
			HidePast       *bool   `json:"hide_past"`
			Sort           *string `json:"sort"`
			CompletedOnly  *bool   `json:"completed_only"`
			IncompleteOnly *bool   `json:"incomplete_only"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if update.Search != nil {
			vs.Search = *update.Search
		}
		if update.Range != nil {
			if !models.ValidRange(*update.Range) {
				writeError(w, http.StatusBadRequest, "unknown range")
				return
			}
			vs.Range = *update.Range
		}
		if update.HidePast != nil {
			vs.HidePast = *update.HidePast
		}
		if update.Sort != nil {
			if !models.ValidSort(*update.Sort) {
				writeError(w, http.StatusBadRequest, "unknown sort")
				return
			}
			vs.Sort = *update.Sort
		}
		if update.CompletedOnly != nil {
			vs.SetCompletedOnly(*update.CompletedOnly)
		}
		if update.IncompleteOnly != nil {
			vs.SetIncompleteOnly(*update.IncompleteOnly)
		}

		if err := s.states.SetState(r.Context(), vs); err != nil {
			s.logger.Warn().Err(err).Msg("persist view state")
		}
		writeJSON(w, http.StatusOK, vs)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	notices := s.alerts.Drain(sessionID(r))
	if notices == nil {
		notices = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notices})
}

// confirmed enforces the explicit-confirmation contract on destructive
// booking operations.
func (s *HTTPServer) confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusPreconditionRequired, "confirmation required: pass confirm=true")
		return false
	}
	return true
}

// allowMutation applies the per-session mutation rate limit.
func (s *HTTPServer) allowMutation(w http.ResponseWriter, r *http.Request) bool {
	allowed, err := s.states.CheckRateLimit(r.Context(), sessionID(r), models.RateLimitRequests, rateLimitWindow())
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limit check")
		return true
	}
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return false
	}
	return true
}

// applyQueryOverrides lets one request tweak the stored view state without
// persisting the change.
func applyQueryOverrides(vs *models.ViewState, r *http.Request) {
	q := r.URL.Query()
	if v := q.Get("search"); v != "" {
		vs.Search = v
	}
	if v := q.Get("range"); models.ValidRange(v) {
		vs.Range = v
	}
	if v := q.Get("sort"); models.ValidSort(v) {
		vs.Sort = v
	}
	if v := q.Get("hide_past"); v != "" {
		vs.HidePast = v == "true"
	}
	switch q.Get("completed") {
	case "only":
		vs.SetCompletedOnly(true)
	case "none":
		vs.SetIncompleteOnly(true)
	}
}

// writeUpstreamError maps an upstream failure onto the response, keeping
// the upstream status and body when known.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		writeError(w, http.StatusBadGateway, se.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}
