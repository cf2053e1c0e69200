// Package view owns the in-memory booking list for one tenant and derives
// the filtered, sorted, display-ready view the booking screen renders. The
// list is mutated only through Load, Create, Complete and Delete.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fieldesk/internal/domain"
	"fieldesk/internal/events"
	"fieldesk/internal/metrics"
	"fieldesk/internal/models"
	"fieldesk/internal/normalize"
	"fieldesk/internal/timeutil"
	"fieldesk/internal/upstream"
)

// State is the explicit screen state. The original kept loading and error
// as loose booleans; disallowed transitions are enforced here instead of
// implied.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return "unknown"
}

var (
	// ErrValidation marks a create-intent rejected before any network call.
	ErrValidation = errors.New("validation failed")

	// ErrBusy rejects mutations while a load is in flight.
	ErrBusy = errors.New("booking list is loading")
)

// CreateInput is the booking form payload. StartsAt is a naive wall-clock
// string from a datetime input, interpreted in the business's zone.
type CreateInput struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Notes    string `json:"notes,omitempty"`
	StartsAt string `json:"starts_at"`
}

// BookingModel holds the tenant's booking list and the operations that may
// mutate it. HTTP handlers call it concurrently, so the list is guarded by
// a mutex; the original ran on one event loop and needed none.
type BookingModel struct {
	api      domain.BookingAPI
	notifier domain.Notifier
	bus      domain.EventPublisher
	logger   *zerolog.Logger

	zone *time.Location
	slot time.Duration
	now  func() time.Time

	mu       sync.Mutex
	state    State
	bookings []models.Booking
}

// Option tweaks a BookingModel; used by tests to pin the clock.
type Option func(*BookingModel)

func WithClock(now func() time.Time) Option {
	return func(m *BookingModel) { m.now = now }
}

func WithSlot(d time.Duration) Option {
	return func(m *BookingModel) { m.slot = d }
}

func NewBookingModel(api domain.BookingAPI, notifier domain.Notifier, bus domain.EventPublisher, zone *time.Location, logger *zerolog.Logger, opts ...Option) *BookingModel {
	if zone == nil {
		zone = time.Local
	}
	m := &BookingModel{
		api:      api,
		notifier: notifier,
		bus:      bus,
		logger:   logger,
		zone:     zone,
		slot:     models.DefaultSlotMinutes * time.Minute,
		now:      time.Now,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current screen state.
func (m *BookingModel) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Bookings returns a snapshot of the raw list.
func (m *BookingModel) Bookings() []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Booking(nil), m.bookings...)
}

// Load fetches the tenant's booking list, normalizes every record and
// replaces the in-memory list wholesale. On failure the previous list is
// left untouched and exactly one error notification is raised. Overlapping
// loads are not deduplicated: the last response to resolve wins.
func (m *BookingModel) Load(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	m.state = StateLoading
	m.mu.Unlock()

	records, err := m.api.ListBookings(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = StateError
		m.mu.Unlock()

		m.notifyError(sessionID, fmt.Sprintf("Could not load bookings: %s", userMessage(err)))
		metrics.IncViewOp("load", "error")
		m.logger.Error().Err(err).Msg("load bookings")
		return err
	}

	normalized := normalize.Records(records)

	// Replacement is atomic under the lock: the visible list never shows a
	// partially-normalized response.
	m.mu.Lock()
	m.bookings = normalized
	m.state = StateLoaded
	m.mu.Unlock()

	metrics.IncViewOp("load", "ok")
	m.logger.Debug().Int("count", len(normalized)).Msg("bookings loaded")
	return nil
}

// Create validates the form, converts the wall-clock start into an
// offset-qualified timestamp plus a slot-length end, and submits the
// create-intent. Success triggers a reload; failure leaves local state
// unchanged — no optimistic insert, so a server-rejected record never
// shows.
func (m *BookingModel) Create(ctx context.Context, sessionID string, in CreateInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(in.StartsAt) == "" {
		return fmt.Errorf("%w: start time is required", ErrValidation)
	}

	start, err := timeutil.ToOffsetTimestamp(in.StartsAt, m.zone)
	if err != nil {
		return fmt.Errorf("%w: invalid start time", ErrValidation)
	}
	startT, _ := time.ParseInLocation("2006-01-02T15:04:05", start[:19], m.zone)
	end, err := timeutil.ToOffsetTimestamp(startT.Add(m.slot).Format("2006-01-02T15:04:05"), m.zone)
	if err != nil {
		return fmt.Errorf("%w: invalid start time", ErrValidation)
	}

	req := upstream.CreateBookingRequest{
		Start: start,
		End:   end,
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Notes: strings.TrimSpace(in.Notes),
	}
	if err := m.api.CreateBooking(ctx, req); err != nil {
		m.notifyError(sessionID, fmt.Sprintf("Could not create booking: %s", userMessage(err)))
		metrics.IncViewOp("create", "error")
		m.logger.Error().Err(err).Str("name", req.Name).Msg("create booking")
		return err
	}

	metrics.IncViewOp("create", "ok")
	m.publish(events.EventBookingCreated, models.Booking{Name: req.Name, StartsAt: req.Start})

	// Resynchronize rather than insert locally; the server owns ids and
	// defaults.
	return m.Load(ctx, sessionID)
}

// Complete marks the booking done. The in-memory record is mutated in
// place on success only (optimistic update, no full reload). Rejected
// while a load is in flight.
func (m *BookingModel) Complete(ctx context.Context, sessionID, id string) error {
	if err := m.guardMutation(); err != nil {
		return err
	}

	if err := m.api.CompleteBooking(ctx, id); err != nil {
		m.notifyError(sessionID, fmt.Sprintf("Could not complete booking: %s", userMessage(err)))
		metrics.IncViewOp("complete", "error")
		m.logger.Error().Err(err).Str("booking_id", id).Msg("complete booking")
		return err
	}

	m.mu.Lock()
	var completed *models.Booking
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings[i].Completed = true
			completed = &m.bookings[i]
			break
		}
	}
	m.mu.Unlock()

	metrics.IncViewOp("complete", "ok")
	if completed != nil {
		m.publish(events.EventBookingCompleted, *completed)
	}
	return nil
}

// Delete removes the booking by id. The list shrinks on success only.
// Rejected while a load is in flight.
func (m *BookingModel) Delete(ctx context.Context, sessionID, id string) error {
	if err := m.guardMutation(); err != nil {
		return err
	}

	if err := m.api.DeleteBooking(ctx, id); err != nil {
		m.notifyError(sessionID, fmt.Sprintf("Could not delete booking: %s", userMessage(err)))
		metrics.IncViewOp("delete", "error")
		m.logger.Error().Err(err).Str("booking_id", id).Msg("delete booking")
		return err
	}

	m.mu.Lock()
	var removed *models.Booking
	kept := m.bookings[:0]
	for i := range m.bookings {
		if m.bookings[i].ID == id && removed == nil {
			b := m.bookings[i]
			removed = &b
			continue
		}
		kept = append(kept, m.bookings[i])
	}
	m.bookings = kept
	m.mu.Unlock()

	metrics.IncViewOp("delete", "ok")
	if removed != nil {
		m.publish(events.EventBookingDeleted, *removed)
	}
	return nil
}

func (m *BookingModel) guardMutation() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateLoading {
		return ErrBusy
	}
	return nil
}

func (m *BookingModel) notifyError(sessionID, message string) {
	if m.notifier != nil {
		m.notifier.Notify(sessionID, models.NoticeError, message)
	}
}

func (m *BookingModel) publish(eventType string, b models.Booking) {
	if m.bus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID: b.ID,
		TenantID:  b.TenantID,
		Name:      b.Name,
		StartsAt:  b.StartsAt,
		Completed: b.Completed,
		At:        m.now(),
	}
	if err := m.bus.PublishJSON(eventType, payload); err != nil {
		m.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event")
	}
}

// userMessage extracts the user-facing detail from an operation error.
func userMessage(err error) string {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
