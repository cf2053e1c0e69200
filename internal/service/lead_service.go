package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fieldesk/internal/domain"
	"fieldesk/internal/events"
	"fieldesk/internal/models"
	"fieldesk/internal/upstream"
)

// ErrInvalid marks input rejected before any upstream call.
var ErrInvalid = errors.New("invalid input")

// LeadService backs the leads screen: one fetch, client-side search, status
// transitions.
type LeadService struct {
	api    domain.PortalAPI
	bus    domain.EventPublisher
	logger *zerolog.Logger
}

func NewLeadService(api domain.PortalAPI, bus domain.EventPublisher, logger *zerolog.Logger) *LeadService {
	return &LeadService{api: api, bus: bus, logger: logger}
}

// List fetches the tenant's leads, optionally filtered by a
// case-insensitive substring across name, phone, email and message.
func (s *LeadService) List(ctx context.Context, search string) ([]models.Lead, error) {
	leads, err := s.api.ListLeads(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return leads, nil
	}

	out := leads[:0]
	for _, lead := range leads {
		for _, field := range []string{lead.Name, lead.Phone, lead.Email, lead.Message} {
			if strings.Contains(strings.ToLower(field), search) {
				out = append(out, lead)
				break
			}
		}
	}
	return out, nil
}

func (s *LeadService) Create(ctx context.Context, req upstream.CreateLeadRequest) error {
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Phone) == "" {
		return fmt.Errorf("%w: lead needs a name or a phone number", ErrInvalid)
	}

	if err := s.api.CreateLead(ctx, req); err != nil {
		return err
	}

	if s.bus != nil {
		_ = s.bus.PublishJSON(events.EventLeadCreated, req)
	}
	return nil
}

func (s *LeadService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !models.ValidLeadStatus(status) {
		return fmt.Errorf("%w: unknown lead status %q", ErrInvalid, status)
	}
	return s.api.UpdateLeadStatus(ctx, id, status)
}
