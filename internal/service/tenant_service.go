package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fieldesk/internal/domain"
	"fieldesk/internal/models"
	"fieldesk/internal/upstream"
)

// TenantService backs the settings screen and the QuickBooks export panel.
type TenantService struct {
	api    domain.PortalAPI
	logger *zerolog.Logger
}

func NewTenantService(api domain.PortalAPI, logger *zerolog.Logger) *TenantService {
	return &TenantService{api: api, logger: logger}
}

func (s *TenantService) Profile(ctx context.Context) (*models.TenantProfile, error) {
	return s.api.TenantProfile(ctx)
}

func (s *TenantService) UpdateProfile(ctx context.Context, profile models.TenantProfile) error {
	if strings.TrimSpace(profile.FromName) == "" {
		return fmt.Errorf("%w: from_name is required", ErrInvalid)
	}
	if profile.Timezone != "" {
		if _, err := time.LoadLocation(profile.Timezone); err != nil {
			return fmt.Errorf("%w: invalid timezone %q", ErrInvalid, profile.Timezone)
		}
	}
	return s.api.UpdateTenantProfile(ctx, profile)
}

// QBOPlan runs the exporter dry-run; the panel shows the upstream response
// verbatim.
func (s *TenantService) QBOPlan(ctx context.Context, req upstream.QBOExportRequest) (json.RawMessage, error) {
	if err := validExportWindow(req); err != nil {
		return nil, err
	}
	return s.api.QBOPlan(ctx, req)
}

func (s *TenantService) QBOCommit(ctx context.Context, req upstream.QBOExportRequest) (json.RawMessage, error) {
	if err := validExportWindow(req); err != nil {
		return nil, err
	}
	return s.api.QBOCommit(ctx, req)
}

func validExportWindow(req upstream.QBOExportRequest) error {
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return fmt.Errorf("%w: invalid from date %q", ErrInvalid, req.From)
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return fmt.Errorf("%w: invalid to date %q", ErrInvalid, req.To)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: export window ends before it starts", ErrInvalid)
	}
	return nil
}
