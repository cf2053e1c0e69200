package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"fieldesk/internal/domain"
	"fieldesk/internal/models"
)

// FinanceService backs the finance screen: add revenue/cost entries, read
// the P&L summary. All aggregation happens upstream.
type FinanceService struct {
	api    domain.PortalAPI
	logger *zerolog.Logger
}

func NewFinanceService(api domain.PortalAPI, logger *zerolog.Logger) *FinanceService {
	return &FinanceService{api: api, logger: logger}
}

func (s *FinanceService) AddRevenue(ctx context.Context, entry models.RevenueEntry) error {
	if err := validAmount(entry.Amount); err != nil {
		return err
	}
	if entry.Source == "" {
		entry.Source = "unknown"
	}
	return s.api.AddRevenue(ctx, entry)
}

func (s *FinanceService) AddCost(ctx context.Context, entry models.CostEntry) error {
	if err := validAmount(entry.Amount); err != nil {
		return err
	}
	if entry.Category == "" {
		entry.Category = "general"
	}
	return s.api.AddCost(ctx, entry)
}

func (s *FinanceService) Summary(ctx context.Context, rangeKey string) (*models.FinanceSummary, error) {
	if rangeKey == "" {
		rangeKey = models.FinanceRangeMonth
	}
	if !models.ValidFinanceRange(rangeKey) {
		return nil, fmt.Errorf("%w: unknown finance range %q", ErrInvalid, rangeKey)
	}
	return s.api.FinanceSummary(ctx, rangeKey)
}

func validAmount(amount string) error {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return fmt.Errorf("%w: amount is required", ErrInvalid)
	}
	if v, err := strconv.ParseFloat(amount, 64); err != nil || v < 0 {
		return fmt.Errorf("%w: invalid amount %q", ErrInvalid, amount)
	}
	return nil
}
