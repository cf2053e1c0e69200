// Package upstream is the portal's only boundary to the remote tenant API:
// bookings, leads, finance, tenant settings and the QuickBooks exporter all
// live behind it. The client stamps every request with the tenant and auth
// headers and never varies behavior on their contents.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fieldesk/internal/metrics"
	"fieldesk/internal/normalize"
)

// StatusError is a non-2xx upstream response. The response body, when
// present, is the user-facing detail.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	TenantID     string
	APIKey       string
	TenantHeader string
	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	baseURL      string
	tenantID     string
	apiKey       string
	tenantHeader string
	apiKeyHeader string
	http         *http.Client
	logger       *zerolog.Logger
}

func NewClient(opts Options, logger *zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.TenantHeader == "" {
		opts.TenantHeader = "x-tenant-id"
	}
	if opts.APIKeyHeader == "" {
		opts.APIKeyHeader = "x-api-key"
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		tenantID:     opts.TenantID,
		apiKey:       opts.APIKey,
		tenantHeader: opts.TenantHeader,
		apiKeyHeader: opts.APIKeyHeader,
		http:         &http.Client{Timeout: opts.Timeout},
		logger:       logger,
	}
}

// CreateBookingRequest is the create-intent wire shape.
type CreateBookingRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// ListBookings fetches the tenant's full booking list and decodes it
// permissively. An Unrecognized body is logged and returned as empty.
func (c *Client) ListBookings(ctx context.Context) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/bookings", nil)
	if err != nil {
		return nil, err
	}

	result := normalize.DecodeList(body)
	if result.Kind == normalize.ListUnrecognized {
		c.logger.Warn().Str("endpoint", "/admin/bookings").Msg("unrecognized booking list shape, treating as empty")
	}
	return result.Records, nil
}

func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/bookings", req)
	return err
}

func (c *Client) CompleteBooking(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/bookings/"+url.PathEscape(id)+"/complete", nil)
	return err
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/bookings/"+url.PathEscape(id), nil)
	return err
}

// do issues one request and returns the raw response body. Non-2xx becomes
// a StatusError carrying the body text.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tenantID != "" {
		req.Header.Set(c.tenantHeader, c.tenantID)
	}
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(path, "error", time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveUpstream(path, "error", time.Since(start))
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveUpstream(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	metrics.ObserveUpstream(path, "ok", time.Since(start))
	return data, nil
}
