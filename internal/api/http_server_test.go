package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldesk/internal/alerts"
	"fieldesk/internal/config"
	"fieldesk/internal/models"
	"fieldesk/internal/repository"
	"fieldesk/internal/service"
	"fieldesk/internal/upstream"
	"fieldesk/internal/view"
)

// fakeUpstream is a minimal remote portal API for handler tests.
type fakeUpstream struct {
	bookings  string
	completed []string
	deleted   []string
	failNext  bool
}

func (f *fakeUpstream) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f.failNext {
			f.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("upstream exploded"))
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/bookings":
			w.Write([]byte(f.bookings))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/complete"):
			parts := strings.Split(r.URL.Path, "/")
			f.completed = append(f.completed, parts[len(parts)-2])
		case r.Method == http.MethodDelete:
			parts := strings.Split(r.URL.Path, "/")
			f.deleted = append(f.deleted, parts[len(parts)-1])
		case r.Method == http.MethodPost && r.URL.Path == "/admin/bookings":
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestServer(t *testing.T, up *fakeUpstream, cfg config.HTTPConfig) *HTTPServer {
	t.Helper()
	return newServerWith(t, up.handler(), cfg)
}

func newServerWith(t *testing.T, remoteHandler http.Handler, cfg config.HTTPConfig) *HTTPServer {
	t.Helper()
	remote := httptest.NewServer(remoteHandler)
	t.Cleanup(remote.Close)

	logger := zerolog.Nop()
	client := upstream.NewClient(upstream.Options{BaseURL: remote.URL, TenantID: "acme"}, &logger)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	center := alerts.NewCenter()
	model := view.NewBookingModel(client, center, nil, loc, &logger)

	srv := NewHTTPServer(cfg, Deps{
		Bookings: model,
		Leads:    service.NewLeadService(client, nil, &logger),
		Finance:  service.NewFinanceService(client, &logger),
		Tenant:   service.NewTenantService(client, &logger),
		States:   repository.NewMemoryStateRepository(time.Minute),
		Alerts:   center,
		Zone:     loc,
		TenantID: "acme",
	}, &logger)
	return srv
}

func doRequest(srv *HTTPServer, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestListBookingsWithDisplayTime(t *testing.T) {
	up := &fakeUpstream{bookings: `{"items":[
        {"id":"1","name":"Jane","starts_at":"2024-06-01T10:00:00-04:00"},
        {"id":"2","name":"Bob","starts_at":"2024-05-20T14:30:00-04:00"}
    ]}`}
	srv := newTestServer(t, up, config.HTTPConfig{})

	rec := doRequest(srv, http.MethodGet, "/api/v1/bookings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State    string `json:"state"`
		Total    int    `json:"total"`
		Bookings []struct {
			Name        string `json:"name"`
			DisplayTime string `json:"display_time"`
		} `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "loaded", resp.State)
	require.Equal(t, 2, resp.Total)

	// Upcoming sort puts the earlier start first.
	assert.Equal(t, "Bob", resp.Bookings[0].Name)
	assert.Equal(t, "5-20 2:30pm", resp.Bookings[0].DisplayTime)
	assert.Equal(t, "Jane", resp.Bookings[1].Name)
	assert.Equal(t, "6-1 10:00am", resp.Bookings[1].DisplayTime)
}

func TestSessionHeaderMinted(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{bookings: `[]`}, config.HTTPConfig{})

	rec := doRequest(srv, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, rec.Header().Get(sessionHeader))

	rec = doRequest(srv, http.MethodGet, "/healthz", "", map[string]string{sessionHeader: "mine"})
	assert.Equal(t, "mine", rec.Header().Get(sessionHeader))
}

func TestDestructiveOpsRequireConfirmation(t *testing.T) {
	up := &fakeUpstream{bookings: `[{"id":"1","name":"Jane"}]`}
	srv := newTestServer(t, up, config.HTTPConfig{})

	// Prime the list.
	doRequest(srv, http.MethodGet, "/api/v1/bookings", "", nil)

	rec := doRequest(srv, http.MethodPost, "/api/v1/bookings/1/complete", "", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Empty(t, up.completed)

	rec = doRequest(srv, http.MethodDelete, "/api/v1/bookings/1", "", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Empty(t, up.deleted)

	rec = doRequest(srv, http.MethodPost, "/api/v1/bookings/1/complete?confirm=true", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, up.completed)

	rec = doRequest(srv, http.MethodDelete, "/api/v1/bookings/1?confirm=true", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, up.deleted)
}

func TestCreateBookingValidation(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{bookings: `[]`}, config.HTTPConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/bookings", `{"name":"","starts_at":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/v1/bookings", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/v1/bookings",
		`{"name":"Jane","starts_at":"2024-06-01T10:00"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestViewStatePersistsAndValidates(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{bookings: `[]`}, config.HTTPConfig{})
	headers := map[string]string{sessionHeader: "s1"}

	rec := doRequest(srv, http.MethodPut, "/api/v1/view", `{"range":"fortnight"}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPut, "/api/v1/view",
		`{"search":"jane","completed_only":true}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	// Enabling incomplete_only clears completed_only.
	rec = doRequest(srv, http.MethodPut, "/api/v1/view", `{"incomplete_only":true}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/view", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var vs models.ViewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vs))
	assert.Equal(t, "jane", vs.Search)
	assert.False(t, vs.CompletedOnly)
	assert.True(t, vs.IncompleteOnly)
}

func TestFailedOperationQueuesNotification(t *testing.T) {
	up := &fakeUpstream{bookings: `[{"id":"1","name":"Jane"}]`}
	srv := newTestServer(t, up, config.HTTPConfig{})
	headers := map[string]string{sessionHeader: "s1"}

	doRequest(srv, http.MethodGet, "/api/v1/bookings", "", headers)

	up.failNext = true
	rec := doRequest(srv, http.MethodPost, "/api/v1/bookings/1/complete?confirm=true", "", headers)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/notifications", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Contains(t, resp.Notifications[0].Message, "upstream exploded")

	// Drained on delivery.
	rec = doRequest(srv, http.MethodGet, "/api/v1/notifications", "", headers)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Notifications)
}

func TestAuthGuardsEndpoints(t *testing.T) {
	cfg := config.HTTPConfig{
		Auth: config.HTTPAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.ClientKey{
				{Key: "reader", Extra: "e1", Name: "ro", Permissions: []string{"read:bookings"}},
			},
		},
	}
	srv := newTestServer(t, &fakeUpstream{bookings: `[]`}, cfg)

	rec := doRequest(srv, http.MethodGet, "/api/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := map[string]string{"x-api-key": "reader", "x-api-extra": "e1"}
	rec = doRequest(srv, http.MethodGet, "/api/v1/bookings", "", auth)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Read-only key cannot mutate.
	rec = doRequest(srv, http.MethodPost, "/api/v1/bookings",
		`{"name":"Jane","starts_at":"2024-06-01T10:00"}`, auth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	auth["x-api-extra"] = "wrong"
	rec = doRequest(srv, http.MethodGet, "/api/v1/bookings", "", auth)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReloadEndpoint(t *testing.T) {
	up := &fakeUpstream{bookings: `[{"id":"1","name":"Jane"}]`}
	srv := newTestServer(t, up, config.HTTPConfig{})

	rec := doRequest(srv, http.MethodGet, "/api/v1/bookings/reload", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/v1/bookings/reload", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK    bool `json:"ok"`
		Total int  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.Total)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{}, config.HTTPConfig{})
	rec := doRequest(srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
