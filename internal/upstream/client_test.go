package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zerolog.Nop()
	return NewClient(Options{
		BaseURL:  srv.URL,
		TenantID: "acme",
		APIKey:   "sk-test",
	}, &logger)
}

func TestListBookingsSendsTenantHeaders(t *testing.T) {
	var gotTenant, gotKey, gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotTenant = r.Header.Get("x-tenant-id")
		gotKey = r.Header.Get("x-api-key")
		gotPath = r.URL.Path
		w.Write([]byte(`{"items":[{"id":"1","name":"Jane"}]}`))
	})

	records, err := c.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane", records[0]["name"])
	assert.Equal(t, "acme", gotTenant)
	assert.Equal(t, "sk-test", gotKey)
	assert.Equal(t, "/admin/bookings", gotPath)
}

func TestListBookingsUnrecognizedShapeIsEmpty(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	records, err := c.ListBookings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateBookingPostsJSON(t *testing.T) {
	var got CreateBookingRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.CreateBooking(context.Background(), CreateBookingRequest{
		Start: "2024-06-01T10:00:00-04:00",
		End:   "2024-06-01T11:00:00-04:00",
		Name:  "Jane",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T10:00:00-04:00", got.Start)
	assert.Equal(t, "Jane", got.Name)
}

func TestStatusErrorCarriesBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("slot already taken"))
	})

	err := c.CreateBooking(context.Background(), CreateBookingRequest{Name: "Jane"})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 422, se.Status)
	assert.Equal(t, "slot already taken", se.Error())
}

func TestStatusErrorFallsBackToCode(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.DeleteBooking(context.Background(), "42")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "HTTP 502", se.Error())
}

func TestBookingIDsArePathEscaped(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
	})

	require.NoError(t, c.CompleteBooking(context.Background(), "a/b"))
	assert.Equal(t, "/admin/bookings/a%2Fb/complete", gotPath)
}
