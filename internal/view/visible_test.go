package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldesk/internal/models"
)

// fixedNow is mid-day June 15 2024 in New York, inside EDT.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.FixedZone("EDT", -4*3600))

func loadedModel(t *testing.T, records []map[string]any) *BookingModel {
	t.Helper()
	api := &fakeAPI{records: records}
	m := testModel(t, api, &fakeNotifier{}, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, m.Load(context.Background(), "s1"))
	return m
}

func names(list []models.Booking) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.Name
	}
	return out
}

func TestVisibleUpcomingOrder(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Jane", "starts_at": "2024-06-20T10:00:00-04:00"},
		{"id": "2", "name": "Bob", "starts_at": "2024-06-16T09:00:00-04:00"},
		{"id": "3", "name": "Ana", "starts_at": "2024-06-18T14:00:00-04:00"},
	})

	vs := models.DefaultViewState("s1")
	got := m.VisibleBookings(*vs)
	assert.Equal(t, []string{"Bob", "Ana", "Jane"}, names(got))
}

func TestVisibleInvalidStartsSortLast(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "NoStart"},
		{"id": "2", "name": "Bob", "starts_at": "2024-06-16T09:00:00-04:00"},
		{"id": "3", "name": "Garbled", "starts_at": "not a time"},
	})

	got := m.VisibleBookings(*models.DefaultViewState("s1"))
	require.Len(t, got, 3)
	assert.Equal(t, "Bob", got[0].Name)
}

func TestVisibleNewestSort(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Old", "created_at": "2024-01-01T00:00:00Z", "starts_at": "2024-06-16T09:00"},
		{"id": "2", "name": "New", "created_at": "2024-06-01T00:00:00Z", "starts_at": "2024-06-17T09:00"},
		{"id": "3", "name": "NoCreated"},
	})

	vs := models.DefaultViewState("s1")
	vs.Sort = models.SortNewest
	got := m.VisibleBookings(*vs)
	assert.Equal(t, []string{"New", "Old", "NoCreated"}, names(got))
}

func TestVisibleSearch(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Jane Doe", "phone": "555-0101"},
		{"id": "2", "name": "Bob", "email": "bob@example.com"},
		{"id": "3", "name": "Ana", "note": "furnace tune-up"},
	})

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"Jane Doe", "Bob", "Ana"}},
		{"JANE", []string{"Jane Doe"}},
		{"0101", []string{"Jane Doe"}},
		{"example.com", []string{"Bob"}},
		{"furnace", []string{"Ana"}},
		{"  bob  ", []string{"Bob"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		vs := models.DefaultViewState("s1")
		vs.Search = tt.term
		got := m.VisibleBookings(*vs)
		assert.Equal(t, tt.want, namesOrNil(got), "term %q", tt.term)
	}
}

func namesOrNil(list []models.Booking) []string {
	if len(list) == 0 {
		return nil
	}
	return names(list)
}

func TestVisibleHidePast(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Past", "starts_at": "2024-06-14T10:00:00-04:00"},
		{"id": "2", "name": "Future", "starts_at": "2024-06-16T10:00:00-04:00"},
		{"id": "3", "name": "NoStart"},
	})

	vs := models.DefaultViewState("s1")
	vs.HidePast = true
	got := m.VisibleBookings(*vs)
	assert.Equal(t, []string{"Future"}, names(got))
}

func TestVisibleRangeToday(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Morning", "starts_at": "2024-06-15T08:00:00-04:00"},
		{"id": "2", "name": "Evening", "starts_at": "2024-06-15T21:00:00-04:00"},
		{"id": "3", "name": "Tomorrow", "starts_at": "2024-06-16T08:00:00-04:00"},
		{"id": "4", "name": "NoStart"},
	})

	vs := models.DefaultViewState("s1")
	vs.Range = models.RangeToday
	got := m.VisibleBookings(*vs)
	assert.Equal(t, []string{"Morning", "Evening"}, names(got))
}

func TestVisibleRangeRollingWindows(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "InWeek", "starts_at": "2024-06-20T10:00:00-04:00"},
		{"id": "2", "name": "InMonth", "starts_at": "2024-07-10T10:00:00-04:00"},
		{"id": "3", "name": "FarOut", "starts_at": "2024-09-01T10:00:00-04:00"},
		{"id": "4", "name": "Yesterday", "starts_at": "2024-06-14T10:00:00-04:00"},
	})

	vs := models.DefaultViewState("s1")
	vs.Range = models.RangeNext7
	assert.Equal(t, []string{"InWeek"}, names(m.VisibleBookings(*vs)))

	vs.Range = models.RangeNext30
	assert.Equal(t, []string{"InWeek", "InMonth"}, names(m.VisibleBookings(*vs)))
}

func TestVisibleCompletedFilters(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Done", "completed": true},
		{"id": "2", "name": "Open"},
	})

	vs := models.DefaultViewState("s1")
	vs.SetCompletedOnly(true)
	assert.Equal(t, []string{"Done"}, names(m.VisibleBookings(*vs)))

	vs.SetIncompleteOnly(true)
	assert.Equal(t, []string{"Open"}, names(m.VisibleBookings(*vs)))
}

func TestVisibleIsPureAndIdempotent(t *testing.T) {
	m := loadedModel(t, []map[string]any{
		{"id": "1", "name": "Jane", "starts_at": "2024-06-20T10:00:00-04:00"},
		{"id": "2", "name": "Bob", "starts_at": "2024-06-16T09:00:00-04:00"},
	})

	vs := models.DefaultViewState("s1")
	vs.Sort = models.SortNewest
	first := m.VisibleBookings(*vs)
	second := m.VisibleBookings(*vs)
	assert.Equal(t, first, second)

	// The underlying list keeps its load order.
	raw := m.Bookings()
	assert.Equal(t, []string{"Jane", "Bob"}, names(raw))
}
