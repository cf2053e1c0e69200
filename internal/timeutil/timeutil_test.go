package timeutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestToOffsetTimestampPreservesDigits(t *testing.T) {
	loc := newYork(t)

	tests := []struct {
		name string
		wall string
		want string
	}{
		{"minutes form", "2024-06-01T10:00", "2024-06-01T10:00:00-04:00"},
		{"seconds form", "2024-06-01T10:00:30", "2024-06-01T10:00:30-04:00"},
		{"winter offset", "2024-01-15T10:00", "2024-01-15T10:00:00-05:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToOffsetTimestamp(tt.wall, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// The calendar digits must survive untouched.
			assert.True(t, strings.HasPrefix(got, tt.wall))
		})
	}
}

func TestToOffsetTimestampDSTBoundary(t *testing.T) {
	loc := newYork(t)

	winter, err := ToOffsetTimestamp("2024-01-15T09:30", loc)
	require.NoError(t, err)
	summer, err := ToOffsetTimestamp("2024-07-15T09:30", loc)
	require.NoError(t, err)

	// Identical wall-clock time of day, different offsets across the
	// daylight-saving transition.
	assert.True(t, strings.HasSuffix(winter, "-05:00"))
	assert.True(t, strings.HasSuffix(summer, "-04:00"))
}

func TestToOffsetTimestampInvalid(t *testing.T) {
	loc := newYork(t)

	for _, wall := range []string{"", "not-a-date", "2024-06-01", "2024-13-99T99:99"} {
		_, err := ToOffsetTimestamp(wall, loc)
		assert.Error(t, err, "input %q", wall)
	}
}

func TestFormatForDisplay(t *testing.T) {
	loc := newYork(t)

	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-14T18:05:00Z", "3-14 2:05pm"},
		{"2024-03-14T14:05:00-04:00", "3-14 2:05pm"},
		{"2024-12-01T14:30:00-05:00", "12-1 2:30pm"},
		{"2024-06-02T04:00:00Z", "6-2 12:00am"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatForDisplay(tt.in, loc), "input %q", tt.in)
	}
}

func TestFormatForDisplayUnparseable(t *testing.T) {
	loc := newYork(t)

	// Display must never throw or blank out: garbage passes through.
	assert.Equal(t, "soon-ish", FormatForDisplay("soon-ish", loc))
	assert.Equal(t, "", FormatForDisplay("", loc))
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2024-06-01T10:00:00-04:00",
		"2024-06-01T10:00:00Z",
		"2024-06-01T10:00:00",
		"2024-06-01T10:00",
		"2024-06-01",
	} {
		_, ok := ParseTimestamp(s)
		assert.True(t, ok, "input %q", s)
	}

	for _, s := range []string{"", "tomorrow", "06/01/2024"} {
		_, ok := ParseTimestamp(s)
		assert.False(t, ok, "input %q", s)
	}
}
