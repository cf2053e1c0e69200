package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Wall-clock layouts accepted from the booking form's datetime input.
const (
	wallLayoutMinutes = "2006-01-02T15:04"
	wallLayoutSeconds = "2006-01-02T15:04:05"
)

// timestampLayouts are tried in order by ParseTimestamp. Upstream records
// mix offset-qualified, Zulu and naive forms depending on which integration
// wrote them.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToOffsetTimestamp interprets a naive wall-clock string in loc and appends
// that zone's UTC offset at that moment as ±HH:MM. The calendar digits are
// never altered: the result is the same wall-clock reading with an explicit
// offset label, which keeps DST transitions correct because the offset is
// computed per instant, not from a fixed constant.
func ToOffsetTimestamp(wall string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}

	wall = strings.TrimSpace(wall)
	layout := wallLayoutSeconds
	switch len(wall) {
	case len(wallLayoutMinutes):
		layout = wallLayoutMinutes
	case len(wallLayoutSeconds):
	default:
		return "", fmt.Errorf("invalid wall-clock value %q", wall)
	}

	t, err := time.ParseInLocation(layout, wall, loc)
	if err != nil {
		return "", fmt.Errorf("invalid wall-clock value %q: %w", wall, err)
	}

	if layout == wallLayoutMinutes {
		wall += ":00"
	}

	_, offsetSec := t.Zone()
	sign := "+"
	if offsetSec < 0 {
		sign = "-"
		offsetSec = -offsetSec
	}
	return fmt.Sprintf("%s%s%02d:%02d", wall, sign, offsetSec/3600, (offsetSec%3600)/60), nil
}

// ParseTimestamp parses an ISO-like timestamp permissively. ok is false for
// empty or unrecognizable input; callers decide whether that is a filter
// miss or a validation failure.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatForDisplay renders a timestamp in the business's display zone as
// "M-D h:mma" (no leading zeros, lowercase marker), e.g. "3-14 2:05pm".
// Unparseable input is returned unchanged: display must never blank out.
func FormatForDisplay(ts string, loc *time.Location) string {
	t, ok := ParseTimestamp(ts)
	if !ok {
		return ts
	}
	if loc != nil {
		t = t.In(loc)
	}
	return strings.ToLower(t.Format("1-2 3:04PM"))
}
