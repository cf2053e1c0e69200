// Package normalize absorbs the variance in upstream booking record shapes
// into the one canonical Booking the rest of the portal works with.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"fieldesk/internal/models"
)

// Candidate source fields, tried in order. Each maps to exactly one
// canonical field so no signal is dropped silently.
var (
	idFields      = []string{"id", "booking_id", "event_id"}
	startFields   = []string{"starts_at", "start", "when", "start_time"}
	createdFields = []string{"created_at", "created"}
)

// Record maps one raw upstream record into the canonical Booking shape.
// fallbackIndex feeds the synthetic id when the record supplies none, so
// every booking in a list gets a locally-unique key.
func Record(raw map[string]any, fallbackIndex int) models.Booking {
	b := models.Booking{
		Name:      str(raw["name"]),
		Email:     str(raw["email"]),
		Phone:     str(raw["phone"]),
		StartsAt:  firstString(raw, startFields),
		CreatedAt: firstString(raw, createdFields),
		TenantID:  str(raw["tenant_id"]),
	}

	b.Note = noteOf(raw)
	b.Completed = truthy(raw["completed"]) || str(raw["completed_at"]) != ""

	b.ID = firstString(raw, idFields)
	if b.ID == "" {
		suffix := b.StartsAt
		if suffix == "" {
			suffix = strconv.Itoa(fallbackIndex)
		}
		b.ID = b.Name + "-" + suffix
	}

	return b
}

// Records normalizes a full list. Indexes are positions in the response,
// so synthetic ids stay stable within one load.
func Records(raw []map[string]any) []models.Booking {
	out := make([]models.Booking, 0, len(raw))
	for i, rec := range raw {
		out = append(out, Record(rec, i))
	}
	return out
}

// noteOf picks the first non-empty of an explicit note, an explicit notes
// field, or a joined service/address pair.
func noteOf(raw map[string]any) string {
	if n := strings.TrimSpace(str(raw["note"])); n != "" {
		return n
	}
	if n := strings.TrimSpace(str(raw["notes"])); n != "" {
		return n
	}

	service := strings.TrimSpace(str(raw["service"]))
	address := strings.TrimSpace(str(raw["address"]))
	switch {
	case service != "" && address != "":
		return service + " | " + address
	case service != "":
		return service
	case address != "":
		return address
	}
	return ""
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if s := str(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// str renders scalar JSON values as strings; ids arrive as numbers or
// strings depending on the upstream table.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case float64:
		return t != 0
	default:
		return false
	}
}
