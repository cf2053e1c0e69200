package normalize

import (
	"encoding/json"
	"sort"
)

// ListKind tags how the booking-list response body was recognized.
type ListKind int

const (
	// ListOK: an array was found where expected.
	ListOK ListKind = iota
	// ListEmpty: the body held no records (empty array, null, empty object).
	ListEmpty
	// ListUnrecognized: the body had no array anywhere we know to look.
	// Treated as empty downstream but logged distinctly.
	ListUnrecognized
)

// ListResult is the decoded booking-list payload.
type ListResult struct {
	Kind    ListKind
	Records []map[string]any
}

// Conventional wrapper keys, tried in order before falling back to the
// first array-valued property.
var listKeys = []string{"items", "bookings", "rows", "data"}

// DecodeList parses a booking-list response body permissively: a raw array,
// an object exposing the array under a conventional key, or as a last
// resort the first array-valued property found. An empty or absent array is
// an empty list, never an error.
func DecodeList(body []byte) ListResult {
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return ListResult{Kind: ListUnrecognized}
	}

	switch v := top.(type) {
	case nil:
		return ListResult{Kind: ListEmpty}
	case []any:
		return fromArray(v)
	case map[string]any:
		for _, key := range listKeys {
			if arr, ok := v[key].([]any); ok {
				return fromArray(arr)
			}
		}
		// Deterministic fallback: map iteration order is random, so scan
		// keys sorted.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := v[k].([]any); ok {
				return fromArray(arr)
			}
		}
		if len(v) == 0 {
			return ListResult{Kind: ListEmpty}
		}
		return ListResult{Kind: ListUnrecognized}
	default:
		return ListResult{Kind: ListUnrecognized}
	}
}

func fromArray(arr []any) ListResult {
	if len(arr) == 0 {
		return ListResult{Kind: ListEmpty}
	}

	records := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return ListResult{Kind: ListEmpty}
	}
	return ListResult{Kind: ListOK, Records: records}
}
