package view

import (
	"sort"
	"strings"
	"time"

	"fieldesk/internal/models"
)

// VisibleBookings derives the display list for the given view state. Pure:
// it filters and sorts a copy and never mutates the underlying list, so
// repeated calls with identical inputs yield identical output.
func (m *BookingModel) VisibleBookings(vs models.ViewState) []models.Booking {
	m.mu.Lock()
	list := append([]models.Booking(nil), m.bookings...)
	m.mu.Unlock()

	now := m.now()
	out := list[:0]
	for _, b := range list {
		if !matchesSearch(&b, vs.Search) {
			continue
		}
		if !withinRange(&b, vs.Range, now, m.zone) {
			continue
		}
		if vs.HidePast {
			start, ok := b.StartTime()
			if !ok || start.Before(now) {
				continue
			}
		}
		if vs.CompletedOnly && !b.Completed {
			continue
		}
		if vs.IncompleteOnly && b.Completed {
			continue
		}
		out = append(out, b)
	}

	sortBookings(out, vs.Sort)
	return out
}

// matchesSearch is a case-insensitive substring match against name, phone,
// email and note; any one match qualifies. An empty term is a no-op.
func matchesSearch(b *models.Booking, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{b.Name, b.Phone, b.Email, b.Note} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// withinRange applies the time-range selector. "today" means the rest of
// the business day in the display zone; the rolling windows run from now.
// Bookings without a parseable start are excluded whenever a window is
// active.
func withinRange(b *models.Booking, rangeKey string, now time.Time, zone *time.Location) bool {
	if rangeKey == "" || rangeKey == models.RangeAll {
		return true
	}

	start, ok := b.StartTime()
	if !ok {
		return false
	}

	switch rangeKey {
	case models.RangeToday:
		local := now.In(zone)
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
		return !start.Before(dayStart) && start.Before(dayStart.AddDate(0, 0, 1))
	case models.RangeNext7:
		return !start.Before(now) && start.Before(now.AddDate(0, 0, 7))
	case models.RangeNext30:
		return !start.Before(now) && start.Before(now.AddDate(0, 0, 30))
	}
	return true
}

// sortBookings orders the visible list. "upcoming" is ascending by start
// time with unparseable starts last; "newest" is descending by created
// time, falling back to start when created is absent, invalid values last.
func sortBookings(list []models.Booking, key string) {
	switch key {
	case models.SortNewest:
		sort.SliceStable(list, func(i, j int) bool {
			ti, iok := list[i].CreatedTime()
			tj, jok := list[j].CreatedTime()
			if iok != jok {
				return iok
			}
			return ti.After(tj)
		})
	default: // upcoming
		sort.SliceStable(list, func(i, j int) bool {
			ti, iok := list[i].StartTime()
			tj, jok := list[j].StartTime()
			if iok != jok {
				return iok
			}
			return ti.Before(tj)
		})
	}
}
