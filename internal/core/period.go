package core

import "time"

// Canonical period choices offered by the dashboard selector.
const (
	PeriodAllTime      PeriodKind = "all"
	PeriodCurrentMonth PeriodKind = "month"
	PeriodLast30Days   PeriodKind = "30d"
	PeriodCustomRange  PeriodKind = "custom"
)

type (
	PeriodKind string

	// PeriodFilter is an inclusive date window. A nil *PeriodFilter means
	// "all time". Bounds are normalized to start-of-day / end-of-day.
	PeriodFilter struct {
		Start Date
		End   Date
	}

	// PeriodSelection is the selector state: a kind plus, for custom ranges,
	// the user-supplied bounds.
	PeriodSelection struct {
		Kind  PeriodKind
		Start Date
		End   Date
	}
)

// Window resolves the selection to a concrete filter relative to now.
// A custom range takes effect only once both bounds are set; until then it
// behaves as all time, as does an unknown kind.
func (s PeriodSelection) Window(now time.Time) *PeriodFilter {
	switch s.Kind {
	case PeriodCurrentMonth:
		return CurrentMonth(now)
	case PeriodLast30Days:
		return Last30Days(now)
	case PeriodCustomRange:
		if s.Start.IsZero() || s.End.IsZero() {
			return nil
		}
		return &PeriodFilter{Start: s.Start, End: s.End}
	default:
		return nil
	}
}

// CurrentMonth covers the first through the last day of the month containing
// now.
func CurrentMonth(now time.Time) *PeriodFilter {
	y, m, _ := now.UTC().Date()
	first := NewDate(y, int(m), 1)
	last := DateOf(first.AddDate(0, 1, -1))
	return &PeriodFilter{Start: first, End: last}
}

// Last30Days covers today minus 30 days through today, inclusive.
func Last30Days(now time.Time) *PeriodFilter {
	today := DateOf(now)
	return &PeriodFilter{Start: DateOf(today.AddDate(0, 0, -30)), End: today}
}

// Contains reports whether d falls within the window. A nil filter contains
// every date.
func (f *PeriodFilter) Contains(d Date) bool {
	if f == nil {
		return true
	}
	t := d.StartOfDay()
	return !t.Before(f.Start.StartOfDay()) && !t.After(f.End.EndOfDay())
}

// Apply returns the subset of entries whose date falls within the window.
// A nil filter is the identity; the input slice is never mutated. Applying
// the same filter twice yields the same result.
func (f *PeriodFilter) Apply(entries []Entry) []Entry {
	if f == nil {
		return entries
	}
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Contains(e.Date) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
