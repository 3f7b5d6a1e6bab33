package core

import (
	"reflect"
	"testing"
	"time"
)

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)
	f := CurrentMonth(now)
	if !f.Start.Equal(NewDate(2024, 5, 1).Time) || !f.End.Equal(NewDate(2024, 5, 31).Time) {
		t.Fatalf("CurrentMonth = [%v, %v]", f.Start, f.End)
	}

	// February of a leap year.
	f = CurrentMonth(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if !f.End.Equal(NewDate(2024, 2, 29).Time) {
		t.Fatalf("leap February end = %v", f.End)
	}
}

func TestLast30Days(t *testing.T) {
	now := time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC)
	f := Last30Days(now)
	if !f.Start.Equal(NewDate(2024, 5, 1).Time) || !f.End.Equal(NewDate(2024, 5, 31).Time) {
		t.Fatalf("Last30Days = [%v, %v]", f.Start, f.End)
	}
}

func TestPeriodSelectionWindow(t *testing.T) {
	now := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)

	if w := (PeriodSelection{Kind: PeriodAllTime}).Window(now); w != nil {
		t.Fatalf("all time should resolve to nil, got %+v", w)
	}
	if w := (PeriodSelection{Kind: PeriodCurrentMonth}).Window(now); w == nil {
		t.Fatalf("current month should resolve to a window")
	}
	if w := (PeriodSelection{Kind: PeriodLast30Days}).Window(now); w == nil {
		t.Fatalf("last 30 days should resolve to a window")
	}

	// Custom range without both bounds behaves as all time.
	half := PeriodSelection{Kind: PeriodCustomRange, Start: NewDate(2024, 5, 1)}
	if w := half.Window(now); w != nil {
		t.Fatalf("incomplete custom range should resolve to nil, got %+v", w)
	}
	full := PeriodSelection{Kind: PeriodCustomRange, Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31)}
	if w := full.Window(now); w == nil || !w.Start.Equal(NewDate(2024, 5, 1).Time) {
		t.Fatalf("complete custom range should resolve to its bounds, got %+v", w)
	}

	if w := (PeriodSelection{Kind: "bogus"}).Window(now); w != nil {
		t.Fatalf("unknown kind should resolve to nil, got %+v", w)
	}
}

func TestPeriodFilterApply(t *testing.T) {
	entries := []Entry{
		{ID: 1, Date: NewDate(2024, 4, 30)},
		{ID: 2, Date: NewDate(2024, 5, 1)},
		{ID: 3, Date: NewDate(2024, 5, 15)},
		{ID: 4, Date: NewDate(2024, 5, 31)},
		{ID: 5, Date: NewDate(2024, 6, 1)},
	}

	f := &PeriodFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31)}
	got := f.Apply(entries)
	if len(got) != 3 || got[0].ID != 2 || got[2].ID != 4 {
		t.Fatalf("Apply = %+v", got)
	}

	// Bounds are inclusive on both ends.
	edge := &PeriodFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 1)}
	if got := edge.Apply(entries); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("single-day window = %+v", got)
	}

	// Nil filter is the identity.
	var all *PeriodFilter
	if got := all.Apply(entries); len(got) != len(entries) {
		t.Fatalf("nil filter returned %d entries", len(got))
	}

	// Idempotence: filter(filter(E, F), F) == filter(E, F).
	once := f.Apply(entries)
	twice := f.Apply(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter is not idempotent: %+v vs %+v", once, twice)
	}
}
