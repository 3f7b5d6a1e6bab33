package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0", 0, true}, // zero is the unused side of an entry
		{"0.00", 0, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"2000", 200000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{".", 0, false},
		{",", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{5000, "50.00"},
		{-5000, "-50.00"},
		{123456, "1234.56"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"12.34"` {
		t.Fatalf("marshal = %s", b)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"12.34"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if fromString.Cents != 1234 {
		t.Fatalf("unmarshal string = %d", fromString.Cents)
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`50`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if fromNumber.Cents != 5000 {
		t.Fatalf("unmarshal number = %d", fromNumber.Cents)
	}

	var neg Money
	if err := json.Unmarshal([]byte(`"-3"`), &neg); err != nil {
		t.Fatalf("unmarshal signed amount: %v", err)
	}
	if neg.Cents != -300 {
		t.Fatalf("got %d cents, want -300", neg.Cents)
	}

	var balance Money
	if err := json.Unmarshal([]byte(`"-50.00"`), &balance); err != nil {
		t.Fatalf("unmarshal signed decimal: %v", err)
	}
	if balance.Cents != -5000 {
		t.Fatalf("got %d cents, want -5000", balance.Cents)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 5, 1))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-05-01"` {
		t.Fatalf("marshal = %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-05-01"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(NewDate(2024, 5, 1).Time) {
		t.Fatalf("unmarshal = %v", d)
	}

	// RFC 3339 timestamps are truncated to the day.
	var ts Date
	if err := json.Unmarshal([]byte(`"2024-05-01T18:30:00Z"`), &ts); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if !ts.Equal(NewDate(2024, 5, 1).Time) {
		t.Fatalf("unmarshal rfc3339 = %v", ts)
	}

	var bad Date
	if err := json.Unmarshal([]byte(`"05/01/2024"`), &bad); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}
