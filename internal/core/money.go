// Money parsing and JSON encoding.
//
// Amounts travel over the wire as decimal strings ("12.34") and are stored
// internally as cents to keep arithmetic exact. Bare JSON numbers are also
// accepted on input for compatibility with older clients.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ParseAmountCents converts a decimal string to cents with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Zero is a valid amount (an entry's unused side); negative
// values and malformed input are rejected.
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		// A bare separator carries no digits.
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// String formats the amount as a plain decimal with two fraction digits.
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON encodes the amount as a decimal string, e.g. "12.34".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts either a decimal string ("12.34") or a bare number
// (12.34). Signed values decode too: running balances and net totals are
// legitimately negative on the wire. Ledger amounts stay non-negative via
// Entry.Validate, not here.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	cents, err := ParseAmountCents(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	if neg {
		cents = -cents
	}
	m.Cents = cents
	return nil
}

const dateLayout = "2006-01-02"

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(d.Format(dateLayout))), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or a full RFC 3339 timestamp, which is
// truncated to its calendar day.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("parse date %s: %w", data, ErrInvalidDate)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	return fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
}
