package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// UnknownCategoryLabel is the sentinel name used when an entry references
	// a category that no longer exists in the directory.
	UnknownCategoryLabel = "Unknown Category"

	maxNameLength = 100
)

type (
	// Money is a monetary amount in cents. Ledger amounts are always
	// non-negative; sign is carried by the debit/credit split.
	Money struct {
		Cents int64
	}

	// Date is a calendar day, normalized to UTC midnight.
	Date struct {
		time.Time
	}

	// Category is a top-level grouping for entries (e.g. "Food", "Salary").
	// Names are unique across the ledger.
	Category struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// Subject is a sub-grouping within a single category. Names are unique
	// within their owning category.
	Subject struct {
		ID         int64     `json:"id"`
		CategoryID int64     `json:"category_id"`
		Name       string    `json:"name"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}

	// Entry is a single dated ledger transaction. Exactly one of Debit or
	// Credit is nonzero. CategoryName and SubjectName are denormalized at
	// read time and serve as fallback labels when a reference is orphaned.
	Entry struct {
		ID           int64     `json:"id"`
		Date         Date      `json:"date"`
		CategoryID   int64     `json:"category_id"`
		CategoryName string    `json:"category_name,omitempty"`
		SubjectID    int64     `json:"subject_id"`
		SubjectName  string    `json:"subject_name,omitempty"`
		Debit        Money     `json:"debit"`
		Credit       Money     `json:"credit"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNoAmount        = errors.New("either debit or credit must be set")
	ErrBothAmounts     = errors.New("debit and credit cannot both be set")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long")
	ErrMissingCategory = errors.New("missing category")
	ErrMissingSubject  = errors.New("missing subject")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// StartOfDay returns the first instant of the day.
func (d Date) StartOfDay() time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of the day, so that inclusive range
// checks cover every timestamp on the boundary date.
func (d Date) EndOfDay() time.Time {
	return d.StartOfDay().Add(24*time.Hour - time.Nanosecond)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other. The result may be negative (net balances).
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (c Category) Validate() error {
	return validateName(c.Name)
}

func (s Subject) Validate() error {
	if err := validateName(s.Name); err != nil {
		return err
	}
	if s.CategoryID == 0 {
		return ErrMissingCategory
	}
	return nil
}

// Validate enforces the entry-creation boundary invariants: a valid date,
// both references present, non-negative amounts, and exactly one of
// debit/credit nonzero. Data past this boundary is assumed well formed.
func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.CategoryID == 0 {
		return ErrMissingCategory
	}
	if e.SubjectID == 0 {
		return ErrMissingSubject
	}
	if err := e.Debit.Validate(); err != nil {
		return err
	}
	if err := e.Credit.Validate(); err != nil {
		return err
	}
	if e.Debit.IsZero() && e.Credit.IsZero() {
		return ErrNoAmount
	}
	if !e.Debit.IsZero() && !e.Credit.IsZero() {
		return ErrBothAmounts
	}
	return nil
}

// Net returns credit - debit for a single entry.
func (e Entry) Net() Money {
	return e.Credit.Sub(e.Debit)
}
