package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind is the transaction direction. It is fixed at creation and never
	// changes afterwards.
	Kind string

	// Date is the user-supplied transaction date, a plain calendar day.
	// It is distinct from the record's creation timestamp.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64      `json:"id"`
		Kind        Kind       `json:"type"`
		Description string     `json:"description"`
		Amount      Money      `json:"amount"`
		Category    string     `json:"category"`
		Date        Date       `json:"date"`
		CreatedAt   time.Time  `json:"createdAt"`
		UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidDate      = errors.New("invalid date")
)

// ParseKind converts a wire value into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(strings.ToLower(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the structural shape of a transaction: kind, trimmed
// description, positive amount, category label present, well-formed date.
// Membership of the category in the taxonomy is a creation/edit concern and
// is checked by the ledger, not here; imported records keep their historical
// categories.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(t.Kind))
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrUnknownCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}
