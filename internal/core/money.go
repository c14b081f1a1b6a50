// Package core holds the ledger domain: transactions, money, the category
// taxonomy, filtering, and aggregation. Monetary amounts are kept in integer
// minor units (cents) so sums never accumulate floating-point error.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary amount in minor units. Stored amounts are always
// positive; derived values such as a balance may be negative.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a user-supplied decimal string into a positive Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Signs, zero, and
// non-numeric input are rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	cents, err := parseCents(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return Money{}, err
	}
	m := Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// parseCents parses a signed decimal string into cents with half-up rounding
// on the third decimal place. Used by both ParseAmount and the JSON codec;
// the sign is allowed here because exported balances may be negative.
func parseCents(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
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
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
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
	// Take the first two fractional digits, half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// String renders the amount as a plain decimal: integer when the fractional
// part is zero, otherwise two decimal places.
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	var s string
	if cents%100 == 0 {
		s = strconv.FormatInt(cents/100, 10)
	} else {
		s = fmt.Sprintf("%d.%02d", cents/100, cents%100)
	}
	if neg {
		s = "-" + s
	}
	return s
}

// MarshalJSON emits the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number with at most two decimal places of
// precision (a third is rounded half-up). Positivity is not enforced here:
// stored amounts go through Validate, while embedded summary balances may
// legitimately be negative.
func (m *Money) UnmarshalJSON(data []byte) error {
	cents, err := parseCents(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}
