package fiado

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used to format amounts for display.
var DefaultCurrency = money.BRL

// Amount is a decimal monetary value as stored in a ledger document.
//
// Documents are loosely typed: a value may have been persisted as a number, a
// numeric string, or something that is not a number at all. An Amount that
// could not be read is malformed; it counts as zero in every computation and
// keeps its original encoding so that it survives a round trip.
type Amount struct {
	value     decimal.Decimal
	malformed bool
	raw       json.RawMessage // original encoding of a malformed value
}

// A returns an Amount for a numeric value.
func A[T float64 | int | int64 | decimal.Decimal](value T) Amount {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return Amount{value: v}
	case float64:
		return Amount{value: decimal.NewFromFloat(v)}
	case int:
		return Amount{value: decimal.NewFromInt(int64(v))}
	case int64:
		return Amount{value: decimal.NewFromInt(v)}
	}
	return Amount{}
}

// ParseAmount parses a decimal string. Both "12.50" and "12,50" are accepted.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{value: d}, nil
}

// Decimal returns the numeric value, zero for a malformed amount.
func (a Amount) Decimal() decimal.Decimal {
	if a.malformed {
		return decimal.Zero
	}
	return a.value
}

// IsMalformed reports whether the amount could not be read as a number.
func (a Amount) IsMalformed() bool { return a.malformed }

// IsNegative reports whether the amount is below zero. Malformed amounts are not.
func (a Amount) IsNegative() bool { return a.Decimal().IsNegative() }

// IsZero reports whether the amount is zero. Malformed amounts count as zero.
func (a Amount) IsZero() bool { return a.Decimal().IsZero() }

// Equal reports whether both amounts are identical: same numeric value, and
// for malformed amounts the same raw bytes as read.
func (a Amount) Equal(b Amount) bool {
	return a.malformed == b.malformed && a.Decimal().Equal(b.Decimal()) && bytes.Equal(a.raw, b.raw)
}

// String returns the amount formatted in DefaultCurrency.
func (a Amount) String() string { return FormatMoney(a.Decimal(), DefaultCurrency) }

// FormatMoney formats a value with the currency's symbol, separators and fraction digits.
func FormatMoney(value decimal.Decimal, code string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, code).Currency()
	units := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(units.IntPart())
}

// MarshalJSON writes the amount as a JSON number, or as it was read if malformed.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.malformed {
		if len(a.raw) == 0 {
			return []byte("null"), nil
		}
		return a.raw, nil
	}
	return []byte(a.value.String()), nil
}

// UnmarshalJSON reads a number or a numeric string. Any other value is kept as
// a malformed amount and never fails.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			if parsed, err := ParseAmount(s); err == nil {
				*a = parsed
				return nil
			}
		}
	} else if d, err := decimal.NewFromString(string(trimmed)); err == nil {
		a.value = d
		return nil
	}
	a.malformed = true
	if !bytes.Equal(trimmed, []byte("null")) {
		a.raw = append(json.RawMessage(nil), trimmed...)
	}
	return nil
}
