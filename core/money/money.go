package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// places is the precision at which amounts are normalized and compared.
// Bill amounts are currency values, so two decimal places.
const places = 2

// Amount is a bill amount backed by an exact decimal value.
//
// Amounts are compared through their normalized two-decimal string form
// rather than raw float equality, so 12.5 and 12.50 are equal while
// representation drift between sources is still caught.
type Amount struct {
	d decimal.Decimal
}

// New creates an Amount from a decimal value.
func New(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// FromFloat creates an Amount from a float64.
func FromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f)}
}

// Parse converts a raw cell or wire value into an Amount.
// Currency symbols, thousands separators, and surrounding whitespace are
// stripped before parsing. An empty value parses as zero.
func Parse(s string) (Amount, error) {
	cleaned := strings.TrimSpace(s)
	for _, sym := range []string{"$", "€", "£", ","} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return Amount{}, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// MustParse is like Parse but panics on invalid input. For tests and literals.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Norm returns the normalized fixed two-decimal string form, e.g. "12.50".
func (a Amount) Norm() string {
	return a.d.StringFixed(places)
}

// Equal reports whether two amounts are equal under normalized comparison.
func (a Amount) Equal(b Amount) bool {
	return a.Norm() == b.Norm()
}

// Positive reports whether the amount is strictly greater than zero.
func (a Amount) Positive() bool {
	return a.d.IsPositive()
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String implements fmt.Stringer using the normalized form.
func (a Amount) String() string {
	return a.Norm()
}

// MarshalJSON encodes the amount as a JSON number in normalized form.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Norm()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
