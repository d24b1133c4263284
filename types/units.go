package types

import (
	"encoding/json"
	"fmt"
)

// RaysPerSolar is the number of rays in one whole SOLAR. Rays are the
// smallest indivisible accounting unit of the protocol.
const RaysPerSolar int64 = 1_000_000

// Units represents a SOLAR balance in rays. Like Money, all arithmetic
// is integer-only so balances never drift from floating point rounding.
//
// Examples:
//   - SOLAR(4) = 4 whole SOLAR (4,000,000 rays)
//   - Rays(2739) = roughly 1/365th of a SOLAR
type Units struct {
	rays int64
}

// SOLAR creates a Units value from a whole SOLAR count.
func SOLAR(n int64) Units { return Units{rays: n * RaysPerSolar} }

// Rays creates a Units value from a raw ray count.
func Rays(n int64) Units { return Units{rays: n} }

// ZeroUnits is the zero balance.
var ZeroUnits = Units{}

// Rays returns the raw ray count.
func (u Units) Rays() int64 { return u.rays }

// Whole returns the whole-SOLAR part of the balance, truncated.
func (u Units) Whole() int64 { return u.rays / RaysPerSolar }

// Add adds two balances.
func (u Units) Add(other Units) Units { return Units{rays: u.rays + other.rays} }

// Subtract subtracts another balance.
func (u Units) Subtract(other Units) Units { return Units{rays: u.rays - other.rays} }

// MultiplyDays scales a per-day rate by an elapsed day count.
func (u Units) MultiplyDays(days int64) Units { return Units{rays: u.rays * days} }

// IsZero returns true if the balance is zero.
func (u Units) IsZero() bool { return u.rays == 0 }

// IsNegative returns true if the balance is below zero.
func (u Units) IsNegative() bool { return u.rays < 0 }

// IsPositive returns true if the balance is above zero.
func (u Units) IsPositive() bool { return u.rays > 0 }

// Equal returns true if both balances hold the same ray count.
func (u Units) Equal(other Units) bool { return u.rays == other.rays }

// LessThan returns true if this balance is smaller than other.
func (u Units) LessThan(other Units) bool { return u.rays < other.rays }

// String formats the balance with four decimal places, the display
// convention used across the member roster.
func (u Units) String() string {
	isNegative := u.rays < 0
	abs := u.rays
	if isNegative {
		abs = -abs
	}

	whole := abs / RaysPerSolar
	// Rays carry six decimal places; the roster shows four.
	frac := (abs % RaysPerSolar) / 100

	result := fmt.Sprintf("%d.%04d", whole, frac)
	if isNegative {
		return "-" + result
	}
	return result
}

// MarshalJSON implements json.Marshaler. Balances serialize as raw rays
// plus the display string so API consumers never re-derive formatting.
func (u Units) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rays    int64  `json:"rays"`
		Display string `json:"display"`
	}{
		Rays:    u.rays,
		Display: u.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. Accepts both the object
// form produced by MarshalJSON and a bare ray count.
func (u *Units) UnmarshalJSON(data []byte) error {
	var obj struct {
		Rays *int64 `json:"rays"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && len(data) > 0 && data[0] == '{' {
		if obj.Rays == nil {
			return fmt.Errorf("units: unmarshal %s: missing rays field", data)
		}
		u.rays = *obj.Rays
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("units: unmarshal %s: %w", data, err)
	}
	u.rays = n
	return nil
}
