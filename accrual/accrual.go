// Package accrual computes entitled SOLAR balances from elapsed time.
//
// Everything here is pure: no clock reads, no I/O. Callers pass the
// as-of date explicitly, which keeps the arithmetic deterministic and
// directly testable.
package accrual

import (
	"errors"

	"github.com/currentsee/solarledger/types"
)

// ErrInvalidRange is returned when the as-of date precedes the join date.
var ErrInvalidRange = errors.New("accrual: as-of date precedes join date")

// EntitledUnits returns the balance a member is entitled to between
// joined and asOf at the given daily rate.
//
// The join day counts as day one: a member audited on their join date
// holds exactly one day's accrual, never zero. The result is
// monotonically non-decreasing as asOf advances.
func EntitledUnits(joined, asOf types.Date, rate types.Units) (types.Units, error) {
	if asOf.Before(joined) {
		return types.ZeroUnits, ErrInvalidRange
	}

	days := joined.DaysUntil(asOf) + 1
	return rate.MultiplyDays(days), nil
}

// Value derives the currency value of a balance at the given per-SOLAR
// price. The derived value is always recomputed from the balance, never
// stored independently, so the two cannot drift.
func Value(units types.Units, usdPerSolar types.Money) types.Money {
	return usdPerSolar.MultiplyUnits(units)
}
