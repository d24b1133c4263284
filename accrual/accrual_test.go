package accrual

import (
	"errors"
	"testing"

	"github.com/currentsee/solarledger/types"
)

func TestEntitledUnitsInclusive(t *testing.T) {
	rate := types.SOLAR(1)

	tests := []struct {
		name   string
		joined string
		asOf   string
		want   types.Units
	}{
		{"join day counts", "2025-04-07", "2025-04-07", types.SOLAR(1)},
		{"next day", "2025-04-07", "2025-04-08", types.SOLAR(2)},
		{"four days", "2025-04-07", "2025-04-10", types.SOLAR(4)},
		{"genesis to sept", "2025-04-07", "2025-09-01", types.SOLAR(148)},
		{"across year end", "2025-12-30", "2026-01-02", types.SOLAR(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EntitledUnits(types.MustParseDate(tt.joined), types.MustParseDate(tt.asOf), rate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntitledUnitsBeforeJoin(t *testing.T) {
	joined := types.MustParseDate("2025-04-10")
	asOf := types.MustParseDate("2025-04-07")

	_, err := EntitledUnits(joined, asOf, types.SOLAR(1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestEntitledUnitsFractionalRate(t *testing.T) {
	rate := types.Rays(types.RaysPerSolar / 365)
	joined := types.MustParseDate("2025-04-07")

	got, err := EntitledUnits(joined, joined.AddDays(364), rate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 365 inclusive days at the annualized rate, integer truncation.
	want := rate.MultiplyDays(365)
	if !got.Equal(want) {
		t.Errorf("got %d rays, want %d", got.Rays(), want.Rays())
	}
	if !got.LessThan(types.SOLAR(1)) && !got.Equal(types.SOLAR(1)) {
		t.Error("a year at the annualized rate should not exceed one SOLAR")
	}
}

func TestEntitledUnitsMonotonic(t *testing.T) {
	rate := types.SOLAR(1)
	joined := types.MustParseDate("2025-04-07")

	prev := types.ZeroUnits
	date := joined
	for i := 0; i < 60; i++ {
		got, err := EntitledUnits(joined, date, rate)
		if err != nil {
			t.Fatalf("unexpected error on %s: %v", date.String(), err)
		}
		if !prev.LessThan(got) {
			t.Fatalf("entitlement not strictly increasing at %s", date.String())
		}
		prev = got
		date = date.AddDays(1)
	}
}

func TestValue(t *testing.T) {
	usdPerSolar := types.USD(13_600_000)

	tests := []struct {
		name  string
		units types.Units
		want  types.Money
	}{
		{"one solar", types.SOLAR(1), types.USD(13_600_000)},
		{"half solar", types.Rays(types.RaysPerSolar / 2), types.USD(6_800_000)},
		{"zero", types.ZeroUnits, types.USD(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Value(tt.units, usdPerSolar)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
