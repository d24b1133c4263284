package types

import (
	"encoding/json"
	"testing"
)

func TestUnitsConstructors(t *testing.T) {
	if got := SOLAR(3).Rays(); got != 3*RaysPerSolar {
		t.Errorf("SOLAR(3).Rays(): got %d, want %d", got, 3*RaysPerSolar)
	}
	if got := Rays(42).Rays(); got != 42 {
		t.Errorf("Rays(42).Rays(): got %d, want 42", got)
	}
	if !ZeroUnits.IsZero() {
		t.Error("ZeroUnits should be zero")
	}
}

func TestUnitsArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Units
		expected Units
	}{
		{"Add", func() Units { return SOLAR(1).Add(SOLAR(2)) }, SOLAR(3)},
		{"Subtract", func() Units { return SOLAR(5).Subtract(SOLAR(2)) }, SOLAR(3)},
		{"Subtract below zero", func() Units { return SOLAR(1).Subtract(SOLAR(2)) }, SOLAR(-1)},
		{"MultiplyDays", func() Units { return SOLAR(1).MultiplyDays(147) }, SOLAR(147)},
		{"MultiplyDays fractional rate", func() Units {
			return Rays(RaysPerSolar / 365).MultiplyDays(365)
		}, Rays((RaysPerSolar / 365) * 365)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUnitsWhole(t *testing.T) {
	if got := Rays(2_500_000).Whole(); got != 2 {
		t.Errorf("Whole: got %d, want 2", got)
	}
}

func TestUnitsString(t *testing.T) {
	tests := []struct {
		units Units
		want  string
	}{
		{SOLAR(1), "1.0000"},
		{SOLAR(147), "147.0000"},
		{Rays(1_500_000), "1.5000"},
		{Rays(123_456), "0.1234"},
		{Rays(-1_500_000), "-1.5000"},
		{ZeroUnits, "0.0000"},
	}

	for _, tt := range tests {
		if got := tt.units.String(); got != tt.want {
			t.Errorf("String(%d rays): got %q, want %q", tt.units.Rays(), got, tt.want)
		}
	}
}

func TestUnitsJSON(t *testing.T) {
	data, err := json.Marshal(SOLAR(2))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Units
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Equal(SOLAR(2)) {
		t.Errorf("round trip: got %d rays, want %d", decoded.Rays(), SOLAR(2).Rays())
	}

	// Bare ray counts are accepted too.
	var bare Units
	if err := json.Unmarshal([]byte("1500000"), &bare); err != nil {
		t.Fatalf("bare unmarshal failed: %v", err)
	}
	if !bare.Equal(Rays(1_500_000)) {
		t.Errorf("bare form: got %d rays, want 1500000", bare.Rays())
	}

	// An object without a ray count must not decode to zero.
	var missing Units
	if err := json.Unmarshal([]byte(`{"display":"5.0000"}`), &missing); err == nil {
		t.Error("object without rays field decoded without error")
	}
}

func TestUnitsComparisons(t *testing.T) {
	if !SOLAR(1).LessThan(SOLAR(2)) {
		t.Error("1 SOLAR should be less than 2")
	}
	if !Rays(-1).IsNegative() {
		t.Error("negative rays should report negative")
	}
	if !SOLAR(1).IsPositive() {
		t.Error("1 SOLAR should be positive")
	}
}
