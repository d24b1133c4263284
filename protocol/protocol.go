// Package protocol defines the Solar Standard constants and conversions.
//
// Constants are an explicitly constructed, immutable value handed to the
// ledger engine at construction time. Nothing in this package reads
// ambient state: callers pass the as-of date into every calculation.
package protocol

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/currentsee/solarledger/types"
)

// Protocol identity constants.
const (
	Name    = "TC-S Solar Standard"
	Version = "1.0.0"
)

// Accrual rate presets. The roster's verification and update scripts all
// credit one whole SOLAR per member per day; the annualized convention
// spreads one SOLAR over a year instead. Which applies is purely a
// Constants.DailyRate choice.
var (
	RateDailySolar = types.SOLAR(1)
	RateAnnualized = types.Rays(types.RaysPerSolar / 365)
)

// Constants holds the protocol-wide conversion factors. A Constants
// value is immutable after construction; the engine and calculator
// receive it by value and never mutate it.
type Constants struct {
	GenesisDate  types.Date  `json:"genesis_date"`
	KWhPerSolar  int64       `json:"kwh_per_solar"`
	USDPerSolar  types.Money `json:"usd_per_solar"`
	DailyRate    types.Units `json:"daily_rate"`
	ProtocolName string      `json:"protocol_name"`
	Version      string      `json:"version"`
}

// Default returns the published Solar Standard constants: genesis on
// 2025-04-07, 4,913 kWh and $136,000 per SOLAR, one SOLAR accrued per
// member per day.
func Default() Constants {
	return Constants{
		GenesisDate:  types.MustParseDate("2025-04-07"),
		KWhPerSolar:  4913,
		USDPerSolar:  types.USD(13_600_000),
		DailyRate:    RateDailySolar,
		ProtocolName: Name,
		Version:      Version,
	}
}

// Validate checks that the constants are internally coherent.
func (c Constants) Validate() error {
	var problems []string

	if c.GenesisDate.IsZero() {
		problems = append(problems, "genesis date is unset")
	}
	if c.KWhPerSolar <= 0 {
		problems = append(problems, "kwh per solar must be positive")
	}
	if !c.USDPerSolar.IsPositive() {
		problems = append(problems, "usd per solar must be positive")
	}
	if !c.DailyRate.IsPositive() {
		problems = append(problems, "daily rate must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("protocol: invalid constants: %v: %w", problems, errInvalid)
	}
	return nil
}

var errInvalid = errors.New("validation failed")

// Hash returns the sha256 hex digest of the canonical JSON encoding of
// the constants. Two deployments agree on the protocol exactly when
// their hashes match; a changed constant shows up as drift.
func (c Constants) Hash() string {
	canonical, err := json.Marshal(struct {
		GenesisDate string `json:"genesis_date"`
		KWhPerSolar int64  `json:"kwh_per_solar"`
		USDCents    int64  `json:"usd_cents_per_solar"`
		RaysPerDay  int64  `json:"rays_per_day"`
		Name        string `json:"protocol_name"`
		Version     string `json:"version"`
	}{
		GenesisDate: c.GenesisDate.String(),
		KWhPerSolar: c.KWhPerSolar,
		USDCents:    c.USDPerSolar.Amount,
		RaysPerDay:  c.DailyRate.Rays(),
		Name:        c.ProtocolName,
		Version:     c.Version,
	})
	if err != nil {
		// Struct of scalars cannot fail to marshal.
		panic(fmt.Sprintf("protocol: canonical marshal: %v", err))
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// DaysSinceGenesis returns the whole days elapsed from genesis to asOf.
// Negative before genesis.
func (c Constants) DaysSinceGenesis(asOf types.Date) int64 {
	return c.GenesisDate.DaysUntil(asOf)
}

// SolarIndex returns the display-grade generation index for asOf,
// oscillating in the 85–99 band around 91.8 on a 30 day cycle.
func (c Constants) SolarIndex(asOf types.Date) float64 {
	days := float64(c.DaysSinceGenesis(asOf))
	return math.Min(99, math.Max(85, 91.8+math.Sin(days/30)*3))
}

// KWhToSolar converts an energy amount into SOLAR units, truncating to
// whole rays.
func (c Constants) KWhToSolar(kwh int64) types.Units {
	return types.Rays(kwh * types.RaysPerSolar / c.KWhPerSolar)
}

// SolarToKWh converts a SOLAR balance into its backing energy amount.
func (c Constants) SolarToKWh(u types.Units) int64 {
	return u.Rays() * c.KWhPerSolar / types.RaysPerSolar
}
