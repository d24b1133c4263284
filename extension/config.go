package extension

import "time"

// Config holds the Solar ledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.solarledger" or "solarledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// AutoDistribute enables the in-process daily distribution worker.
	AutoDistribute bool `json:"auto_distribute" mapstructure:"auto_distribute" yaml:"auto_distribute"`

	// DistributeInterval is how often the distribution worker re-checks
	// the current date (default: 1h). Runs are idempotent per date.
	DistributeInterval time.Duration `json:"distribute_interval" mapstructure:"distribute_interval" yaml:"distribute_interval"`

	// GenesisDate overrides the protocol genesis date (YYYY-MM-DD).
	// Leave empty to use the published standard.
	GenesisDate string `json:"genesis_date" mapstructure:"genesis_date" yaml:"genesis_date"`

	// KWhPerSolar overrides the energy backing per SOLAR.
	KWhPerSolar int64 `json:"kwh_per_solar" mapstructure:"kwh_per_solar" yaml:"kwh_per_solar"`

	// USDPerSolarCents overrides the dollar anchor per SOLAR, in cents.
	USDPerSolarCents int64 `json:"usd_per_solar_cents" mapstructure:"usd_per_solar_cents" yaml:"usd_per_solar_cents"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DistributeInterval: time.Hour,
	}
}
