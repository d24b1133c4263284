// Package extension provides the Forge extension adapter for the Solar
// ledger.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.solarledger" or
// "solarledger" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	solarledger "github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/protocol"
	"github.com/currentsee/solarledger/store"
	"github.com/currentsee/solarledger/store/memory"
	"github.com/currentsee/solarledger/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "solarledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Solar-backed member ledger engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the Solar ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *solarledger.Ledger
	store      store.Store
	consts     *protocol.Constants
	ledgerOpts []solarledger.Option
}

// New creates a new Solar ledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *solarledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	consts, err := e.resolveConstants()
	if err != nil {
		return err
	}

	opts := e.buildLedgerOpts()

	eng := solarledger.New(e.store, consts, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*solarledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("solarledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("solarledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveConstants builds the protocol constants from the programmatic
// base (or the published standard) with YAML overrides applied.
func (e *Extension) resolveConstants() (protocol.Constants, error) {
	consts := protocol.Default()
	if e.consts != nil {
		consts = *e.consts
	}

	if e.config.GenesisDate != "" {
		genesis, err := types.ParseDate(e.config.GenesisDate)
		if err != nil {
			return consts, fmt.Errorf("solarledger: invalid genesis_date %q: %w", e.config.GenesisDate, err)
		}
		consts.GenesisDate = genesis
	}
	if e.config.KWhPerSolar > 0 {
		consts.KWhPerSolar = e.config.KWhPerSolar
	}
	if e.config.USDPerSolarCents > 0 {
		consts.USDPerSolar = types.Money{Amount: e.config.USDPerSolarCents, Currency: "usd"}
	}

	if err := consts.Validate(); err != nil {
		return consts, fmt.Errorf("solarledger: invalid protocol constants: %w", err)
	}
	return consts, nil
}

// buildLedgerOpts constructs solarledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []solarledger.Option {
	opts := make([]solarledger.Option, 0, len(e.ledgerOpts)+1)

	if e.config.AutoDistribute {
		interval := e.config.DistributeInterval
		if interval == 0 {
			interval = DefaultConfig().DistributeInterval
		}
		opts = append(opts, solarledger.WithAutoDistribution(interval))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("solarledger: configuration is required but not found in config files; " +
				"ensure 'extensions.solarledger' or 'solarledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("solarledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("auto_distribute", e.config.AutoDistribute),
		forge.F("distribute_interval", e.config.DistributeInterval),
		forge.F("genesis_date", e.config.GenesisDate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.solarledger" first (namespaced pattern).
	if cm.IsSet("extensions.solarledger") {
		if err := cm.Bind("extensions.solarledger", &cfg); err == nil {
			e.Logger().Debug("solarledger: loaded config from file",
				forge.F("key", "extensions.solarledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("solarledger: failed to bind extensions.solarledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "solarledger" key.
	if cm.IsSet("solarledger") {
		if err := cm.Bind("solarledger", &cfg); err == nil {
			e.Logger().Debug("solarledger: loaded config from file",
				forge.F("key", "solarledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("solarledger: failed to bind solarledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.DistributeInterval == 0 {
		cfg.DistributeInterval = defaults.DistributeInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.AutoDistribute {
		yamlConfig.AutoDistribute = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.GenesisDate == "" && programmaticConfig.GenesisDate != "" {
		yamlConfig.GenesisDate = programmaticConfig.GenesisDate
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.DistributeInterval == 0 && programmaticConfig.DistributeInterval != 0 {
		yamlConfig.DistributeInterval = programmaticConfig.DistributeInterval
	}
	if yamlConfig.KWhPerSolar == 0 && programmaticConfig.KWhPerSolar != 0 {
		yamlConfig.KWhPerSolar = programmaticConfig.KWhPerSolar
	}
	if yamlConfig.USDPerSolarCents == 0 && programmaticConfig.USDPerSolarCents != 0 {
		yamlConfig.USDPerSolarCents = programmaticConfig.USDPerSolarCents
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
