package extension

import (
	"time"

	solarledger "github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/plugin"
	"github.com/currentsee/solarledger/protocol"
	"github.com/currentsee/solarledger/store"
)

// Option configures the Solar ledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithConstants sets the protocol constants for the ledger engine.
// YAML overrides still apply on top when present.
func WithConstants(consts protocol.Constants) Option {
	return func(e *Extension) {
		e.consts = &consts
	}
}

// WithLedgerOption passes a solarledger.Option through to the underlying engine.
func WithLedgerOption(opt solarledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, solarledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithAutoDistribute enables the in-process daily distribution worker.
func WithAutoDistribute() Option {
	return func(e *Extension) { e.config.AutoDistribute = true }
}

// WithDistributeInterval sets how often the distribution worker re-checks the date.
func WithDistributeInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.DistributeInterval = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
