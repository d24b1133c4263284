// Package plugin provides an extensible plugin system for the Solar ledger.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Roster lifecycle hooks
// ──────────────────────────────────────────────────

// OnMemberJoined is called when a signup creates a new member.
type OnMemberJoined interface {
	Plugin
	OnMemberJoined(ctx context.Context, m interface{}) error
}

// OnMemberDeleted is called when a member is administratively removed.
type OnMemberDeleted interface {
	Plugin
	OnMemberDeleted(ctx context.Context, memberID string) error
}

// ──────────────────────────────────────────────────
// Distribution hooks
// ──────────────────────────────────────────────────

// OnDistributionApplied is called for each member whose balance changed
// during an accrual run. deltaRays is the credit applied in rays.
type OnDistributionApplied interface {
	Plugin
	OnDistributionApplied(ctx context.Context, m interface{}, deltaRays int64) error
}

// OnDistributionCompleted is called once per accrual run with the totals.
type OnDistributionCompleted interface {
	Plugin
	OnDistributionCompleted(ctx context.Context, updated, skipped int, elapsed time.Duration) error
}

// OnDriftDetected is called for each member whose stored balance
// disagrees with the accrual formula during an integrity audit.
type OnDriftDetected interface {
	Plugin
	OnDriftDetected(ctx context.Context, memberID string, expectedRays, actualRays int64) error
}

// ──────────────────────────────────────────────────
// Market hooks
// ──────────────────────────────────────────────────

// OnTradeRecorded is called when a market sale record is persisted.
type OnTradeRecorded interface {
	Plugin
	OnTradeRecorded(ctx context.Context, t interface{}) error
}

// OnListingCreated is called when an energy listing enters the pool.
type OnListingCreated interface {
	Plugin
	OnListingCreated(ctx context.Context, l interface{}) error
}

// OnOrdersMatched is called after a matching pass over the energy pool.
type OnOrdersMatched interface {
	Plugin
	OnOrdersMatched(ctx context.Context, fills int, elapsed time.Duration) error
}
