// Package observability provides a metrics extension for the Solar
// ledger that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/currentsee/solarledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                  = (*MetricsExtension)(nil)
	_ plugin.OnInit                  = (*MetricsExtension)(nil)
	_ plugin.OnMemberJoined          = (*MetricsExtension)(nil)
	_ plugin.OnMemberDeleted         = (*MetricsExtension)(nil)
	_ plugin.OnDistributionApplied   = (*MetricsExtension)(nil)
	_ plugin.OnDistributionCompleted = (*MetricsExtension)(nil)
	_ plugin.OnDriftDetected         = (*MetricsExtension)(nil)
	_ plugin.OnTradeRecorded         = (*MetricsExtension)(nil)
	_ plugin.OnListingCreated        = (*MetricsExtension)(nil)
	_ plugin.OnOrdersMatched         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a ledger plugin to automatically track roster,
// distribution, and market activity.
type MetricsExtension struct {
	factory MetricFactory

	// Roster metrics
	MemberJoined  Counter
	MemberDeleted Counter

	// Distribution metrics
	DistributionsApplied Counter
	DistributionRays     Counter
	DistributionUpdated  Histogram
	DistributionLatency  Histogram

	// Integrity metrics
	DriftDetected Counter

	// Market metrics
	TradesRecorded  Counter
	ListingsCreated Counter
	OrdersMatched   Counter
	MatchLatency    Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Roster metrics
		MemberJoined:  factory.Counter("solarledger.member.joined"),
		MemberDeleted: factory.Counter("solarledger.member.deleted"),

		// Distribution metrics
		DistributionsApplied: factory.Counter("solarledger.distribution.applied"),
		DistributionRays:     factory.Counter("solarledger.distribution.rays"),
		DistributionUpdated:  factory.Histogram("solarledger.distribution.updated"),
		DistributionLatency:  factory.Histogram("solarledger.distribution.latency_ms"),

		// Integrity metrics
		DriftDetected: factory.Counter("solarledger.integrity.drift"),

		// Market metrics
		TradesRecorded:  factory.Counter("solarledger.trade.recorded"),
		ListingsCreated: factory.Counter("solarledger.market.listing.created"),
		OrdersMatched:   factory.Counter("solarledger.market.orders.matched"),
		MatchLatency:    factory.Histogram("solarledger.market.match.latency_ms"),

		// Error metrics
		StoreErrors:  factory.Counter("solarledger.store.errors"),
		PluginErrors: factory.Counter("solarledger.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Roster lifecycle hooks
// ──────────────────────────────────────────────────

// OnMemberJoined implements plugin.OnMemberJoined.
func (m *MetricsExtension) OnMemberJoined(_ context.Context, _ interface{}) error {
	m.MemberJoined.Inc()
	return nil
}

// OnMemberDeleted implements plugin.OnMemberDeleted.
func (m *MetricsExtension) OnMemberDeleted(_ context.Context, _ string) error {
	m.MemberDeleted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Distribution lifecycle hooks
// ──────────────────────────────────────────────────

// OnDistributionApplied implements plugin.OnDistributionApplied.
func (m *MetricsExtension) OnDistributionApplied(_ context.Context, _ interface{}, deltaRays int64) error {
	m.DistributionsApplied.Inc()
	m.DistributionRays.Add(float64(deltaRays))
	return nil
}

// OnDistributionCompleted implements plugin.OnDistributionCompleted.
func (m *MetricsExtension) OnDistributionCompleted(_ context.Context, updated, _ int, elapsed time.Duration) error {
	m.DistributionUpdated.Observe(float64(updated))
	m.DistributionLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// OnDriftDetected implements plugin.OnDriftDetected.
func (m *MetricsExtension) OnDriftDetected(_ context.Context, _ string, _, _ int64) error {
	m.DriftDetected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Market lifecycle hooks
// ──────────────────────────────────────────────────

// OnTradeRecorded implements plugin.OnTradeRecorded.
func (m *MetricsExtension) OnTradeRecorded(_ context.Context, _ interface{}) error {
	m.TradesRecorded.Inc()
	return nil
}

// OnListingCreated implements plugin.OnListingCreated.
func (m *MetricsExtension) OnListingCreated(_ context.Context, _ interface{}) error {
	m.ListingsCreated.Inc()
	return nil
}

// OnOrdersMatched implements plugin.OnOrdersMatched.
func (m *MetricsExtension) OnOrdersMatched(_ context.Context, fills int, elapsed time.Duration) error {
	m.OrdersMatched.Add(float64(fills))
	m.MatchLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
