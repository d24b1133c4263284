// Package audithook bridges Solar ledger lifecycle events to an audit
// trail backend.
//
// It defines a local Recorder interface so the package does not depend
// on any concrete audit system. Callers inject a RecorderFunc adapter
// that bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/currentsee/solarledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                  = (*Extension)(nil)
	_ plugin.OnMemberJoined          = (*Extension)(nil)
	_ plugin.OnMemberDeleted         = (*Extension)(nil)
	_ plugin.OnDistributionApplied   = (*Extension)(nil)
	_ plugin.OnDistributionCompleted = (*Extension)(nil)
	_ plugin.OnDriftDetected         = (*Extension)(nil)
	_ plugin.OnTradeRecorded         = (*Extension)(nil)
	_ plugin.OnListingCreated        = (*Extension)(nil)
	_ plugin.OnOrdersMatched         = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so this package carries no backend dependency;
// callers inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Roster lifecycle hooks
// ──────────────────────────────────────────────────

// OnMemberJoined implements plugin.OnMemberJoined.
func (e *Extension) OnMemberJoined(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionMemberJoined, SeverityInfo, OutcomeSuccess,
		ResourceMember, "", CategoryRoster, nil,
		"event", "member_joined",
	)
}

// OnMemberDeleted implements plugin.OnMemberDeleted.
func (e *Extension) OnMemberDeleted(ctx context.Context, memberID string) error {
	return e.record(ctx, ActionMemberDeleted, SeverityWarning, OutcomeSuccess,
		ResourceMember, memberID, CategoryRoster, nil,
		"member_id", memberID,
	)
}

// ──────────────────────────────────────────────────
// Distribution lifecycle hooks
// ──────────────────────────────────────────────────

// OnDistributionApplied implements plugin.OnDistributionApplied.
func (e *Extension) OnDistributionApplied(ctx context.Context, _ interface{}, deltaRays int64) error {
	return e.record(ctx, ActionDistributionApplied, SeverityInfo, OutcomeSuccess,
		ResourceDistribution, "", CategoryDistribution, nil,
		"event", "distribution_applied",
		"delta_rays", deltaRays,
	)
}

// OnDistributionCompleted implements plugin.OnDistributionCompleted.
func (e *Extension) OnDistributionCompleted(ctx context.Context, updated, skipped int, elapsed time.Duration) error {
	return e.record(ctx, ActionDistributionCompleted, SeverityInfo, OutcomeSuccess,
		ResourceDistribution, "", CategoryDistribution, nil,
		"updated", updated,
		"skipped", skipped,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnDriftDetected implements plugin.OnDriftDetected.
func (e *Extension) OnDriftDetected(ctx context.Context, memberID string, expectedRays, actualRays int64) error {
	return e.record(ctx, ActionDriftDetected, SeverityCritical, OutcomeFailure,
		ResourceIntegrity, memberID, CategoryIntegrity, nil,
		"member_id", memberID,
		"expected_rays", expectedRays,
		"actual_rays", actualRays,
	)
}

// ──────────────────────────────────────────────────
// Market lifecycle hooks
// ──────────────────────────────────────────────────

// OnTradeRecorded implements plugin.OnTradeRecorded.
func (e *Extension) OnTradeRecorded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionTradeRecorded, SeverityInfo, OutcomeSuccess,
		ResourceTrade, "", CategoryMarket, nil,
		"event", "trade_recorded",
	)
}

// OnListingCreated implements plugin.OnListingCreated.
func (e *Extension) OnListingCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionListingCreated, SeverityInfo, OutcomeSuccess,
		ResourceListing, "", CategoryMarket, nil,
		"event", "listing_created",
	)
}

// OnOrdersMatched implements plugin.OnOrdersMatched.
func (e *Extension) OnOrdersMatched(ctx context.Context, fills int, elapsed time.Duration) error {
	return e.record(ctx, ActionOrdersMatched, SeverityInfo, OutcomeSuccess,
		ResourceMarket, "", CategoryMarket, nil,
		"fills", fills,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
