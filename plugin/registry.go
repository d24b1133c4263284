package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                  []OnInit
	onShutdown              []OnShutdown
	onMemberJoined          []OnMemberJoined
	onMemberDeleted         []OnMemberDeleted
	onDistributionApplied   []OnDistributionApplied
	onDistributionCompleted []OnDistributionCompleted
	onDriftDetected         []OnDriftDetected
	onTradeRecorded         []OnTradeRecorded
	onListingCreated        []OnListingCreated
	onOrdersMatched         []OnOrdersMatched
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMemberJoined); ok {
		r.onMemberJoined = append(r.onMemberJoined, v)
	}
	if v, ok := p.(OnMemberDeleted); ok {
		r.onMemberDeleted = append(r.onMemberDeleted, v)
	}
	if v, ok := p.(OnDistributionApplied); ok {
		r.onDistributionApplied = append(r.onDistributionApplied, v)
	}
	if v, ok := p.(OnDistributionCompleted); ok {
		r.onDistributionCompleted = append(r.onDistributionCompleted, v)
	}
	if v, ok := p.(OnDriftDetected); ok {
		r.onDriftDetected = append(r.onDriftDetected, v)
	}
	if v, ok := p.(OnTradeRecorded); ok {
		r.onTradeRecorded = append(r.onTradeRecorded, v)
	}
	if v, ok := p.(OnListingCreated); ok {
		r.onListingCreated = append(r.onListingCreated, v)
	}
	if v, ok := p.(OnOrdersMatched); ok {
		r.onOrdersMatched = append(r.onOrdersMatched, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnMemberJoined)(nil)).Elem(), "OnMemberJoined")
	checkInterface(reflect.TypeOf((*OnDistributionApplied)(nil)).Elem(), "OnDistributionApplied")
	checkInterface(reflect.TypeOf((*OnDistributionCompleted)(nil)).Elem(), "OnDistributionCompleted")
	checkInterface(reflect.TypeOf((*OnDriftDetected)(nil)).Elem(), "OnDriftDetected")
	checkInterface(reflect.TypeOf((*OnTradeRecorded)(nil)).Elem(), "OnTradeRecorded")
	checkInterface(reflect.TypeOf((*OnListingCreated)(nil)).Elem(), "OnListingCreated")
	checkInterface(reflect.TypeOf((*OnOrdersMatched)(nil)).Elem(), "OnOrdersMatched")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMemberJoined emits a member joined event.
func (r *Registry) EmitMemberJoined(ctx context.Context, m interface{}) {
	r.mu.RLock()
	plugins := r.onMemberJoined
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMemberJoined(ctx, m)
		}); err != nil {
			r.logger.Warn("plugin OnMemberJoined failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMemberDeleted emits a member deleted event.
func (r *Registry) EmitMemberDeleted(ctx context.Context, memberID string) {
	r.mu.RLock()
	plugins := r.onMemberDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMemberDeleted(ctx, memberID)
		}); err != nil {
			r.logger.Warn("plugin OnMemberDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDistributionApplied emits a per-member distribution event.
func (r *Registry) EmitDistributionApplied(ctx context.Context, m interface{}, deltaRays int64) {
	r.mu.RLock()
	plugins := r.onDistributionApplied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDistributionApplied(ctx, m, deltaRays)
		}); err != nil {
			r.logger.Warn("plugin OnDistributionApplied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDistributionCompleted emits a distribution run completed event.
func (r *Registry) EmitDistributionCompleted(ctx context.Context, updated, skipped int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onDistributionCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDistributionCompleted(ctx, updated, skipped, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnDistributionCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDriftDetected emits a drift detected event.
func (r *Registry) EmitDriftDetected(ctx context.Context, memberID string, expectedRays, actualRays int64) {
	r.mu.RLock()
	plugins := r.onDriftDetected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDriftDetected(ctx, memberID, expectedRays, actualRays)
		}); err != nil {
			r.logger.Warn("plugin OnDriftDetected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTradeRecorded emits a trade recorded event.
func (r *Registry) EmitTradeRecorded(ctx context.Context, t interface{}) {
	r.mu.RLock()
	plugins := r.onTradeRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTradeRecorded(ctx, t)
		}); err != nil {
			r.logger.Warn("plugin OnTradeRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitListingCreated emits a listing created event.
func (r *Registry) EmitListingCreated(ctx context.Context, l interface{}) {
	r.mu.RLock()
	plugins := r.onListingCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnListingCreated(ctx, l)
		}); err != nil {
			r.logger.Warn("plugin OnListingCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOrdersMatched emits an orders matched event.
func (r *Registry) EmitOrdersMatched(ctx context.Context, fills int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onOrdersMatched
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOrdersMatched(ctx, fills, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnOrdersMatched failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
