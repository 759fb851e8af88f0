package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onSessionConnected    []OnSessionConnected
	onSessionDisconnected []OnSessionDisconnected
	onContentRegistered   []OnContentRegistered
	onContentUpdated      []OnContentUpdated
	onRoyaltyUpdated      []OnRoyaltyUpdated
	onRoyaltyPaid         []OnRoyaltyPaid
	onUsageReported       []OnUsageReported
	onUsageFlushed        []OnUsageFlushed
	onDuplicateSuppressed []OnDuplicateSuppressed
	onLicenseIssued       []OnLicenseIssued
	onRegistrationWarning []OnRegistrationWarning
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
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
	if v, ok := p.(OnSessionConnected); ok {
		r.onSessionConnected = append(r.onSessionConnected, v)
	}
	if v, ok := p.(OnSessionDisconnected); ok {
		r.onSessionDisconnected = append(r.onSessionDisconnected, v)
	}
	if v, ok := p.(OnContentRegistered); ok {
		r.onContentRegistered = append(r.onContentRegistered, v)
	}
	if v, ok := p.(OnContentUpdated); ok {
		r.onContentUpdated = append(r.onContentUpdated, v)
	}
	if v, ok := p.(OnRoyaltyUpdated); ok {
		r.onRoyaltyUpdated = append(r.onRoyaltyUpdated, v)
	}
	if v, ok := p.(OnRoyaltyPaid); ok {
		r.onRoyaltyPaid = append(r.onRoyaltyPaid, v)
	}
	if v, ok := p.(OnUsageReported); ok {
		r.onUsageReported = append(r.onUsageReported, v)
	}
	if v, ok := p.(OnUsageFlushed); ok {
		r.onUsageFlushed = append(r.onUsageFlushed, v)
	}
	if v, ok := p.(OnDuplicateSuppressed); ok {
		r.onDuplicateSuppressed = append(r.onDuplicateSuppressed, v)
	}
	if v, ok := p.(OnLicenseIssued); ok {
		r.onLicenseIssued = append(r.onLicenseIssued, v)
	}
	if v, ok := p.(OnRegistrationWarning); ok {
		r.onRegistrationWarning = append(r.onRegistrationWarning, v)
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

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnSessionConnected)(nil)).Elem(), "OnSessionConnected")
	checkInterface(reflect.TypeOf((*OnSessionDisconnected)(nil)).Elem(), "OnSessionDisconnected")
	checkInterface(reflect.TypeOf((*OnContentRegistered)(nil)).Elem(), "OnContentRegistered")
	checkInterface(reflect.TypeOf((*OnContentUpdated)(nil)).Elem(), "OnContentUpdated")
	checkInterface(reflect.TypeOf((*OnRoyaltyUpdated)(nil)).Elem(), "OnRoyaltyUpdated")
	checkInterface(reflect.TypeOf((*OnRoyaltyPaid)(nil)).Elem(), "OnRoyaltyPaid")
	checkInterface(reflect.TypeOf((*OnUsageReported)(nil)).Elem(), "OnUsageReported")
	checkInterface(reflect.TypeOf((*OnUsageFlushed)(nil)).Elem(), "OnUsageFlushed")
	checkInterface(reflect.TypeOf((*OnDuplicateSuppressed)(nil)).Elem(), "OnDuplicateSuppressed")
	checkInterface(reflect.TypeOf((*OnLicenseIssued)(nil)).Elem(), "OnLicenseIssued")
	checkInterface(reflect.TypeOf((*OnRegistrationWarning)(nil)).Elem(), "OnRegistrationWarning")

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
func (r *Registry) EmitInit(ctx context.Context, client interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, client)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
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
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSessionConnected emits a session connected event.
func (r *Registry) EmitSessionConnected(ctx context.Context, account string) {
	r.mu.RLock()
	plugins := r.onSessionConnected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionConnected(ctx, account)
		}); err != nil {
			r.logger.Warn("plugin OnSessionConnected failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSessionDisconnected emits a session disconnected event.
func (r *Registry) EmitSessionDisconnected(ctx context.Context, account string) {
	r.mu.RLock()
	plugins := r.onSessionDisconnected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionDisconnected(ctx, account)
		}); err != nil {
			r.logger.Warn("plugin OnSessionDisconnected failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitContentRegistered emits a content registered event.
func (r *Registry) EmitContentRegistered(ctx context.Context, record *registry.ContentRecord) {
	r.mu.RLock()
	plugins := r.onContentRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnContentRegistered(ctx, record)
		}); err != nil {
			r.logger.Warn("plugin OnContentRegistered failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitContentUpdated emits a content updated event.
func (r *Registry) EmitContentUpdated(ctx context.Context, contentID int64, field string) {
	r.mu.RLock()
	plugins := r.onContentUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnContentUpdated(ctx, contentID, field)
		}); err != nil {
			r.logger.Warn("plugin OnContentUpdated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitRoyaltyUpdated emits a royalty settings updated event.
func (r *Registry) EmitRoyaltyUpdated(ctx context.Context, setting *royalty.Setting) {
	r.mu.RLock()
	plugins := r.onRoyaltyUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRoyaltyUpdated(ctx, setting)
		}); err != nil {
			r.logger.Warn("plugin OnRoyaltyUpdated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitRoyaltyPaid emits a royalty paid event.
func (r *Registry) EmitRoyaltyPaid(ctx context.Context, contentID int64, amount types.Amount) {
	r.mu.RLock()
	plugins := r.onRoyaltyPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRoyaltyPaid(ctx, contentID, amount)
		}); err != nil {
			r.logger.Warn("plugin OnRoyaltyPaid failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitUsageReported emits a usage reported event.
func (r *Registry) EmitUsageReported(ctx context.Context, event *usage.Event) {
	r.mu.RLock()
	plugins := r.onUsageReported
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUsageReported(ctx, event)
		}); err != nil {
			r.logger.Warn("plugin OnUsageReported failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitUsageFlushed emits a usage flushed event.
func (r *Registry) EmitUsageFlushed(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onUsageFlushed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUsageFlushed(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnUsageFlushed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitDuplicateSuppressed emits a duplicate suppressed event.
func (r *Registry) EmitDuplicateSuppressed(ctx context.Context, key usage.DedupKey) {
	r.mu.RLock()
	plugins := r.onDuplicateSuppressed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDuplicateSuppressed(ctx, key)
		}); err != nil {
			r.logger.Warn("plugin OnDuplicateSuppressed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitLicenseIssued emits a license issued event.
func (r *Registry) EmitLicenseIssued(ctx context.Context, license *usage.License) {
	r.mu.RLock()
	plugins := r.onLicenseIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLicenseIssued(ctx, license)
		}); err != nil {
			r.logger.Warn("plugin OnLicenseIssued failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitRegistrationWarning emits a registration warning event.
func (r *Registry) EmitRegistrationWarning(ctx context.Context, contentID int64, warning string) {
	r.mu.RLock()
	plugins := r.onRegistrationWarning
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRegistrationWarning(ctx, contentID, warning)
		}); err != nil {
			r.logger.Warn("plugin OnRegistrationWarning failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block client operations.
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
