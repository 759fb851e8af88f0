// Package observability provides a metrics extension for the Provenance
// client that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnSessionConnected    = (*MetricsExtension)(nil)
	_ plugin.OnSessionDisconnected = (*MetricsExtension)(nil)
	_ plugin.OnContentRegistered   = (*MetricsExtension)(nil)
	_ plugin.OnContentUpdated      = (*MetricsExtension)(nil)
	_ plugin.OnRoyaltyUpdated      = (*MetricsExtension)(nil)
	_ plugin.OnRoyaltyPaid         = (*MetricsExtension)(nil)
	_ plugin.OnUsageReported       = (*MetricsExtension)(nil)
	_ plugin.OnUsageFlushed        = (*MetricsExtension)(nil)
	_ plugin.OnDuplicateSuppressed = (*MetricsExtension)(nil)
	_ plugin.OnLicenseIssued       = (*MetricsExtension)(nil)
	_ plugin.OnRegistrationWarning = (*MetricsExtension)(nil)
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

// MetricsExtension records client-wide lifecycle metrics.
// Register it as a Provenance plugin to automatically track activity.
type MetricsExtension struct {
	factory MetricFactory

	// Session metrics
	SessionConnected    Counter
	SessionDisconnected Counter

	// Registry metrics
	ContentRegistered Counter
	ContentUpdated    Counter

	// Royalty metrics
	RoyaltyUpdated Counter
	RoyaltyPaid    Counter
	RoyaltyAmount  Histogram

	// Usage metrics
	UsageReported        Counter
	UsageBatchSize       Histogram
	UsageFlushLatency    Histogram
	DuplicatesSuppressed Counter

	// License metrics
	LicenseIssued Counter

	// Pipeline metrics
	RegistrationWarnings Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Session metrics
		SessionConnected:    factory.Counter("provenance.session.connected"),
		SessionDisconnected: factory.Counter("provenance.session.disconnected"),

		// Registry metrics
		ContentRegistered: factory.Counter("provenance.content.registered"),
		ContentUpdated:    factory.Counter("provenance.content.updated"),

		// Royalty metrics
		RoyaltyUpdated: factory.Counter("provenance.royalty.updated"),
		RoyaltyPaid:    factory.Counter("provenance.royalty.paid"),
		RoyaltyAmount:  factory.Histogram("provenance.royalty.amount"),

		// Usage metrics
		UsageReported:        factory.Counter("provenance.usage.reported"),
		UsageBatchSize:       factory.Histogram("provenance.usage.batch.size"),
		UsageFlushLatency:    factory.Histogram("provenance.usage.flush.latency_ms"),
		DuplicatesSuppressed: factory.Counter("provenance.usage.duplicates.suppressed"),

		// License metrics
		LicenseIssued: factory.Counter("provenance.license.issued"),

		// Pipeline metrics
		RegistrationWarnings: factory.Counter("provenance.pipeline.warnings"),
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
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionConnected implements plugin.OnSessionConnected.
func (m *MetricsExtension) OnSessionConnected(_ context.Context, _ string) error {
	m.SessionConnected.Inc()
	return nil
}

// OnSessionDisconnected implements plugin.OnSessionDisconnected.
func (m *MetricsExtension) OnSessionDisconnected(_ context.Context, _ string) error {
	m.SessionDisconnected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Registry lifecycle hooks
// ──────────────────────────────────────────────────

// OnContentRegistered implements plugin.OnContentRegistered.
func (m *MetricsExtension) OnContentRegistered(_ context.Context, _ *registry.ContentRecord) error {
	m.ContentRegistered.Inc()
	return nil
}

// OnContentUpdated implements plugin.OnContentUpdated.
func (m *MetricsExtension) OnContentUpdated(_ context.Context, _ int64, _ string) error {
	m.ContentUpdated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Royalty lifecycle hooks
// ──────────────────────────────────────────────────

// OnRoyaltyUpdated implements plugin.OnRoyaltyUpdated.
func (m *MetricsExtension) OnRoyaltyUpdated(_ context.Context, _ *royalty.Setting) error {
	m.RoyaltyUpdated.Inc()
	return nil
}

// OnRoyaltyPaid implements plugin.OnRoyaltyPaid.
func (m *MetricsExtension) OnRoyaltyPaid(_ context.Context, _ int64, amount types.Amount) error {
	m.RoyaltyPaid.Inc()
	if v, ok := amount.Uint64(); ok {
		m.RoyaltyAmount.Observe(float64(v))
	}
	return nil
}

// ──────────────────────────────────────────────────
// Usage lifecycle hooks
// ──────────────────────────────────────────────────

// OnUsageReported implements plugin.OnUsageReported.
func (m *MetricsExtension) OnUsageReported(_ context.Context, _ *usage.Event) error {
	m.UsageReported.Inc()
	return nil
}

// OnUsageFlushed implements plugin.OnUsageFlushed.
func (m *MetricsExtension) OnUsageFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.UsageBatchSize.Observe(float64(count))
	m.UsageFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// OnDuplicateSuppressed implements plugin.OnDuplicateSuppressed.
func (m *MetricsExtension) OnDuplicateSuppressed(_ context.Context, _ usage.DedupKey) error {
	m.DuplicatesSuppressed.Inc()
	return nil
}

// OnLicenseIssued implements plugin.OnLicenseIssued.
func (m *MetricsExtension) OnLicenseIssued(_ context.Context, _ *usage.License) error {
	m.LicenseIssued.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Pipeline lifecycle hooks
// ──────────────────────────────────────────────────

// OnRegistrationWarning implements plugin.OnRegistrationWarning.
func (m *MetricsExtension) OnRegistrationWarning(_ context.Context, _ int64, _ string) error {
	m.RegistrationWarnings.Inc()
	return nil
}
