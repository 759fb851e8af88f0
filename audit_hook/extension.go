// Package audithook bridges Provenance lifecycle events to an audit
// trail backend.
//
// It defines a local Recorder interface so the package does not import
// any concrete audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnSessionConnected    = (*Extension)(nil)
	_ plugin.OnSessionDisconnected = (*Extension)(nil)
	_ plugin.OnContentRegistered   = (*Extension)(nil)
	_ plugin.OnContentUpdated      = (*Extension)(nil)
	_ plugin.OnRoyaltyUpdated      = (*Extension)(nil)
	_ plugin.OnRoyaltyPaid         = (*Extension)(nil)
	_ plugin.OnUsageReported       = (*Extension)(nil)
	_ plugin.OnUsageFlushed        = (*Extension)(nil)
	_ plugin.OnDuplicateSuppressed = (*Extension)(nil)
	_ plugin.OnLicenseIssued       = (*Extension)(nil)
	_ plugin.OnRegistrationWarning = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement. It is
// defined locally so the package carries no backend dependency; callers
// inject the concrete recorder at wiring time.
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

// Extension bridges Provenance lifecycle events to an audit trail backend.
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
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionConnected implements plugin.OnSessionConnected.
func (e *Extension) OnSessionConnected(ctx context.Context, account string) error {
	return e.record(ctx, ActionSessionConnected, SeverityInfo, OutcomeSuccess,
		ResourceSession, account, CategorySession, nil,
		"account", account,
	)
}

// OnSessionDisconnected implements plugin.OnSessionDisconnected.
func (e *Extension) OnSessionDisconnected(ctx context.Context, account string) error {
	return e.record(ctx, ActionSessionDisconnected, SeverityInfo, OutcomeSuccess,
		ResourceSession, account, CategorySession, nil,
		"account", account,
	)
}

// ──────────────────────────────────────────────────
// Content lifecycle hooks
// ──────────────────────────────────────────────────

// OnContentRegistered implements plugin.OnContentRegistered.
func (e *Extension) OnContentRegistered(ctx context.Context, record *registry.ContentRecord) error {
	return e.record(ctx, ActionContentRegistered, SeverityInfo, OutcomeSuccess,
		ResourceContent, fmt.Sprintf("%d", record.ID), CategoryRegistry, nil,
		"content_id", record.ID,
		"creator", record.Creator,
		"content_type", record.ContentType.String(),
	)
}

// OnContentUpdated implements plugin.OnContentUpdated.
func (e *Extension) OnContentUpdated(ctx context.Context, contentID int64, field string) error {
	return e.record(ctx, ActionContentUpdated, SeverityInfo, OutcomeSuccess,
		ResourceContent, fmt.Sprintf("%d", contentID), CategoryRegistry, nil,
		"content_id", contentID,
		"field", field,
	)
}

// ──────────────────────────────────────────────────
// Royalty lifecycle hooks
// ──────────────────────────────────────────────────

// OnRoyaltyUpdated implements plugin.OnRoyaltyUpdated.
func (e *Extension) OnRoyaltyUpdated(ctx context.Context, setting *royalty.Setting) error {
	return e.record(ctx, ActionRoyaltyUpdated, SeverityInfo, OutcomeSuccess,
		ResourceRoyalty, fmt.Sprintf("%d", setting.ContentID), CategoryRoyalty, nil,
		"content_id", setting.ContentID,
		"model", string(setting.Model),
		"recipient", setting.Recipient,
	)
}

// OnRoyaltyPaid implements plugin.OnRoyaltyPaid.
func (e *Extension) OnRoyaltyPaid(ctx context.Context, contentID int64, amount types.Amount) error {
	return e.record(ctx, ActionRoyaltyPaid, SeverityInfo, OutcomeSuccess,
		ResourceRoyalty, fmt.Sprintf("%d", contentID), CategoryRoyalty, nil,
		"content_id", contentID,
		"amount", amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Usage lifecycle hooks
// ──────────────────────────────────────────────────

// OnUsageReported implements plugin.OnUsageReported.
func (e *Extension) OnUsageReported(ctx context.Context, event *usage.Event) error {
	return e.record(ctx, ActionUsageReported, SeverityInfo, OutcomeSuccess,
		ResourceUsage, event.ID.String(), CategoryUsage, nil,
		"content_id", event.ContentID,
		"platform", string(event.Platform),
		"quantity", event.Quantity,
	)
}

// OnUsageFlushed implements plugin.OnUsageFlushed.
func (e *Extension) OnUsageFlushed(ctx context.Context, count int, elapsed time.Duration) error {
	return e.record(ctx, ActionUsageFlushed, SeverityInfo, OutcomeSuccess,
		ResourceUsage, "", CategoryUsage, nil,
		"count", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnDuplicateSuppressed implements plugin.OnDuplicateSuppressed.
func (e *Extension) OnDuplicateSuppressed(ctx context.Context, key usage.DedupKey) error {
	return e.record(ctx, ActionDuplicateSuppressed, SeverityInfo, OutcomeSuccess,
		ResourceUsage, key.String(), CategoryUsage, nil,
		"content_id", key.ContentID,
		"platform", string(key.Platform),
		"scope_key", key.ScopeKey,
	)
}

// OnLicenseIssued implements plugin.OnLicenseIssued.
func (e *Extension) OnLicenseIssued(ctx context.Context, license *usage.License) error {
	return e.record(ctx, ActionLicenseIssued, SeverityInfo, OutcomeSuccess,
		ResourceLicense, fmt.Sprintf("%d", license.ID), CategoryLicense, nil,
		"license_id", license.ID,
		"licensee", license.Licensee,
		"content_id", license.ContentID,
	)
}

// ──────────────────────────────────────────────────
// Pipeline lifecycle hooks
// ──────────────────────────────────────────────────

// OnRegistrationWarning implements plugin.OnRegistrationWarning.
func (e *Extension) OnRegistrationWarning(ctx context.Context, contentID int64, warning string) error {
	return e.record(ctx, ActionRegistrationWarning, SeverityWarning, OutcomePartial,
		ResourceContent, fmt.Sprintf("%d", contentID), CategoryRegistry, nil,
		"content_id", contentID,
		"warning", warning,
	)
}

// record builds and emits one audit event, honoring the enabled filter.
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
