// Package plugin provides an extensible plugin system for the Provenance
// client. Plugins can hook into lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"

	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized. The client is passed
// as interface{} so plugins can hold it without importing the root
// package.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, client interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Session hooks
// ──────────────────────────────────────────────────

// OnSessionConnected is called after a session acquires signing
// capability.
type OnSessionConnected interface {
	Plugin
	OnSessionConnected(ctx context.Context, account string) error
}

// OnSessionDisconnected is called after a session drops signing
// capability.
type OnSessionDisconnected interface {
	Plugin
	OnSessionDisconnected(ctx context.Context, account string) error
}

// ──────────────────────────────────────────────────
// Registry hooks
// ──────────────────────────────────────────────────

// OnContentRegistered is called when content registration confirms and
// the new id has been recovered.
type OnContentRegistered interface {
	Plugin
	OnContentRegistered(ctx context.Context, record *registry.ContentRecord) error
}

// OnContentUpdated is called after a content mutation confirms. Field
// names the mutated attribute.
type OnContentUpdated interface {
	Plugin
	OnContentUpdated(ctx context.Context, contentID int64, field string) error
}

// ──────────────────────────────────────────────────
// Royalty hooks
// ──────────────────────────────────────────────────

// OnRoyaltyUpdated is called after royalty settings are replaced.
type OnRoyaltyUpdated interface {
	Plugin
	OnRoyaltyUpdated(ctx context.Context, setting *royalty.Setting) error
}

// OnRoyaltyPaid is called after a royalty payment confirms.
type OnRoyaltyPaid interface {
	Plugin
	OnRoyaltyPaid(ctx context.Context, contentID int64, amount types.Amount) error
}

// ──────────────────────────────────────────────────
// Usage hooks
// ──────────────────────────────────────────────────

// OnUsageReported is called after a usage event is accepted by the
// remote service.
type OnUsageReported interface {
	Plugin
	OnUsageReported(ctx context.Context, event *usage.Event) error
}

// OnUsageFlushed is called when a buffered usage batch is flushed.
type OnUsageFlushed interface {
	Plugin
	OnUsageFlushed(ctx context.Context, count int, elapsed time.Duration) error
}

// OnDuplicateSuppressed is called when a usage report is dropped by the
// dedup guard. Suppression is expected behavior, not an error.
type OnDuplicateSuppressed interface {
	Plugin
	OnDuplicateSuppressed(ctx context.Context, key usage.DedupKey) error
}

// OnLicenseIssued is called after a license issuance confirms.
type OnLicenseIssued interface {
	Plugin
	OnLicenseIssued(ctx context.Context, license *usage.License) error
}

// ──────────────────────────────────────────────────
// Pipeline hooks
// ──────────────────────────────────────────────────

// OnRegistrationWarning is called when the register-with-royalty
// pipeline completes registration but fails to apply royalty settings.
type OnRegistrationWarning interface {
	Plugin
	OnRegistrationWarning(ctx context.Context, contentID int64, warning string) error
}
