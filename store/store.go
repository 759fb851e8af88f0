package store

import (
	"context"
	"time"

	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Store is the unified storage interface behind the devnet backend.
// Instead of embedding sub-interfaces, all methods are declared
// explicitly to avoid naming conflicts.
//
// Content and license ids are assigned by the caller (the devnet backend
// seeds its counters from MaxContentID/MaxLicenseID), so every
// implementation behaves the same regardless of what its driver returns
// for inserts.
type Store interface {
	// Content methods
	CreateContent(ctx context.Context, record *registry.ContentRecord) error
	GetContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error)
	ListContentByCreator(ctx context.Context, creator string) ([]int64, error)
	UpdateContent(ctx context.Context, record *registry.ContentRecord) error
	MaxContentID(ctx context.Context) (int64, error)

	// Royalty methods
	UpsertRoyaltySetting(ctx context.Context, setting *royalty.Setting) error
	GetRoyaltySetting(ctx context.Context, contentID int64) (*royalty.Setting, error)
	RecordRoyaltyPayment(ctx context.Context, payment *royalty.Payment) error
	ListRoyaltyPayments(ctx context.Context, contentID int64) ([]*royalty.Payment, error)

	// Usage methods
	IngestUsage(ctx context.Context, events []*usage.Event) error
	TotalUsage(ctx context.Context, contentID int64) (types.Amount, error)
	UsageHistory(ctx context.Context, contentID int64) ([]usage.HistoryEntry, error)
	PurgeUsage(ctx context.Context, before time.Time) (int64, error)

	// License methods
	CreateLicense(ctx context.Context, license *usage.License) error
	GetLicense(ctx context.Context, licenseID int64) (*usage.License, error)
	ListLicensesByAccount(ctx context.Context, licensee string) ([]int64, error)
	UpdateLicense(ctx context.Context, license *usage.License) error
	MaxLicenseID(ctx context.Context) (int64, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
