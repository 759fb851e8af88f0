package usage

import (
	"context"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/types"
)

// Service is the capability-typed surface of the remote usage-tracking
// service. The service is the eventually consistent source of truth for
// usage totals; local dedup state is only a guard against double
// submission, never a cache of totals.
type Service interface {
	// RecordUsage commits a single usage event.
	RecordUsage(ctx context.Context, contentID int64, platform Platform, quantity int64) (*chain.Receipt, error)

	// BatchRecordUsage commits several usage events as one operation.
	// The service may or may not apply them atomically; the receipt
	// reflects the whole batch.
	BatchRecordUsage(ctx context.Context, events []*Event) (*chain.Receipt, error)

	// TotalUsage returns the committed usage total for a content id.
	TotalUsage(ctx context.Context, contentID int64) (types.Amount, error)

	// UsageHistory returns the committed usage events for a content id,
	// most recent first.
	UsageHistory(ctx context.Context, contentID int64) ([]HistoryEntry, error)

	// GetLicense fetches a license by id.
	GetLicense(ctx context.Context, licenseID int64) (*License, error)

	// UserLicenses lists the license ids held by an account.
	UserLicenses(ctx context.Context, account string) ([]int64, error)
}
