package royalty

import (
	"context"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/types"
)

// Service is the capability-typed surface of the remote royalty service.
// One concrete binding exists per capability mode; write methods on the
// read-only binding are never reached because callers fail fast locally.
type Service interface {
	// SetPercentage replaces the content's royalty setting with a
	// percentage model. Atomic from the caller's perspective.
	SetPercentage(ctx context.Context, contentID int64, recipient string, basisPoints uint32, minAmount, maxAmount types.Amount) (*chain.Receipt, error)

	// SetFixed replaces the content's royalty setting with a fixed fee.
	SetFixed(ctx context.Context, contentID int64, recipient string, amount types.Amount) (*chain.Receipt, error)

	// SetTiered replaces the content's royalty setting with a tiered
	// model. Thresholds and rates are index-aligned.
	SetTiered(ctx context.Context, contentID int64, recipient string, thresholds []types.Amount, rates []uint32) (*chain.Receipt, error)

	// GetSetting fetches the active setting for a content id.
	GetSetting(ctx context.Context, contentID int64) (*Setting, error)

	// PayRoyalty pays a royalty obligation for a content id.
	PayRoyalty(ctx context.Context, contentID int64, amount types.Amount) (*chain.Receipt, error)
}
