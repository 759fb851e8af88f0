package chain

import (
	"context"
	"fmt"

	"github.com/veralith/provenance/types"
)

// placeholderAdapter covers ledger families that have no working
// implementation yet. Every call returns ErrUnsupported so callers can
// distinguish "not wired up" from a genuine zero balance or empty result.
type placeholderAdapter struct {
	family Family
}

// NewSolanaAdapter returns the placeholder adapter for the Solana family.
func NewSolanaAdapter() Adapter { return placeholderAdapter{family: FamilySolana} }

// NewNearAdapter returns the placeholder adapter for the NEAR family.
func NewNearAdapter() Adapter { return placeholderAdapter{family: FamilyNear} }

func (p placeholderAdapter) unsupported(op string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnsupported, p.family, op)
}

func (p placeholderAdapter) Balance(_ context.Context, _ string) (types.Amount, error) {
	return types.Amount{}, p.unsupported("balance")
}

func (p placeholderAdapter) TransactionStatus(_ context.Context, _ string) (TxStatus, error) {
	return "", p.unsupported("transaction status")
}

func (p placeholderAdapter) CurrentHeight(_ context.Context) (int64, error) {
	return 0, p.unsupported("current height")
}
