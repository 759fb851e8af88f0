package devnet

import (
	"context"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/types"
)

var _ chain.Adapter = (*chainAdapter)(nil)

// chainAdapter exposes the devnet's simulated ledger state through the
// uniform adapter surface.
type chainAdapter struct {
	dev *Devnet
}

func (a *chainAdapter) Balance(ctx context.Context, account string) (types.Amount, error) {
	return a.dev.balanceOf(account), nil
}

func (a *chainAdapter) TransactionStatus(ctx context.Context, txRef string) (chain.TxStatus, error) {
	a.dev.mu.Lock()
	defer a.dev.mu.Unlock()
	status, ok := a.dev.txs[txRef]
	if !ok {
		return "", chain.ErrTxNotFound
	}
	return status, nil
}

func (a *chainAdapter) CurrentHeight(ctx context.Context) (int64, error) {
	a.dev.mu.Lock()
	defer a.dev.mu.Unlock()
	return a.dev.height, nil
}
