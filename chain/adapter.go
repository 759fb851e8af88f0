// Package chain defines the uniform read-only adapter surface over the
// supported ledger families, plus the transaction receipt and event model
// shared by the remote service bindings.
//
// Callers hold an Adapter reference typed only by the capability set and
// never branch on which ledger family is behind it. Families without a
// real implementation return ErrUnsupported from every method instead of
// silently returning zero values.
package chain

import (
	"context"
	"errors"

	"github.com/veralith/provenance/types"
)

// Sentinel errors for adapter failures.
var (
	// ErrUnavailable classifies transport failures and timeouts against
	// the underlying ledger. Adapters never retry; retry policy belongs
	// to the caller.
	ErrUnavailable = errors.New("chain: adapter unavailable")

	// ErrUnsupported classifies calls against a ledger family that has
	// no working implementation yet.
	ErrUnsupported = errors.New("chain: ledger family not supported")

	// ErrTxNotFound classifies status lookups for unknown transactions.
	ErrTxNotFound = errors.New("chain: transaction not found")
)

// TxStatus is the confirmation state of a submitted transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// Adapter is the uniform read-only capability surface implemented per
// ledger family.
type Adapter interface {
	// Balance returns the native-unit balance of an account.
	Balance(ctx context.Context, account string) (types.Amount, error)

	// TransactionStatus returns the confirmation state of a transaction.
	TransactionStatus(ctx context.Context, txRef string) (TxStatus, error)

	// CurrentHeight returns the current block height of the ledger.
	CurrentHeight(ctx context.Context) (int64, error)
}

// Family identifies a supported ledger family.
type Family string

const (
	FamilyEVM    Family = "evm"
	FamilySolana Family = "solana"
	FamilyNear   Family = "near"
	FamilyDevnet Family = "devnet"
)
