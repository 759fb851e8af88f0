package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/veralith/provenance/types"
)

// EVMAdapter implements Adapter against any EVM-family ledger
// (Ethereum, Polygon, and their testnets) over JSON-RPC.
type EVMAdapter struct {
	http    *resty.Client
	chainID int64
	nextID  atomic.Int64
}

// EVMOption configures an EVMAdapter.
type EVMOption func(*EVMAdapter)

// WithHTTPTimeout sets the per-request timeout. Timeouts surface as
// ErrUnavailable like any other transport failure.
func WithHTTPTimeout(d time.Duration) EVMOption {
	return func(a *EVMAdapter) { a.http.SetTimeout(d) }
}

// NewEVMAdapter creates an adapter for the EVM ledger at rpcURL.
func NewEVMAdapter(rpcURL string, chainID int64, opts ...EVMOption) *EVMAdapter {
	a := &EVMAdapter{
		http: resty.New().
			SetBaseURL(rpcURL).
			SetTimeout(15 * time.Second).
			SetHeader("Content-Type", "application/json"),
		chainID: chainID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Family returns the ledger family of this adapter.
func (a *EVMAdapter) Family() Family { return FamilyEVM }

// ChainID returns the EVM chain identity this adapter targets.
func (a *EVMAdapter) ChainID() int64 { return a.chainID }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result any       `json:"result"`
	Error  *rpcError `json:"error"`
}

// call performs one JSON-RPC request. Transport failures and RPC-level
// errors are both classified as ErrUnavailable; the adapter layer does
// not distinguish them and never retries.
func (a *EVMAdapter) call(ctx context.Context, method string, params ...any) (any, error) {
	if params == nil {
		params = []any{}
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      a.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var out rpcResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: http %d", ErrUnavailable, method, resp.StatusCode())
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%w: %s: rpc %d %s", ErrUnavailable, method, out.Error.Code, out.Error.Message)
	}

	return out.Result, nil
}

// Balance implements Adapter via eth_getBalance at the latest block.
func (a *EVMAdapter) Balance(ctx context.Context, account string) (types.Amount, error) {
	result, err := a.call(ctx, "eth_getBalance", account, "latest")
	if err != nil {
		return types.Amount{}, err
	}

	hex, ok := result.(string)
	if !ok {
		return types.Amount{}, fmt.Errorf("%w: eth_getBalance returned %T", ErrUnavailable, result)
	}
	return parseHexAmount(hex)
}

// TransactionStatus implements Adapter via eth_getTransactionReceipt.
// A missing receipt means the transaction has not been mined yet.
func (a *EVMAdapter) TransactionStatus(ctx context.Context, txRef string) (TxStatus, error) {
	result, err := a.call(ctx, "eth_getTransactionReceipt", txRef)
	if err != nil {
		return "", err
	}
	if result == nil {
		return TxPending, nil
	}

	receipt, ok := result.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: eth_getTransactionReceipt returned %T", ErrUnavailable, result)
	}

	status, _ := receipt["status"].(string)
	switch status {
	case "0x1":
		return TxConfirmed, nil
	case "0x0":
		return TxFailed, nil
	default:
		return "", fmt.Errorf("%w: unexpected receipt status %q", ErrUnavailable, status)
	}
}

// CurrentHeight implements Adapter via eth_blockNumber.
func (a *EVMAdapter) CurrentHeight(ctx context.Context) (int64, error) {
	result, err := a.call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}

	hex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("%w: eth_blockNumber returned %T", ErrUnavailable, result)
	}

	height, ok := new(big.Int).SetString(strings.TrimPrefix(hex, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("%w: malformed block number %q", ErrUnavailable, hex)
	}
	return height.Int64(), nil
}

func parseHexAmount(hex string) (types.Amount, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(hex, "0x"), 16)
	if !ok || v.Sign() < 0 {
		return types.Amount{}, fmt.Errorf("%w: malformed quantity %q", ErrUnavailable, hex)
	}
	return types.MustParseAmount(v.String()), nil
}
