// Package network resolves chain identities to endpoint and contract
// configuration.
//
// Resolution is strict by default: an unknown chain identity is a
// classified error, never a silent fall-through to a default testnet.
// Falling back is an explicit, opt-in policy via WithFallback.
package network

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrUnknownNetwork classifies resolution requests for a chain identity
// that has no configuration entry.
var ErrUnknownNetwork = errors.New("network: unknown network")

// Contracts holds the three remote-service contract addresses on one
// network.
type Contracts struct {
	Registry string `json:"registry" env:"REGISTRY_ADDR"`
	Royalty  string `json:"royalty" env:"ROYALTY_ADDR"`
	Usage    string `json:"usage" env:"USAGE_ADDR"`
}

// Network is the full configuration for one chain identity.
type Network struct {
	ChainID     int64     `json:"chain_id" env:"CHAIN_ID"`
	Name        string    `json:"name" env:"NAME"`
	RPCURL      string    `json:"rpc_url" env:"RPC_URL"`
	ExplorerURL string    `json:"explorer_url" env:"EXPLORER_URL"`
	Contracts   Contracts `json:"contracts"`
}

// ExplorerTxURL returns the explorer link for a transaction hash, or an
// empty string when the network has no explorer.
func (n Network) ExplorerTxURL(txHash string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", n.ExplorerURL, txHash)
}

// Well-known chain identities.
const (
	ChainEthereumMainnet int64 = 1
	ChainPolygonMainnet  int64 = 137
	ChainPolygonMumbai   int64 = 80001
	ChainDevnet          int64 = 31337
)

// builtin is the compiled-in network table. Contract addresses are filled
// by deployment configuration; the table only fixes identities and public
// endpoints.
var builtin = map[int64]Network{
	ChainEthereumMainnet: {
		ChainID:     ChainEthereumMainnet,
		Name:        "Ethereum Mainnet",
		RPCURL:      "https://eth.llamarpc.com",
		ExplorerURL: "https://etherscan.io",
	},
	ChainPolygonMainnet: {
		ChainID:     ChainPolygonMainnet,
		Name:        "Polygon Mainnet",
		RPCURL:      "https://polygon-rpc.com",
		ExplorerURL: "https://polygonscan.com",
	},
	ChainPolygonMumbai: {
		ChainID:     ChainPolygonMumbai,
		Name:        "Polygon Mumbai",
		RPCURL:      "https://rpc-mumbai.maticvigil.com",
		ExplorerURL: "https://mumbai.polygonscan.com",
	},
	ChainDevnet: {
		ChainID: ChainDevnet,
		Name:    "Local Devnet",
		RPCURL:  "http://127.0.0.1:8545",
	},
}

// Resolver maps chain identities to network configurations.
type Resolver struct {
	networks map[int64]Network
	fallback *Network
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithNetwork adds or overrides a network entry.
func WithNetwork(n Network) ResolverOption {
	return func(r *Resolver) { r.networks[n.ChainID] = n }
}

// WithFallback makes resolution of unknown chain identities return the
// given network instead of ErrUnknownNetwork. This is the explicit form
// of the "default to a testnet" policy; without it resolution is strict.
func WithFallback(n Network) ResolverOption {
	return func(r *Resolver) { r.fallback = &n }
}

// NewResolver creates a resolver over the built-in network table.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{networks: make(map[int64]Network, len(builtin))}
	for chainID, n := range builtin {
		r.networks[chainID] = n
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the configuration for a chain identity. Unknown
// identities yield ErrUnknownNetwork unless a fallback was configured.
func (r *Resolver) Resolve(chainID int64) (Network, error) {
	if n, ok := r.networks[chainID]; ok {
		return n, nil
	}
	if r.fallback != nil {
		return *r.fallback, nil
	}
	return Network{}, fmt.Errorf("%w: chain id %d", ErrUnknownNetwork, chainID)
}

// FromEnv loads a network configuration from PROVENANCE_-prefixed
// environment variables (PROVENANCE_CHAIN_ID, PROVENANCE_RPC_URL,
// PROVENANCE_REGISTRY_ADDR, ...).
func FromEnv() (Network, error) {
	var n Network
	if err := env.ParseWithOptions(&n, env.Options{Prefix: "PROVENANCE_"}); err != nil {
		return Network{}, fmt.Errorf("network: load from environment: %w", err)
	}
	if n.ChainID == 0 {
		return Network{}, fmt.Errorf("%w: PROVENANCE_CHAIN_ID not set", ErrUnknownNetwork)
	}
	return n, nil
}
