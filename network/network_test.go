package network

import (
	"errors"
	"testing"
)

func TestResolveBuiltin(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name    string
		chainID int64
		want    string
	}{
		{name: "ethereum", chainID: ChainEthereumMainnet, want: "Ethereum Mainnet"},
		{name: "polygon", chainID: ChainPolygonMainnet, want: "Polygon Mainnet"},
		{name: "mumbai", chainID: ChainPolygonMumbai, want: "Polygon Mumbai"},
		{name: "devnet", chainID: ChainDevnet, want: "Local Devnet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := r.Resolve(tt.chainID)
			if err != nil {
				t.Fatalf("Resolve(%d): %v", tt.chainID, err)
			}
			if n.Name != tt.want {
				t.Errorf("Resolve(%d).Name = %q, want %q", tt.chainID, n.Name, tt.want)
			}
		})
	}
}

func TestResolveUnknownIsStrict(t *testing.T) {
	r := NewResolver()

	_, err := r.Resolve(424242)
	if !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("Resolve(424242) = %v, want ErrUnknownNetwork", err)
	}
}

func TestResolveFallbackIsOptIn(t *testing.T) {
	mumbai, err := NewResolver().Resolve(ChainPolygonMumbai)
	if err != nil {
		t.Fatal(err)
	}

	r := NewResolver(WithFallback(mumbai))
	n, err := r.Resolve(424242)
	if err != nil {
		t.Fatalf("Resolve with fallback: %v", err)
	}
	if n.ChainID != ChainPolygonMumbai {
		t.Errorf("fallback chain id = %d, want %d", n.ChainID, ChainPolygonMumbai)
	}

	// Known identities still resolve to themselves.
	n, err = r.Resolve(ChainEthereumMainnet)
	if err != nil {
		t.Fatal(err)
	}
	if n.ChainID != ChainEthereumMainnet {
		t.Errorf("known chain id = %d, want %d", n.ChainID, ChainEthereumMainnet)
	}
}

func TestWithNetworkOverride(t *testing.T) {
	custom := Network{
		ChainID: ChainDevnet,
		Name:    "CI Devnet",
		RPCURL:  "http://devnet.ci:8545",
		Contracts: Contracts{
			Registry: "0x01",
			Royalty:  "0x02",
			Usage:    "0x03",
		},
	}

	r := NewResolver(WithNetwork(custom))
	n, err := r.Resolve(ChainDevnet)
	if err != nil {
		t.Fatal(err)
	}
	if n.Name != "CI Devnet" {
		t.Errorf("Name = %q, want override", n.Name)
	}
	if n.Contracts.Registry != "0x01" {
		t.Errorf("Registry = %q, want 0x01", n.Contracts.Registry)
	}
}

func TestExplorerTxURL(t *testing.T) {
	r := NewResolver()

	eth, _ := r.Resolve(ChainEthereumMainnet)
	got := eth.ExplorerTxURL("0xabc")
	want := "https://etherscan.io/tx/0xabc"
	if got != want {
		t.Errorf("ExplorerTxURL = %q, want %q", got, want)
	}

	dev, _ := r.Resolve(ChainDevnet)
	if got := dev.ExplorerTxURL("0xabc"); got != "" {
		t.Errorf("devnet ExplorerTxURL = %q, want empty", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PROVENANCE_CHAIN_ID", "137")
	t.Setenv("PROVENANCE_RPC_URL", "https://polygon.example.com")
	t.Setenv("PROVENANCE_REGISTRY_ADDR", "0xreg")

	n, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if n.ChainID != 137 {
		t.Errorf("ChainID = %d, want 137", n.ChainID)
	}
	if n.RPCURL != "https://polygon.example.com" {
		t.Errorf("RPCURL = %q", n.RPCURL)
	}
	if n.Contracts.Registry != "0xreg" {
		t.Errorf("Registry = %q, want 0xreg", n.Contracts.Registry)
	}
}

func TestFromEnvMissingChainID(t *testing.T) {
	t.Setenv("PROVENANCE_CHAIN_ID", "")

	_, err := FromEnv()
	if !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("FromEnv without chain id = %v, want ErrUnknownNetwork", err)
	}
}
