package provenance

import "github.com/veralith/provenance/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Amount constructors
var (
	NewAmount       = types.NewAmount
	ZeroAmount      = types.ZeroAmount
	ParseAmount     = types.ParseAmount
	MustParseAmount = types.MustParseAmount
	SumAmounts      = types.SumAmounts
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
