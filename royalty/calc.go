package royalty

import (
	"github.com/veralith/provenance/types"
)

// Calculate evaluates a royalty setting against a usage amount and
// returns the payable amount. The setting is validated first, so a
// malformed setting is rejected before any amount leaves this function.
//
// All arithmetic is integer-only with truncation toward zero:
//
//   - Percentage: usage * bps / 10_000, clamped to [MinAmount, MaxAmount].
//     A zero MaxAmount means no upper bound.
//   - Tiered: the rate at the highest threshold index i with
//     usage >= Thresholds[i] applies; below all thresholds the first
//     rate applies. No clamp.
//   - Fixed: the configured amount, ignoring usage entirely.
func Calculate(s *Setting, usage types.Amount) (types.Amount, error) {
	if err := s.Validate(); err != nil {
		return types.Amount{}, err
	}

	switch s.Model {
	case ModelPercentage:
		raw := usage.ApplyBasisPoints(s.BasisPoints)
		return raw.Clamp(s.MinAmount, s.MaxAmount), nil

	case ModelTiered:
		rate := tierRate(s.Thresholds, s.Rates, usage)
		return usage.ApplyBasisPoints(rate), nil

	default: // ModelFixed, guaranteed by Validate
		return s.Amount, nil
	}
}

// tierRate selects the applicable basis-point rate for a usage volume.
// Thresholds are strictly increasing, so a reverse scan finds the highest
// crossed threshold first.
func tierRate(thresholds []types.Amount, rates []uint32, usage types.Amount) uint32 {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if !usage.LessThan(thresholds[i]) {
			return rates[i]
		}
	}
	// Below every threshold: the first bracket's rate applies.
	return rates[0]
}
