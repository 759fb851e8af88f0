// Package royalty implements royalty model evaluation and the
// capability-typed surface of the remote royalty service.
//
// Calculation is pure: it needs no network and uses integer-only
// arithmetic on types.Amount so results are reproducible bit-for-bit.
package royalty

import (
	"errors"
	"fmt"
	"time"

	"github.com/veralith/provenance/types"
)

// ErrInvalidModel classifies malformed royalty settings: out-of-range
// basis points, non-increasing tier thresholds, mismatched tier lengths.
// Validation happens before any network call.
var ErrInvalidModel = errors.New("royalty: invalid royalty model")

// ErrSettingNotFound classifies lookups for content with no setting.
var ErrSettingNotFound = errors.New("royalty: setting not found")

// Model selects the royalty computation strategy.
type Model string

const (
	// ModelPercentage pays a basis-point share of the usage amount,
	// clamped to [MinAmount, MaxAmount].
	ModelPercentage Model = "percentage"

	// ModelTiered pays a basis-point share whose rate depends on the
	// usage-volume bracket, with no clamp.
	ModelTiered Model = "tiered"

	// ModelFixed pays a flat amount regardless of usage.
	ModelFixed Model = "fixed"
)

// Setting is the active royalty configuration for one content id.
// Exactly one setting is active per content; a new set call replaces it
// atomically from the caller's perspective.
type Setting struct {
	ContentID int64  `json:"content_id"`
	Model     Model  `json:"model"`
	Recipient string `json:"recipient"`

	// Percentage parameters. MaxAmount of zero means "no upper bound",
	// not a zero cap.
	BasisPoints uint32       `json:"basis_points,omitempty"`
	MinAmount   types.Amount `json:"min_amount,omitempty"`
	MaxAmount   types.Amount `json:"max_amount,omitempty"`

	// Tiered parameters. Thresholds are strictly increasing usage-volume
	// cutoffs; Rates has the same length, in basis points.
	Thresholds []types.Amount `json:"thresholds,omitempty"`
	Rates      []uint32       `json:"rates,omitempty"`

	// Fixed parameter.
	Amount types.Amount `json:"amount,omitempty"`
}

// Validate rejects malformed settings with ErrInvalidModel.
func (s *Setting) Validate() error {
	switch s.Model {
	case ModelPercentage:
		if s.BasisPoints > types.BasisPointDenominator {
			return fmt.Errorf("%w: basis points %d exceed %d", ErrInvalidModel, s.BasisPoints, types.BasisPointDenominator)
		}
		if !s.MaxAmount.IsZero() && s.MaxAmount.LessThan(s.MinAmount) {
			return fmt.Errorf("%w: max amount %s below min amount %s", ErrInvalidModel, s.MaxAmount, s.MinAmount)
		}
	case ModelTiered:
		if len(s.Thresholds) == 0 {
			return fmt.Errorf("%w: tiered model requires at least one threshold", ErrInvalidModel)
		}
		if len(s.Thresholds) != len(s.Rates) {
			return fmt.Errorf("%w: %d thresholds but %d rates", ErrInvalidModel, len(s.Thresholds), len(s.Rates))
		}
		for i := 1; i < len(s.Thresholds); i++ {
			if !s.Thresholds[i].GreaterThan(s.Thresholds[i-1]) {
				return fmt.Errorf("%w: thresholds not strictly increasing at index %d", ErrInvalidModel, i)
			}
		}
		for i, rate := range s.Rates {
			if rate > types.BasisPointDenominator {
				return fmt.Errorf("%w: rate %d at index %d exceeds %d", ErrInvalidModel, rate, i, types.BasisPointDenominator)
			}
		}
	case ModelFixed:
		// Any amount is valid, including zero.
	default:
		return fmt.Errorf("%w: unknown model %q", ErrInvalidModel, s.Model)
	}
	return nil
}

// Payment is a settled royalty obligation.
type Payment struct {
	ContentID int64        `json:"content_id"`
	Payer     string       `json:"payer"`
	Recipient string       `json:"recipient"`
	Amount    types.Amount `json:"amount"`
	PaidAt    time.Time    `json:"paid_at"`
}

// Event names emitted by the remote royalty service.
const (
	EventRoyaltySettingsUpdated = "RoyaltySettingsUpdated"
	EventFlatRoyaltySet         = "FlatRoyaltySet"
	EventRoyaltyPaid            = "RoyaltyPaid"
)
