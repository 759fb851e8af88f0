package provenance

import (
	"context"
	"fmt"

	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
)

// RegistrationResult is the outcome of the register-with-royalty
// pipeline. Content is always set on success. RoyaltyApplied reports
// whether the second step landed; when it is false, Warning says why and
// the registration still stands.
type RegistrationResult struct {
	Content        *registry.ContentRecord
	RoyaltyApplied bool
	Warning        string
}

// RegisterWithRoyalty registers content and then installs its royalty
// setting as a two-step pipeline. A nil setting skips the royalty step
// entirely: the call degrades to a plain registration and the result
// carries RoyaltyApplied=false with no warning. A non-nil setting is
// validated before the registration is submitted, so a malformed setting
// produces no network effects at all.
//
// The steps are not atomic. A registration that confirms is never rolled
// back: if the royalty step fails, the call still succeeds and the
// result carries RoyaltyApplied=false with a warning describing the
// failure. Callers retry the royalty step alone via the royalty engine.
func (c *Client) RegisterWithRoyalty(ctx context.Context, contentURI, metadataURI string, contentType registry.ContentType, setting *royalty.Setting) (*RegistrationResult, error) {
	if setting != nil {
		if err := setting.Validate(); err != nil {
			return nil, err
		}
	}

	reg, err := c.Registry(ctx)
	if err != nil {
		return nil, err
	}
	record, err := reg.Register(ctx, contentURI, metadataURI, contentType)
	if err != nil {
		return nil, err
	}

	result := &RegistrationResult{Content: record}
	if setting == nil {
		return result, nil
	}

	eng, err := c.Royalty(ctx)
	if err != nil {
		result.Warning = fmt.Sprintf("royalty step skipped: %v", err)
		c.plugins.EmitRegistrationWarning(ctx, record.ID, result.Warning)
		return result, nil
	}

	applied := *setting
	applied.ContentID = record.ID
	if applied.Recipient == "" {
		applied.Recipient = record.Creator
	}

	if err := applySetting(ctx, eng, applied); err != nil {
		result.Warning = fmt.Sprintf("content %d registered but royalty setting failed: %v", record.ID, err)
		c.logger.Warn("registration pipeline partial success",
			"content_id", record.ID,
			"error", err,
		)
		c.plugins.EmitRegistrationWarning(ctx, record.ID, result.Warning)
		return result, nil
	}

	result.RoyaltyApplied = true
	return result, nil
}

func applySetting(ctx context.Context, eng *RoyaltyEngine, setting royalty.Setting) error {
	switch setting.Model {
	case royalty.ModelPercentage:
		return eng.SetPercentage(ctx, setting.ContentID, setting.Recipient, setting.BasisPoints, setting.MinAmount, setting.MaxAmount)
	case royalty.ModelFixed:
		return eng.SetFixed(ctx, setting.ContentID, setting.Recipient, setting.Amount)
	case royalty.ModelTiered:
		return eng.SetTiered(ctx, setting.ContentID, setting.Recipient, setting.Thresholds, setting.Rates)
	default:
		return fmt.Errorf("%w: unknown model %q", royalty.ErrInvalidModel, setting.Model)
	}
}
