package provenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
)

// RoyaltyEngine is the session-bound surface for royalty settings and
// payments. Calculation is pure and local; setting reads and writes go
// to the remote service.
type RoyaltyEngine struct {
	svc        royalty.Service
	capability Capability
	plugins    *plugin.Registry
	logger     *slog.Logger
}

func newRoyaltyEngine(svc royalty.Service, capability Capability, plugins *plugin.Registry, logger *slog.Logger) *RoyaltyEngine {
	return &RoyaltyEngine{svc: svc, capability: capability, plugins: plugins, logger: logger}
}

// SetPercentage replaces the content's royalty setting with a percentage
// model. The setting is validated locally before any network traffic; a
// malformed setting never reaches the remote service. maxAmount zero
// means unbounded.
func (re *RoyaltyEngine) SetPercentage(ctx context.Context, contentID int64, recipient string, basisPoints uint32, minAmount, maxAmount types.Amount) error {
	if !re.capability.CanSign() {
		return ErrNotAuthenticated
	}
	setting := &royalty.Setting{
		ContentID:   contentID,
		Model:       royalty.ModelPercentage,
		Recipient:   recipient,
		BasisPoints: basisPoints,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
	}
	if err := setting.Validate(); err != nil {
		return err
	}

	if _, err := re.svc.SetPercentage(ctx, contentID, recipient, basisPoints, minAmount, maxAmount); err != nil {
		return err
	}

	re.logger.Info("royalty setting replaced",
		"content_id", contentID,
		"model", royalty.ModelPercentage,
		"basis_points", basisPoints,
	)
	re.plugins.EmitRoyaltyUpdated(ctx, setting)
	return nil
}

// SetFixed replaces the content's royalty setting with a fixed fee.
func (re *RoyaltyEngine) SetFixed(ctx context.Context, contentID int64, recipient string, amount types.Amount) error {
	if !re.capability.CanSign() {
		return ErrNotAuthenticated
	}
	setting := &royalty.Setting{
		ContentID: contentID,
		Model:     royalty.ModelFixed,
		Recipient: recipient,
		Amount:    amount,
	}
	if err := setting.Validate(); err != nil {
		return err
	}

	if _, err := re.svc.SetFixed(ctx, contentID, recipient, amount); err != nil {
		return err
	}

	re.logger.Info("royalty setting replaced",
		"content_id", contentID,
		"model", royalty.ModelFixed,
		"amount", amount,
	)
	re.plugins.EmitRoyaltyUpdated(ctx, setting)
	return nil
}

// SetTiered replaces the content's royalty setting with a tiered model.
// Thresholds must be strictly increasing and index-aligned with rates.
func (re *RoyaltyEngine) SetTiered(ctx context.Context, contentID int64, recipient string, thresholds []types.Amount, rates []uint32) error {
	if !re.capability.CanSign() {
		return ErrNotAuthenticated
	}
	setting := &royalty.Setting{
		ContentID:  contentID,
		Model:      royalty.ModelTiered,
		Recipient:  recipient,
		Thresholds: thresholds,
		Rates:      rates,
	}
	if err := setting.Validate(); err != nil {
		return err
	}

	if _, err := re.svc.SetTiered(ctx, contentID, recipient, thresholds, rates); err != nil {
		return err
	}

	re.logger.Info("royalty setting replaced",
		"content_id", contentID,
		"model", royalty.ModelTiered,
		"tiers", len(thresholds),
	)
	re.plugins.EmitRoyaltyUpdated(ctx, setting)
	return nil
}

// ApplyTemplate resolves a built-in template by name and installs the
// setting it produces for the content.
func (re *RoyaltyEngine) ApplyTemplate(ctx context.Context, contentID int64, recipient, templateName string) error {
	tpl, err := royalty.TemplateByName(templateName)
	if err != nil {
		return fmt.Errorf("%w: royalty template %q", ErrNotFound, templateName)
	}
	setting := tpl.Apply(contentID, recipient)
	switch setting.Model {
	case royalty.ModelPercentage:
		return re.SetPercentage(ctx, contentID, recipient, setting.BasisPoints, setting.MinAmount, setting.MaxAmount)
	case royalty.ModelFixed:
		return re.SetFixed(ctx, contentID, recipient, setting.Amount)
	case royalty.ModelTiered:
		return re.SetTiered(ctx, contentID, recipient, setting.Thresholds, setting.Rates)
	default:
		return fmt.Errorf("%w: template model %q", royalty.ErrInvalidModel, setting.Model)
	}
}

// GetSetting fetches the active royalty setting for a content id. Valid
// in any mode.
func (re *RoyaltyEngine) GetSetting(ctx context.Context, contentID int64) (*royalty.Setting, error) {
	return re.svc.GetSetting(ctx, contentID)
}

// Calculate computes the royalty owed for a usage amount under the
// content's active setting. Pure integer arithmetic on top of one
// setting read.
func (re *RoyaltyEngine) Calculate(ctx context.Context, contentID int64, usageAmount types.Amount) (types.Amount, error) {
	setting, err := re.svc.GetSetting(ctx, contentID)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return royalty.Calculate(setting, usageAmount)
}

// PayRoyalty pays a royalty obligation for a content id.
func (re *RoyaltyEngine) PayRoyalty(ctx context.Context, contentID int64, amount types.Amount) error {
	if !re.capability.CanSign() {
		return ErrNotAuthenticated
	}
	if amount.IsZero() {
		return fmt.Errorf("%w: zero payment", ErrInvalidInput)
	}
	if _, err := re.svc.PayRoyalty(ctx, contentID, amount); err != nil {
		return err
	}

	re.logger.Info("royalty paid", "content_id", contentID, "amount", amount)
	re.plugins.EmitRoyaltyPaid(ctx, contentID, amount)
	return nil
}
