package devnet

import (
	"context"
	"fmt"
	"time"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// compile-time interface checks
var (
	_ registry.Service = (*registryService)(nil)
	_ royalty.Service  = (*royaltyService)(nil)
	_ usage.Service    = (*usageService)(nil)
)

// ==================== Registry ====================

type registryService struct {
	dev        *Devnet
	capability provenance.Capability
}

func (s *registryService) Register(ctx context.Context, contentURI, metadataURI string, contentType registry.ContentType) (*chain.Receipt, error) {
	if !s.capability.CanSign() {
		return nil, provenance.ErrNotAuthenticated
	}
	if contentURI == "" {
		return nil, provenance.ErrInvalidContentURI
	}
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %d", provenance.ErrInvalidInput, contentType)
	}

	record := &registry.ContentRecord{
		Entity:      types.NewEntity(),
		ID:          s.dev.allocContentID(),
		Creator:     s.capability.Account,
		ContentURI:  contentURI,
		MetadataURI: metadataURI,
		ContentType: contentType,
		Active:      true,
	}
	if err := s.dev.store.CreateContent(ctx, record); err != nil {
		return nil, err
	}

	return s.dev.commit(chain.Event{
		Name: registry.EventContentRegistered,
		Args: []any{record.ID, record.Creator, record.ContentURI},
	}), nil
}

func (s *registryService) GetContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error) {
	return s.dev.store.GetContent(ctx, contentID)
}

func (s *registryService) ContentsByCreator(ctx context.Context, creator string) ([]int64, error) {
	return s.dev.store.ListContentByCreator(ctx, creator)
}

func (s *registryService) UpdateContentURI(ctx context.Context, contentID int64, contentURI string) error {
	if contentURI == "" {
		return provenance.ErrInvalidContentURI
	}
	record, err := s.authorizedContent(ctx, contentID)
	if err != nil {
		return err
	}

	record.ContentURI = contentURI
	if err := s.dev.store.UpdateContent(ctx, record); err != nil {
		return err
	}
	s.dev.commit(chain.Event{
		Name: registry.EventContentUpdated,
		Args: []any{contentID, "content_uri"},
	})
	return nil
}

func (s *registryService) UpdateMetadataURI(ctx context.Context, contentID int64, metadataURI string) error {
	record, err := s.authorizedContent(ctx, contentID)
	if err != nil {
		return err
	}

	record.MetadataURI = metadataURI
	if err := s.dev.store.UpdateContent(ctx, record); err != nil {
		return err
	}
	s.dev.commit(chain.Event{
		Name: registry.EventContentUpdated,
		Args: []any{contentID, "metadata_uri"},
	})
	return nil
}

func (s *registryService) SetActive(ctx context.Context, contentID int64, active bool) error {
	record, err := s.authorizedContent(ctx, contentID)
	if err != nil {
		return err
	}

	record.Active = active
	if err := s.dev.store.UpdateContent(ctx, record); err != nil {
		return err
	}
	s.dev.commit(chain.Event{
		Name: registry.EventContentStatusChanged,
		Args: []any{contentID, active},
	})
	return nil
}

// authorizedContent loads a record and enforces the creator-only rule
// for mutations.
func (s *registryService) authorizedContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error) {
	if !s.capability.CanSign() {
		return nil, provenance.ErrNotAuthenticated
	}
	record, err := s.dev.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if record.Creator != s.capability.Account {
		return nil, fmt.Errorf("%w: account %s is not the creator of content %d",
			provenance.ErrUnauthorized, s.capability.Account, contentID)
	}
	return record, nil
}

// ==================== Royalty ====================

type royaltyService struct {
	dev        *Devnet
	capability provenance.Capability
}

func (s *royaltyService) SetPercentage(ctx context.Context, contentID int64, recipient string, basisPoints uint32, minAmount, maxAmount types.Amount) (*chain.Receipt, error) {
	setting := &royalty.Setting{
		ContentID:   contentID,
		Model:       royalty.ModelPercentage,
		Recipient:   recipient,
		BasisPoints: basisPoints,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
	}
	return s.applySetting(ctx, setting, chain.Event{
		Name: royalty.EventRoyaltySettingsUpdated,
		Args: []any{contentID, recipient, string(royalty.ModelPercentage)},
	})
}

func (s *royaltyService) SetFixed(ctx context.Context, contentID int64, recipient string, amount types.Amount) (*chain.Receipt, error) {
	setting := &royalty.Setting{
		ContentID: contentID,
		Model:     royalty.ModelFixed,
		Recipient: recipient,
		Amount:    amount,
	}
	return s.applySetting(ctx, setting, chain.Event{
		Name: royalty.EventFlatRoyaltySet,
		Args: []any{contentID, recipient, amount.String()},
	})
}

func (s *royaltyService) SetTiered(ctx context.Context, contentID int64, recipient string, thresholds []types.Amount, rates []uint32) (*chain.Receipt, error) {
	setting := &royalty.Setting{
		ContentID:  contentID,
		Model:      royalty.ModelTiered,
		Recipient:  recipient,
		Thresholds: thresholds,
		Rates:      rates,
	}
	return s.applySetting(ctx, setting, chain.Event{
		Name: royalty.EventRoyaltySettingsUpdated,
		Args: []any{contentID, recipient, string(royalty.ModelTiered)},
	})
}

func (s *royaltyService) applySetting(ctx context.Context, setting *royalty.Setting, event chain.Event) (*chain.Receipt, error) {
	if !s.capability.CanSign() {
		return nil, provenance.ErrNotAuthenticated
	}
	if err := setting.Validate(); err != nil {
		return nil, err
	}

	record, err := s.dev.store.GetContent(ctx, setting.ContentID)
	if err != nil {
		return nil, err
	}
	if record.Creator != s.capability.Account {
		return nil, fmt.Errorf("%w: account %s is not the creator of content %d",
			provenance.ErrUnauthorized, s.capability.Account, setting.ContentID)
	}

	if err := s.dev.store.UpsertRoyaltySetting(ctx, setting); err != nil {
		return nil, err
	}
	return s.dev.commit(event), nil
}

func (s *royaltyService) GetSetting(ctx context.Context, contentID int64) (*royalty.Setting, error) {
	return s.dev.store.GetRoyaltySetting(ctx, contentID)
}

func (s *royaltyService) PayRoyalty(ctx context.Context, contentID int64, amount types.Amount) (*chain.Receipt, error) {
	if !s.capability.CanSign() {
		return nil, provenance.ErrNotAuthenticated
	}

	record, err := s.dev.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !record.Active {
		return nil, provenance.ErrContentInactive
	}
	setting, err := s.dev.store.GetRoyaltySetting(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if err := s.dev.transfer(s.capability.Account, setting.Recipient, amount); err != nil {
		return nil, err
	}
	payment := &royalty.Payment{
		ContentID: contentID,
		Payer:     s.capability.Account,
		Recipient: setting.Recipient,
		Amount:    amount,
		PaidAt:    time.Now().UTC(),
	}
	if err := s.dev.store.RecordRoyaltyPayment(ctx, payment); err != nil {
		return nil, err
	}

	return s.dev.commit(chain.Event{
		Name: royalty.EventRoyaltyPaid,
		Args: []any{contentID, payment.Payer, amount.String()},
	}), nil
}

// ==================== Usage ====================

type usageService struct {
	dev        *Devnet
	capability provenance.Capability
}

func (s *usageService) RecordUsage(ctx context.Context, contentID int64, platform usage.Platform, quantity int64) (*chain.Receipt, error) {
	event := &usage.Event{
		ID:        id.NewUsageEventID(),
		ContentID: contentID,
		Platform:  platform,
		Quantity:  quantity,
		Timestamp: time.Now().UTC(),
	}
	return s.BatchRecordUsage(ctx, []*usage.Event{event})
}

func (s *usageService) BatchRecordUsage(ctx context.Context, events []*usage.Event) (*chain.Receipt, error) {
	if !s.capability.CanSign() {
		return nil, provenance.ErrNotAuthenticated
	}
	if len(events) == 0 {
		return nil, provenance.ErrEmptyBatch
	}

	chainEvents := make([]chain.Event, 0, len(events))
	for _, e := range events {
		if e.Quantity <= 0 {
			return nil, provenance.ErrInvalidQuantity
		}
		record, err := s.dev.store.GetContent(ctx, e.ContentID)
		if err != nil {
			return nil, err
		}
		if !record.Active {
			return nil, provenance.ErrContentInactive
		}
		chainEvents = append(chainEvents, chain.Event{
			Name: usage.EventUsageRecorded,
			Args: []any{e.ContentID, string(e.Platform), e.Quantity},
		})
	}

	if err := s.dev.store.IngestUsage(ctx, events); err != nil {
		return nil, err
	}
	return s.dev.commit(chainEvents...), nil
}

func (s *usageService) TotalUsage(ctx context.Context, contentID int64) (types.Amount, error) {
	return s.dev.store.TotalUsage(ctx, contentID)
}

func (s *usageService) UsageHistory(ctx context.Context, contentID int64) ([]usage.HistoryEntry, error) {
	return s.dev.store.UsageHistory(ctx, contentID)
}

func (s *usageService) GetLicense(ctx context.Context, licenseID int64) (*usage.License, error) {
	return s.dev.store.GetLicense(ctx, licenseID)
}

func (s *usageService) UserLicenses(ctx context.Context, account string) ([]int64, error) {
	return s.dev.store.ListLicensesByAccount(ctx, account)
}
