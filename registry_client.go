package provenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/registry"
)

// RegistryClient is the session-bound surface for content registration
// and lookup. One instance belongs to one binding generation; use the
// Client accessor to get the current one.
type RegistryClient struct {
	svc        registry.Service
	capability Capability
	plugins    *plugin.Registry
	logger     *slog.Logger
}

func newRegistryClient(svc registry.Service, capability Capability, plugins *plugin.Registry, logger *slog.Logger) *RegistryClient {
	return &RegistryClient{svc: svc, capability: capability, plugins: plugins, logger: logger}
}

// Register submits new content for registration and returns the record
// with its remote-assigned id.
//
// The id is recovered from the confirmed receipt by locating the
// ContentRegistered event by name and reading its first argument. The
// event set may carry unrelated events in any order; position is never
// trusted. A confirmed receipt without the event yields
// ErrRegistrationIDMissing: the write happened, but the id could not be
// recovered.
func (rc *RegistryClient) Register(ctx context.Context, contentURI, metadataURI string, contentType registry.ContentType) (*registry.ContentRecord, error) {
	if !rc.capability.CanSign() {
		return nil, ErrNotAuthenticated
	}
	if contentURI == "" {
		return nil, fmt.Errorf("%w: empty content uri", ErrInvalidContentURI)
	}
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: content type %d", ErrInvalidInput, contentType)
	}

	receipt, err := rc.svc.Register(ctx, contentURI, metadataURI, contentType)
	if err != nil {
		return nil, err
	}

	contentID, err := extractRegisteredID(receipt)
	if err != nil {
		rc.logger.Warn("registration confirmed but id missing from receipt",
			"tx_hash", receipt.TxHash,
			"events", len(receipt.Events),
		)
		return nil, err
	}

	record, err := rc.svc.GetContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("provenance: fetch registered content %d: %w", contentID, err)
	}

	rc.logger.Info("content registered",
		"content_id", contentID,
		"creator", record.Creator,
		"content_type", record.ContentType,
	)
	rc.plugins.EmitContentRegistered(ctx, record)
	return record, nil
}

// extractRegisteredID recovers the new content id from a registration
// receipt. Decoding is a named step so failures classify cleanly.
func extractRegisteredID(receipt *chain.Receipt) (int64, error) {
	event, ok := receipt.FindEvent(registry.EventContentRegistered)
	if !ok {
		return 0, fmt.Errorf("%w: no %s event in tx %s", ErrRegistrationIDMissing, registry.EventContentRegistered, receipt.TxHash)
	}
	contentID, err := event.Int64Arg(0)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed %s event in tx %s: %v", ErrRegistrationIDMissing, registry.EventContentRegistered, receipt.TxHash, err)
	}
	return contentID, nil
}

// GetContent retrieves a content record by id. Valid in any mode.
func (rc *RegistryClient) GetContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error) {
	return rc.svc.GetContent(ctx, contentID)
}

// ContentsByCreator lists all content registered by an account, resolving
// each id to its record. Result order is not specified.
func (rc *RegistryClient) ContentsByCreator(ctx context.Context, creator string) ([]*registry.ContentRecord, error) {
	ids, err := rc.svc.ContentsByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}
	records := make([]*registry.ContentRecord, 0, len(ids))
	for _, contentID := range ids {
		record, err := rc.svc.GetContent(ctx, contentID)
		if err != nil {
			return nil, fmt.Errorf("provenance: fetch content %d: %w", contentID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// UpdateContentURI replaces the content URI. Creator-only.
func (rc *RegistryClient) UpdateContentURI(ctx context.Context, contentID int64, contentURI string) error {
	if !rc.capability.CanSign() {
		return ErrNotAuthenticated
	}
	if contentURI == "" {
		return fmt.Errorf("%w: empty content uri", ErrInvalidContentURI)
	}
	if err := rc.svc.UpdateContentURI(ctx, contentID, contentURI); err != nil {
		return err
	}
	rc.plugins.EmitContentUpdated(ctx, contentID, "content_uri")
	return nil
}

// UpdateMetadataURI replaces the metadata URI. Creator-only.
func (rc *RegistryClient) UpdateMetadataURI(ctx context.Context, contentID int64, metadataURI string) error {
	if !rc.capability.CanSign() {
		return ErrNotAuthenticated
	}
	if err := rc.svc.UpdateMetadataURI(ctx, contentID, metadataURI); err != nil {
		return err
	}
	rc.plugins.EmitContentUpdated(ctx, contentID, "metadata_uri")
	return nil
}

// SetActive toggles the content's active flag. Creator-only.
func (rc *RegistryClient) SetActive(ctx context.Context, contentID int64, active bool) error {
	if !rc.capability.CanSign() {
		return ErrNotAuthenticated
	}
	if err := rc.svc.SetActive(ctx, contentID, active); err != nil {
		return err
	}
	rc.plugins.EmitContentUpdated(ctx, contentID, "active")
	return nil
}

// CreatorOf resolves the creator account of a content id.
func (rc *RegistryClient) CreatorOf(ctx context.Context, contentID int64) (string, error) {
	record, err := rc.svc.GetContent(ctx, contentID)
	if err != nil {
		return "", err
	}
	return record.Creator, nil
}

// Exists reports whether a content id resolves to a record. Used by the
// usage aggregator before accepting reports.
func (rc *RegistryClient) Exists(ctx context.Context, contentID int64) (bool, error) {
	_, err := rc.svc.GetContent(ctx, contentID)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}
