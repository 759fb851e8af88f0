package provenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// ContentChecker answers whether a content id exists. Satisfied by
// RegistryClient; the aggregator only needs this one question answered.
type ContentChecker interface {
	Exists(ctx context.Context, contentID int64) (bool, error)
}

// UsageAggregator is the session-bound surface for reporting platform
// usage. Duplicate suppression is process-local: the seen-set is owned by
// the session and handed to every binding generation, so reconnecting
// never resets it.
type UsageAggregator struct {
	svc        usage.Service
	checker    ContentChecker
	capability Capability
	seen       *usage.SeenSet
	plugins    *plugin.Registry
	logger     *slog.Logger
}

func newUsageAggregator(svc usage.Service, checker ContentChecker, capability Capability, seen *usage.SeenSet, plugins *plugin.Registry, logger *slog.Logger) *UsageAggregator {
	return &UsageAggregator{
		svc:        svc,
		checker:    checker,
		capability: capability,
		seen:       seen,
		plugins:    plugins,
		logger:     logger,
	}
}

// Report submits a single usage event. It returns (true, nil) when the
// event was committed, and (false, nil) when the event's
// (content, platform, scope) key was already reported this process;
// suppression is an answer, not an error, and costs no network traffic.
//
// The key is recorded only after the service confirms the submission, so
// a failed report can be retried with the same scope key.
func (ua *UsageAggregator) Report(ctx context.Context, event *usage.Event) (bool, error) {
	if !ua.capability.CanSign() {
		return false, ErrNotAuthenticated
	}
	if err := ua.prepare(ctx, event); err != nil {
		return false, err
	}

	key := event.Key()
	if ua.seen.Seen(key) {
		ua.logger.Debug("duplicate usage report suppressed", "key", key)
		ua.plugins.EmitDuplicateSuppressed(ctx, key)
		return false, nil
	}

	if _, err := ua.svc.RecordUsage(ctx, event.ContentID, event.Platform, event.Quantity); err != nil {
		return false, err
	}
	ua.seen.Add(key)

	ua.plugins.EmitUsageReported(ctx, event)
	return true, nil
}

// BatchReport submits several usage events as one operation and returns
// how many were accepted. Events whose keys were already reported are
// filtered out first; the remainder is submitted as a single batch. On
// success every submitted key is recorded; on failure none are, so the
// whole remainder can be retried.
func (ua *UsageAggregator) BatchReport(ctx context.Context, events []*usage.Event) (int, error) {
	if !ua.capability.CanSign() {
		return 0, ErrNotAuthenticated
	}
	if len(events) == 0 {
		return 0, ErrEmptyBatch
	}

	fresh := make([]*usage.Event, 0, len(events))
	keys := make([]usage.DedupKey, 0, len(events))
	batchSeen := make(map[usage.DedupKey]struct{}, len(events))
	for _, event := range events {
		if err := ua.prepare(ctx, event); err != nil {
			return 0, err
		}
		key := event.Key()
		if _, dup := batchSeen[key]; dup || ua.seen.Seen(key) {
			ua.plugins.EmitDuplicateSuppressed(ctx, key)
			continue
		}
		batchSeen[key] = struct{}{}
		fresh = append(fresh, event)
		keys = append(keys, key)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if _, err := ua.svc.BatchRecordUsage(ctx, fresh); err != nil {
		return 0, err
	}
	ua.seen.AddAll(keys)

	for _, event := range fresh {
		ua.plugins.EmitUsageReported(ctx, event)
	}
	return len(fresh), nil
}

// prepare validates an event and fills defaulted fields.
func (ua *UsageAggregator) prepare(ctx context.Context, event *usage.Event) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidInput)
	}
	if event.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidQuantity, event.Quantity)
	}
	if event.ID == (id.UsageEventID{}) {
		event.ID = id.NewUsageEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if ua.checker != nil {
		exists, err := ua.checker.Exists(ctx, event.ContentID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: content %d", ErrContentNotFound, event.ContentID)
		}
	}
	return nil
}

// TotalUsage returns the committed usage total for a content id. The
// remote service is the source of truth; nothing local is consulted.
// Valid in any mode.
func (ua *UsageAggregator) TotalUsage(ctx context.Context, contentID int64) (types.Amount, error) {
	return ua.svc.TotalUsage(ctx, contentID)
}

// UsageHistory returns the committed usage events for a content id, most
// recent first. Valid in any mode.
func (ua *UsageAggregator) UsageHistory(ctx context.Context, contentID int64) ([]usage.HistoryEntry, error) {
	return ua.svc.UsageHistory(ctx, contentID)
}

// GetLicense fetches a license by id. Valid in any mode.
func (ua *UsageAggregator) GetLicense(ctx context.Context, licenseID int64) (*usage.License, error) {
	return ua.svc.GetLicense(ctx, licenseID)
}

// UserLicenses lists the licenses held by an account. Valid in any mode.
func (ua *UsageAggregator) UserLicenses(ctx context.Context, account string) ([]*usage.License, error) {
	ids, err := ua.svc.UserLicenses(ctx, account)
	if err != nil {
		return nil, err
	}
	licenses := make([]*usage.License, 0, len(ids))
	for _, licenseID := range ids {
		license, err := ua.svc.GetLicense(ctx, licenseID)
		if err != nil {
			return nil, fmt.Errorf("provenance: fetch license %d: %w", licenseID, err)
		}
		licenses = append(licenses, license)
	}
	return licenses, nil
}
