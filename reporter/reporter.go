// Package reporter provides platform-specific adapters that translate
// native platform signals (stream minutes, social engagements, page
// views, marketplace sales) into usage events. Reporters never talk to
// the remote services themselves; they feed a Tracker, which owns
// buffering, dedup, and submission.
package reporter

import (
	"context"
	"time"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Tracker enqueues usage events for asynchronous submission. Satisfied
// by *provenance.Client.
type Tracker interface {
	Track(ctx context.Context, event *usage.Event) error
}

// UsageReader reads committed usage totals. Satisfied by
// *provenance.UsageAggregator.
type UsageReader interface {
	TotalUsage(ctx context.Context, contentID int64) (types.Amount, error)
}

// RoyaltyReader reads royalty settings and computes obligations.
// Satisfied by *provenance.RoyaltyEngine.
type RoyaltyReader interface {
	GetSetting(ctx context.Context, contentID int64) (*royalty.Setting, error)
	Calculate(ctx context.Context, contentID int64, usageAmount types.Amount) (types.Amount, error)
}

// Reporter is the common surface of all platform adapters.
type Reporter interface {
	Platform() usage.Platform
}

// newEvent builds a usage event for a platform signal.
func newEvent(contentID int64, platform usage.Platform, quantity int64, scopeKey string) *usage.Event {
	return &usage.Event{
		ID:        id.NewUsageEventID(),
		ContentID: contentID,
		Platform:  platform,
		Quantity:  quantity,
		ScopeKey:  scopeKey,
		Timestamp: time.Now().UTC(),
	}
}

// ==================== Streaming ====================

// minutesPerView is the conversion rate between streamed minutes and
// counted views.
const minutesPerView = 10

// Streaming reports streamed minutes as views, one view per started
// ten-minute block.
type Streaming struct {
	tracker Tracker
	reader  UsageReader
}

// NewStreaming creates a streaming reporter. The reader may be nil when
// only reporting is needed.
func NewStreaming(tracker Tracker, reader UsageReader) *Streaming {
	return &Streaming{tracker: tracker, reader: reader}
}

func (s *Streaming) Platform() usage.Platform { return usage.PlatformStreaming }

// ReportStreamMinutes converts streamed minutes to views and enqueues
// the result. A partial block counts as a full view.
func (s *Streaming) ReportStreamMinutes(ctx context.Context, contentID int64, minutes int64, scopeKey string) error {
	if minutes <= 0 {
		return provenance.ErrInvalidQuantity
	}
	views := (minutes + minutesPerView - 1) / minutesPerView
	return s.tracker.Track(ctx, newEvent(contentID, usage.PlatformStreaming, views, scopeKey))
}

// StreamStats summarizes committed streaming usage for a content id.
type StreamStats struct {
	TotalViews       types.Amount
	EstimatedMinutes types.Amount
}

// Stats returns the committed view total and the minute estimate derived
// from it.
func (s *Streaming) Stats(ctx context.Context, contentID int64) (*StreamStats, error) {
	total, err := s.reader.TotalUsage(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return &StreamStats{
		TotalViews:       total,
		EstimatedMinutes: total.Mul(minutesPerView),
	}, nil
}

// ==================== Social ====================

// Social reports engagement counts (likes, shares, reposts) as-is.
type Social struct {
	tracker Tracker
	reader  UsageReader
}

func NewSocial(tracker Tracker, reader UsageReader) *Social {
	return &Social{tracker: tracker, reader: reader}
}

func (s *Social) Platform() usage.Platform { return usage.PlatformSocial }

// ReportEngagement enqueues an engagement count for a content id.
func (s *Social) ReportEngagement(ctx context.Context, contentID int64, engagements int64, scopeKey string) error {
	if engagements <= 0 {
		return provenance.ErrInvalidQuantity
	}
	return s.tracker.Track(ctx, newEvent(contentID, usage.PlatformSocial, engagements, scopeKey))
}

// TotalEngagements returns the committed engagement total.
func (s *Social) TotalEngagements(ctx context.Context, contentID int64) (types.Amount, error) {
	return s.reader.TotalUsage(ctx, contentID)
}

// ==================== Embedding ====================

// Embedding reports page views from embedded content and exposes the
// license terms an embedder needs to display.
type Embedding struct {
	tracker Tracker
	royalty RoyaltyReader
}

func NewEmbedding(tracker Tracker, royaltyReader RoyaltyReader) *Embedding {
	return &Embedding{tracker: tracker, royalty: royaltyReader}
}

func (e *Embedding) Platform() usage.Platform { return usage.PlatformEmbedding }

// ReportPageView enqueues a single page view. The scope key is typically
// a per-page or per-visitor token so repeated loads count once.
func (e *Embedding) ReportPageView(ctx context.Context, contentID int64, scopeKey string) error {
	return e.tracker.Track(ctx, newEvent(contentID, usage.PlatformEmbedding, 1, scopeKey))
}

// LicenseTerms is the royalty summary an embedder displays next to
// embedded content.
type LicenseTerms struct {
	Recipient   string
	Model       royalty.Model
	BasisPoints uint32
}

// GetLicenseTerms returns the display terms for a content id.
func (e *Embedding) GetLicenseTerms(ctx context.Context, contentID int64) (*LicenseTerms, error) {
	setting, err := e.royalty.GetSetting(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return &LicenseTerms{
		Recipient:   setting.Recipient,
		Model:       setting.Model,
		BasisPoints: setting.BasisPoints,
	}, nil
}

// ==================== Marketplace ====================

// Marketplace reports sales and answers the royalty questions a
// marketplace asks before settling one.
type Marketplace struct {
	tracker Tracker
	royalty RoyaltyReader
	owner   OwnershipVerifier
}

// OwnershipVerifier resolves the creator account of a content id.
// Satisfied by *provenance.RegistryClient via the Creator method below.
type OwnershipVerifier interface {
	CreatorOf(ctx context.Context, contentID int64) (string, error)
}

func NewMarketplace(tracker Tracker, royaltyReader RoyaltyReader, owner OwnershipVerifier) *Marketplace {
	return &Marketplace{tracker: tracker, royalty: royaltyReader, owner: owner}
}

func (m *Marketplace) Platform() usage.Platform { return usage.PlatformMarketplace }

// ReportSale enqueues a sale event. Each sale counts once regardless of
// price; the price feeds royalty math, not the usage count.
func (m *Marketplace) ReportSale(ctx context.Context, contentID int64, scopeKey string) error {
	return m.tracker.Track(ctx, newEvent(contentID, usage.PlatformMarketplace, 1, scopeKey))
}

// RoyaltyInfo is the settlement summary for one prospective sale.
type RoyaltyInfo struct {
	Recipient string
	Amount    types.Amount
}

// GetRoyaltyInfo computes the royalty due on a sale price.
func (m *Marketplace) GetRoyaltyInfo(ctx context.Context, contentID int64, salePrice types.Amount) (*RoyaltyInfo, error) {
	setting, err := m.royalty.GetSetting(ctx, contentID)
	if err != nil {
		return nil, err
	}
	amount, err := m.royalty.Calculate(ctx, contentID, salePrice)
	if err != nil {
		return nil, err
	}
	return &RoyaltyInfo{Recipient: setting.Recipient, Amount: amount}, nil
}

// VerifyOwnership reports whether an account is the creator of record.
func (m *Marketplace) VerifyOwnership(ctx context.Context, contentID int64, account string) (bool, error) {
	creator, err := m.owner.CreatorOf(ctx, contentID)
	if err != nil {
		return false, err
	}
	return creator == account, nil
}
