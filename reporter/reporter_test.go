package reporter

import (
	"context"
	"errors"
	"testing"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

type captureTracker struct {
	events []*usage.Event
	err    error
}

func (t *captureTracker) Track(ctx context.Context, event *usage.Event) error {
	if t.err != nil {
		return t.err
	}
	t.events = append(t.events, event)
	return nil
}

type stubUsageReader struct {
	total types.Amount
}

func (r stubUsageReader) TotalUsage(ctx context.Context, contentID int64) (types.Amount, error) {
	return r.total, nil
}

type stubRoyaltyReader struct {
	setting *royalty.Setting
	due     types.Amount
	err     error
}

func (r stubRoyaltyReader) GetSetting(ctx context.Context, contentID int64) (*royalty.Setting, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.setting, nil
}

func (r stubRoyaltyReader) Calculate(ctx context.Context, contentID int64, usageAmount types.Amount) (types.Amount, error) {
	return r.due, nil
}

type stubOwner struct {
	creator string
}

func (o stubOwner) CreatorOf(ctx context.Context, contentID int64) (string, error) {
	return o.creator, nil
}

func TestStreamMinutesToViews(t *testing.T) {
	tests := []struct {
		minutes int64
		views   int64
	}{
		{1, 1},
		{9, 1},
		{10, 1},
		{11, 2},
		{20, 2},
		{21, 3},
		{95, 10},
	}

	for _, tt := range tests {
		tracker := &captureTracker{}
		s := NewStreaming(tracker, nil)
		if err := s.ReportStreamMinutes(context.Background(), 1, tt.minutes, "viewer"); err != nil {
			t.Fatal(err)
		}
		if got := tracker.events[0].Quantity; got != tt.views {
			t.Errorf("%d minutes: views = %d, want %d", tt.minutes, got, tt.views)
		}
	}
}

func TestStreamMinutesRejectsNonPositive(t *testing.T) {
	s := NewStreaming(&captureTracker{}, nil)
	for _, minutes := range []int64{0, -5} {
		if err := s.ReportStreamMinutes(context.Background(), 1, minutes, "viewer"); !errors.Is(err, provenance.ErrInvalidQuantity) {
			t.Errorf("minutes %d: %v, want ErrInvalidQuantity", minutes, err)
		}
	}
}

func TestStreamStats(t *testing.T) {
	s := NewStreaming(&captureTracker{}, stubUsageReader{total: types.NewAmount(42)})
	stats, err := s.Stats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.TotalViews.Equal(types.NewAmount(42)) {
		t.Errorf("views = %s, want 42", stats.TotalViews)
	}
	if !stats.EstimatedMinutes.Equal(types.NewAmount(420)) {
		t.Errorf("minutes = %s, want 420", stats.EstimatedMinutes)
	}
}

func TestSocialEngagement(t *testing.T) {
	tracker := &captureTracker{}
	s := NewSocial(tracker, stubUsageReader{total: types.NewAmount(7)})

	if err := s.ReportEngagement(context.Background(), 3, 5, "post-1"); err != nil {
		t.Fatal(err)
	}
	event := tracker.events[0]
	if event.Platform != usage.PlatformSocial || event.Quantity != 5 || event.ContentID != 3 {
		t.Errorf("event = %+v", event)
	}
	if err := s.ReportEngagement(context.Background(), 3, 0, "post-1"); !errors.Is(err, provenance.ErrInvalidQuantity) {
		t.Errorf("zero engagements: %v, want ErrInvalidQuantity", err)
	}

	total, err := s.TotalEngagements(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(types.NewAmount(7)) {
		t.Errorf("total = %s, want 7", total)
	}
}

func TestEmbeddingPageView(t *testing.T) {
	tracker := &captureTracker{}
	e := NewEmbedding(tracker, nil)

	if err := e.ReportPageView(context.Background(), 9, "visitor-abc"); err != nil {
		t.Fatal(err)
	}
	event := tracker.events[0]
	if event.Platform != usage.PlatformEmbedding || event.Quantity != 1 || event.ScopeKey != "visitor-abc" {
		t.Errorf("event = %+v", event)
	}
}

func TestEmbeddingLicenseTerms(t *testing.T) {
	e := NewEmbedding(nil, stubRoyaltyReader{
		setting: &royalty.Setting{Recipient: "0xalice", Model: royalty.ModelPercentage, BasisPoints: 250},
	})
	terms, err := e.GetLicenseTerms(context.Background(), 9)
	if err != nil {
		t.Fatal(err)
	}
	if terms.Recipient != "0xalice" || terms.Model != royalty.ModelPercentage || terms.BasisPoints != 250 {
		t.Errorf("terms = %+v", terms)
	}

	e = NewEmbedding(nil, stubRoyaltyReader{err: royalty.ErrSettingNotFound})
	if _, err := e.GetLicenseTerms(context.Background(), 9); !errors.Is(err, royalty.ErrSettingNotFound) {
		t.Errorf("missing setting: %v", err)
	}
}

func TestMarketplaceSaleAndRoyaltyInfo(t *testing.T) {
	tracker := &captureTracker{}
	m := NewMarketplace(tracker, stubRoyaltyReader{
		setting: &royalty.Setting{Recipient: "0xalice", Model: royalty.ModelPercentage, BasisPoints: 500},
		due:     types.NewAmount(50),
	}, stubOwner{creator: "0xalice"})

	if err := m.ReportSale(context.Background(), 4, "order-77"); err != nil {
		t.Fatal(err)
	}
	if tracker.events[0].Quantity != 1 {
		t.Errorf("sale quantity = %d, want 1", tracker.events[0].Quantity)
	}

	info, err := m.GetRoyaltyInfo(context.Background(), 4, types.NewAmount(1_000))
	if err != nil {
		t.Fatal(err)
	}
	if info.Recipient != "0xalice" || !info.Amount.Equal(types.NewAmount(50)) {
		t.Errorf("info = %+v", info)
	}
}

func TestMarketplaceVerifyOwnership(t *testing.T) {
	m := NewMarketplace(nil, stubRoyaltyReader{}, stubOwner{creator: "0xalice"})

	ok, err := m.VerifyOwnership(context.Background(), 4, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("creator not recognized as owner")
	}
	ok, err = m.VerifyOwnership(context.Background(), 4, "0xbob")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("non-creator passed ownership check")
	}
}
