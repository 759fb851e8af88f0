package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

func newContent(id int64, creator string) *registry.ContentRecord {
	return &registry.ContentRecord{
		Entity:      types.NewEntity(),
		ID:          id,
		Creator:     creator,
		ContentURI:  "ipfs://Qm",
		ContentType: registry.ContentAudio,
		Active:      true,
	}
}

func TestContentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateContent(ctx, newContent(1, "0xalice")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateContent(ctx, newContent(2, "0xalice")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateContent(ctx, newContent(3, "0xbob")); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetContent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Creator != "0xalice" {
		t.Errorf("creator = %q", got.Creator)
	}

	// Reads return copies, not aliases.
	got.ContentURI = "mutated"
	again, _ := s.GetContent(ctx, 2)
	if again.ContentURI == "mutated" {
		t.Error("store returned an aliased record")
	}

	ids, err := s.ListContentByCreator(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("ListContentByCreator = %v, want [1 2]", ids)
	}

	if _, err := s.GetContent(ctx, 99); !errors.Is(err, provenance.ErrContentNotFound) {
		t.Errorf("GetContent(99) = %v, want ErrContentNotFound", err)
	}

	max, err := s.MaxContentID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if max != 3 {
		t.Errorf("MaxContentID = %d, want 3", max)
	}
}

func TestUpdateContentMissing(t *testing.T) {
	s := New()
	err := s.UpdateContent(context.Background(), newContent(42, "0xalice"))
	if !errors.Is(err, provenance.ErrContentNotFound) {
		t.Fatalf("UpdateContent = %v, want ErrContentNotFound", err)
	}
}

func TestRoyaltySettingUpsert(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetRoyaltySetting(ctx, 1); !errors.Is(err, royalty.ErrSettingNotFound) {
		t.Fatalf("GetRoyaltySetting = %v, want ErrSettingNotFound", err)
	}

	first := &royalty.Setting{
		ContentID:   1,
		Model:       royalty.ModelPercentage,
		Recipient:   "0xalice",
		BasisPoints: 500,
	}
	if err := s.UpsertRoyaltySetting(ctx, first); err != nil {
		t.Fatal(err)
	}

	// A second upsert replaces the whole setting.
	second := &royalty.Setting{
		ContentID: 1,
		Model:     royalty.ModelFixed,
		Recipient: "0xbob",
		Amount:    types.NewAmount(100),
	}
	if err := s.UpsertRoyaltySetting(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRoyaltySetting(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != royalty.ModelFixed || got.Recipient != "0xbob" {
		t.Errorf("setting after upsert = %+v", got)
	}
}

func TestRoyaltyPayments(t *testing.T) {
	ctx := context.Background()
	s := New()

	older := &royalty.Payment{ContentID: 1, Payer: "0xbob", Recipient: "0xalice", Amount: types.NewAmount(10), PaidAt: time.Now().Add(-time.Hour)}
	newer := &royalty.Payment{ContentID: 1, Payer: "0xbob", Recipient: "0xalice", Amount: types.NewAmount(20), PaidAt: time.Now()}
	other := &royalty.Payment{ContentID: 2, Payer: "0xbob", Recipient: "0xalice", Amount: types.NewAmount(30), PaidAt: time.Now()}

	for _, p := range []*royalty.Payment{older, newer, other} {
		if err := s.RecordRoyaltyPayment(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListRoyaltyPayments(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("payments = %d, want 2", len(got))
	}
}

func TestUsageIngestAndAggregate(t *testing.T) {
	ctx := context.Background()
	s := New()

	events := []*usage.Event{
		{ContentID: 1, Platform: usage.PlatformStreaming, Quantity: 3, Timestamp: time.Now().Add(-2 * time.Hour)},
		{ContentID: 1, Platform: usage.PlatformSocial, Quantity: 7, Timestamp: time.Now().Add(-time.Hour)},
		{ContentID: 2, Platform: usage.PlatformStreaming, Quantity: 100, Timestamp: time.Now()},
	}
	if err := s.IngestUsage(ctx, events); err != nil {
		t.Fatal(err)
	}

	total, err := s.TotalUsage(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(types.NewAmount(10)) {
		t.Errorf("TotalUsage = %s, want 10", total)
	}

	history, err := s.UsageHistory(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d entries, want 2", len(history))
	}
	// Most recent first.
	if !history[0].Quantity.Equal(types.NewAmount(7)) {
		t.Errorf("history[0].Quantity = %s, want 7", history[0].Quantity)
	}

	purged, err := s.PurgeUsage(ctx, time.Now().Add(-90*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	total, _ = s.TotalUsage(ctx, 1)
	if !total.Equal(types.NewAmount(7)) {
		t.Errorf("TotalUsage after purge = %s, want 7", total)
	}
}

func TestLicenseLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	lic := &usage.License{
		Entity:    types.NewEntity(),
		ID:        1,
		Licensee:  "0xcarol",
		ContentID: 1,
		Type:      usage.LicenseCommercial,
		Active:    true,
	}
	if err := s.CreateLicense(ctx, lic); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetLicense(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Licensee != "0xcarol" {
		t.Errorf("licensee = %q", got.Licensee)
	}

	if _, err := s.GetLicense(ctx, 9); !errors.Is(err, provenance.ErrLicenseNotFound) {
		t.Errorf("GetLicense(9) = %v, want ErrLicenseNotFound", err)
	}

	got.Active = false
	if err := s.UpdateLicense(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, _ := s.GetLicense(ctx, 1)
	if again.Active {
		t.Error("license should be inactive after update")
	}

	ids, err := s.ListLicensesByAccount(ctx, "0xcarol")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ListLicensesByAccount = %v, want [1]", ids)
	}

	max, err := s.MaxLicenseID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if max != 1 {
		t.Errorf("MaxLicenseID = %d, want 1", max)
	}
}
