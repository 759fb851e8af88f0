package provenance

import (
	"context"
	"errors"
	"testing"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// ──────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────

func confirmedReceipt(events ...chain.Event) *chain.Receipt {
	return &chain.Receipt{
		TxHash: "0xfeed",
		Status: chain.TxConfirmed,
		Height: 1,
		Events: events,
	}
}

type fakeRegistry struct {
	registerReceipt *chain.Receipt
	registerErr     error
	registerCalls   int
	records         map[int64]*registry.ContentRecord
}

func (f *fakeRegistry) Register(ctx context.Context, contentURI, metadataURI string, contentType registry.ContentType) (*chain.Receipt, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerReceipt, nil
}

func (f *fakeRegistry) GetContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error) {
	record, ok := f.records[contentID]
	if !ok {
		return nil, ErrContentNotFound
	}
	return record, nil
}

func (f *fakeRegistry) ContentsByCreator(ctx context.Context, creator string) ([]int64, error) {
	var ids []int64
	for id, r := range f.records {
		if r.Creator == creator {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeRegistry) UpdateContentURI(ctx context.Context, contentID int64, contentURI string) error {
	return nil
}

func (f *fakeRegistry) UpdateMetadataURI(ctx context.Context, contentID int64, metadataURI string) error {
	return nil
}

func (f *fakeRegistry) SetActive(ctx context.Context, contentID int64, active bool) error {
	return nil
}

type fakeRoyalty struct {
	setErr   error
	setCalls int
	settings map[int64]*royalty.Setting
}

func (f *fakeRoyalty) SetPercentage(ctx context.Context, contentID int64, recipient string, basisPoints uint32, minAmount, maxAmount types.Amount) (*chain.Receipt, error) {
	f.setCalls++
	if f.setErr != nil {
		return nil, f.setErr
	}
	return confirmedReceipt(), nil
}

func (f *fakeRoyalty) SetFixed(ctx context.Context, contentID int64, recipient string, amount types.Amount) (*chain.Receipt, error) {
	f.setCalls++
	if f.setErr != nil {
		return nil, f.setErr
	}
	return confirmedReceipt(), nil
}

func (f *fakeRoyalty) SetTiered(ctx context.Context, contentID int64, recipient string, thresholds []types.Amount, rates []uint32) (*chain.Receipt, error) {
	f.setCalls++
	if f.setErr != nil {
		return nil, f.setErr
	}
	return confirmedReceipt(), nil
}

func (f *fakeRoyalty) GetSetting(ctx context.Context, contentID int64) (*royalty.Setting, error) {
	setting, ok := f.settings[contentID]
	if !ok {
		return nil, royalty.ErrSettingNotFound
	}
	return setting, nil
}

func (f *fakeRoyalty) PayRoyalty(ctx context.Context, contentID int64, amount types.Amount) (*chain.Receipt, error) {
	return confirmedReceipt(), nil
}

type fakeUsage struct {
	recordErr    error
	singleCalls  int
	batchCalls   int
	lastBatchLen int
}

func (f *fakeUsage) RecordUsage(ctx context.Context, contentID int64, platform usage.Platform, quantity int64) (*chain.Receipt, error) {
	f.singleCalls++
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return confirmedReceipt(), nil
}

func (f *fakeUsage) BatchRecordUsage(ctx context.Context, events []*usage.Event) (*chain.Receipt, error) {
	f.batchCalls++
	f.lastBatchLen = len(events)
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return confirmedReceipt(), nil
}

func (f *fakeUsage) TotalUsage(ctx context.Context, contentID int64) (types.Amount, error) {
	return types.ZeroAmount(), nil
}

func (f *fakeUsage) UsageHistory(ctx context.Context, contentID int64) ([]usage.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeUsage) GetLicense(ctx context.Context, licenseID int64) (*usage.License, error) {
	return nil, ErrLicenseNotFound
}

func (f *fakeUsage) UserLicenses(ctx context.Context, account string) ([]int64, error) {
	return nil, nil
}

type fakeChain struct{}

func (fakeChain) Balance(ctx context.Context, account string) (types.Amount, error) {
	return types.ZeroAmount(), nil
}

func (fakeChain) TransactionStatus(ctx context.Context, txRef string) (chain.TxStatus, error) {
	return chain.TxConfirmed, nil
}

func (fakeChain) CurrentHeight(ctx context.Context) (int64, error) { return 1, nil }

type fakeDialer struct {
	registry *fakeRegistry
	royalty  *fakeRoyalty
	usage    *fakeUsage
	dials    int
	dialErr  error
}

func newFakeDialer() *fakeDialer {
	content := &registry.ContentRecord{
		Entity:      types.NewEntity(),
		ID:          7,
		Creator:     "0xalice",
		ContentURI:  "ipfs://Qm",
		ContentType: registry.ContentAudio,
		Active:      true,
	}
	return &fakeDialer{
		registry: &fakeRegistry{
			registerReceipt: confirmedReceipt(
				chain.Event{Name: "FeeCharged", Args: []any{"0xalice", "100"}},
				chain.Event{Name: registry.EventContentRegistered, Args: []any{float64(7), "0xalice", "ipfs://Qm"}},
			),
			records: map[int64]*registry.ContentRecord{7: content},
		},
		royalty: &fakeRoyalty{settings: map[int64]*royalty.Setting{}},
		usage:   &fakeUsage{},
	}
}

func (d *fakeDialer) Dial(ctx context.Context, capability Capability) (Services, error) {
	d.dials++
	if d.dialErr != nil {
		return Services{}, d.dialErr
	}
	return Services{
		Registry: d.registry,
		Royalty:  d.royalty,
		Usage:    d.usage,
		Chain:    fakeChain{},
	}, nil
}

func newConnectedClient(t *testing.T, dialer *fakeDialer) *Client {
	t.Helper()
	client, err := New(dialer, WithCredential(Credential{Account: "0xalice"}))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	return client
}

// ──────────────────────────────────────────────────
// Registration id extraction
// ──────────────────────────────────────────────────

func TestExtractRegisteredID(t *testing.T) {
	tests := []struct {
		name    string
		receipt *chain.Receipt
		want    int64
		wantErr error
	}{
		{
			name: "id from first arg",
			receipt: confirmedReceipt(
				chain.Event{Name: registry.EventContentRegistered, Args: []any{int64(42), "0xalice", "ipfs://Qm"}},
			),
			want: 42,
		},
		{
			name: "found by name among other events",
			receipt: confirmedReceipt(
				chain.Event{Name: "FeeCharged", Args: []any{int64(9)}},
				chain.Event{Name: registry.EventContentRegistered, Args: []any{float64(11), "0xalice"}},
			),
			want: 11,
		},
		{
			name:    "no event",
			receipt: confirmedReceipt(chain.Event{Name: "FeeCharged", Args: []any{int64(9)}}),
			wantErr: ErrRegistrationIDMissing,
		},
		{
			name: "malformed arg",
			receipt: confirmedReceipt(
				chain.Event{Name: registry.EventContentRegistered, Args: []any{"not-a-number"}},
			),
			wantErr: ErrRegistrationIDMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractRegisteredID(tt.receipt)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("id = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegisterReturnsFetchedRecord(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	reg, err := client.Registry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	record, err := reg.Register(ctx, "ipfs://Qm", "", registry.ContentAudio)
	if err != nil {
		t.Fatal(err)
	}
	if record.ID != 7 || record.Creator != "0xalice" {
		t.Errorf("record = %+v", record)
	}
}

func TestRegisterRequiresSigning(t *testing.T) {
	ctx := context.Background()
	client, err := New(newFakeDialer())
	if err != nil {
		t.Fatal(err)
	}

	reg, err := client.Registry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register(ctx, "ipfs://Qm", "", registry.ContentAudio); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("read-only register: %v, want ErrNotAuthenticated", err)
	}
}

// ──────────────────────────────────────────────────
// Session lifecycle
// ──────────────────────────────────────────────────

func TestSessionConnectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	first := dialer.dials
	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if dialer.dials != first {
		t.Errorf("reconnect with same account dialed again (%d -> %d)", first, dialer.dials)
	}
	if !client.Session().Connected() {
		t.Error("session should be connected")
	}
}

func TestSessionDisconnectDropsSigning(t *testing.T) {
	ctx := context.Background()
	client := newConnectedClient(t, newFakeDialer())

	if err := client.Disconnect(ctx); err != nil {
		t.Fatal(err)
	}
	if client.Session().Connected() {
		t.Error("session still connected after disconnect")
	}
	if got := client.Session().Capability().Mode; got != ModeReadOnly {
		t.Errorf("mode = %v, want read-only", got)
	}

	// Disconnecting again is a no-op.
	if err := client.Disconnect(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestSessionRejectsApproverAndCredential(t *testing.T) {
	approver := ApproverFunc(func(ctx context.Context) (string, error) { return "0xalice", nil })
	_, err := New(newFakeDialer(), WithApprover(approver), WithCredential(Credential{Account: "0xalice"}))
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("New = %v, want ErrInvalidSession", err)
	}
}

func TestConnectWithoutIdentity(t *testing.T) {
	client, err := New(newFakeDialer())
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Connect(context.Background()); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Connect = %v, want ErrInvalidSession", err)
	}
}

func TestApproverSuppliesAccount(t *testing.T) {
	ctx := context.Background()
	approver := ApproverFunc(func(ctx context.Context) (string, error) { return "0xbob", nil })
	client, err := New(newFakeDialer(), WithApprover(approver))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if got := client.Session().Capability().Account; got != "0xbob" {
		t.Errorf("account = %q, want 0xbob", got)
	}
}

func TestSessionDisconnectWhenAlreadyReadOnly(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	if err := client.Disconnect(ctx); err != nil {
		t.Fatal(err)
	}

	// Already read-only: a second disconnect must succeed without
	// touching the backend, even when the backend is unreachable.
	dialer.dialErr = errors.New("backend unreachable")
	dials := dialer.dials
	if err := client.Disconnect(ctx); err != nil {
		t.Fatalf("repeat disconnect: %v", err)
	}
	if dialer.dials != dials {
		t.Error("repeat disconnect dialed the backend")
	}
	if got := client.Session().Capability().Mode; got != ModeReadOnly {
		t.Errorf("mode = %v, want read-only", got)
	}
}

func TestSessionDisconnectNeverConnected(t *testing.T) {
	dialer := newFakeDialer()
	dialer.dialErr = errors.New("backend unreachable")
	client, err := New(dialer)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Disconnect(context.Background()); err != nil {
		t.Errorf("disconnect without prior connect: %v", err)
	}
}

func TestConnectSwitchesAccount(t *testing.T) {
	ctx := context.Background()
	accounts := []string{"0xalice", "0xbob"}
	calls := 0
	approver := ApproverFunc(func(ctx context.Context) (string, error) {
		account := accounts[calls]
		calls++
		return account, nil
	})

	dialer := newFakeDialer()
	client, err := New(dialer, WithApprover(approver))
	if err != nil {
		t.Fatal(err)
	}

	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	dials := dialer.dials

	// The approver now reports a different account: the session must
	// rebind rather than reuse the old binding.
	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if dialer.dials != dials+1 {
		t.Errorf("dials = %d, want %d", dialer.dials, dials+1)
	}
	if got := client.Session().Capability().Account; got != "0xbob" {
		t.Errorf("account = %q, want 0xbob", got)
	}
	if !client.Session().Capability().CanSign() {
		t.Error("rebound session lost signing capability")
	}
}

func TestApproverInvokedOnEveryConnect(t *testing.T) {
	ctx := context.Background()
	calls := 0
	approver := ApproverFunc(func(ctx context.Context) (string, error) {
		calls++
		return "0xalice", nil
	})

	dialer := newFakeDialer()
	client, err := New(dialer, WithApprover(approver))
	if err != nil {
		t.Fatal(err)
	}

	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	dials := dialer.dials
	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("approver calls = %d, want 2", calls)
	}
	if dialer.dials != dials {
		t.Error("same-account reconnect dialed again")
	}
}

func TestCredentialReconnectSkipsDerivation(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	// A credential names its account up front, so a repeat connect
	// returns before any identity work or dialing.
	dialer.dialErr = errors.New("backend unreachable")
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("credential reconnect: %v", err)
	}
	if got := client.Session().Capability().Account; got != "0xalice" {
		t.Errorf("account = %q, want 0xalice", got)
	}
}

// ──────────────────────────────────────────────────
// Usage dedup
// ──────────────────────────────────────────────────

func TestReportSuppressesDuplicates(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	ua, err := client.Usage(ctx)
	if err != nil {
		t.Fatal(err)
	}

	event := func() *usage.Event {
		return &usage.Event{ContentID: 7, Platform: usage.PlatformStreaming, Quantity: 3, ScopeKey: "viewer-1"}
	}

	accepted, err := ua.Report(ctx, event())
	if err != nil || !accepted {
		t.Fatalf("first report: accepted=%v err=%v", accepted, err)
	}
	accepted, err = ua.Report(ctx, event())
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Error("duplicate report was not suppressed")
	}
	if dialer.usage.singleCalls != 1 {
		t.Errorf("RecordUsage calls = %d, want 1", dialer.usage.singleCalls)
	}
}

func TestDedupSurvivesReconnect(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	ua, _ := client.Usage(ctx)
	if _, err := ua.Report(ctx, &usage.Event{ContentID: 7, Platform: usage.PlatformSocial, Quantity: 1, ScopeKey: "post-1"}); err != nil {
		t.Fatal(err)
	}

	if err := client.Disconnect(ctx); err != nil {
		t.Fatal(err)
	}
	if err := client.Connect(ctx); err != nil {
		t.Fatal(err)
	}

	ua, _ = client.Usage(ctx)
	accepted, err := ua.Report(ctx, &usage.Event{ContentID: 7, Platform: usage.PlatformSocial, Quantity: 1, ScopeKey: "post-1"})
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Error("dedup state was lost across reconnect")
	}
}

func TestBatchReportFiltersDuplicates(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	ua, _ := client.Usage(ctx)

	batch := []*usage.Event{
		{ContentID: 7, Platform: usage.PlatformStreaming, Quantity: 2, ScopeKey: "a"},
		{ContentID: 7, Platform: usage.PlatformStreaming, Quantity: 2, ScopeKey: "a"},
		{ContentID: 7, Platform: usage.PlatformStreaming, Quantity: 2, ScopeKey: "b"},
	}
	accepted, err := ua.BatchReport(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if accepted != 2 {
		t.Errorf("accepted = %d, want 2", accepted)
	}
	if dialer.usage.lastBatchLen != 2 {
		t.Errorf("submitted batch = %d events, want 2", dialer.usage.lastBatchLen)
	}

	// Everything already seen: no network call, no error.
	calls := dialer.usage.batchCalls
	accepted, err = ua.BatchReport(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if accepted != 0 {
		t.Errorf("accepted = %d, want 0", accepted)
	}
	if dialer.usage.batchCalls != calls {
		t.Error("fully filtered batch still hit the service")
	}
}

func TestBatchReportEmpty(t *testing.T) {
	ctx := context.Background()
	client := newConnectedClient(t, newFakeDialer())
	ua, _ := client.Usage(ctx)

	if _, err := ua.BatchReport(ctx, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("empty batch = %v, want ErrEmptyBatch", err)
	}
}

func TestBatchReportFailureKeepsKeysRetryable(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	ua, _ := client.Usage(ctx)
	dialer.usage.recordErr = errors.New("service down")

	batch := []*usage.Event{{ContentID: 7, Platform: usage.PlatformEmbedding, Quantity: 1, ScopeKey: "page-1"}}
	if _, err := ua.BatchReport(ctx, batch); err == nil {
		t.Fatal("expected failure")
	}

	dialer.usage.recordErr = nil
	accepted, err := ua.BatchReport(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if accepted != 1 {
		t.Errorf("retry accepted = %d, want 1", accepted)
	}
}

// ──────────────────────────────────────────────────
// Registration pipeline
// ──────────────────────────────────────────────────

func TestRegisterWithRoyalty(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	result, err := client.RegisterWithRoyalty(ctx, "ipfs://Qm", "", registry.ContentAudio, &royalty.Setting{
		Model:       royalty.ModelPercentage,
		BasisPoints: 500,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.RoyaltyApplied {
		t.Errorf("RoyaltyApplied = false, warning = %q", result.Warning)
	}
	if result.Content.ID != 7 {
		t.Errorf("content id = %d, want 7", result.Content.ID)
	}
	if dialer.royalty.setCalls != 1 {
		t.Errorf("royalty set calls = %d, want 1", dialer.royalty.setCalls)
	}
}

func TestRegisterWithRoyaltyPartialSuccess(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	dialer.royalty.setErr = errors.New("royalty service down")
	client := newConnectedClient(t, dialer)

	result, err := client.RegisterWithRoyalty(ctx, "ipfs://Qm", "", registry.ContentAudio, &royalty.Setting{
		Model:       royalty.ModelPercentage,
		BasisPoints: 500,
	})
	if err != nil {
		t.Fatalf("partial success must not error: %v", err)
	}
	if result.RoyaltyApplied {
		t.Error("RoyaltyApplied = true despite royalty failure")
	}
	if result.Warning == "" {
		t.Error("warning missing on partial success")
	}
	if result.Content == nil || result.Content.ID != 7 {
		t.Errorf("registration must stand: %+v", result.Content)
	}
}

func TestRegisterWithRoyaltyValidatesFirst(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	calls := dialer.registry.registerCalls
	_, err := client.RegisterWithRoyalty(ctx, "ipfs://Qm", "", registry.ContentAudio, &royalty.Setting{
		Model:       royalty.ModelPercentage,
		BasisPoints: 20_000,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if dialer.registry.registerCalls != calls {
		t.Error("malformed setting still produced a registration")
	}
}

func TestRegisterWithRoyaltyNilSetting(t *testing.T) {
	ctx := context.Background()
	dialer := newFakeDialer()
	client := newConnectedClient(t, dialer)

	result, err := client.RegisterWithRoyalty(ctx, "ipfs://Qm", "", registry.ContentAudio, nil)
	if err != nil {
		t.Fatalf("nil setting: %v", err)
	}
	if result.Content == nil || result.Content.ID != 7 {
		t.Errorf("content = %+v, want id 7", result.Content)
	}
	if result.RoyaltyApplied {
		t.Error("RoyaltyApplied = true without a setting")
	}
	if result.Warning != "" {
		t.Errorf("warning = %q, want empty", result.Warning)
	}
	if dialer.royalty.setCalls != 0 {
		t.Errorf("royalty set calls = %d, want 0", dialer.royalty.setCalls)
	}
	if dialer.registry.registerCalls != 1 {
		t.Errorf("register calls = %d, want 1", dialer.registry.registerCalls)
	}
}
