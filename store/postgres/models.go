package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Amounts are stored as base-10 text so arbitrary-precision values
// survive the round trip regardless of numeric column limits.

// ==================== Content models ====================

type contentModel struct {
	grove.BaseModel `grove:"table:provenance_contents"`

	ID          int64     `grove:"id,pk"`
	Creator     string    `grove:"creator"`
	ContentURI  string    `grove:"content_uri"`
	MetadataURI string    `grove:"metadata_uri"`
	ContentType uint8     `grove:"content_type"`
	Active      bool      `grove:"active"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toContentModel(r *registry.ContentRecord) *contentModel {
	return &contentModel{
		ID:          r.ID,
		Creator:     r.Creator,
		ContentURI:  r.ContentURI,
		MetadataURI: r.MetadataURI,
		ContentType: uint8(r.ContentType),
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromContentModel(m *contentModel) *registry.ContentRecord {
	return &registry.ContentRecord{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          m.ID,
		Creator:     m.Creator,
		ContentURI:  m.ContentURI,
		MetadataURI: m.MetadataURI,
		ContentType: registry.ContentType(m.ContentType),
		Active:      m.Active,
	}
}

// ==================== Royalty models ====================

type royaltySettingModel struct {
	grove.BaseModel `grove:"table:provenance_royalty_settings"`

	ContentID   int64           `grove:"content_id,pk"`
	Model       string          `grove:"model"`
	Recipient   string          `grove:"recipient"`
	BasisPoints uint32          `grove:"basis_points"`
	MinAmount   string          `grove:"min_amount"`
	MaxAmount   string          `grove:"max_amount"`
	Thresholds  json.RawMessage `grove:"thresholds,type:jsonb"`
	Rates       json.RawMessage `grove:"rates,type:jsonb"`
	Amount      string          `grove:"amount"`
	UpdatedAt   time.Time       `grove:"updated_at"`
}

func toRoyaltySettingModel(s *royalty.Setting) *royaltySettingModel {
	thresholds := make([]string, len(s.Thresholds))
	for i, t := range s.Thresholds {
		thresholds[i] = t.String()
	}
	thresholdsJSON, _ := json.Marshal(thresholds) //nolint:errcheck // strings always marshal
	ratesJSON, _ := json.Marshal(s.Rates)         //nolint:errcheck // ints always marshal

	return &royaltySettingModel{
		ContentID:   s.ContentID,
		Model:       string(s.Model),
		Recipient:   s.Recipient,
		BasisPoints: s.BasisPoints,
		MinAmount:   s.MinAmount.String(),
		MaxAmount:   s.MaxAmount.String(),
		Thresholds:  thresholdsJSON,
		Rates:       ratesJSON,
		Amount:      s.Amount.String(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func fromRoyaltySettingModel(m *royaltySettingModel) (*royalty.Setting, error) {
	minAmount, err := types.ParseAmount(m.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := types.ParseAmount(m.MaxAmount)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}

	var thresholdStrings []string
	if len(m.Thresholds) > 0 {
		if err := json.Unmarshal(m.Thresholds, &thresholdStrings); err != nil {
			return nil, err
		}
	}
	thresholds := make([]types.Amount, len(thresholdStrings))
	for i, s := range thresholdStrings {
		if thresholds[i], err = types.ParseAmount(s); err != nil {
			return nil, err
		}
	}

	var rates []uint32
	if len(m.Rates) > 0 {
		if err := json.Unmarshal(m.Rates, &rates); err != nil {
			return nil, err
		}
	}

	return &royalty.Setting{
		ContentID:   m.ContentID,
		Model:       royalty.Model(m.Model),
		Recipient:   m.Recipient,
		BasisPoints: m.BasisPoints,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
		Thresholds:  thresholds,
		Rates:       rates,
		Amount:      amount,
	}, nil
}

type royaltyPaymentModel struct {
	grove.BaseModel `grove:"table:provenance_royalty_payments"`

	ID        string    `grove:"id,pk"`
	ContentID int64     `grove:"content_id"`
	Payer     string    `grove:"payer"`
	Recipient string    `grove:"recipient"`
	Amount    string    `grove:"amount"`
	PaidAt    time.Time `grove:"paid_at"`
}

func toRoyaltyPaymentModel(receiptID string, p *royalty.Payment) *royaltyPaymentModel {
	return &royaltyPaymentModel{
		ID:        receiptID,
		ContentID: p.ContentID,
		Payer:     p.Payer,
		Recipient: p.Recipient,
		Amount:    p.Amount.String(),
		PaidAt:    p.PaidAt,
	}
}

func fromRoyaltyPaymentModel(m *royaltyPaymentModel) (*royalty.Payment, error) {
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	return &royalty.Payment{
		ContentID: m.ContentID,
		Payer:     m.Payer,
		Recipient: m.Recipient,
		Amount:    amount,
		PaidAt:    m.PaidAt,
	}, nil
}

// ==================== Usage models ====================

type usageEventModel struct {
	grove.BaseModel `grove:"table:provenance_usage_events"`

	ID        string    `grove:"id,pk"`
	ContentID int64     `grove:"content_id"`
	Platform  string    `grove:"platform"`
	Quantity  int64     `grove:"quantity"`
	ScopeKey  string    `grove:"scope_key"`
	Timestamp time.Time `grove:"timestamp"`
}

func toUsageEventModel(e *usage.Event) *usageEventModel {
	return &usageEventModel{
		ID:        e.ID.String(),
		ContentID: e.ContentID,
		Platform:  string(e.Platform),
		Quantity:  e.Quantity,
		ScopeKey:  e.ScopeKey,
		Timestamp: e.Timestamp,
	}
}

// ==================== License models ====================

type licenseModel struct {
	grove.BaseModel `grove:"table:provenance_licenses"`

	ID         int64     `grove:"id,pk"`
	Licensee   string    `grove:"licensee"`
	ContentID  int64     `grove:"content_id"`
	Type       uint8     `grove:"license_type"`
	StartTime  time.Time `grove:"start_time"`
	EndTime    time.Time `grove:"end_time"`
	UsageLimit int64     `grove:"usage_limit"`
	UsageCount int64     `grove:"usage_count"`
	Active     bool      `grove:"active"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toLicenseModel(l *usage.License) *licenseModel {
	return &licenseModel{
		ID:         l.ID,
		Licensee:   l.Licensee,
		ContentID:  l.ContentID,
		Type:       uint8(l.Type),
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		UsageLimit: l.UsageLimit,
		UsageCount: l.UsageCount,
		Active:     l.Active,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func fromLicenseModel(m *licenseModel) *usage.License {
	return &usage.License{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         m.ID,
		Licensee:   m.Licensee,
		ContentID:  m.ContentID,
		Type:       usage.LicenseType(m.Type),
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		UsageLimit: m.UsageLimit,
		UsageCount: m.UsageCount,
		Active:     m.Active,
	}
}
