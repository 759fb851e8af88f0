package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	provstore "github.com/veralith/provenance/store"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// compile-time interface check
var _ provstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("provenance/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("provenance/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Content Store ====================

func (s *Store) CreateContent(ctx context.Context, record *registry.ContentRecord) error {
	m := toContentModel(record)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error) {
	m := new(contentModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", contentID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, provenance.ErrContentNotFound
		}
		return nil, err
	}
	return fromContentModel(m), nil
}

func (s *Store) ListContentByCreator(ctx context.Context, creator string) ([]int64, error) {
	var models []contentModel
	err := s.pg.NewSelect(&models).
		Where("creator = ?", creator).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	return ids, nil
}

func (s *Store) UpdateContent(ctx context.Context, record *registry.ContentRecord) error {
	m := toContentModel(record)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return provenance.ErrContentNotFound
	}
	return nil
}

func (s *Store) MaxContentID(ctx context.Context) (int64, error) {
	var max int64
	err := s.pg.NewRaw(`SELECT COALESCE(MAX(id), 0) FROM provenance_contents`).Scan(ctx, &max)
	if err != nil {
		return 0, err
	}
	return max, nil
}

// ==================== Royalty Store ====================

func (s *Store) UpsertRoyaltySetting(ctx context.Context, setting *royalty.Setting) error {
	m := toRoyaltySettingModel(setting)
	_, err := s.pg.NewInsert(m).
		OnConflict("(content_id) DO UPDATE").
		Set("model = EXCLUDED.model").
		Set("recipient = EXCLUDED.recipient").
		Set("basis_points = EXCLUDED.basis_points").
		Set("min_amount = EXCLUDED.min_amount").
		Set("max_amount = EXCLUDED.max_amount").
		Set("thresholds = EXCLUDED.thresholds").
		Set("rates = EXCLUDED.rates").
		Set("amount = EXCLUDED.amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetRoyaltySetting(ctx context.Context, contentID int64) (*royalty.Setting, error) {
	m := new(royaltySettingModel)
	err := s.pg.NewSelect(m).
		Where("content_id = ?", contentID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, royalty.ErrSettingNotFound
		}
		return nil, err
	}
	return fromRoyaltySettingModel(m)
}

func (s *Store) RecordRoyaltyPayment(ctx context.Context, payment *royalty.Payment) error {
	m := toRoyaltyPaymentModel(id.NewReceiptID().String(), payment)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListRoyaltyPayments(ctx context.Context, contentID int64) ([]*royalty.Payment, error) {
	var models []royaltyPaymentModel
	err := s.pg.NewSelect(&models).
		Where("content_id = ?", contentID).
		OrderExpr("paid_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*royalty.Payment, len(models))
	for i := range models {
		p, err := fromRoyaltyPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Usage Store ====================

func (s *Store) IngestUsage(ctx context.Context, events []*usage.Event) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]usageEventModel, len(events))
	for i, e := range events {
		models[i] = *toUsageEventModel(e)
	}
	_, err := s.pg.NewInsert(&models).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) TotalUsage(ctx context.Context, contentID int64) (types.Amount, error) {
	var total string
	err := s.pg.NewRaw(`
		SELECT COALESCE(SUM(quantity), 0)::TEXT FROM provenance_usage_events
		WHERE content_id = ?
	`, contentID).Scan(ctx, &total)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return types.ParseAmount(total)
}

func (s *Store) UsageHistory(ctx context.Context, contentID int64) ([]usage.HistoryEntry, error) {
	var models []usageEventModel
	err := s.pg.NewSelect(&models).
		Where("content_id = ?", contentID).
		OrderExpr("timestamp DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]usage.HistoryEntry, len(models))
	for i := range models {
		result[i] = usage.HistoryEntry{
			Quantity:  types.NewAmount(uint64(models[i].Quantity)),
			Timestamp: models[i].Timestamp,
		}
	}
	return result, nil
}

func (s *Store) PurgeUsage(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pg.NewDelete((*usageEventModel)(nil)).
		Where("timestamp < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// ==================== License Store ====================

func (s *Store) CreateLicense(ctx context.Context, license *usage.License) error {
	m := toLicenseModel(license)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetLicense(ctx context.Context, licenseID int64) (*usage.License, error) {
	m := new(licenseModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", licenseID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, provenance.ErrLicenseNotFound
		}
		return nil, err
	}
	return fromLicenseModel(m), nil
}

func (s *Store) ListLicensesByAccount(ctx context.Context, licensee string) ([]int64, error) {
	var models []licenseModel
	err := s.pg.NewSelect(&models).
		Where("licensee = ?", licensee).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	return ids, nil
}

func (s *Store) UpdateLicense(ctx context.Context, license *usage.License) error {
	m := toLicenseModel(license)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return provenance.ErrLicenseNotFound
	}
	return nil
}

func (s *Store) MaxLicenseID(ctx context.Context) (int64, error) {
	var max int64
	err := s.pg.NewRaw(`SELECT COALESCE(MAX(id), 0) FROM provenance_licenses`).Scan(ctx, &max)
	if err != nil {
		return 0, err
	}
	return max, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
