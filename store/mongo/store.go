package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	provstore "github.com/veralith/provenance/store"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// Collection name constants.
const (
	colContents        = "provenance_contents"
	colRoyaltySettings = "provenance_royalty_settings"
	colRoyaltyPayments = "provenance_royalty_payments"
	colUsageEvents     = "provenance_usage_events"
	colLicenses        = "provenance_licenses"
)

// compile-time interface check
var _ provstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("provenance/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provenance/mongo: create content: %w", err)
	}
	return nil
}

func (s *Store) GetContent(ctx context.Context, contentID int64) (*registry.ContentRecord, error) {
	var m contentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": contentID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, provenance.ErrContentNotFound
		}
		return nil, fmt.Errorf("provenance/mongo: get content: %w", err)
	}
	return fromContentModel(&m), nil
}

func (s *Store) ListContentByCreator(ctx context.Context, creator string) ([]int64, error) {
	var models []contentModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"creator": creator}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provenance/mongo: list content by creator: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provenance/mongo: update content: %w", err)
	}
	if res.MatchedCount() == 0 {
		return provenance.ErrContentNotFound
	}
	return nil
}

func (s *Store) MaxContentID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, colContents)
}

// ==================== Royalty Store ====================

func (s *Store) UpsertRoyaltySetting(ctx context.Context, setting *royalty.Setting) error {
	m := toRoyaltySettingModel(setting)

	_, err := s.mdb.Collection(colRoyaltySettings).ReplaceOne(ctx,
		bson.M{"_id": m.ContentID},
		m,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("provenance/mongo: upsert royalty setting: %w", err)
	}
	return nil
}

func (s *Store) GetRoyaltySetting(ctx context.Context, contentID int64) (*royalty.Setting, error) {
	var m royaltySettingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": contentID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, royalty.ErrSettingNotFound
		}
		return nil, fmt.Errorf("provenance/mongo: get royalty setting: %w", err)
	}
	return fromRoyaltySettingModel(&m)
}

func (s *Store) RecordRoyaltyPayment(ctx context.Context, payment *royalty.Payment) error {
	m := toRoyaltyPaymentModel(id.NewReceiptID().String(), payment)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provenance/mongo: record royalty payment: %w", err)
	}
	return nil
}

func (s *Store) ListRoyaltyPayments(ctx context.Context, contentID int64) ([]*royalty.Payment, error) {
	var models []royaltyPaymentModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"content_id": contentID}).
		Sort(bson.D{{Key: "paid_at", Value: -1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provenance/mongo: list royalty payments: %w", err)
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
	for _, e := range events {
		m := toUsageEventModel(e)
		_, err := s.mdb.NewInsert(m).Exec(ctx)
		if err != nil {
			// Skip duplicates for idempotency
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("provenance/mongo: ingest event: %w", err)
		}
	}
	return nil
}

func (s *Store) TotalUsage(ctx context.Context, contentID int64) (types.Amount, error) {
	pipeline := bson.A{
		bson.M{
			"$match": bson.M{"content_id": contentID},
		},
		bson.M{
			"$group": bson.M{
				"_id":   nil,
				"total": bson.M{"$sum": "$quantity"},
			},
		},
	}

	cursor, err := s.mdb.Collection(colUsageEvents).Aggregate(ctx, pipeline)
	if err != nil {
		return types.ZeroAmount(), fmt.Errorf("provenance/mongo: aggregate usage: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return types.ZeroAmount(), fmt.Errorf("provenance/mongo: aggregate decode: %w", err)
	}

	if len(results) == 0 {
		return types.ZeroAmount(), nil
	}
	return types.NewAmount(uint64(results[0].Total)), nil
}

func (s *Store) UsageHistory(ctx context.Context, contentID int64) ([]usage.HistoryEntry, error) {
	var models []usageEventModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"content_id": contentID}).
		Sort(bson.D{{Key: "timestamp", Value: -1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provenance/mongo: usage history: %w", err)
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
	res, err := s.mdb.NewDelete((*usageEventModel)(nil)).
		Filter(bson.M{"timestamp": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("provenance/mongo: purge usage: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== License Store ====================

func (s *Store) CreateLicense(ctx context.Context, license *usage.License) error {
	m := toLicenseModel(license)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provenance/mongo: create license: %w", err)
	}
	return nil
}

func (s *Store) GetLicense(ctx context.Context, licenseID int64) (*usage.License, error) {
	var m licenseModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": licenseID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, provenance.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("provenance/mongo: get license: %w", err)
	}
	return fromLicenseModel(&m), nil
}

func (s *Store) ListLicensesByAccount(ctx context.Context, licensee string) ([]int64, error) {
	var models []licenseModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"licensee": licensee}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provenance/mongo: list licenses by account: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provenance/mongo: update license: %w", err)
	}
	if res.MatchedCount() == 0 {
		return provenance.ErrLicenseNotFound
	}
	return nil
}

func (s *Store) MaxLicenseID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, colLicenses)
}

// ==================== Helpers ====================

// maxID returns the highest _id in a collection with int64 keys, 0 when empty.
func (s *Store) maxID(ctx context.Context, col string) (int64, error) {
	pipeline := bson.A{
		bson.M{
			"$group": bson.M{
				"_id": nil,
				"max": bson.M{"$max": "$_id"},
			},
		},
	}

	cursor, err := s.mdb.Collection(col).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("provenance/mongo: max id %s: %w", col, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Max int64 `bson:"max"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("provenance/mongo: max id decode: %w", err)
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Max, nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colContents: {
			{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "active", Value: 1}}},
		},
		colRoyaltySettings: {},
		colRoyaltyPayments: {
			{Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "paid_at", Value: -1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}}},
		},
		colUsageEvents: {
			{Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "platform", Value: 1}, {Key: "scope_key", Value: 1}}},
		},
		colLicenses: {
			{Keys: bson.D{{Key: "licensee", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "content_id", Value: 1}}},
		},
	}
}
