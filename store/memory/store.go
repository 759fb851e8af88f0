package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

type Store struct {
	mu sync.RWMutex

	// Content storage
	contents map[int64]*registry.ContentRecord

	// Royalty storage
	settings map[int64]*royalty.Setting
	payments []royalty.Payment

	// Usage events storage
	usageEvents []usage.Event

	// License storage
	licenses map[int64]*usage.License
}

func New() *Store {
	return &Store{
		contents:    make(map[int64]*registry.ContentRecord),
		settings:    make(map[int64]*royalty.Setting),
		usageEvents: make([]usage.Event, 0),
		licenses:    make(map[int64]*usage.License),
	}
}

// Content Store implementation
func (s *Store) CreateContent(_ context.Context, record *registry.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contents[record.ID]; exists {
		return provenance.ErrInvalidInput
	}
	clone := *record
	s.contents[record.ID] = &clone
	return nil
}

func (s *Store) GetContent(_ context.Context, contentID int64) (*registry.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if record, ok := s.contents[contentID]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, provenance.ErrContentNotFound
}

func (s *Store) ListContentByCreator(_ context.Context, creator string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for _, record := range s.contents {
		if record.Creator == creator {
			ids = append(ids, record.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) UpdateContent(_ context.Context, record *registry.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contents[record.ID]; !exists {
		return provenance.ErrContentNotFound
	}
	clone := *record
	s.contents[record.ID] = &clone
	return nil
}

func (s *Store) MaxContentID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max int64
	for contentID := range s.contents {
		if contentID > max {
			max = contentID
		}
	}
	return max, nil
}

// Royalty Store implementation
func (s *Store) UpsertRoyaltySetting(_ context.Context, setting *royalty.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *setting
	s.settings[setting.ContentID] = &clone
	return nil
}

func (s *Store) GetRoyaltySetting(_ context.Context, contentID int64) (*royalty.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if setting, ok := s.settings[contentID]; ok {
		clone := *setting
		return &clone, nil
	}
	return nil, royalty.ErrSettingNotFound
}

func (s *Store) RecordRoyaltyPayment(_ context.Context, payment *royalty.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, *payment)
	return nil
}

func (s *Store) ListRoyaltyPayments(_ context.Context, contentID int64) ([]*royalty.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*royalty.Payment, 0)
	for i := range s.payments {
		if s.payments[i].ContentID == contentID {
			clone := s.payments[i]
			result = append(result, &clone)
		}
	}
	return result, nil
}

// Usage Store implementation
func (s *Store) IngestUsage(_ context.Context, events []*usage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.usageEvents = append(s.usageEvents, *e)
	}
	return nil
}

func (s *Store) TotalUsage(_ context.Context, contentID int64) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := types.ZeroAmount()
	for i := range s.usageEvents {
		if s.usageEvents[i].ContentID == contentID {
			total = total.Add(types.NewAmount(uint64(s.usageEvents[i].Quantity)))
		}
	}
	return total, nil
}

func (s *Store) UsageHistory(_ context.Context, contentID int64) ([]usage.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]usage.HistoryEntry, 0)
	for i := range s.usageEvents {
		if s.usageEvents[i].ContentID == contentID {
			result = append(result, usage.HistoryEntry{
				Quantity:  types.NewAmount(uint64(s.usageEvents[i].Quantity)),
				Timestamp: s.usageEvents[i].Timestamp,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

func (s *Store) PurgeUsage(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	kept := make([]usage.Event, 0, len(s.usageEvents))
	for _, e := range s.usageEvents {
		if e.Timestamp.Before(before) {
			count++
		} else {
			kept = append(kept, e)
		}
	}
	s.usageEvents = kept
	return count, nil
}

// License Store implementation
func (s *Store) CreateLicense(_ context.Context, license *usage.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.licenses[license.ID]; exists {
		return provenance.ErrInvalidInput
	}
	clone := *license
	s.licenses[license.ID] = &clone
	return nil
}

func (s *Store) GetLicense(_ context.Context, licenseID int64) (*usage.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if license, ok := s.licenses[licenseID]; ok {
		clone := *license
		return &clone, nil
	}
	return nil, provenance.ErrLicenseNotFound
}

func (s *Store) ListLicensesByAccount(_ context.Context, licensee string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for _, license := range s.licenses {
		if license.Licensee == licensee {
			ids = append(ids, license.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) UpdateLicense(_ context.Context, license *usage.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.licenses[license.ID]; !exists {
		return provenance.ErrLicenseNotFound
	}
	clone := *license
	s.licenses[license.ID] = &clone
	return nil
}

func (s *Store) MaxLicenseID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max int64
	for licenseID := range s.licenses {
		if licenseID > max {
			max = licenseID
		}
	}
	return max, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
