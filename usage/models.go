// Package usage defines the usage-tracking data model and the
// capability-typed surface of the remote usage service.
package usage

import (
	"fmt"
	"time"

	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/types"
)

// Platform identifies the reporting integration a usage event came from.
type Platform string

const (
	PlatformStreaming   Platform = "streaming"
	PlatformSocial      Platform = "social"
	PlatformEmbedding   Platform = "embedding"
	PlatformMarketplace Platform = "marketplace"
)

// Event is a single usage report. Events are ephemeral until committed to
// the remote usage service; the ScopeKey supports at-most-once counting
// per (content, platform, scope) within one process lifetime.
type Event struct {
	ID        id.UsageEventID `json:"id"`
	ContentID int64           `json:"content_id"`
	Platform  Platform        `json:"platform"`
	Quantity  int64           `json:"quantity"`
	ScopeKey  string          `json:"scope_key"`
	Timestamp time.Time       `json:"timestamp"`
}

// DedupKey is the identity under which an event is counted at most once.
type DedupKey struct {
	ContentID int64
	Platform  Platform
	ScopeKey  string
}

// Key returns the event's dedup key.
func (e *Event) Key() DedupKey {
	return DedupKey{ContentID: e.ContentID, Platform: e.Platform, ScopeKey: e.ScopeKey}
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.ContentID, k.Platform, k.ScopeKey)
}

// HistoryEntry is one point of a content's usage history.
type HistoryEntry struct {
	Quantity  types.Amount `json:"quantity"`
	Timestamp time.Time    `json:"timestamp"`
}

// LicenseType classifies issued licenses.
type LicenseType uint8

const (
	LicensePersonal LicenseType = iota
	LicenseCommercial
	LicenseExclusive
)

// License is a usage license issued by the remote usage service. From
// this library's perspective licenses are read-only: issuance and
// revocation happen on the service side and are only queried here.
type License struct {
	types.Entity
	ID         int64       `json:"id"`
	Licensee   string      `json:"licensee"`
	ContentID  int64       `json:"content_id"`
	Type       LicenseType `json:"type"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	UsageLimit int64       `json:"usage_limit"`
	UsageCount int64       `json:"usage_count"`
	Active     bool        `json:"active"`
}

// ValidAt reports whether the license authorizes usage at the given time:
// it must be active, inside its validity window, and under its usage
// limit (a zero limit means unlimited).
func (l *License) ValidAt(at time.Time) bool {
	if !l.Active {
		return false
	}
	if at.Before(l.StartTime) {
		return false
	}
	if !l.EndTime.IsZero() && at.After(l.EndTime) {
		return false
	}
	if l.UsageLimit > 0 && l.UsageCount >= l.UsageLimit {
		return false
	}
	return true
}

// Event names emitted by the remote usage service.
const (
	EventUsageRecorded  = "UsageRecorded"
	EventLicenseIssued  = "LicenseIssued"
	EventLicenseRevoked = "LicenseRevoked"
)
