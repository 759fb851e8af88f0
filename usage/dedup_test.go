package usage

import (
	"sync"
	"testing"
	"time"
)

func TestSeenSetAddAndSeen(t *testing.T) {
	s := NewSeenSet()

	k := DedupKey{ContentID: 1, Platform: PlatformStreaming, ScopeKey: "viewer-1"}
	if s.Seen(k) {
		t.Fatal("fresh key should not be seen")
	}

	s.Add(k)
	if !s.Seen(k) {
		t.Fatal("added key should be seen")
	}

	// Any component difference is a different identity.
	variants := []DedupKey{
		{ContentID: 2, Platform: PlatformStreaming, ScopeKey: "viewer-1"},
		{ContentID: 1, Platform: PlatformSocial, ScopeKey: "viewer-1"},
		{ContentID: 1, Platform: PlatformStreaming, ScopeKey: "viewer-2"},
	}
	for _, v := range variants {
		if s.Seen(v) {
			t.Errorf("key %v should not be seen", v)
		}
	}
}

func TestSeenSetAddAll(t *testing.T) {
	s := NewSeenSet()

	keys := []DedupKey{
		{ContentID: 1, Platform: PlatformStreaming, ScopeKey: "a"},
		{ContentID: 1, Platform: PlatformStreaming, ScopeKey: "b"},
		{ContentID: 2, Platform: PlatformMarketplace, ScopeKey: "a"},
	}
	s.AddAll(keys)

	for _, k := range keys {
		if !s.Seen(k) {
			t.Errorf("key %v should be seen after AddAll", k)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestSeenSetConcurrent(t *testing.T) {
	s := NewSeenSet()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k := DedupKey{ContentID: int64(j), Platform: PlatformEmbedding, ScopeKey: "shared"}
				s.Add(k)
				s.Seen(k)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len = %d, want 100", s.Len())
	}
}

func TestEventKey(t *testing.T) {
	e := &Event{ContentID: 7, Platform: PlatformSocial, ScopeKey: "post-1", Quantity: 3}
	k := e.Key()
	if k.ContentID != 7 || k.Platform != PlatformSocial || k.ScopeKey != "post-1" {
		t.Errorf("Key() = %v", k)
	}
	if k.String() != "7/social/post-1" {
		t.Errorf("String() = %q", k.String())
	}
}

func TestLicenseValidAt(t *testing.T) {
	base := License{Active: true}

	if !base.ValidAt(time.Now()) {
		t.Error("active license with open window should be valid")
	}

	revoked := base
	revoked.Active = false
	if revoked.ValidAt(time.Now()) {
		t.Error("inactive license should be invalid")
	}

	limited := base
	limited.UsageLimit = 10
	limited.UsageCount = 10
	if limited.ValidAt(time.Now()) {
		t.Error("exhausted license should be invalid")
	}

	expired := base
	expired.EndTime = time.Now().Add(-time.Hour)
	if expired.ValidAt(time.Now()) {
		t.Error("expired license should be invalid")
	}

	notYet := base
	notYet.StartTime = time.Now().Add(time.Hour)
	if notYet.ValidAt(time.Now()) {
		t.Error("future license should be invalid")
	}
}
