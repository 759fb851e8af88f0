package usage

import "sync"

// SeenSet is a process-local record of usage keys that have already been
// submitted. It is safe for concurrent use and is shared across session
// rebinds so reconnecting never re-opens a window for duplicates.
type SeenSet struct {
	mu   sync.RWMutex
	keys map[DedupKey]struct{}
}

// NewSeenSet creates an empty seen-set.
func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[DedupKey]struct{})}
}

// Seen reports whether the key has been recorded.
func (s *SeenSet) Seen(key DedupKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Add records a single key.
func (s *SeenSet) Add(key DedupKey) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

// AddAll records every key in one critical section. Used after a batch
// submission confirms, so a batch either marks all of its keys or none.
func (s *SeenSet) AddAll(keys []DedupKey) {
	s.mu.Lock()
	for _, key := range keys {
		s.keys[key] = struct{}{}
	}
	s.mu.Unlock()
}

// Len returns the number of recorded keys.
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
