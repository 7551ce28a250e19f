package prediction

import (
	"context"
	"sync"

	"github.com/healthsim/diagnosis/internal/classifier"
)

// MemoryStore keeps the most recent predictions in a fixed-size ring and
// tallies every prediction ever appended.
type MemoryStore struct {
	mu     sync.RWMutex
	ring   []Record
	next   int
	size   int
	counts map[classifier.Category]int
}

// NewMemoryStore creates a store that remembers the last capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStore{
		ring:   make([]Record, capacity),
		counts: zeroCounts(),
	}
}

func (s *MemoryStore) Append(_ context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}

	rec := *r
	rec.Symptoms = append([]string(nil), r.Symptoms...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = rec
	s.next = (s.next + 1) % len(s.ring)
	if s.size < len(s.ring) {
		s.size++
	}
	s.counts[rec.Diagnosis]++
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > s.size {
		limit = s.size
	}
	if limit <= 0 {
		return []Record{}, nil
	}

	records := make([]Record, 0, limit)
	idx := s.next
	for i := 0; i < limit; i++ {
		idx = (idx - 1 + len(s.ring)) % len(s.ring)
		records = append(records, s.ring[idx])
	}
	return records, nil
}

func (s *MemoryStore) Counts(_ context.Context) (map[classifier.Category]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[classifier.Category]int, len(s.counts))
	for c, n := range s.counts {
		counts[c] = n
	}
	return counts, nil
}

// Len returns the number of records currently held in the ring.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *MemoryStore) Health(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
