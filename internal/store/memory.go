package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weatherpick/internal/weather"
)

var (
	// ErrNotFound is returned when the history holds no records.
	ErrNotFound = errors.New("no completed queries in history")
)

// MemoryStore is a concurrency-safe, in-process history of completed queries.
// Nothing is written to disk; the history ends with the process.
type MemoryStore struct {
	mu sync.RWMutex

	// oldest first
	records []weather.Record

	// retention configuration
	maxHistory int           // max number of records kept
	maxAge     time.Duration // optional max age of records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Append adds a record and enforces retention.
func (s *MemoryStore) Append(rec weather.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.records) > s.maxHistory {
		over := len(s.records) - s.maxHistory
		s.records = append([]weather.Record(nil), s.records[over:]...)
	}

	s.pruneLocked()
}

// pruneLocked drops records older than maxAge. Callers hold the write lock.
func (s *MemoryStore) pruneLocked() {
	if s.maxAge <= 0 {
		return
	}
	cutoff := s.now().Add(-s.maxAge)
	i := 0
	for ; i < len(s.records); i++ {
		if !s.records[i].CompletedAt.Before(cutoff) {
			break
		}
	}
	if i > 0 {
		s.records = append([]weather.Record(nil), s.records[i:]...)
	}
}

// Recent returns up to limit records, newest first. limit <= 0 means all.
func (s *MemoryStore) Recent(limit int) ([]weather.Record, error) {
	s.mu.Lock()
	s.pruneLocked()
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, ErrNotFound
	}

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]weather.Record, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Latest returns the most recent record.
func (s *MemoryStore) Latest() (weather.Record, error) {
	recs, err := s.Recent(1)
	if err != nil {
		return weather.Record{}, err
	}
	return recs[0], nil
}

// Len reports how many records are currently retained.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
