// Package records keeps the best attempt per level for the life of the
// process.
package records

import (
	"fmt"
	"sync"
	"time"
)

// Record is the outcome of one level attempt.
type Record struct {
	LevelID   string
	Completed bool
	Score     int
	Elapsed   time.Duration
}

// Store maps level ids to their best record.
type Store interface {
	Get(levelID string) (Record, bool)
	// Offer stores r if it improves on the current record and reports
	// whether it did.
	Offer(r Record) (bool, error)
	All() ([]Record, error)
}

// Better reports whether next should replace prev.
//
// A completed attempt beats an incomplete one and a completion is never
// replaced by a failure. Between completions the faster time wins, then the
// higher score. Between failures the higher score wins.
func Better(prev, next Record) bool {
	if next.Completed != prev.Completed {
		return next.Completed
	}
	if next.Completed {
		if next.Elapsed != prev.Elapsed {
			return next.Elapsed < prev.Elapsed
		}
		return next.Score > prev.Score
	}
	return next.Score > prev.Score
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	best map[string]Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{best: make(map[string]Record)}
}

func (s *MemoryStore) Get(levelID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.best[levelID]
	return r, ok
}

func (s *MemoryStore) Offer(r Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.best[r.LevelID]; ok && !Better(prev, r) {
		return false, nil
	}
	s.best[r.LevelID] = r
	return true, nil
}

func (s *MemoryStore) All() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.best))
	for _, r := range s.best {
		out = append(out, r)
	}
	return out, nil
}

// Open returns the store named by kind: "memory" (or empty) for a map, or
// "sqlite" for SQLite at dsn, defaulting to an in-process database. The
// caller closes the store when it implements io.Closer.
func Open(kind, dsn string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQL(dsn)
	}
	return nil, fmt.Errorf("records: unknown store %q", kind)
}
