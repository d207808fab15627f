// Package memory provides an in-memory SnapshotStore.
package memory

import (
	"context"
	"sync"

	"github.com/warp/books-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu    sync.RWMutex
	data  ledger.ERPData
	saved bool
	saves int
}

func New() *Store {
	return &Store{}
}

// Seeded returns a store that already holds data.
func Seeded(data ledger.ERPData) *Store {
	return &Store{data: data.Clone(), saved: true}
}

// Load returns a copy; callers cannot alias the stored collections.
func (s *Store) Load(_ context.Context) (ledger.ERPData, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return ledger.ERPData{}, false, nil
	}
	return s.data.Clone(), true, nil
}

func (s *Store) Save(_ context.Context, data ledger.ERPData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.Clone()
	s.saved = true
	s.saves++
	return nil
}

// Saves counts successful Save calls.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
