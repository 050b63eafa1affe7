package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"foodlog/internal/model"
	"foodlog/internal/tracker"
)

// MemoryStore keeps the log in memory, mainly for tests and throwaway sessions.
// It stores an encoded copy, so callers never share state with the store.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ tracker.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return model.NewDocument(), nil
	}
	doc, err := Decode(s.data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tracker.ErrStorage, err)
	}
	return doc, nil
}

func (s *MemoryStore) Save(doc *model.Document) error {
	data, err := json.Marshal(normalize(doc))
	if err != nil {
		return fmt.Errorf("%w: encoding log: %w", tracker.ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
