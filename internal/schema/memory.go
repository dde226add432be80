package schema

import (
	"context"
	"sync"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// MemoryStore keeps mappings in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]domain.FieldMapping
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mappings: make(map[string]domain.FieldMapping)}
}

func (s *MemoryStore) Get(_ context.Context, index string) (domain.FieldMapping, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[index]
	return m, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, mapping domain.FieldMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[mapping.Index] = mapping
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, index string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mappings, index)
	return nil
}
