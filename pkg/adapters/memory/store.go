// Package memory provides in-process implementations of the arbor ports.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.PlanStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.PlanRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.PlanRecord),
	}
}

// Save persists a copy of the record.
func (s *Store) Save(ctx context.Context, agent string, rec *domain.PlanRecord) error {
	copied := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[agent] = copied
	return nil
}

// Load returns a copy so callers can't mutate the stored record through the pointer.
func (s *Store) Load(ctx context.Context, agent string) (*domain.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[agent]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, agent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, agent)
	return nil
}

// List returns the agents holding a plan, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]string, 0, len(s.data))
	for id := range s.data {
		agents = append(agents, id)
	}
	sort.Strings(agents)
	return agents, nil
}
