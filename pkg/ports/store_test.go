package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// MockStore is a minimal in-memory PlanStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]*domain.PlanRecord
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.PlanRecord)}
}

func (m *MockStore) Save(ctx context.Context, agent string, rec *domain.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[agent] = rec.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, agent string) (*domain.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[agent]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return rec.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, agent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, agent)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for agent := range m.data {
		out = append(out, agent)
	}
	sort.Strings(out)
	return out, nil
}

func TestPlanStore_Contract(t *testing.T) {
	ports.RunPlanStoreContract(t, NewMockStore())
}
