package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can keep an agent locked.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises access to each agent's plan record.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.PlanStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given plan store.
func NewManager(store ports.PlanStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(agent) after unlocking.
func (m *Manager) acquire(agent string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agent]
	if !exists {
		entry = &lockEntry{}
		m.locks[agent] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(agent string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agent]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, agent)
	}
}

// Load retrieves the agent's plan.
func (m *Manager) Load(ctx context.Context, agent string) (*domain.PlanRecord, error) {
	var rec *domain.PlanRecord
	err := m.WithLock(ctx, agent, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, agent)
		return err
	})
	return rec, err
}

// Save persists the agent's plan.
func (m *Manager) Save(ctx context.Context, agent string, rec *domain.PlanRecord) error {
	return m.WithLock(ctx, agent, func(ctx context.Context) error {
		return m.store.Save(ctx, agent, rec)
	})
}

// Update loads the agent's plan, applies fn and saves the result, all under the lock.
// Nothing is saved when fn fails.
func (m *Manager) Update(ctx context.Context, agent string, fn func(*domain.PlanRecord) error) error {
	return m.WithLock(ctx, agent, func(ctx context.Context) error {
		rec, err := m.store.Load(ctx, agent)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		rec.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, agent, rec); err != nil {
			return fmt.Errorf("failed to save plan for %s: %w", agent, err)
		}
		return nil
	})
}

// Delete removes the agent's plan.
func (m *Manager) Delete(ctx context.Context, agent string) error {
	return m.WithLock(ctx, agent, func(ctx context.Context) error {
		return m.store.Delete(ctx, agent)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying plan store.
func (m *Manager) Store() ports.PlanStore {
	return m.store
}

// WithLock executes fn while holding the lock for the agent.
// fn must not call other Manager methods for the same agent.
func (m *Manager) WithLock(ctx context.Context, agent string, fn func(context.Context) error) error {
	entry := m.acquire(agent)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(agent)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, agent, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Release even when ctx is already cancelled.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"agent", agent,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
