package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/ports"
)

// Locker implements ports.DistributedLocker within a single process.
// It is meant for tests and single-replica deployments; ttl is honoured by
// releasing a lock that was never unlocked once it expires.
type Locker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]chan struct{})}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			release := make(chan struct{})
			l.held[key] = release
			l.mu.Unlock()
			return l.unlocker(key, release, ttl), nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

func (l *Locker) unlocker(key string, release chan struct{}, ttl time.Duration) ports.UnlockFunc {
	var once sync.Once
	free := func() {
		once.Do(func() {
			l.mu.Lock()
			if l.held[key] == release {
				delete(l.held, key)
			}
			l.mu.Unlock()
			close(release)
		})
	}
	if ttl > 0 {
		timer := time.AfterFunc(ttl, free)
		return func(context.Context) error {
			timer.Stop()
			free()
			return nil
		}
	}
	return func(context.Context) error {
		free()
		return nil
	}
}
