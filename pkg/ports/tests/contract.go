// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.DistributedLocker.
func LockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()

	// 1. Lock and Unlock
	t.Run("Lock_Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "agent-a", time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}
		// Re-acquire after release.
		unlock, err = locker.Lock(ctx, "agent-a", time.Second)
		if err != nil {
			t.Fatalf("lock not reusable after release: %v", err)
		}
		_ = unlock(ctx)
	})

	// 2. Contention: a held lock blocks until the context gives up
	t.Run("Lock_Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "agent-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		defer unlock(ctx)

		short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(short, "agent-b", time.Second); err == nil {
			t.Error("expected second Lock to fail while the lock is held")
		}
	})

	// 3. Independent keys do not block each other
	t.Run("Lock_IndependentKeys", func(t *testing.T) {
		u1, err := locker.Lock(ctx, "agent-c", time.Second)
		if err != nil {
			t.Fatalf("lock c: %v", err)
		}
		defer u1(ctx)
		u2, err := locker.Lock(ctx, "agent-d", time.Second)
		if err != nil {
			t.Fatalf("lock d: %v", err)
		}
		_ = u2(ctx)
	})

	// 4. Mutual exclusion under concurrency
	t.Run("Lock_MutualExclusion", func(t *testing.T) {
		var inside, peak atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "agent-e", 5*time.Second)
				if err != nil {
					t.Errorf("lock: %v", err)
					return
				}
				n := inside.Add(1)
				for {
					m := peak.Load()
					if n <= m || peak.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inside.Add(-1)
				_ = unlock(ctx)
			}()
		}
		wg.Wait()
		if peak.Load() != 1 {
			t.Errorf("expected at most one holder at a time, saw %d", peak.Load())
		}
	})
}
