package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunPlanStoreContract(t, store)
}

func TestMemoryLocker_Contract(t *testing.T) {
	tests.LockerContractTest(t, memory.NewLocker())
}

func TestMemoryLocker_Expires(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	_, err := locker.Lock(ctx, "forgetful", 50*time.Millisecond)
	require.NoError(t, err)

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := locker.Lock(ctx2, "forgetful", time.Second)
	require.NoError(t, err, "lock should be released after its ttl")
	assert.NoError(t, unlock(ctx))
}

func TestMemoryLocker_DoubleUnlock(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "a", 0)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx))

	again, err := locker.Lock(ctx, "a", 0)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
