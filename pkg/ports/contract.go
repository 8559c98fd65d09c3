package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractRecord(agent string) *domain.PlanRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.PlanRecord{
		ID:    "plan-" + agent,
		Agent: agent,
		Goal:  "travel",
		Steps: []domain.Step{
			{Operator: "call_taxi", Params: domain.MustParams("me", "home", "park")},
			{Operator: "pay_driver", Params: domain.MustParams("me", 11, 0.5)},
		},
		Cursor:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunPlanStoreContract runs a suite of tests to verify that a PlanStore implementation
// adheres to the defined interface contract.
func RunPlanStoreContract(t *testing.T, store PlanStore) {
	ctx := context.Background()
	agent := "contract-agent-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := contractRecord(agent)

		err := store.Save(ctx, agent, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, agent)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Goal, loaded.Goal)
		assert.Equal(t, rec.Cursor, loaded.Cursor)
		require.Len(t, loaded.Steps, 2)
		assert.Equal(t, "pay_driver", loaded.Steps[1].Operator)
		// Parameter kinds survive persistence: 11 stays an int, 0.5 a float.
		assert.True(t, rec.Steps[1].Params.Equal(loaded.Steps[1].Params), "params: %v", loaded.Steps[1].Params)
		assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Save Replaces", func(t *testing.T) {
		rec := contractRecord(agent)
		rec.Cursor = 2
		require.NoError(t, store.Save(ctx, agent, rec))

		loaded, err := store.Load(ctx, agent)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Cursor)
		assert.True(t, loaded.Done())
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, agent)
		require.NoError(t, err)
		loaded.Cursor = 99
		loaded.Steps[0].Operator = "mutated"

		again, err := store.Load(ctx, agent)
		require.NoError(t, err)
		assert.NotEqual(t, 99, again.Cursor)
		assert.Equal(t, "call_taxi", again.Steps[0].Operator)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+agent)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, agent, contractRecord(agent)))

		err := store.Delete(ctx, agent)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, agent)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound, "Load after Delete should return ErrPlanNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := agent + "-1"
		id2 := agent + "-2"
		_ = store.Save(ctx, id1, contractRecord(id1))
		_ = store.Save(ctx, id2, contractRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		agents, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, agents, id1)
		assert.Contains(t, agents, id2)
	})
}
