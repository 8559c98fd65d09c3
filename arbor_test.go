package arbor_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepNames(steps []domain.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Operator
	}
	return out
}

func TestPlanner_Travel(t *testing.T) {
	tests := []struct {
		name  string
		state city
		want  []string
	}{
		{"long trip takes a taxi", newCity(8, 20), []string{"call_taxi", "ride_taxi", "pay_driver"}},
		{"short trip walks", newCity(1, 20), []string{"walk"}},
		{"broke traveller falls back to walking", newCity(8, 1), []string{"walk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner, err := arbor.New(travelDomain())
			require.NoError(t, err)

			res, err := planner.PlanTask(context.Background(), tt.state, "travel", trip...)
			require.NoError(t, err)
			require.True(t, res.Found)

			if diff := cmp.Diff(tt.want, stepNames(res.Steps())); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
			for _, step := range res.Steps() {
				assert.True(t, step.Params.Equal(trip), "every step receives the trip parameters")
			}
		})
	}
}

func TestPlanner_TravelReplay(t *testing.T) {
	planner, err := arbor.New(travelDomain())
	require.NoError(t, err)

	start := newCity(8, 20)
	res, err := planner.PlanTask(context.Background(), start, "travel", trip...)
	require.NoError(t, err)
	require.True(t, res.Found)

	final, err := res.Plan.Replay(start)
	require.NoError(t, err)
	assert.Equal(t, "park", final.Loc["me"])
	assert.Equal(t, 9, final.Cash["me"])
	assert.Equal(t, 0, final.Owe["me"])

	// Planning never touches the caller's snapshot.
	assert.Equal(t, "home", start.Loc["me"])
	assert.Equal(t, 20, start.Cash["me"])
}

func TestPlanner_MethodOrderMatters(t *testing.T) {
	planner, err := arbor.New(travelDomain("by_foot_last_resort", "by_taxi", "by_foot"))
	require.NoError(t, err)

	res, err := planner.PlanTask(context.Background(), newCity(8, 20), "travel", trip...)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, []string{"walk"}, res.Plan.Names())
}

func TestPlanner_NoPlanIsNotAnError(t *testing.T) {
	planner, err := arbor.New(travelDomain())
	require.NoError(t, err)

	away := newCity(8, 20)
	away.Loc["me"] = "office"
	res, err := planner.PlanTask(context.Background(), away, "travel", trip...)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Plan)
}

func TestPlanner_UnknownGoal(t *testing.T) {
	planner, err := arbor.New(travelDomain())
	require.NoError(t, err)

	_, err = planner.PlanTask(context.Background(), newCity(8, 20), "teleport", trip...)
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
}

func TestPlanner_WrongArity(t *testing.T) {
	planner, err := arbor.New(travelDomain())
	require.NoError(t, err)

	_, err = planner.PlanTask(context.Background(), newCity(8, 20), "travel", domain.Text("me"))
	var arity *domain.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 3, arity.Want)
}

func TestPlanner_SealsDomain(t *testing.T) {
	d := travelDomain()
	_, err := arbor.New(d)
	require.NoError(t, err)

	_, err = d.RegisterOperator("fly", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrSealed)

	_, err = arbor.New[city](nil)
	assert.Error(t, err)
}

func TestPlanner_Timeout(t *testing.T) {
	d := domain.New[city]()
	_, err := d.RegisterCompoundTask("spin", domain.Method[city]{
		Name: "again",
		Precondition: func(city, domain.Params) (bool, error) {
			time.Sleep(time.Millisecond)
			return true, nil
		},
		Subtasks: []domain.TaskRef[city]{domain.NameRef[city]("spin")},
	})
	require.NoError(t, err)

	planner, err := arbor.New(d, arbor.WithMaxDepth(0), arbor.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = planner.PlanTask(context.Background(), newCity(1, 1), "spin")
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlanner_DebugTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelDebug)

	planner, err := arbor.New(travelDomain(), arbor.WithLogger(logger))
	require.NoError(t, err)
	_, err = planner.PlanTask(context.Background(), newCity(8, 1), "travel", trip...)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "expanding task"), out)
	assert.True(t, strings.Contains(out, "operator rejected"), out)
	assert.True(t, strings.Contains(out, "backtracking"), out)
}

func TestHop(t *testing.T) {
	plan, ok, err := arbor.Hop(context.Background(), travelDomain(), newCity(1, 20), "travel", trip...)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[walk(me, home, park)]", plan.String())
}
