package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// world is a tiny cloneable state used across engine tests.
type world struct {
	Count int
	Marks map[string]int
}

func newWorld() world { return world{Marks: map[string]int{}} }

func (w world) Clone() world {
	marks := make(map[string]int, len(w.Marks))
	for k, v := range w.Marks {
		marks[k] = v
	}
	return world{Count: w.Count, Marks: marks}
}

func mustOp(t *testing.T, d *domain.Domain[world], name string, pre domain.Precondition[world], eff domain.Effect[world], sig domain.Signature) *domain.Operator[world] {
	t.Helper()
	op, err := d.RegisterOperator(name, pre, eff, sig)
	require.NoError(t, err)
	return op
}

func mustTask(t *testing.T, d *domain.Domain[world], name string, methods ...domain.Method[world]) *domain.CompoundTask[world] {
	t.Helper()
	task, err := d.RegisterCompoundTask(name, methods...)
	require.NoError(t, err)
	return task
}

func never(world, domain.Params) (bool, error) { return false, nil }

func mark(label string) domain.Effect[world] {
	return func(w world, _ domain.Params) (world, error) {
		w.Marks[label]++
		w.Count++
		return w, nil
	}
}

func TestEngine_EmptyMethodYieldsEmptyPlan(t *testing.T) {
	d := domain.New[world]()
	mustTask(t, d, "noop", domain.Method[world]{Name: "done"})

	eng := runtime.NewEngine(d)
	res, err := eng.Plan(context.Background(), newWorld(), d.Ref("noop"), nil)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Empty(t, res.Plan)
	assert.Equal(t, 1, res.Stats.Expansions)
}

func TestEngine_OperatorPreconditionFailureIsNoPlan(t *testing.T) {
	d := domain.New[world]()
	mustOp(t, d, "blocked", never, mark("blocked"), nil)

	res, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("blocked"), nil)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 1, res.Stats.Rejections)
}

func TestEngine_BacktracksToNextMethod(t *testing.T) {
	d := domain.New[world]()
	a := mustOp(t, d, "a", nil, mark("a"), nil)
	mustOp(t, d, "blocked", never, mark("blocked"), nil)
	b := mustOp(t, d, "b", nil, mark("b"), nil)

	mustTask(t, d, "goal",
		domain.Method[world]{Name: "first", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(a), d.Ref("blocked")}},
		domain.Method[world]{Name: "second", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(b)}},
	)

	res, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("goal"), nil)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, []string{"b"}, res.Plan.Names())
	assert.Equal(t, 1, res.Stats.Backtracks)
}

func TestEngine_BranchIsolation(t *testing.T) {
	// The first method mutates the state through "a" and then fails. The second
	// method must observe the untouched snapshot.
	d := domain.New[world]()
	a := mustOp(t, d, "a", nil, mark("a"), nil)
	mustOp(t, d, "blocked", never, nil, nil)
	clean := mustOp(t, d, "clean", func(w world, _ domain.Params) (bool, error) {
		return w.Marks["a"] == 0 && w.Count == 0, nil
	}, mark("clean"), nil)

	mustTask(t, d, "goal",
		domain.Method[world]{Name: "dirty", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(a), d.Ref("blocked")}},
		domain.Method[world]{Name: "clean", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(clean)}},
	)

	start := newWorld()
	res, err := runtime.NewEngine(d).Plan(context.Background(), start, d.Ref("goal"), nil)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, []string{"clean"}, res.Plan.Names())
	assert.Empty(t, start.Marks, "caller's state must not be mutated")
}

func TestEngine_Determinism(t *testing.T) {
	d := domain.New[world]()
	a := mustOp(t, d, "a", nil, mark("a"), nil)
	b := mustOp(t, d, "b", nil, mark("b"), nil)
	mustTask(t, d, "goal",
		domain.Method[world]{Name: "ab", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(a), domain.OperatorRef(b)}},
	)
	eng := runtime.NewEngine(d)

	first, err := eng.Plan(context.Background(), newWorld(), d.Ref("goal"), nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := eng.Plan(context.Background(), newWorld(), d.Ref("goal"), nil)
		require.NoError(t, err)
		assert.Equal(t, first.Plan.Steps(), again.Plan.Steps())
	}
}

func TestEngine_UnknownTopLevelTask(t *testing.T) {
	d := domain.New[world]()
	_, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("nope"), nil)

	var unknown *domain.UnknownTaskError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
	assert.Empty(t, unknown.Parent)
}

func TestEngine_UnknownNestedTaskIsFatal(t *testing.T) {
	d := domain.New[world]()
	fallback := mustOp(t, d, "fallback", nil, mark("fallback"), nil)

	var secondTried bool
	mustTask(t, d, "goal",
		domain.Method[world]{Name: "broken", Subtasks: []domain.TaskRef[world]{d.Ref("typo")}},
		domain.Method[world]{
			Name: "valid",
			Precondition: func(world, domain.Params) (bool, error) {
				secondTried = true
				return true, nil
			},
			Subtasks: []domain.TaskRef[world]{domain.OperatorRef(fallback)},
		},
	)

	_, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("goal"), nil)
	var unknown *domain.UnknownTaskError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "typo", unknown.Name)
	assert.Equal(t, "goal", unknown.Parent)
	assert.False(t, secondTried, "later methods must not be tried after a fatal error")
}

func TestEngine_SignatureMismatchIsFatal(t *testing.T) {
	d := domain.New[world]()
	walk := mustOp(t, d, "walk", nil, mark("walk"), domain.MustSignature(domain.KindText, domain.KindText))
	fallback := mustOp(t, d, "fallback", nil, mark("fallback"), nil)

	mustTask(t, d, "goal",
		domain.Method[world]{Name: "bad", Subtasks: []domain.TaskRef[world]{
			domain.OperatorRef(walk).With(domain.Text("home")),
		}},
		domain.Method[world]{Name: "ok", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(fallback)}},
	)

	_, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("goal"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSignature)

	var sigErr *domain.SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "walk", sigErr.Name)

	var arity *domain.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 2, arity.Want)
	assert.Equal(t, 1, arity.Got)
}

func TestEngine_TaskSignatureChecked(t *testing.T) {
	d := domain.New[world]()
	task := &domain.CompoundTask[world]{
		Name:      "typed",
		Signature: domain.MustSignature(domain.KindInt),
		Methods:   []domain.Method[world]{{Name: "done"}},
	}
	require.NoError(t, d.AddCompoundTask(task))
	eng := runtime.NewEngine(d)

	_, err := eng.Plan(context.Background(), newWorld(), d.Ref("typed"), domain.Params{domain.Text("x")})
	var mismatch *domain.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, domain.KindInt, mismatch.Want)

	res, err := eng.Plan(context.Background(), newWorld(), d.Ref("typed"), domain.Params{domain.Int(1)})
	require.NoError(t, err)
	assert.True(t, res.Found)
}

func TestEngine_DepthGuard(t *testing.T) {
	d := domain.New[world]()
	mustTask(t, d, "forever", domain.Method[world]{
		Name:     "again",
		Subtasks: []domain.TaskRef[world]{domain.NameRef[world]("forever")},
	})

	_, err := runtime.NewEngine(d, runtime.WithMaxDepth[world](50)).
		Plan(context.Background(), newWorld(), d.Ref("forever"), nil)

	var depthErr *domain.DepthExceededError
	require.ErrorAs(t, err, &depthErr)
	assert.Equal(t, 50, depthErr.Limit)
	assert.Equal(t, "forever", depthErr.Task)
	assert.ErrorIs(t, err, domain.ErrDepthExceeded)
}

func TestEngine_DefaultDepthGuardIsReachable(t *testing.T) {
	d := domain.New[world]()
	mustTask(t, d, "forever", domain.Method[world]{
		Name:     "again",
		Subtasks: []domain.TaskRef[world]{domain.NameRef[world]("forever")},
	})

	eng := runtime.NewEngine(d)
	assert.Equal(t, runtime.DefaultMaxDepth, eng.MaxDepth())
	_, err := eng.Plan(context.Background(), newWorld(), d.Ref("forever"), nil)
	assert.ErrorIs(t, err, domain.ErrDepthExceeded)
}

func TestEngine_NodeBudget(t *testing.T) {
	d := domain.New[world]()
	mustTask(t, d, "forever", domain.Method[world]{
		Name:     "again",
		Subtasks: []domain.TaskRef[world]{domain.NameRef[world]("forever")},
	})

	_, err := runtime.NewEngine(d, runtime.WithMaxDepth[world](0), runtime.WithMaxNodes[world](25)).
		Plan(context.Background(), newWorld(), d.Ref("forever"), nil)

	var budget *domain.BudgetExceededError
	require.ErrorAs(t, err, &budget)
	assert.Equal(t, 25, budget.Limit)
}

func TestEngine_Cancellation(t *testing.T) {
	d := domain.New[world]()
	mustTask(t, d, "forever", domain.Method[world]{
		Name:     "again",
		Subtasks: []domain.TaskRef[world]{domain.NameRef[world]("forever")},
	})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	hooks := domain.LifecycleHooks{
		OnExpand: func(context.Context, *domain.ExpandEvent) {
			calls++
			if calls == 10 {
				cancel()
			}
		},
	}

	_, err := runtime.NewEngine(d, runtime.WithMaxDepth[world](0), runtime.WithLifecycleHooks[world](hooks)).
		Plan(ctx, newWorld(), d.Ref("forever"), nil)

	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, calls)
}

func TestEngine_CallbackErrorIsFatal(t *testing.T) {
	d := domain.New[world]()
	boom := errors.New("boom")
	mustOp(t, d, "explode", func(world, domain.Params) (bool, error) { return false, boom }, nil, nil)

	_, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("explode"), nil)
	assert.ErrorIs(t, err, boom)
	var cbErr *domain.CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, domain.PhasePrecondition, cbErr.Phase)
}

func TestEngine_ArgumentPolicies(t *testing.T) {
	d := domain.New[world]()
	add := mustOp(t, d, "add", nil, func(w world, p domain.Params) (world, error) {
		n, err := p.Int(0)
		if err != nil {
			return w, err
		}
		w.Count += n
		return w, nil
	}, domain.MustSignature(domain.KindInt))

	double := domain.OperatorRef(add).Map(func(w world, parent domain.Params) (domain.Params, error) {
		n, err := parent.Int(0)
		if err != nil {
			return nil, err
		}
		return domain.Params{domain.Int(n * 2)}, nil
	})

	mustTask(t, d, "goal", domain.Method[world]{
		Name: "mix",
		Subtasks: []domain.TaskRef[world]{
			domain.OperatorRef(add),                      // forwards parent params
			domain.OperatorRef(add).With(domain.Int(10)), // fixed
			double,                                       // computed
		},
	})

	res, err := runtime.NewEngine(d).Plan(context.Background(), newWorld(), d.Ref("goal"), domain.Params{domain.Int(3)})
	require.NoError(t, err)
	require.True(t, res.Found)

	steps := res.Plan.Steps()
	require.Len(t, steps, 3)
	assert.True(t, steps[0].Params.Equal(domain.Params{domain.Int(3)}))
	assert.True(t, steps[1].Params.Equal(domain.Params{domain.Int(10)}))
	assert.True(t, steps[2].Params.Equal(domain.Params{domain.Int(6)}))

	final, err := res.Plan.Replay(newWorld())
	require.NoError(t, err)
	assert.Equal(t, 19, final.Count)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	d := domain.New[world]()
	a := mustOp(t, d, "a", nil, mark("a"), nil)
	mustOp(t, d, "blocked", never, nil, nil)
	mustTask(t, d, "goal",
		domain.Method[world]{Name: "first", Subtasks: []domain.TaskRef[world]{d.Ref("blocked")}},
		domain.Method[world]{Name: "skipped", Precondition: never},
		domain.Method[world]{Name: "second", Subtasks: []domain.TaskRef[world]{domain.OperatorRef(a)}},
	)

	var expanded, backtracked []string
	var methods []string
	var applied, rejected []string
	hooks := domain.LifecycleHooks{
		OnExpand: func(_ context.Context, e *domain.ExpandEvent) {
			expanded = append(expanded, e.Task)
			assert.Equal(t, domain.EventExpand, e.Type)
			assert.Equal(t, "goal", e.Goal)
		},
		OnMethod: func(_ context.Context, e *domain.MethodEvent) {
			if e.Applicable {
				methods = append(methods, e.Method)
			}
		},
		OnOperator: func(_ context.Context, e *domain.OperatorEvent) {
			if e.Applied {
				applied = append(applied, e.Operator)
			} else {
				rejected = append(rejected, e.Operator)
			}
		},
		OnBacktrack: func(_ context.Context, e *domain.BacktrackEvent) {
			backtracked = append(backtracked, e.Method)
		},
	}

	res, err := runtime.NewEngine(d, runtime.WithLifecycleHooks[world](hooks)).
		Plan(context.Background(), newWorld(), d.Ref("goal"), nil)
	require.NoError(t, err)
	require.True(t, res.Found)

	assert.Equal(t, []string{"goal"}, expanded)
	assert.Equal(t, []string{"first", "second"}, methods)
	assert.Equal(t, []string{"blocked"}, rejected)
	assert.Equal(t, []string{"a"}, applied)
	assert.Equal(t, []string{"first"}, backtracked)
}
