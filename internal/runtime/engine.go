package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultMaxDepth bounds decomposition when no limit is configured.
const DefaultMaxDepth = 1024

// Engine is the depth-first, backtracking HTN search over a domain.
type Engine[S any] struct {
	domain   *domain.Domain[S]
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxDepth int
	maxNodes int
}

// EngineOption configures the Engine.
type EngineOption[S any] func(*Engine[S])

// WithLogger sets the logger used for the search trace.
func WithLogger[S any](logger *slog.Logger) EngineOption[S] {
	return func(e *Engine[S]) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks[S any](hooks domain.LifecycleHooks) EngineOption[S] {
	return func(e *Engine[S]) {
		e.hooks = hooks
	}
}

// WithMaxDepth sets the decomposition depth limit. Zero or negative disables it.
func WithMaxDepth[S any](depth int) EngineOption[S] {
	return func(e *Engine[S]) {
		e.maxDepth = depth
	}
}

// WithMaxNodes bounds the number of agenda states visited. Zero or negative disables it.
func WithMaxNodes[S any](nodes int) EngineOption[S] {
	return func(e *Engine[S]) {
		e.maxNodes = nodes
	}
}

// NewEngine creates a search engine over d.
func NewEngine[S any](d *domain.Domain[S], opts ...EngineOption[S]) *Engine[S] {
	e := &Engine[S]{
		domain:   d,
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Domain returns the domain the engine searches.
func (e *Engine[S]) Domain() *domain.Domain[S] { return e.domain }

// MaxDepth returns the configured depth limit.
func (e *Engine[S]) MaxDepth() int { return e.maxDepth }

// Plan decomposes goal, called with params, starting from state.
//
// It returns a Result with Found == false when every alternative was exhausted.
// Unknown tasks, signature mismatches, callback failures, the depth and node
// limits, and context cancellation abort the whole search with an error.
func (e *Engine[S]) Plan(ctx context.Context, state S, goal domain.TaskRef[S], params domain.Params) (*domain.Result[S], error) {
	start := time.Now()
	s := &search[S]{
		ctx:   ctx,
		eng:   e,
		goal:  goal.Name(),
		trace: e.logger.Enabled(ctx, slog.LevelDebug),
	}

	args, err := goal.Args(state, params)
	if err != nil {
		return nil, &domain.CallbackError{Name: goal.Name(), Phase: domain.PhaseArgs, Err: err}
	}
	root := (*agenda[S])(nil).push(goal, args, "")

	found, err := s.seek(state, root, nil, 0)
	s.stats.Duration = time.Since(start)
	if err != nil {
		e.logger.Debug("planning aborted", "goal", s.goal, "nodes", s.stats.Nodes, "err", err)
		return nil, err
	}

	res := &domain.Result[S]{Goal: s.goal, Found: found != nil, Stats: s.stats}
	if found != nil {
		res.Plan = found.plan()
	}
	e.logger.Debug("planning finished",
		"goal", s.goal,
		"found", res.Found,
		"steps", len(res.Plan),
		"nodes", s.stats.Nodes,
		"backtracks", s.stats.Backtracks,
		"duration", s.stats.Duration,
	)
	return res, nil
}

// search holds the per-call mutable bookkeeping. The agenda and partial plan
// are passed by value through the recursion and never mutated.
type search[S any] struct {
	ctx   context.Context
	eng   *Engine[S]
	goal  string
	stats domain.Stats
	trace bool
}

// seek returns the completed plan, nil when this branch has no plan, or an
// error that must abort the whole search.
func (s *search[S]) seek(state S, tasks *agenda[S], plan *trail[S], depth int) (*result[S], error) {
	if err := s.ctx.Err(); err != nil {
		return nil, &domain.CancelledError{Cause: err}
	}
	if tasks == nil {
		return &result[S]{trail: plan}, nil
	}

	e := s.eng
	if e.maxDepth > 0 && depth > e.maxDepth {
		return nil, &domain.DepthExceededError{Limit: e.maxDepth, Task: tasks.ref.Name()}
	}
	s.stats.Nodes++
	if e.maxNodes > 0 && s.stats.Nodes > e.maxNodes {
		return nil, &domain.BudgetExceededError{Limit: e.maxNodes}
	}
	if depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}

	ref, err := s.resolve(tasks)
	if err != nil {
		return nil, err
	}

	switch ref.Kind() {
	case domain.RefOperator:
		return s.applyOperator(state, ref.Operator(), tasks, plan, depth)
	case domain.RefCompound:
		return s.expand(state, ref.Compound(), tasks, plan, depth)
	default:
		return nil, &domain.UnknownTaskError{Name: ref.Name(), Parent: tasks.parent}
	}
}

func (s *search[S]) resolve(item *agenda[S]) (domain.TaskRef[S], error) {
	ref := item.ref
	if ref.Kind() != domain.RefName {
		return ref, nil
	}
	resolved, err := s.eng.domain.Resolve(ref.Name())
	if err != nil {
		var unknown *domain.UnknownTaskError
		if errors.As(err, &unknown) {
			unknown.Parent = item.parent
		}
		return resolved, err
	}
	return resolved, nil
}

func (s *search[S]) applyOperator(state S, op *domain.Operator[S], item *agenda[S], plan *trail[S], depth int) (*result[S], error) {
	params, err := op.Signature.Bind(item.params)
	if err != nil {
		return nil, &domain.SignatureError{Subject: "operator", Name: op.Name, Err: err}
	}

	next, ok, err := op.Apply(state, params)
	if s.eng.hooks.OnOperator != nil {
		s.eng.hooks.OnOperator(s.ctx, &domain.OperatorEvent{
			EventBase: s.base(domain.EventOperator, depth),
			Operator:  op.Name,
			Params:    params,
			Applied:   ok && err == nil,
		})
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		s.stats.Rejections++
		if s.trace {
			s.eng.logger.Debug("operator rejected", "operator", op.Name, "params", params.String(), "depth", depth)
		}
		return nil, nil
	}
	if s.trace {
		s.eng.logger.Debug("operator applied", "operator", op.Name, "params", params.String(), "depth", depth)
	}

	return s.seek(next, item.next, plan.append(domain.Action[S]{Operator: op, Params: params}), depth+1)
}

func (s *search[S]) expand(state S, task *domain.CompoundTask[S], item *agenda[S], plan *trail[S], depth int) (*result[S], error) {
	params := item.params
	if task.Signature != nil {
		bound, err := task.Signature.Bind(params)
		if err != nil {
			return nil, &domain.SignatureError{Subject: "task", Name: task.Name, Err: err}
		}
		params = bound
	}

	s.stats.Expansions++
	hooks := s.eng.hooks
	if hooks.OnExpand != nil {
		hooks.OnExpand(s.ctx, &domain.ExpandEvent{
			EventBase: s.base(domain.EventExpand, depth),
			Task:      task.Name,
			Params:    params,
			Methods:   len(task.Methods),
		})
	}
	if s.trace {
		s.eng.logger.Debug("expanding task", "task", task.Name, "params", params.String(), "depth", depth, "pending", item.next.size())
	}

	for i := range task.Methods {
		m := &task.Methods[i]

		if m.Signature != nil {
			if _, err := m.Signature.Bind(params); err != nil {
				return nil, &domain.SignatureError{Subject: "method", Name: task.Name + "." + m.Name, Err: err}
			}
		}

		ok, err := m.Applicable(state, params)
		if err != nil {
			return nil, err
		}
		if hooks.OnMethod != nil {
			hooks.OnMethod(s.ctx, &domain.MethodEvent{
				EventBase:  s.base(domain.EventMethod, depth),
				Task:       task.Name,
				Method:     m.Name,
				Applicable: ok,
			})
		}
		if !ok {
			continue
		}
		if s.trace {
			s.eng.logger.Debug("trying method", "task", task.Name, "method", m.Name, "depth", depth)
		}

		args, err := m.Expand(state, params)
		if err != nil {
			return nil, err
		}
		tasks := item.next
		for j := len(m.Subtasks) - 1; j >= 0; j-- {
			tasks = tasks.push(m.Subtasks[j], args[j], task.Name)
		}

		found, err := s.seek(state, tasks, plan, depth+1)
		if err != nil || found != nil {
			return found, err
		}

		s.stats.Backtracks++
		if hooks.OnBacktrack != nil {
			hooks.OnBacktrack(s.ctx, &domain.BacktrackEvent{
				EventBase: s.base(domain.EventBacktrack, depth),
				Task:      task.Name,
				Method:    m.Name,
			})
		}
		if s.trace {
			s.eng.logger.Debug("backtracking", "task", task.Name, "method", m.Name, "depth", depth)
		}
	}
	return nil, nil
}

func (s *search[S]) base(t domain.EventType, depth int) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Goal: s.goal, Depth: depth}
}

// result wraps a successful trail; a nil trail is the empty plan.
type result[S any] struct {
	trail *trail[S]
}

func (r *result[S]) plan() domain.Plan[S] { return r.trail.plan() }
