package arbor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
)

// Planner is the high-level entry point for the arbor library.
// It wraps the internal search engine and provides a simplified API for consumers.
// A Planner is safe for concurrent use.
type Planner[S any] struct {
	engine  *runtime.Engine[S]
	domain  *domain.Domain[S]
	logger  *slog.Logger
	timeout time.Duration
}

type config struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxDepth int
	maxNodes int
	timeout  time.Duration
}

// Option defines a functional option for configuring the Planner.
type Option func(*config)

// WithLogger sets a custom structured logger. The search trace is logged at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithMaxDepth bounds decomposition depth (default runtime.DefaultMaxDepth).
// Zero or negative disables the guard.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxNodes bounds the number of search nodes per call. Zero disables the budget.
func WithMaxNodes(nodes int) Option {
	return func(c *config) {
		c.maxNodes = nodes
	}
}

// WithTimeout applies a deadline to every planning call.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New creates a Planner over d. The domain is sealed: later registrations fail.
func New[S any](d *domain.Domain[S], opts ...Option) (*Planner[S], error) {
	if d == nil {
		return nil, errors.New("domain is required")
	}

	cfg := &config{
		logger:   logging.NewNop(),
		maxDepth: runtime.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	d.Seal()
	return &Planner[S]{
		engine: runtime.NewEngine(d,
			runtime.WithLogger[S](cfg.logger),
			runtime.WithLifecycleHooks[S](cfg.hooks),
			runtime.WithMaxDepth[S](cfg.maxDepth),
			runtime.WithMaxNodes[S](cfg.maxNodes),
		),
		domain:  d,
		logger:  cfg.logger,
		timeout: cfg.timeout,
	}, nil
}

// Domain returns the sealed domain this Planner searches.
func (p *Planner[S]) Domain() *domain.Domain[S] {
	return p.domain
}

// Plan decomposes goal, called with params, from state.
//
// When no decomposition exists the Result has Found == false and the error is nil.
// Errors are reserved for conditions that abort the search: unknown tasks,
// signature mismatches, failing callbacks, depth or node limits, and cancellation.
func (p *Planner[S]) Plan(ctx context.Context, state S, goal domain.TaskRef[S], params domain.Params) (*domain.Result[S], error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.engine.Plan(ctx, state, goal, params)
}

// PlanTask plans for the task registered under name.
func (p *Planner[S]) PlanTask(ctx context.Context, state S, name string, params ...domain.Value) (*domain.Result[S], error) {
	return p.Plan(ctx, state, domain.NameRef[S](name), domain.Params(params))
}

// Hop plans goal over d with default settings and returns the plan directly.
// ok is false when no plan exists.
func Hop[S any](ctx context.Context, d *domain.Domain[S], state S, goal string, params ...domain.Value) (plan domain.Plan[S], ok bool, err error) {
	p, err := New(d)
	if err != nil {
		return nil, false, err
	}
	res, err := p.PlanTask(ctx, state, goal, params...)
	if err != nil {
		return nil, false, fmt.Errorf("plan %q: %w", goal, err)
	}
	return res.Plan, res.Found, nil
}
