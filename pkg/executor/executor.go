// Package executor carries out submitted plans step by step, persisting a
// cursor after every step so that execution can stop and resume.
//
// The executor never re-plans: when a handler fails, execution stops with the
// cursor on the failing step and the caller decides what to do next.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/google/uuid"
)

// StepError reports the step at which execution stopped.
type StepError struct {
	Agent string
	Index int
	Step  domain.Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("agent %s: step %d (%s): %v", e.Agent, e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Executor runs plan records against a StepDispatcher.
// Safe for concurrent use; runs for the same agent are serialised.
type Executor struct {
	sessions    *session.Manager
	dispatcher  ports.StepDispatcher
	interceptor Interceptor
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Executor.
type Option func(*Executor)

// WithLogger configures a logger for the Executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithInterceptor installs a policy consulted before every step.
func WithInterceptor(i Interceptor) Option {
	return func(e *Executor) {
		e.interceptor = i
	}
}

// New creates an executor storing progress through sessions.
func New(sessions *session.Manager, dispatcher ports.StepDispatcher, opts ...Option) *Executor {
	e := &Executor{
		sessions:    sessions,
		dispatcher:  dispatcher,
		interceptor: AutoApprove(),
		logger:      logging.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check verifies that every step has a handler, when the dispatcher can tell.
// All missing handlers are reported together.
func (e *Executor) Check(steps []domain.Step) error {
	known, ok := e.dispatcher.(interface{ Has(string) bool })
	if !ok {
		return nil
	}
	var errs []error
	for i, s := range steps {
		if !known.Has(s.Operator) {
			errs = append(errs, fmt.Errorf("step %d: %w: %s", i, registry.ErrHandlerNotFound, s.Operator))
		}
	}
	return errors.Join(errs...)
}

// Submit stores a new plan for agent, replacing any plan it had.
func (e *Executor) Submit(ctx context.Context, agent, goal string, steps []domain.Step) (*domain.PlanRecord, error) {
	if agent == "" {
		return nil, fmt.Errorf("agent: %w", domain.ErrEmptyName)
	}
	if err := e.Check(steps); err != nil {
		return nil, err
	}
	now := e.now()
	rec := &domain.PlanRecord{
		ID:        uuid.NewString(),
		Agent:     agent,
		Goal:      goal,
		Steps:     steps,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Save(ctx, agent, rec); err != nil {
		return nil, fmt.Errorf("failed to submit plan: %w", err)
	}
	e.logger.Info("plan submitted", "agent", agent, "plan_id", rec.ID, "goal", goal, "steps", len(steps))
	return rec.Clone(), nil
}

// Run executes the agent's remaining steps in order. The cursor is saved
// after each successful step. On failure the returned error is a *StepError
// and the cursor stays on the failing step.
func (e *Executor) Run(ctx context.Context, agent string) (*domain.PlanRecord, error) {
	var out *domain.PlanRecord
	err := e.sessions.WithLock(ctx, agent, func(ctx context.Context) error {
		store := e.sessions.Store()
		rec, err := store.Load(ctx, agent)
		if err != nil {
			return err
		}
		defer func() { out = rec }()

		if rec.Cursor < 0 || rec.Cursor > len(rec.Steps) {
			return fmt.Errorf("agent %s: %w: %d of %d steps", agent, ErrInvalidCursor, rec.Cursor, len(rec.Steps))
		}

		for !rec.Done() {
			i := rec.Cursor
			step := rec.Steps[i]
			if err := ctx.Err(); err != nil {
				return &StepError{Agent: agent, Index: i, Step: step, Err: err}
			}

			allowed, err := e.interceptor(ctx, step)
			if err != nil {
				return &StepError{Agent: agent, Index: i, Step: step, Err: err}
			}
			if !allowed {
				return &StepError{Agent: agent, Index: i, Step: step, Err: ErrDenied}
			}

			e.logger.Debug("executing step", "agent", agent, "plan_id", rec.ID, "index", i, "step", step.String())
			if err := e.dispatcher.Execute(ctx, step.Operator, step.Params); err != nil {
				e.logger.Warn("step failed", "agent", agent, "plan_id", rec.ID, "index", i, "step", step.String(), "err", err)
				return &StepError{Agent: agent, Index: i, Step: step, Err: err}
			}

			rec.Cursor++
			rec.UpdatedAt = e.now()
			if err := store.Save(ctx, agent, rec); err != nil {
				return fmt.Errorf("failed to save progress for %s: %w", agent, err)
			}
		}
		e.logger.Info("plan completed", "agent", agent, "plan_id", rec.ID, "steps", len(rec.Steps))
		return nil
	})
	return out, err
}

// Status returns the agent's plan and its progress.
func (e *Executor) Status(ctx context.Context, agent string) (*domain.PlanRecord, error) {
	return e.sessions.Load(ctx, agent)
}

// Cancel drops the agent's plan.
func (e *Executor) Cancel(ctx context.Context, agent string) error {
	return e.sessions.Delete(ctx, agent)
}
