package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/process"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

// DefaultCommandsFile is looked up in the project directory when no
// commands file is given.
const DefaultCommandsFile = "commands.yaml"

// ExecOptions configures RunExecute.
type ExecOptions struct {
	PlanOptions
	Agent        string
	CommandsPath string
	// DryRun prints each step instead of running its command.
	DryRun bool
	// Resume continues the agent's stored plan without planning again.
	Resume bool
	// RedisAddr selects the redis plan store and lock. Empty keeps plans in memory.
	RedisAddr string
	// StoreKey, when set, encrypts stored plans with AES-256-GCM.
	StoreKey []byte
}

// RunExecute plans the goal, submits the plan for the agent and executes it
// step by step. Execution stops at the first failing step; the stored cursor
// lets a later --resume continue from there.
func RunExecute(ctx context.Context, opts ExecOptions, out io.Writer) (*domain.PlanRecord, error) {
	logger, err := NewLogger(opts.Options)
	if err != nil {
		return nil, err
	}
	if opts.Agent == "" {
		opts.Agent = "default"
	}

	project, err := LoadProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	dispatcher, err := newDispatcher(project, opts, out)
	if err != nil {
		return nil, err
	}

	store, closeStore, lockers, err := newPlanStore(opts)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	sessions := session.NewManager(store, append(lockers, session.WithLogger(logger))...)
	exec := executor.New(sessions, dispatcher, executor.WithLogger(logger))

	if !opts.Resume {
		sol, err := solve(ctx, opts.PlanOptions, logger)
		if err != nil {
			return nil, err
		}
		if !sol.result.Found {
			return nil, fmt.Errorf("no plan found for %s(%s)", sol.goal, sol.params)
		}
		if _, err := exec.Submit(ctx, opts.Agent, sol.goal, sol.result.Steps()); err != nil {
			return nil, err
		}
	}

	rec, err := exec.Run(ctx, opts.Agent)
	var stepErr *executor.StepError
	switch {
	case errors.As(err, &stepErr):
		printSystemMessage(out, "Stopped at step %d (%s): %v", stepErr.Index+1, stepErr.Step, stepErr.Err)
		return rec, err
	case err != nil:
		return rec, err
	}
	printSystemMessage(out, "Completed %d/%d steps of %s for %s.", rec.Cursor, len(rec.Steps), rec.Goal, opts.Agent)
	return rec, nil
}

// newDispatcher maps operators to commands, or to printers for a dry run.
func newDispatcher(p *Project, opts ExecOptions, out io.Writer) (ports.StepDispatcher, error) {
	if opts.DryRun {
		reg := registry.NewRegistry()
		for _, op := range p.Bundle.Domain.Operators() {
			name := op.Name
			reg.Register(name, func(_ context.Context, params domain.Params) error {
				_, err := fmt.Fprintf(out, "would run %s(%s)\n", name, params)
				return err
			})
		}
		return reg, nil
	}

	baseDir := p.Dir
	path := opts.CommandsPath
	if path == "" {
		path = filepath.Join(baseDir, DefaultCommandsFile)
	}
	commands, err := process.LoadCommands(path)
	if err != nil {
		return nil, err
	}
	return process.NewRunner(
		process.WithRegistry(commands),
		process.WithBaseDir(baseDir),
		process.WithOutput(out),
		process.WithParamNames(func(op string) []string {
			s, _ := p.Bundle.Schema(op)
			return s.Names()
		}),
	), nil
}

// newPlanStore builds the plan store and, for redis, the matching locker.
func newPlanStore(opts ExecOptions) (ports.PlanStore, func(), []session.Option, error) {
	var (
		store   ports.PlanStore
		closeFn = func() {}
		sopts   []session.Option
	)
	if opts.RedisAddr != "" {
		rs := redis.New(opts.RedisAddr, "", 0)
		store = rs
		closeFn = func() { _ = rs.Close() }
		sopts = append(sopts, session.WithLocker(redis.NewLocker(rs.Client(), "arbor:lock:")))
	} else {
		store = memory.NewStore()
	}

	if len(opts.StoreKey) > 0 {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: opts.StoreKey})
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		store = middleware.Chain(store, seal)
	}
	return store, closeFn, sopts, nil
}
