// Package process executes plan steps as external commands.
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
)

// EnvPrefix prefixes the environment variables describing a step.
const EnvPrefix = "ARBOR_"

// ExitError reports a command that ran but failed.
type ExitError struct {
	Operator string
	Err      error
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("operator %s: execution failed: %v", e.Operator, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ". Stderr: " + s
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner dispatches steps to registered commands. It implements ports.StepDispatcher.
type Runner struct {
	registry map[string]ProcessConfig
	names    func(operator string) []string
	baseDir  string
	stdout   io.Writer
}

var _ ports.StepDispatcher = (*Runner)(nil)

type RunnerOption func(*Runner)

// WithRegistry registers every command of a loaded config.
func WithRegistry(commands map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for op, c := range commands {
			r.registry[op] = c
		}
	}
}

// WithParamNames exports parameters by name as well as by position,
// e.g. ARBOR_ARG_WHO next to ARBOR_ARG_0.
func WithParamNames(fn func(operator string) []string) RunnerOption {
	return func(r *Runner) { r.names = fn }
}

// WithBaseDir sets the working directory of every command.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) { r.baseDir = dir }
}

// WithOutput copies the standard output of every command to w.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) { r.stdout = w }
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{registry: make(map[string]ProcessConfig)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds operator to command.
func (r *Runner) Register(operator string, command string, args ...string) {
	r.registry[operator] = ProcessConfig{Operator: operator, Command: command, Args: args}
}

// Has reports whether operator has a command.
func (r *Runner) Has(operator string) bool {
	_, ok := r.registry[operator]
	return ok
}

// Execute runs the command bound to operator. The step is described in the
// environment as ARBOR_OPERATOR, ARBOR_ARGC and ARBOR_ARG_<i>.
func (r *Runner) Execute(ctx context.Context, operator string, params domain.Params) error {
	proc, ok := r.registry[operator]
	if !ok {
		return fmt.Errorf("%w: %s", registry.ErrHandlerNotFound, operator)
	}

	args := append([]string(nil), proc.Args...)
	if proc.AppendParams {
		for _, p := range params {
			args = append(args, p.String())
		}
	}

	cmd := exec.CommandContext(ctx, proc.Command, args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), r.env(proc, operator, params)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.stdout)
	}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &ExitError{Operator: operator, Err: err, Stderr: stderr.String()}
	}
	return nil
}

func (r *Runner) env(proc ProcessConfig, operator string, params domain.Params) []string {
	env := []string{
		EnvPrefix + "OPERATOR=" + operator,
		EnvPrefix + "ARGC=" + strconv.Itoa(len(params)),
	}
	var names []string
	if r.names != nil {
		names = r.names(operator)
	}
	for i, p := range params {
		val := p.String()
		env = append(env, fmt.Sprintf("%sARG_%d=%s", EnvPrefix, i, val))
		if i < len(names) {
			env = append(env, fmt.Sprintf("%sARG_%s=%s", EnvPrefix, strings.ToUpper(names[i]), val))
		}
	}
	for k, v := range proc.Environment {
		env = append(env, k+"="+v)
	}
	return env
}
