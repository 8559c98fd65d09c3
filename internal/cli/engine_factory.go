package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/observability"
)

// Options contains the configuration shared by the planning commands.
type Options struct {
	Dir      string
	Debug    bool
	LogLevel string
	MaxDepth int
	MaxNodes int
	Timeout  time.Duration
}

// Project is a loaded domain directory or file.
type Project struct {
	Path string
	// Dir is Path itself or, for a single file, its directory.
	Dir    string
	Bundle *file.Bundle
	// StatePath is the state file found next to the domain, if any.
	StatePath string
}

// LoadProject compiles the domain at path, which may be a file or a directory.
func LoadProject(path string) (*Project, error) {
	b, err := file.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading domain: %w", err)
	}
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	p := &Project{Path: path, Dir: dir, Bundle: b}
	if state, ok := file.FindState(dir); ok {
		p.StatePath = state
	}
	return p, nil
}

// LoadState reads path, falling back to the project state file and then to
// an empty fact base.
func (p *Project) LoadState(path string) (facts.Facts, error) {
	if path == "" {
		path = p.StatePath
	}
	if path == "" {
		return facts.New(), nil
	}
	state, err := file.LoadFacts(path)
	if err != nil {
		return nil, fmt.Errorf("error loading state: %w", err)
	}
	return state, nil
}

// NewPlanner initializes a planner with standard CLI conventions.
func NewPlanner(p *Project, opts Options, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*arbor.Planner[facts.Facts], error) {
	plannerOpts := []arbor.Option{arbor.WithLogger(logger)}

	if opts.Debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	if len(hooks) > 0 {
		plannerOpts = append(plannerOpts, arbor.WithLifecycleHooks(observability.Compose(hooks...)))
	}
	if opts.MaxDepth > 0 {
		plannerOpts = append(plannerOpts, arbor.WithMaxDepth(opts.MaxDepth))
	}
	if opts.MaxNodes > 0 {
		plannerOpts = append(plannerOpts, arbor.WithMaxNodes(opts.MaxNodes))
	}
	if opts.Timeout > 0 {
		plannerOpts = append(plannerOpts, arbor.WithTimeout(opts.Timeout))
	}

	planner, err := arbor.New(p.Bundle.Domain, plannerOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing planner: %w", err)
	}
	return planner, nil
}

// determineGoal picks the goal when none is given: the declared root, a task
// named after the project directory, or the only compound task.
func determineGoal(p *Project) (string, error) {
	if p.Bundle.Root != "" {
		return p.Bundle.Root, nil
	}

	base := filepath.Base(p.Path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if _, ok := p.Bundle.Domain.Task(base); ok {
		return base, nil
	}

	tasks := p.Bundle.Domain.Tasks()
	if len(tasks) == 1 {
		return tasks[0].Name, nil
	}
	return "", fmt.Errorf("no goal given and %s declares no root task", p.Path)
}
