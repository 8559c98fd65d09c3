package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/schema"
)

// PlanOptions configures RunPlan.
type PlanOptions struct {
	Options
	Goal      string
	Args      []string
	StatePath string
	JSON      bool
	Graph     bool
	// Pretty renders markdown through glamour. Defaults to stdout being a terminal.
	Pretty *bool
}

// PlanOutput is the --json form of a planning result.
type PlanOutput struct {
	Goal   string        `json:"goal"`
	Params domain.Params `json:"params"`
	Found  bool          `json:"found"`
	Steps  []domain.Step `json:"steps"`
	Stats  domain.Stats  `json:"stats"`
	Graph  string        `json:"graph,omitempty"`
}

// solution is a planned goal together with the project it came from.
type solution struct {
	project *Project
	goal    string
	params  domain.Params
	result  *domain.Result[facts.Facts]
}

// solve loads the project, binds the goal arguments and plans.
func solve(ctx context.Context, opts PlanOptions, logger *slog.Logger) (*solution, error) {
	project, err := LoadProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	goal := opts.Goal
	if goal == "" {
		if goal, err = determineGoal(project); err != nil {
			return nil, err
		}
	}

	params, err := schema.BindStrings(project.Bundle.Domain, project.Bundle.Schema, goal, opts.Args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", goal, err)
	}

	state, err := project.LoadState(opts.StatePath)
	if err != nil {
		return nil, err
	}

	planner, err := NewPlanner(project, opts.Options, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Planning", "goal", goal, "params", params.String(), "relations", len(state))
	res, err := planner.PlanTask(ctx, state, goal, params...)
	if err != nil {
		return nil, err
	}
	logger.Info("Planning finished", "goal", goal, "found", res.Found, "nodes", res.Stats.Nodes)
	return &solution{project: project, goal: goal, params: params, result: res}, nil
}

// RunPlan loads the project, plans the goal and writes the result to out.
// A search that finds no plan is reported, not returned as an error.
func RunPlan(ctx context.Context, opts PlanOptions, out io.Writer) (*PlanOutput, error) {
	logger, err := NewLogger(opts.Options)
	if err != nil {
		return nil, err
	}

	sol, err := solve(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	project, goal, params, res := sol.project, sol.goal, sol.params, sol.result

	result := &PlanOutput{
		Goal:   goal,
		Params: params,
		Found:  res.Found,
		Steps:  res.Steps(),
		Stats:  res.Stats,
	}
	if result.Steps == nil {
		result.Steps = []domain.Step{}
	}
	if result.Params == nil {
		result.Params = domain.Params{}
	}
	if opts.Graph {
		result.Graph = graph.GenerateMermaid(project.Bundle.Domain, project.Bundle.Root,
			&graph.Overlay{Goal: goal, Steps: result.Steps})
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return result, enc.Encode(result)
	}

	md := tui.PlanMarkdown(res, params)
	if result.Graph != "" {
		md += "\n```mermaid\n" + result.Graph + "```\n"
	}

	pretty := tui.IsTerminal(os.Stdout)
	if opts.Pretty != nil {
		pretty = *opts.Pretty
	}
	if pretty {
		if rendered, err := tui.NewRenderer()(md); err == nil {
			md = rendered
		}
	}
	_, err = io.WriteString(out, md)
	return result, err
}
