package main

import (
	"context"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [goal]",
	Short: "Find a plan for a goal task",
	Long: `Loads the domain, reads the initial state and searches for a plan.
Arguments are positional and parsed through the goal's declared parameter types:

  arbor plan travel --dir examples/travel --arg me --arg home --arg park

When no goal is given the domain root is used. A state.yaml next to the domain
is read unless --state points elsewhere.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.PlanOptions{Options: baseOptions(cmd)}
		if len(args) > 0 {
			opts.Goal = args[0]
		}
		opts.Args, _ = cmd.Flags().GetStringArray("arg")
		opts.StatePath, _ = cmd.Flags().GetString("state")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Graph, _ = cmd.Flags().GetBool("graph")
		opts.Timeout, _ = cmd.Flags().GetDuration("timeout")
		opts.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
		opts.MaxNodes, _ = cmd.Flags().GetInt("max-nodes")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		_, err := cli.RunPlan(sigCtx, opts, os.Stdout)
		return cli.HandleExecutionError(os.Stderr, sigCtx, err)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringArray("arg", nil, "Goal argument, repeated in parameter order")
	planCmd.Flags().String("state", "", "Initial state file (YAML or JSON)")
	planCmd.Flags().Bool("json", false, "Print the result as JSON")
	planCmd.Flags().Bool("graph", false, "Include the decomposition graph with the plan highlighted")
	planCmd.Flags().Duration("timeout", 0, "Abort the search after this long (0 disables)")
	planCmd.Flags().Int("max-depth", 0, "Maximum decomposition depth (0 uses the default)")
	planCmd.Flags().Int("max-nodes", 0, "Maximum search nodes (0 is unbounded)")
}
