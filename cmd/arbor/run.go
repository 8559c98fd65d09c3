package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// storeKeyEnv holds the hex encoded AES-256 key for stored plans.
const storeKeyEnv = "ARBOR_STORE_KEY"

var runCmd = &cobra.Command{
	Use:   "run [goal]",
	Short: "Plan a goal and execute the plan",
	Long: `Plans like "arbor plan" and then runs the command bound to each step in
commands.yaml, stopping at the first failure.

  arbor run travel --dir examples/travel --arg me --arg home --arg park

With --redis the plan and its cursor are stored in redis, and --resume
continues the agent's stored plan instead of planning again. Set
ARBOR_STORE_KEY to a 64 character hex key to encrypt stored plans.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ExecOptions{PlanOptions: cli.PlanOptions{Options: baseOptions(cmd)}}
		if len(args) > 0 {
			opts.Goal = args[0]
		}
		opts.Args, _ = cmd.Flags().GetStringArray("arg")
		opts.StatePath, _ = cmd.Flags().GetString("state")
		opts.Timeout, _ = cmd.Flags().GetDuration("timeout")
		opts.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
		opts.MaxNodes, _ = cmd.Flags().GetInt("max-nodes")
		opts.Agent, _ = cmd.Flags().GetString("agent")
		opts.CommandsPath, _ = cmd.Flags().GetString("commands")
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.Resume, _ = cmd.Flags().GetBool("resume")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")

		if key := os.Getenv(storeKeyEnv); key != "" {
			raw, err := hex.DecodeString(key)
			if err != nil {
				return fmt.Errorf("%s: %w", storeKeyEnv, err)
			}
			opts.StoreKey = raw
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		_, err := cli.RunExecute(sigCtx, opts, os.Stdout)
		return cli.HandleExecutionError(os.Stderr, sigCtx, err)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArray("arg", nil, "Goal argument, repeated in parameter order")
	runCmd.Flags().String("state", "", "Initial state file (YAML or JSON)")
	runCmd.Flags().Duration("timeout", 0, "Abort the search after this long (0 disables)")
	runCmd.Flags().Int("max-depth", 0, "Maximum decomposition depth (0 uses the default)")
	runCmd.Flags().Int("max-nodes", 0, "Maximum search nodes (0 is unbounded)")
	runCmd.Flags().String("agent", "default", "Agent the plan is stored under")
	runCmd.Flags().String("commands", "", "Operator commands file (defaults to commands.yaml in the domain directory)")
	runCmd.Flags().Bool("dry-run", false, "Print each step instead of running it")
	runCmd.Flags().Bool("resume", false, "Continue the agent's stored plan without planning")
	runCmd.Flags().String("redis", "", "Redis address for the plan store and agent lock")
}
