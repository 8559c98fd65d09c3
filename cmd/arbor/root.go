package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a hierarchical task network planner",
	Long: `Arbor decomposes goal tasks into plans of primitive operators.
Domains are declared in YAML or JSON files; state is a set of named relations.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Domain directory or file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (logs go to stderr)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log the search trace")
}

// baseOptions reads the persistent flags.
func baseOptions(cmd *cobra.Command) cli.Options {
	dir, _ := cmd.Flags().GetString("dir")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{Dir: dir, LogLevel: level, Debug: debug}
}

// projectDir lets the directory be given positionally as well as with --dir.
func projectDir(cmd *cobra.Command, args []string) string {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		return args[0]
	}
	return dir
}
