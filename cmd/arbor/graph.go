package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the decomposition graph",
	Long:  `Outputs a Mermaid diagram (graph TD) of tasks, their methods and the operators they reach.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunGraph(projectDir(cmd, args), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
