package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [dir]",
	Short: "List operators and compound tasks",
	Long:  `Lists every declaration with its parameters. The root task is marked with *.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunTasks(projectDir(cmd, args), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
