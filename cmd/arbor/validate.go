package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the domain for consistency",
	Long: `Compiles the domain and reports references to undeclared tasks, fixed
arguments that do not match their target, tasks without methods and
declarations unreachable from the root.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RunValidate(projectDir(cmd, args), os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Domain is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
