package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sandbox-go/childrunner"
	"sandbox-go/policy"
)

// initChildCmd is the hidden re-exec target: the supervisor spawns the
// launcher binary with this subcommand inside freshly cloned namespaces. It
// is not meant to be invoked directly by an operator.
var initChildCmd = &cobra.Command{
	Use:    "init-child <profile> <executable> [args...]",
	Hidden: true,
	Args:   cobra.MinimumNArgs(2),
	RunE:   runInitChild,
}

func init() {
	// The target program's own arguments are passed through untouched.
	initChildCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(initChildCmd)
}

func runInitChild(cmd *cobra.Command, args []string) error {
	profileName := args[0]
	program := args[1]
	programArgs := args[2:]

	prof, _ := policy.Resolve(profileName)

	if err := childrunner.RunChild(prof, program, programArgs); err != nil {
		return fmt.Errorf("init-child: %w", err)
	}

	// RunChild only returns on failure; a successful run ends via execve
	// and never reaches here.
	return nil
}
