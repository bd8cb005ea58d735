package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the launcher version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("launcher %s (built %s)\n", Version, BuildTime)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
