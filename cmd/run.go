package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sandbox-go/internal/faults"
	"sandbox-go/internal/obslog"
	"sandbox-go/policy"
	"sandbox-go/supervisor"
)

var runProfileFlag string

var runCmd = &cobra.Command{
	Use:   "run [--profile strict|resource-aware|learning] <executable> [args...]",
	Short: "Run an executable under the sandbox",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			cmd.PrintErrln(cmd.UsageString())
			return faults.ErrNoExecutable
		}
		return nil
	},
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runProfileFlag, "profile", string(policy.Strict),
		"sandbox profile: strict, resource-aware, or learning")
	// Everything after the executable belongs to the target program.
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	program := args[0]
	programArgs := args[1:]
	if program == "" {
		return faults.ErrNoExecutable
	}

	prof, ok := policy.Resolve(runProfileFlag)
	if !ok {
		obslog.Warn(faults.ErrUnknownProfile.Detail, "requested", runProfileFlag, "fallback", string(prof.Name))
	}

	banner(fmt.Sprintf("launching %s under profile %s", program, prof.Name))

	ctx := GetContext()
	cfg := supervisor.RunConfig{
		Profile:     prof,
		ProfileName: string(prof.Name),
		Program:     program,
		Args:        programArgs,
		LogDir:      "logs",
	}

	summary, err := supervisor.Run(ctx, cfg)
	if err != nil {
		return err
	}

	banner(fmt.Sprintf("run complete: %s (peak_cpu=%d%% peak_mem=%dkB)",
		summary.ExitReason, summary.PeakCPU, summary.PeakMemoryKB))

	return nil
}

// banner prints a short phase marker. On a TTY it gets a `==>`-prefixed
// visual treatment; piped or logged output stays plain so it composes with
// downstream tooling.
func banner(msg string) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stdout, "==> %s\n", msg)
		return
	}
	fmt.Fprintln(os.Stdout, msg)
}
