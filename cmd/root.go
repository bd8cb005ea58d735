// Package cmd implements the launcher's CLI commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sandbox-go/internal/obslog"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags.
var (
	globalLog       string
	globalLogFormat string
	globalDebug     bool
)

// rootCmd is the base command for the sandbox launcher.
var rootCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Single-host sandbox launcher",
	Long: `launcher runs an untrusted binary under a two-process sandbox: a
supervisor that samples runtime behavior, and an isolated child confined by
Linux namespaces, rlimits, and a seccomp-BPF syscall filter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command. It is the launcher binary's sole entry
// point; unlike the hand-rolled dispatcher this CLI tree replaces, every
// invocation — including the hidden init-child re-exec target — goes
// through cobra.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "write narrative logging to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "narrative log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug-level narrative logging")
}

func setupLogging() {
	logOutput := os.Stderr
	if globalLog != "" {
		if f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			logOutput = f
		}
	}

	level := obslog.ParseLevel("info")
	if globalDebug {
		level = obslog.ParseLevel("debug")
	}

	logger := obslog.New(obslog.Config{
		Level:  level,
		Format: globalLogFormat,
		Output: logOutput,
	})
	obslog.SetDefault(logger)
}
