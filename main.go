// launcher is a single-host sandbox launcher for Linux: it runs an
// untrusted binary under a two-process state machine (supervisor + isolated
// child), enforcing namespace isolation, rlimits, and a seccomp-BPF syscall
// filter, and emits one structured telemetry log per run.
//
// Commands:
//
//	run         - Run an executable under the sandbox
//	init-child  - Internal re-exec target, not for direct use
//	version     - Print the launcher version
package main

import (
	"fmt"
	"os"

	"sandbox-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
