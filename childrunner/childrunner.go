// Package childrunner owns both halves of the namespace boundary: on the
// supervisor side it re-execs the launcher binary into a freshly cloned set
// of namespaces; on the child side (invoked as the hidden "init-child"
// subcommand) it runs isolation setup and then replaces its own image with
// the target program.
//
// The split mirrors the teacher's Create/InitContainer pair: Start is the
// parent-side half, RunChild is what the re-exec'd process calls once it's
// running inside the new namespaces.
package childrunner

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"sandbox-go/internal/faults"
	"sandbox-go/isolation"
	"sandbox-go/policy"
)

// initChildArg is the hidden subcommand name the supervisor re-execs into.
const initChildArg = "init-child"

// buildInitChildArgs lays out the argv the re-exec'd binary receives:
// subcommand name, profile name, then the target program and its own args.
func buildInitChildArgs(profileName, program string, args []string) []string {
	out := make([]string, 0, 3+len(args))
	out = append(out, initChildArg, profileName, program)
	out = append(out, args...)
	return out
}

// Start launches the supervised child: the launcher binary re-execs itself
// into p's namespace mask, landing on the init-child subcommand, which will
// in turn run isolation setup and exec program. Start returns once the
// child process exists; it does not wait for the target image to replace
// the init-child process.
func Start(p policy.Profile, profileName, program string, args []string) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, faults.Wrap(err, faults.KindSetup, "resolve own executable path")
	}

	cmd := exec.Command(self, buildInitChildArgs(profileName, program, args)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	uid := os.Getuid()
	gid := os.Getgid()

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: uintptr(p.CloneFlags),
		Setsid:     true,
		UidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: uid, Size: 1},
		},
		GidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: gid, Size: 1},
		},
		GidMappingsEnableSetgroups: false,
	}

	if err := cmd.Start(); err != nil {
		return nil, faults.WrapWithDetail(err, faults.KindSetup, "create namespaces",
			faults.ErrNamespaceCreateFailed.Detail)
	}

	return cmd, nil
}

// RunChild is the body of the init-child subcommand: it runs isolation
// setup (mounts, rlimits, and the seccomp filter, in that order) inside the
// new namespaces and then execs program, replacing its own image. On
// success it never returns; any returned error means the target was never
// reached, and isolation.Setup already carries the right faults.Kind for
// whichever step failed.
func RunChild(p policy.Profile, program string, args []string) error {
	// The seccomp filter and no_new_privs are per-thread: keep setup and
	// execve on the same OS thread so the exec'd image inherits the filter.
	runtime.LockOSThread()

	if err := isolation.Setup(p); err != nil {
		return err
	}

	argv := append([]string{program}, args...)
	if err := syscall.Exec(program, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", program, err)
	}

	return nil
}
