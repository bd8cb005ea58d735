// Package isolation implements the child-side setup steps that run inside
// the freshly-cloned namespaces, strictly before the target image replaces
// the process: mount-tree privatization, a read-only remount of the root,
// rlimit installation, and syscall filter load.
//
// Ordering matters and is enforced by Setup's own body: privatize, then
// remount read-only, then apply rlimits, then install the seccomp filter.
// The caller execs the target immediately after Setup returns — that
// boundary is deliberately kept outside this package so the "setup" and
// "exec" halves of the child's work stay two separate, auditable calls.
package isolation

import (
	"fmt"

	"golang.org/x/sys/unix"

	"sandbox-go/internal/faults"
	"sandbox-go/internal/obslog"
	"sandbox-go/policy"
	"sandbox-go/seccomp"
)

// Setup runs the child-side isolation steps in order. Steps 1 and 2 are
// best-effort: a failure is logged to stderr and setup continues, since the
// remaining layers (rlimits, syscall filter) still bound the blast radius.
// Steps 3 and 4 are fatal: rlimits and the syscall filter are the isolation
// layers this package treats as load-bearing on their own, and the filter
// must be installed before Setup returns since the caller execs the target
// immediately afterward.
func Setup(p policy.Profile) error {
	if err := privatizeMounts(); err != nil {
		obslog.Warn("mount privatization failed, continuing best-effort", "error", err)
	}

	if err := remountRootReadOnly(); err != nil {
		obslog.Warn("read-only remount failed, continuing best-effort", "error", err)
	}

	if err := applyRlimits(p.Rlimits); err != nil {
		return faults.WrapWithDetail(err, faults.KindIsolation, "apply rlimits", faults.ErrRlimitFailed.Detail)
	}

	if err := seccomp.Install(p); err != nil {
		return faults.Wrap(err, faults.KindPolicy, "install syscall filter")
	}

	return nil
}

// privatizeMounts recursively marks / private so that mounts performed
// inside the new mount namespace never propagate back to the host.
func privatizeMounts() error {
	return unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, "")
}

// remountRootReadOnly bind-mounts / onto itself and remounts it read-only.
// On an unprivileged user namespace this commonly fails (EPERM/EINVAL); the
// caller treats that as a soft failure per spec.
func remountRootReadOnly() error {
	if err := unix.Mount("/", "/", "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount /: %w", err)
	}
	return unix.Mount("/", "/", "", unix.MS_REMOUNT|unix.MS_BIND|unix.MS_RDONLY|unix.MS_REC, "")
}

// applyRlimits installs each entry of the profile's rlimit vector. Once
// applied within a run, a limit can only be lowered further (the kernel
// itself enforces this for unprivileged processes raising Max), never
// raised back up.
func applyRlimits(limits []policy.Rlimit) error {
	for _, rl := range limits {
		lim := unix.Rlimit{Cur: rl.Cur, Max: rl.Max}
		if err := unix.Setrlimit(rl.Resource, &lim); err != nil {
			return fmt.Errorf("setrlimit(%d): %w", rl.Resource, err)
		}
	}
	return nil
}
