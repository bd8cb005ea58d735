// Package policy defines the compile-time profile tables the sandbox
// launcher enforces: which namespaces a child is created in, which rlimits
// are installed, and which syscalls it may make.
//
// Profiles are immutable Go data, not configuration parsed at runtime. A
// misconfigured policy therefore fails at build time, never inside an
// untrusted process: there is no code path where the allow-list is
// discovered or mutated after the binary is compiled.
package policy

import "golang.org/x/sys/unix"

// Name identifies one of the three compiled-in profiles.
type Name string

const (
	Strict        Name = "strict"
	ResourceAware Name = "resource-aware"
	Learning      Name = "learning"
)

// FilterAction is the default seccomp disposition for a syscall not on the
// profile's allow-list.
type FilterAction int

const (
	// ActionKill terminates the process on the first disallowed syscall.
	ActionKill FilterAction = iota
	// ActionLogAllow logs the syscall but lets it proceed. Used only by the
	// learning profile, which observes rather than enforces.
	ActionLogAllow
)

// Rlimit is one entry of the rlimit vector applied before the seccomp
// filter loads. Installation is irreversible downward within a run: once
// applied, a limit can only be tightened further, never relaxed.
type Rlimit struct {
	Resource int
	Cur      uint64
	Max      uint64
}

// Profile bundles the policy enforced for one run: namespace mask, rlimit
// vector, syscall allow-list, and the filter's default action.
type Profile struct {
	Name          Name
	CloneFlags    uintptr
	Rlimits       []Rlimit
	SyscallAllow  []string
	DefaultAction FilterAction
}

// namespaceFlags is the mask every profile creates: mount, PID, IPC, UTS,
// and user namespaces. A fresh user namespace is what lets an unprivileged
// invoker create the rest unprivileged.
const namespaceFlags = unix.CLONE_NEWNS |
	unix.CLONE_NEWPID |
	unix.CLONE_NEWIPC |
	unix.CLONE_NEWUTS |
	unix.CLONE_NEWUSER

// strictRlimits is the minimum ceiling vector: 8MiB stack, 64 open files,
// 128MiB address space, 20 processes. Both defense-in-depth for a missing
// or broken cgroup configuration, and a hard cap on consumables cgroups
// don't directly govern (stack, FDs, address space).
var strictRlimits = []Rlimit{
	{Resource: unix.RLIMIT_STACK, Cur: 8 << 20, Max: 8 << 20},
	{Resource: unix.RLIMIT_NOFILE, Cur: 64, Max: 64},
	{Resource: unix.RLIMIT_AS, Cur: 128 << 20, Max: 128 << 20},
	{Resource: unix.RLIMIT_NPROC, Cur: 20, Max: 20},
}

// strictSyscalls is the mandatory allow-list from the data model: process
// image replacement, memory mapping/protection primitives, normal
// termination (both variants), per-architecture process control,
// byte-stream I/O, path-relative open, symlink read, and secure random
// bytes.
var strictSyscalls = []string{
	"execve",
	"brk", "mmap", "munmap", "mprotect",
	"exit", "exit_group",
	"arch_prctl",
	"read", "write", "writev", "lseek", "close", "fstat",
	"openat",
	"readlink",
	"getrandom",
}

// Profiles is the set of compiled-in profiles, keyed by Name.
var Profiles = map[Name]Profile{
	Strict: {
		Name:          Strict,
		CloneFlags:    namespaceFlags,
		Rlimits:       strictRlimits,
		SyscallAllow:  strictSyscalls,
		DefaultAction: ActionKill,
	},
	ResourceAware: {
		Name:       ResourceAware,
		CloneFlags: namespaceFlags,
		// nproc stays unconditionally at 20, same as strict: cgroup
		// `--pids` (set by the outer wrapper) is this profile's primary
		// lever, the rlimit remains defense-in-depth underneath it.
		Rlimits:       strictRlimits,
		SyscallAllow:  strictSyscalls,
		DefaultAction: ActionKill,
	},
	Learning: {
		Name:          Learning,
		CloneFlags:    namespaceFlags,
		Rlimits:       strictRlimits,
		SyscallAllow:  strictSyscalls,
		DefaultAction: ActionLogAllow,
	},
}

// Resolve looks up a profile by name, falling back to Strict and reporting
// false for any unrecognized token (including the empty string). It does not
// log; the warning is emitted by the caller.
func Resolve(name string) (Profile, bool) {
	n := Name(name)
	p, ok := Profiles[n]
	if !ok {
		return Profiles[Strict], false
	}
	return p, true
}
