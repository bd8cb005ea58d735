// Package seccomp builds and installs the kernel BPF filter that enforces a
// policy.Profile's syscall allow-list, with a kill-on-violation (or, for the
// learning profile, log-on-violation) default.
//
// No argument filtering is performed: a syscall is either on the allow-list
// by number or it isn't. Installation happens inside the child, after
// rlimits are applied and immediately before the target image replaces the
// process, so no instruction of untrusted code ever executes without the
// filter active.
package seccomp

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"sandbox-go/internal/faults"
	"sandbox-go/policy"
)

// BPF opcodes and seccomp return values (linux/seccomp.h, linux/filter.h).
const (
	bpfLD  = 0x00
	bpfJMP = 0x05
	bpfRET = 0x06
	bpfW   = 0x00
	bpfABS = 0x20
	bpfJEQ = 0x10
	bpfK   = 0x00

	retKillProcess = 0x80000000
	retLog         = 0x7ffc0000
	retAllow       = 0x7fff0000

	offsetNR   = 0
	offsetArch = 4

	auditArchX86_64 = 0xc000003e
)

// sockFilter is a single BPF instruction (struct sock_filter).
type sockFilter struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

// sockFprog is the BPF program descriptor (struct sock_fprog). Go's default
// struct alignment inserts the padding the kernel's sock_fprog also expects
// ahead of the pointer field, so no explicit padding is declared.
type sockFprog struct {
	Len    uint16
	Filter *sockFilter
}

// syscallNumbers maps the syscall names used in policy allow-lists to their
// x86_64 numbers. This is the architecture the strict profile's mandatory
// set targets; the table is deliberately small; it covers what the
// compiled-in profiles name plus a few other common syscalls, not the whole
// syscall table.
var syscallNumbers = map[string]int{
	"read": 0, "write": 1, "open": 2, "close": 3, "stat": 4,
	"fstat": 5, "lstat": 6, "lseek": 8, "mmap": 9,
	"mprotect": 10, "munmap": 11, "brk": 12,
	"rt_sigaction": 13, "rt_sigprocmask": 14, "ioctl": 16,
	"pread64": 17, "pwrite64": 18, "readv": 19, "writev": 20,
	"access": 21, "pipe": 22, "dup": 32, "dup2": 33,
	"nanosleep": 35, "getpid": 39,
	"socket": 41, "connect": 42, "sendto": 44, "recvfrom": 45,
	"execve": 59, "exit": 60, "wait4": 61, "kill": 62, "uname": 63,
	"fcntl": 72, "getcwd": 79, "chdir": 80,
	"mkdir": 83, "readlink": 89, "chmod": 90,
	"getuid": 102, "getgid": 104, "geteuid": 107, "getegid": 108,
	"arch_prctl": 158,
	"gettid": 186, "futex": 202,
	"set_tid_address": 218, "exit_group": 231,
	"openat": 257, "newfstatat": 262,
	"set_robust_list": 273,
	"prlimit64":       302,
	"getrandom":       318,
}

// Number returns the x86_64 syscall number for name.
func Number(name string) (int, bool) {
	n, ok := syscallNumbers[name]
	return n, ok
}

// Install loads a seccomp-BPF filter enforcing p's allow-list into the
// calling process. It must run after rlimits are applied and strictly
// before the target image is exec'd: the filter survives execve, which is
// the entire reason installation happens in the child rather than the
// supervisor.
func Install(p policy.Profile) error {
	if _, _, errno := unix.Syscall(unix.SYS_PRCTL, unix.PR_SET_NO_NEW_PRIVS, 1, 0); errno != 0 {
		return faults.Wrap(errno, faults.KindPolicy, "prctl(PR_SET_NO_NEW_PRIVS)")
	}

	filter, err := build(p)
	if err != nil {
		return faults.Wrap(err, faults.KindPolicy, "build filter")
	}

	prog := sockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}

	if _, _, errno := unix.Syscall(unix.SYS_PRCTL,
		unix.PR_SET_SECCOMP,
		unix.SECCOMP_MODE_FILTER,
		uintptr(unsafe.Pointer(&prog))); errno != 0 {
		return faults.WrapWithDetail(errno, faults.KindPolicy, "prctl(PR_SET_SECCOMP)",
			faults.ErrFilterLoadFailed.Detail)
	}

	return nil
}

// build compiles a profile's allow-list into a BPF program: check
// architecture, load the syscall number, jump-match each allowed syscall to
// an ALLOW return, fall through to the profile's default action.
func build(p policy.Profile) ([]sockFilter, error) {
	var prog []sockFilter

	prog = append(prog, stmt(bpfLD|bpfW|bpfABS, offsetArch))
	prog = append(prog, jump(bpfJMP|bpfJEQ|bpfK, auditArchX86_64, 1, 0))
	prog = append(prog, stmt(bpfRET|bpfK, retKillProcess))

	prog = append(prog, stmt(bpfLD|bpfW|bpfABS, offsetNR))

	defaultRet := uint32(retKillProcess)
	if p.DefaultAction == policy.ActionLogAllow {
		defaultRet = retLog
	}

	for _, name := range p.SyscallAllow {
		nr, ok := syscallNumbers[name]
		if !ok {
			return nil, fmt.Errorf("unknown syscall in allow-list: %s", name)
		}
		// if nr matches, fall through (offset 0) to the ALLOW return;
		// otherwise skip it (offset 1) and try the next rule.
		prog = append(prog, jump(bpfJMP|bpfJEQ|bpfK, uint32(nr), 0, 1))
		prog = append(prog, stmt(bpfRET|bpfK, retAllow))
	}

	prog = append(prog, stmt(bpfRET|bpfK, defaultRet))

	return prog, nil
}

func stmt(code uint16, k uint32) sockFilter {
	return sockFilter{Code: code, K: k}
}

func jump(code uint16, k uint32, jt, jf uint8) sockFilter {
	return sockFilter{Code: code, Jt: jt, Jf: jf, K: k}
}
