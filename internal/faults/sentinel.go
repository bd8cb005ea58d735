package faults

// Predefined sentinel errors for common failure cases.
var (
	// ErrUnknownProfile indicates an unrecognized --profile value.
	ErrUnknownProfile = &Error{Kind: KindConfig, Detail: "unknown profile"}

	// ErrNoExecutable indicates no target executable was given.
	ErrNoExecutable = &Error{Kind: KindConfig, Detail: "executable path required"}

	// ErrChildAllocFailed indicates the supervisor could not set up the
	// child's process/stack before namespace entry.
	ErrChildAllocFailed = &Error{Kind: KindSetup, Detail: "child process allocation failed"}

	// ErrNamespaceCreateFailed indicates clone() with the namespace flag
	// mask failed (host policy or kernel support missing).
	ErrNamespaceCreateFailed = &Error{Kind: KindSetup, Detail: "namespace creation failed"}

	// ErrFilterLoadFailed indicates the seccomp filter failed to load.
	ErrFilterLoadFailed = &Error{Kind: KindPolicy, Detail: "syscall filter load failed"}

	// ErrRlimitFailed indicates an rlimit could not be applied.
	ErrRlimitFailed = &Error{Kind: KindIsolation, Detail: "rlimit apply failed"}
)
