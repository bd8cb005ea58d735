package isolation

import (
	"testing"

	"golang.org/x/sys/unix"

	"sandbox-go/policy"
)

func TestApplyRlimits_Empty(t *testing.T) {
	if err := applyRlimits(nil); err != nil {
		t.Errorf("applyRlimits(nil) = %v, want nil", err)
	}
}

func TestApplyRlimits_ReappliesCurrentLimits(t *testing.T) {
	// Re-applying the current RLIMIT_NOFILE values is safe in-process for a
	// test: nothing is raised or lowered for the running test binary.
	var before unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &before); err != nil {
		t.Skipf("getrlimit unavailable: %v", err)
	}

	limit := []policy.Rlimit{
		{Resource: unix.RLIMIT_NOFILE, Cur: before.Cur, Max: before.Max},
	}
	if err := applyRlimits(limit); err != nil {
		t.Errorf("applyRlimits: %v", err)
	}
}

func TestApplyRlimits_PropagatesSetrlimitError(t *testing.T) {
	// An invalid resource id makes Setrlimit fail, which must surface as an
	// error rather than being swallowed (unlike the two best-effort mount
	// steps in Setup).
	bogus := []policy.Rlimit{{Resource: -1, Cur: 1, Max: 1}}
	if err := applyRlimits(bogus); err == nil {
		t.Error("expected an error for an invalid rlimit resource id")
	}
}
