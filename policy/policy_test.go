package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestResolve_KnownProfiles(t *testing.T) {
	for _, name := range []Name{Strict, ResourceAware, Learning} {
		p, ok := Resolve(string(name))
		require.True(t, ok, "expected %s to resolve", name)
		assert.Equal(t, name, p.Name)
	}
}

func TestResolve_UnknownFallsBackToStrict(t *testing.T) {
	p, ok := Resolve("made-up-profile")
	assert.False(t, ok)
	assert.Equal(t, Strict, p.Name)
	assert.Equal(t, Profiles[Strict], p)
}

func TestResolve_EmptyFallsBackToStrict(t *testing.T) {
	p, ok := Resolve("")
	assert.False(t, ok)
	assert.Equal(t, Strict, p.Name)
}

func TestStrictProfile_ContainsMandatorySyscalls(t *testing.T) {
	p := Profiles[Strict]
	mandatory := []string{
		"execve", "brk", "mmap", "munmap", "mprotect",
		"exit", "exit_group", "arch_prctl",
		"read", "write", "writev", "lseek", "close", "fstat",
		"openat", "readlink", "getrandom",
	}
	for _, sc := range mandatory {
		assert.Contains(t, p.SyscallAllow, sc)
	}
}

func TestStrictProfile_DefaultActionIsKill(t *testing.T) {
	assert.Equal(t, ActionKill, Profiles[Strict].DefaultAction)
	assert.Equal(t, ActionKill, Profiles[ResourceAware].DefaultAction)
}

func TestLearningProfile_DefaultActionIsLogAllow(t *testing.T) {
	assert.Equal(t, ActionLogAllow, Profiles[Learning].DefaultAction)
}

func TestAllProfiles_IncludeCoreNamespaces(t *testing.T) {
	want := uintptr(unix.CLONE_NEWNS | unix.CLONE_NEWPID | unix.CLONE_NEWIPC | unix.CLONE_NEWUTS | unix.CLONE_NEWUSER)
	for name, p := range Profiles {
		assert.Equal(t, want, p.CloneFlags, "profile %s", name)
	}
}

func TestResourceAwareProfile_KeepsNprocCeiling(t *testing.T) {
	p := Profiles[ResourceAware]
	found := false
	for _, rl := range p.Rlimits {
		if rl.Resource == unix.RLIMIT_NPROC {
			found = true
			assert.EqualValues(t, 20, rl.Cur)
		}
	}
	assert.True(t, found, "expected an RLIMIT_NPROC entry")
}
