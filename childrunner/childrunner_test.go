package childrunner

import "testing"

func TestBuildInitChildArgs_Layout(t *testing.T) {
	got := buildInitChildArgs("strict", "/bin/cpu_hog", []string{"--iterations", "100"})
	want := []string{"init-child", "strict", "/bin/cpu_hog", "--iterations", "100"}

	if len(got) != len(want) {
		t.Fatalf("buildInitChildArgs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildInitChildArgs_NoExtraArgs(t *testing.T) {
	got := buildInitChildArgs("learning", "/bin/echo", nil)
	want := []string{"init-child", "learning", "/bin/echo"}

	if len(got) != len(want) {
		t.Fatalf("buildInitChildArgs() = %v, want %v", got, want)
	}
}
