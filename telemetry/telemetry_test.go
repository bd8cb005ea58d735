package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder_AppendCapsAtMaxSamples(t *testing.T) {
	r := NewRecorder(1234, "cpu_hog", "strict")
	for i := 0; i < maxSamples+50; i++ {
		r.Append(Sample{ElapsedMS: int64(i * 100)})
	}
	require.Len(t, r.samples, maxSamples)
}

func TestRecorder_WriteLog_SchemaRoundTrip(t *testing.T) {
	r := NewRecorder(4321, "mem_eater", "resource-aware")
	r.Append(Sample{ElapsedMS: 0, CPUPercent: 5, MemoryKB: 2048})
	r.Append(Sample{ElapsedMS: 100, CPUPercent: 20, MemoryKB: 65536})
	r.SetSummary(Summary{
		RuntimeMS:       1500,
		PeakCPU:         20,
		PeakMemoryKB:    65536,
		PageFaultsMinor: 10,
		PageFaultsMajor: 1,
		Termination:     "SIG9",
		BlockedSyscall:  "",
		ExitReason:      "KILLED_BY_OS",
	})

	dir := t.TempDir()
	path, err := r.WriteLog(dir, 1700000000)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "run_1700000000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	require.Contains(t, got, "pid")
	require.Contains(t, got, "program")
	require.Contains(t, got, "profile")
	require.Contains(t, got, "timeline")
	require.Contains(t, got, "summary")

	timeline := got["timeline"].(map[string]any)
	require.Contains(t, timeline, "time_ms")
	require.Contains(t, timeline, "cpu_percent")
	require.Contains(t, timeline, "memory_kb")
	require.Len(t, timeline["time_ms"], 2)

	summary := got["summary"].(map[string]any)
	require.Equal(t, "KILLED_BY_OS", summary["exit_reason"])
	require.Equal(t, "SIG9", summary["termination"])
	require.EqualValues(t, 65536, summary["peak_memory_kb"])
	require.EqualValues(t, 1500, summary["runtime_ms"])
	require.EqualValues(t, 20, summary["peak_cpu"])
	require.EqualValues(t, 10, summary["page_faults_minor"])
	require.EqualValues(t, 1, summary["page_faults_major"])
	require.Equal(t, "", summary["blocked_syscall"])
}

func TestWriteLog_CreatesDirLazily(t *testing.T) {
	r := NewRecorder(1, "prog", "strict")
	base := t.TempDir()
	dir := filepath.Join(base, "logs")

	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	_, err = r.WriteLog(dir, 1)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
