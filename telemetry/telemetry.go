// Package telemetry accumulates per-run samples and renders the one
// structured JSON log a supervisor run produces, matching the schema the
// outer wrapper and any downstream tooling consume.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxSamples caps the in-memory timeline. A run pinned against a deadline
// measured in tens of seconds at a 100ms cadence never approaches it; the
// cap exists so a misbehaving or very long-lived run can't grow the
// timeline without bound.
const maxSamples = 1000

// Sample is one 100ms timeline point.
type Sample struct {
	ElapsedMS  int64
	CPUPercent int
	MemoryKB   uint64
}

// Summary is the single post-mortem record emitted for a run.
type Summary struct {
	RuntimeMS       int64
	PeakCPU         int
	PeakMemoryKB    uint64
	PageFaultsMinor uint64
	PageFaultsMajor uint64
	Termination     string
	BlockedSyscall  string
	ExitReason      string
}

// Recorder accumulates Samples for one run and renders the final log.
type Recorder struct {
	PID     int
	Program string
	Profile string

	samples []Sample
	summary Summary
}

// NewRecorder starts a fresh recorder for one run.
func NewRecorder(pid int, program, profile string) *Recorder {
	return &Recorder{PID: pid, Program: program, Profile: profile}
}

// Append records one timeline point. Once maxSamples is reached, further
// calls are silently dropped rather than growing the slice unbounded; the
// summary's peak fields are still computed correctly since callers compute
// peaks from the live stream, not by re-scanning the timeline.
func (r *Recorder) Append(s Sample) {
	if len(r.samples) >= maxSamples {
		return
	}
	r.samples = append(r.samples, s)
}

// SetSummary records the final, one-time summary for the run.
func (r *Recorder) SetSummary(s Summary) {
	r.summary = s
}

// Summary returns the run's recorded summary.
func (r *Recorder) Summary() Summary {
	return r.summary
}

// timelineDoc and logDoc mirror the exact wire schema; field names are
// fixed by external consumers and are not Go-idiomatic on purpose.
type timelineDoc struct {
	TimeMS     []int64  `json:"time_ms"`
	CPUPercent []int    `json:"cpu_percent"`
	MemoryKB   []uint64 `json:"memory_kb"`
}

type summaryDoc struct {
	RuntimeMS       int64  `json:"runtime_ms"`
	PeakCPU         int    `json:"peak_cpu"`
	PeakMemoryKB    uint64 `json:"peak_memory_kb"`
	PageFaultsMinor uint64 `json:"page_faults_minor"`
	PageFaultsMajor uint64 `json:"page_faults_major"`
	Termination     string `json:"termination"`
	BlockedSyscall  string `json:"blocked_syscall"`
	ExitReason      string `json:"exit_reason"`
}

type logDoc struct {
	PID      int         `json:"pid"`
	Program  string      `json:"program"`
	Profile  string      `json:"profile"`
	Timeline timelineDoc `json:"timeline"`
	Summary  summaryDoc  `json:"summary"`
}

func (r *Recorder) document() logDoc {
	doc := logDoc{
		PID:     r.PID,
		Program: r.Program,
		Profile: r.Profile,
		Timeline: timelineDoc{
			TimeMS:     make([]int64, len(r.samples)),
			CPUPercent: make([]int, len(r.samples)),
			MemoryKB:   make([]uint64, len(r.samples)),
		},
		Summary: summaryDoc{
			RuntimeMS:       r.summary.RuntimeMS,
			PeakCPU:         r.summary.PeakCPU,
			PeakMemoryKB:    r.summary.PeakMemoryKB,
			PageFaultsMinor: r.summary.PageFaultsMinor,
			PageFaultsMajor: r.summary.PageFaultsMajor,
			Termination:     r.summary.Termination,
			BlockedSyscall:  r.summary.BlockedSyscall,
			ExitReason:      r.summary.ExitReason,
		},
	}
	for i, s := range r.samples {
		doc.Timeline.TimeMS[i] = s.ElapsedMS
		doc.Timeline.CPUPercent[i] = s.CPUPercent
		doc.Timeline.MemoryKB[i] = s.MemoryKB
	}
	return doc
}

// WriteLog renders the run's JSON log under dir, creating dir lazily if it
// doesn't yet exist, and returns the path written.
func (r *Recorder) WriteLog(dir string, unixSeconds int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	data, err := json.MarshalIndent(r.document(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal telemetry log: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%d.json", unixSeconds))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write telemetry log: %w", err)
	}

	return path, nil
}
