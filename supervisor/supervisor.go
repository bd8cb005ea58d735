// Package supervisor implements the parent-side state machine: start the
// isolated child, poll its /proc accounting at a fixed cadence, reap it,
// classify its termination, and emit one telemetry summary.
package supervisor

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"sandbox-go/childrunner"
	"sandbox-go/internal/faults"
	"sandbox-go/internal/obslog"
	"sandbox-go/policy"
	"sandbox-go/procstat"
	"sandbox-go/telemetry"
)

// pollInterval is the fixed telemetry sampling cadence.
const pollInterval = 100 * time.Millisecond

// RunConfig bundles everything one supervised run needs.
type RunConfig struct {
	Profile     policy.Profile
	ProfileName string
	Program     string
	Args        []string
	LogDir      string
}

// clockTicksPerSecond resolves SC_CLK_TCK once; Linux has shipped a fixed
// 100Hz user clock tick in every practically encountered configuration, so
// a sysconf failure falls back to that rather than failing the run.
func clockTicksPerSecond() int64 {
	ticks, err := unix.SysconfClktck()
	if err != nil || ticks <= 0 {
		return 100
	}
	return ticks
}

// Run starts the child under cfg.Profile, monitors it to completion, and
// returns the run's telemetry summary. The returned error is non-nil only
// for setup failures (spec.md §7's "setup errors" category); a child that
// runs and exits, however it exits, is a successful Run with that
// disposition recorded in the summary.
func Run(ctx context.Context, cfg RunConfig) (*telemetry.Summary, error) {
	start := time.Now()

	cmd, err := childrunner.Start(cfg.Profile, cfg.ProfileName, cfg.Program, cfg.Args)
	if err != nil {
		return nil, faults.Wrap(err, faults.KindSetup, "start child")
	}

	pid := cmd.Process.Pid
	obslog.Info("child started", "phase", "start", "pid", pid, "elapsed_ms", 0)

	rec := telemetry.NewRecorder(pid, cfg.Program, cfg.ProfileName)
	tickHz := clockTicksPerSecond()

	var peakCPU int
	var peakMemKB uint64
	var lastSample procstat.Sample

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	waitCh := make(chan waitResult, 1)
	go func() {
		var ws syscall.WaitStatus
		_, werr := syscall.Wait4(pid, &ws, 0, nil)
		waitCh <- waitResult{ws: ws, err: werr}
	}()

	// doneCh is nilled out after the first cancellation notice so the select
	// below doesn't spin on an already-closed channel; reaping still
	// proceeds to completion, matching spec.md §5's "cancellation doesn't
	// change the documented reap-and-log behavior" note.
	doneCh := ctx.Done()

poll:
	for {
		select {
		case <-doneCh:
			obslog.Warn("context canceled, continuing to wait for reap", "phase", "poll", "pid", pid)
			doneCh = nil
		case <-ticker.C:
			elapsed := time.Since(start)
			s, err := procstat.Read(pid)
			if err != nil {
				// process already gone between tick and read; let the
				// Wait4 goroutine deliver the reap below.
				continue
			}
			lastSample = s

			cpuPct := cpuPercent(s, elapsed, tickHz)
			if cpuPct > peakCPU {
				peakCPU = cpuPct
			}
			memKB := s.VmPeakKB
			if memKB > peakMemKB {
				peakMemKB = memKB
			}

			rec.Append(telemetry.Sample{
				ElapsedMS:  elapsed.Milliseconds(),
				CPUPercent: cpuPct,
				MemoryKB:   memKB,
			})
		case res := <-waitCh:
			if res.err != nil {
				return nil, faults.Wrap(res.err, faults.KindSetup, "wait4")
			}
			elapsed := time.Since(start)
			termination, blockedSyscall, exitReason := classify(res.ws)

			obslog.Info("child reaped", "phase", "reap", "pid", pid,
				"elapsed_ms", elapsed.Milliseconds(), "exit_reason", exitReason)

			rec.SetSummary(telemetry.Summary{
				RuntimeMS:       elapsed.Milliseconds(),
				PeakCPU:         peakCPU,
				PeakMemoryKB:    maxU64(peakMemKB, lastSample.VmPeakKB),
				PageFaultsMinor: lastSample.MinFlt,
				PageFaultsMajor: lastSample.MajFlt,
				Termination:     termination,
				BlockedSyscall:  blockedSyscall,
				ExitReason:      exitReason,
			})
			break poll
		}
	}

	path, err := rec.WriteLog(cfg.LogDir, time.Now().Unix())
	if err != nil {
		obslog.Warn("failed to write telemetry log", "phase", "finalize", "error", err)
	} else {
		obslog.Info("telemetry log written", "phase", "finalize", "path", path)
	}

	summary := rec.Summary()
	return &summary, nil
}

type waitResult struct {
	ws  syscall.WaitStatus
	err error
}

// cpuPercent computes average CPU utilization as the share of the elapsed
// wall time the process has spent on-CPU, clamped to an int.
func cpuPercent(s procstat.Sample, elapsed time.Duration, tickHz int64) int {
	if elapsed <= 0 {
		return 0
	}
	cpuSeconds := float64(s.UTimeTicks+s.STimeTicks) / float64(tickHz)
	wallSeconds := elapsed.Seconds()
	pct := int(100 * cpuSeconds / wallSeconds)
	if pct < 0 {
		return 0
	}
	return pct
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// classify maps a reaped process's wait status onto the termination table
// from the data model: normal exit, security violation (SIGSYS), OS-imposed
// kill (SIGKILL), or any other fatal signal.
func classify(ws syscall.WaitStatus) (termination, blockedSyscall, exitReason string) {
	switch {
	case ws.Exited():
		return "", "", fmt.Sprintf("EXITED(%d)", ws.ExitStatus())
	case ws.Signaled():
		sig := ws.Signal()
		switch sig {
		case syscall.SIGSYS:
			return fmt.Sprintf("SIG%d", int(syscall.SIGSYS)), "Unknown(SIGSYS)", "SECURITY_VIOLATION"
		case syscall.SIGKILL:
			return fmt.Sprintf("SIG%d", int(syscall.SIGKILL)), "", "KILLED_BY_OS"
		default:
			return fmt.Sprintf("SIG%d", int(sig)), "", "SIGNALED"
		}
	default:
		return "", "", "UNKNOWN"
	}
}
