package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/bitcap/internal/planner"
	"github.com/backmassage/bitcap/internal/report"
)

// StagingPrefix marks in-progress encodes in the output directory.
const StagingPrefix = ".partial-"

// Executor runs one transcode at a time. The zero value uses "ffmpeg" from
// PATH with no time limit.
type Executor struct {
	FFmpegPath string
	// Timeout bounds a single encode; 0 means no limit.
	Timeout time.Duration
}

// StagingPath returns the hidden file an encode of output is written to.
func StagingPath(output string) string {
	return filepath.Join(filepath.Dir(output), StagingPrefix+filepath.Base(output))
}

// IsStagingName reports whether name is a staging file left by an encode.
func IsStagingName(name string) bool {
	return strings.HasPrefix(name, StagingPrefix)
}

// Execute encodes input to output according to plan and reports the result.
// duration is the probed source length in seconds and drives the percent
// computation; onProgress, when non-nil, receives each surfaced event on the
// calling goroutine.
//
// On success the source file is deleted. On failure the source is untouched
// and neither the staging file nor output is left behind.
func (e *Executor) Execute(ctx context.Context, input, output string, plan *planner.TranscodePlan, duration float64, onProgress func(ProgressEvent)) report.Outcome {
	name := filepath.Base(input)
	var inputBytes int64
	if fi, err := os.Stat(input); err == nil {
		inputBytes = fi.Size()
	}

	fail := func(category, reason string, elapsed time.Duration) report.Outcome {
		o := report.NewFailed(name, category, reason)
		o.InputBytes = inputBytes
		o.Elapsed = elapsed
		return o
	}

	if plan == nil || plan.Action != planner.ActionTranscode {
		return fail(CategoryOther, "plan is not a transcode", 0)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	staging := StagingPath(output)
	args := Build(e.binary(), input, staging, plan)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(CategoryLaunch, err.Error(), 0)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fail(CategoryLaunch, fmt.Sprintf("start ffmpeg: %v", err), 0)
	}

	tracker := NewTracker(duration)
	lines := NewLineStream(stdout)
	for lines.Next() {
		if ev, ok := tracker.Observe(lines.Line()); ok && onProgress != nil {
			onProgress(ev)
		}
	}
	streamErr := lines.Err()
	// Keep reading after a scan error so ffmpeg never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	if waitErr != nil {
		removeQuietly(staging)
		removeQuietly(output)
		reason := strings.TrimSpace(stderr.String())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg := fmt.Sprintf("encode exceeded %s", e.Timeout)
			if reason != "" {
				msg += ": " + reason
			}
			return fail(CategoryTimeout, msg, elapsed)
		}
		if reason == "" {
			reason = waitErr.Error()
		}
		return fail(ClassifyFailure(reason), reason, elapsed)
	}
	if streamErr != nil {
		removeQuietly(staging)
		return fail(CategoryIO, fmt.Sprintf("read progress: %v", streamErr), elapsed)
	}

	if err := commit(staging, output); err != nil {
		removeQuietly(staging)
		return fail(CategoryIO, err.Error(), elapsed)
	}

	o := report.Outcome{
		Kind:       report.Compressed,
		File:       name,
		InputBytes: inputBytes,
		Elapsed:    elapsed,
	}
	if fi, err := os.Stat(output); err == nil {
		o.OutputBytes = fi.Size()
	}
	if err := os.Remove(input); err != nil {
		o.Reason = fmt.Sprintf("source kept: %v", err)
	}
	return o
}

func (e *Executor) binary() string {
	if strings.TrimSpace(e.FFmpegPath) == "" {
		return "ffmpeg"
	}
	return e.FFmpegPath
}

// commit flushes the staging file to disk and renames it over output.
func commit(staging, output string) error {
	f, err := os.Open(staging)
	if err != nil {
		return fmt.Errorf("open staged output: %w", err)
	}
	syncErr := f.Sync()
	closeErr := f.Close()
	if syncErr != nil {
		return fmt.Errorf("sync staged output: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close staged output: %w", closeErr)
	}
	if err := os.Rename(staging, output); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	syncDir(filepath.Dir(output))
	return nil
}

// syncDir persists the rename; failures are ignored since not every
// filesystem supports fsync on a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
