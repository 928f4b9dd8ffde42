package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/display"
	"github.com/backmassage/bitcap/internal/ffmpeg"
	"github.com/backmassage/bitcap/internal/logging"
	"github.com/backmassage/bitcap/internal/planner"
	"github.com/backmassage/bitcap/internal/probe"
	"github.com/backmassage/bitcap/internal/report"
)

// runner carries the per-batch collaborators shared by every file.
type runner struct {
	cfg    *config.Config
	log    *logging.Logger
	policy *planner.Policy
	exec   *ffmpeg.Executor
	outDir string
	tty    bool
}

// Run is the top-level batch entry point. It discovers candidate files,
// processes each one sequentially, and returns aggregate stats. The error
// is non-nil only for setup failures (unreadable folder, output directory,
// lock); per-file problems are recorded as outcomes and never abort the
// batch.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString()}

	files, err := Discover(cfg.InputDir, cfg.Extensions)
	if err != nil {
		return stats, fmt.Errorf("file discovery: %w", err)
	}
	stats.Total = len(files)

	outDir := cfg.OutputDir()
	if !cfg.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return stats, fmt.Errorf("create output directory: %w", err)
		}
		lock, err := acquireLock(outDir)
		if err != nil {
			return stats, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				log.Warn("Failed to release lock: %v", err)
			}
		}()
		cleanStaging(outDir, log)
	}

	r := &runner{
		cfg:    cfg,
		log:    log,
		policy: planner.New(cfg.Thresholds, cfg.Encoders),
		exec:   &ffmpeg.Executor{FFmpegPath: cfg.FFmpegPath, Timeout: cfg.EncodeTimeout()},
		outDir: outDir,
		tty:    log.IsTerminal(),
	}

	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		if ctx.Err() != nil {
			stats.Interrupted = true
			log.Warn("Interrupted, %d file(s) not started", len(files)-i)
			break
		}
		stats.Current = i + 1
		stats.Record(r.processFile(ctx, path, i+1, len(files)))
		log.Blank()
	}

	logSummary(cfg, log, &stats)
	return stats, nil
}

// processFile handles one candidate: skip-existing → probe → decide → move
// or transcode. It always returns exactly one outcome.
func (r *runner) processFile(ctx context.Context, path string, n, total int) report.Outcome {
	name := filepath.Base(path)
	r.log.Info("[%d/%d] %s", n, total, name)

	// A file that has started is finished even if the batch is interrupted.
	ctx = context.WithoutCancel(ctx)

	// --- Skip-existing check ---
	out := OutputPath(r.outDir, path)
	if _, err := os.Stat(out); err == nil {
		r.log.Info("Skip (already processed): %s", name)
		return report.NewSkipped(name, "output exists")
	}

	// --- Probe ---
	info, err := probe.Probe(ctx, r.cfg.FFprobePath, path)
	if err != nil {
		if errors.Is(err, probe.ErrNoVideoStream) {
			r.log.Warn("No video stream found, skipping")
			return report.NewSkipped(name, "no video stream")
		}
		r.log.Warn("Cannot probe file, skipping: %v", err)
		return report.NewSkipped(name, "probe failed: %v", err)
	}
	logFileStats(r.log, info)

	// --- Decide ---
	plan := r.policy.Decide(info)
	if plan.Action == planner.ActionPassthrough {
		return r.passthrough(path, out, plan)
	}
	if info.DurationSeconds <= 0 {
		r.log.Warn("Unknown duration, skipping")
		return report.NewSkipped(name, "unknown duration")
	}
	return r.compress(ctx, path, out, info, plan)
}

func (r *runner) passthrough(path, out string, plan *planner.TranscodePlan) report.Outcome {
	name := filepath.Base(path)
	size := fileSize(path)
	threshold := display.FormatBitrateLabel(int64(r.policy.Thresholds().VideoBitrateThresholdKbps))
	source := display.FormatBitrateLabel(plan.SourceVideoKbps)

	if r.cfg.DryRun {
		r.log.Success("[DRY] Would move (video %s is below %s)", source, threshold)
		return report.Outcome{Kind: report.Moved, File: name, InputBytes: size, OutputBytes: size, DryRun: true}
	}

	if err := moveFile(path, out); err != nil {
		r.log.Error("Move failed: %v", err)
		o := report.NewFailed(name, ffmpeg.CategoryIO, err.Error())
		o.InputBytes = size
		return o
	}
	r.log.Success("Moved without re-encoding (video %s is below %s)", source, threshold)
	return report.Outcome{Kind: report.Moved, File: name, InputBytes: size, OutputBytes: size}
}

func (r *runner) compress(ctx context.Context, path, out string, info *probe.MediaInfo, plan *planner.TranscodePlan) report.Outcome {
	name := filepath.Base(path)
	r.log.Info("Compressing: video %s -> %dk @ %s fps, audio %s",
		display.FormatBitrateLabel(plan.SourceVideoKbps),
		plan.VideoBitrateKbps,
		plan.FrameRate,
		describeAudio(plan))

	if r.cfg.DryRun {
		r.log.Success("[DRY] Would compress")
		return report.Outcome{Kind: report.Compressed, File: name, InputBytes: fileSize(path), DryRun: true}
	}

	prog := display.NewProgress(r.log.Writer(), name, info.DurationSeconds, r.tty)
	o := r.exec.Execute(ctx, path, out, plan, info.DurationSeconds, func(ev ffmpeg.ProgressEvent) {
		prog.Update(ev.Percent, ev.ElapsedSeconds)
	})
	prog.Close()

	if o.Kind != report.Compressed {
		r.log.Error("Compression failed (%s)", o.Category)
		logStderr(r.log, o.Reason)
		return o
	}

	ratio := int64(100)
	if o.InputBytes > 0 {
		ratio = o.OutputBytes * 100 / o.InputBytes
	}
	r.log.Success("Compressed in %s (%d%% of original)", display.FormatElapsed(o.Elapsed), ratio)
	if o.Reason != "" {
		r.log.Warn("  %s", o.Reason)
	}
	return o
}

// cleanStaging removes staging files left by an interrupted earlier run.
func cleanStaging(outDir string, log *logging.Logger) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !ffmpeg.IsStagingName(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(outDir, e.Name())); err == nil {
			log.Debug("Removed stale staging file %s", e.Name())
		}
	}
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func describeAudio(plan *planner.TranscodePlan) string {
	switch plan.Audio {
	case planner.AudioCopy:
		return fmt.Sprintf("copy (%s)", display.FormatBitrateLabel(plan.SourceAudioKbps))
	case planner.AudioReencodeAAC:
		return fmt.Sprintf("%s -> %s %dk", display.FormatBitrateLabel(plan.SourceAudioKbps), plan.AudioCodec, plan.AudioBitrateKbps)
	default:
		return "none"
	}
}

func logStderr(log *logging.Logger, stderr string) {
	if stderr == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}
