package pipeline

import (
	"fmt"
	"io"

	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/display"
	"github.com/backmassage/bitcap/internal/logging"
	"github.com/backmassage/bitcap/internal/probe"
	"github.com/backmassage/bitcap/internal/report"
)

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	th := cfg.Thresholds
	log.Info("Run %s", stats.RunID)
	log.Info("Found %d candidate files in %s", stats.Total, cfg.InputDir)
	log.Info("Output: %s", cfg.OutputDir())
	log.Info("Video: move when below %d kbps, otherwise %s at %dk",
		th.VideoBitrateThresholdKbps, cfg.Encoders.Video, th.TargetVideoBitrateKbps)
	log.Info("Audio: copy when below %d kbps, otherwise %s at %dk",
		th.AudioCopyCeilingKbps, cfg.Encoders.Audio, th.TargetAudioBitrateKbps)
	if t := cfg.EncodeTimeout(); t > 0 {
		log.Info("Encode timeout: %s per file", t)
	}
	if cfg.DryRun {
		log.Warn("Dry run: nothing will be moved, encoded, or deleted")
	}
	log.Blank()
}

func logFileStats(log *logging.Logger, info *probe.MediaInfo) {
	v := info.Video
	codec := v.CodecName
	if codec == "" {
		codec = "unknown"
	}
	audio := "none"
	if info.Audio != nil {
		audio = fmt.Sprintf("%s %s", info.Audio.CodecName, display.FormatBitrateLabel(info.Audio.BitRateKbps()))
	}
	log.Info("  Video: %s | %s | %s | %s fps", info.Resolution(),
		display.FormatBitrateLabel(v.BitRateKbps()), codec, v.FrameRate())
	log.Info("  Audio: %s | Duration: %.1fs", audio, info.DurationSeconds)
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d moved, %d compressed, %d skipped, %d failed",
		stats.Moved, stats.Compressed, stats.Skipped, stats.Failed)
	log.Info("  Total files processed: %d of %d", stats.Current, stats.Total)

	if t := report.Table(stats.Outcomes); t != "" {
		writeBlock(log.Writer(), t)
	}

	if cfg.DryRun {
		log.Info("  Total space saved: n/a (dry run)")
		return
	}
	if stats.Compressed == 0 {
		return
	}

	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Success("  Total space saved: %s (input %s -> output %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	} else {
		log.Warn("  Total space saved: -%s (overall output is larger)",
			display.FormatBytes(-saved))
	}
}

func writeBlock(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
	if len(s) > 0 && s[len(s)-1] != '\n' {
		_, _ = io.WriteString(w, "\n")
	}
}
