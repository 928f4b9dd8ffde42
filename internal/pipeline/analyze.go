package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/display"
	"github.com/backmassage/bitcap/internal/logging"
	"github.com/backmassage/bitcap/internal/planner"
	"github.com/backmassage/bitcap/internal/probe"
)

// Planned actions reported by Analyze.
const (
	PlanMove     = "move"
	PlanCompress = "compress"
	PlanDone     = "done"
	PlanSkip     = "skip"
)

// AnalysisRow is the probed data and planned action for one candidate.
type AnalysisRow struct {
	Name       string
	VideoCodec string
	Resolution string
	VideoKbps  int64
	AudioCodec string
	AudioKbps  int64
	Duration   float64
	FrameRate  string
	Plan       string
	Note       string
	Flag       string // "", "outlier", or "extreme" for the video bitrate
}

// AnalyzeFiles probes every candidate in cfg.InputDir and reports what a
// run would do with it, without touching any file.
func AnalyzeFiles(ctx context.Context, cfg *config.Config) ([]AnalysisRow, error) {
	files, err := Discover(cfg.InputDir, cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("file discovery: %w", err)
	}

	policy := planner.New(cfg.Thresholds, cfg.Encoders)
	outDir := cfg.OutputDir()
	rows := make([]AnalysisRow, 0, len(files))
	var kbpsVals []float64

	for _, path := range files {
		if ctx.Err() != nil {
			return rows, ctx.Err()
		}
		row := AnalysisRow{Name: filepath.Base(path)}

		if _, err := os.Stat(OutputPath(outDir, path)); err == nil {
			row.Plan = PlanDone
			rows = append(rows, row)
			continue
		}

		info, err := probe.Probe(ctx, cfg.FFprobePath, path)
		if err != nil {
			row.Plan = PlanSkip
			row.Note = "probe failed"
			if errors.Is(err, probe.ErrNoVideoStream) {
				row.Note = "no video stream"
			}
			rows = append(rows, row)
			continue
		}

		row.VideoCodec = info.Video.CodecName
		row.Resolution = info.Resolution()
		row.VideoKbps = info.Video.BitRateKbps()
		row.FrameRate = info.Video.FrameRate().String()
		row.Duration = info.DurationSeconds
		if info.Audio != nil {
			row.AudioCodec = info.Audio.CodecName
			row.AudioKbps = info.Audio.BitRateKbps()
		}
		if row.VideoKbps > 0 {
			kbpsVals = append(kbpsVals, float64(row.VideoKbps))
		}

		plan := policy.Decide(info)
		switch {
		case plan.Action == planner.ActionPassthrough:
			row.Plan = PlanMove
		case info.DurationSeconds <= 0:
			row.Plan = PlanSkip
			row.Note = "unknown duration"
		default:
			row.Plan = PlanCompress
			row.Note = "audio " + plan.Audio.String()
		}
		rows = append(rows, row)
	}

	bounds := computeStats(kbpsVals)
	for i := range rows {
		rows[i].Flag = bounds.classify(float64(rows[i].VideoKbps))
	}
	return rows, nil
}

// Analyze prints the AnalyzeFiles table and a short summary.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	log.Info("Analyzing %s …", cfg.InputDir)
	rows, err := AnalyzeFiles(ctx, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if len(rows) == 0 {
		log.Warn("No candidate files found in %s", cfg.InputDir)
		return nil
	}

	writeBlock(log.Writer(), AnalysisTable(rows))

	counts := map[string]int{}
	var flagged int
	for _, r := range rows {
		counts[r.Plan]++
		if r.Flag != "" {
			flagged++
		}
	}
	log.Info("Analyzed %d files: %d to move, %d to compress, %d done, %d to skip",
		len(rows), counts[PlanMove], counts[PlanCompress], counts[PlanDone], counts[PlanSkip])
	if flagged > 0 {
		log.Warn("%d video bitrate outlier(s) flagged", flagged)
	}
	if errors.Is(err, context.Canceled) {
		log.Warn("Interrupted")
	}
	return nil
}

// AnalysisTable renders rows with go-pretty.
func AnalysisTable(rows []AnalysisRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Video", "Resolution", "Video Bitrate", "FPS", "Audio", "Audio Bitrate", "Duration", "Plan", "Flag"})
	for _, r := range rows {
		plan := r.Plan
		if r.Note != "" {
			plan += " (" + r.Note + ")"
		}
		duration := ""
		if r.Duration > 0 {
			duration = fmt.Sprintf("%.1fs", r.Duration)
		}
		videoKbps, audioKbps := "", ""
		if r.VideoCodec != "" {
			videoKbps = display.FormatBitrateLabel(r.VideoKbps)
		}
		if r.AudioCodec != "" {
			audioKbps = display.FormatBitrateLabel(r.AudioKbps)
		}
		tw.AppendRow(table.Row{r.Name, r.VideoCodec, r.Resolution, videoKbps, r.FrameRate,
			r.AudioCodec, audioKbps, duration, plan, flagMark(r.Flag)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	return tw.Render()
}

func flagMark(flag string) string {
	switch flag {
	case "extreme":
		return "[!]"
	case "outlier":
		return "[*]"
	default:
		return ""
	}
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
