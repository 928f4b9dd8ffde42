package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/bitcap/internal/planner"
)

// Build constructs the complete ffmpeg argument slice (binary first) that
// encodes input into output according to plan.
//
// Progress goes to stdout as key=value lines (-progress pipe:1); stderr is
// limited to error-level messages so it can be reported verbatim on failure.
func Build(ffmpegPath, input, output string, plan *planner.TranscodePlan) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, ffmpegPath, "-hide_banner", "-nostdin")

	// --- Input ---
	args = append(args, "-i", input)

	// --- Stream maps ---
	args = append(args, "-map", fmt.Sprintf("0:%d", plan.VideoStreamIndex))
	if plan.Audio != planner.AudioNone && plan.AudioStreamIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:%d", plan.AudioStreamIndex))
	}

	// --- Video codec ---
	args = append(args,
		"-c:v", plan.VideoCodec,
		"-b:v", kbps(plan.VideoBitrateKbps),
		"-r", plan.FrameRate.String(),
	)

	// --- Audio codec ---
	args = appendAudio(args, plan)

	// --- Progress and diagnostics ---
	args = append(args,
		"-progress", "pipe:1",
		"-nostats",
		"-loglevel", "error",
	)

	// --- Output ---
	args = append(args, "-y", output)
	return args
}

func appendAudio(args []string, plan *planner.TranscodePlan) []string {
	switch plan.Audio {
	case planner.AudioCopy:
		return append(args, "-c:a", "copy")
	case planner.AudioReencodeAAC:
		return append(args,
			"-c:a", plan.AudioCodec,
			"-b:a", kbps(plan.AudioBitrateKbps),
		)
	default:
		return append(args, "-an")
	}
}

func kbps(n int) string {
	return strconv.Itoa(n) + "k"
}
