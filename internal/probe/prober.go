package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned when a file has no usable video stream.
var ErrNoVideoStream = errors.New("no video stream")

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result. ffprobePath may be a bare name resolved via PATH.
func Probe(ctx context.Context, ffprobePath, path string) (*MediaInfo, error) {
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	info, err := ParseJSON(out)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// ParseJSON converts raw ffprobe JSON output into a MediaInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*MediaInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildInfo(&raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	Index        int            `json:"index"`
	CodecName    string         `json:"codec_name"`
	CodecType    string         `json:"codec_type"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	BitRate      string         `json:"bit_rate"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	Disposition  map[string]int `json:"disposition"`
}

// --- Conversion from wire types to domain types ---

func buildInfo(raw *ffprobeOutput) (*MediaInfo, error) {
	info := &MediaInfo{
		DurationSeconds: parseDuration(raw.Format.Duration),
		SizeBytes:       parseInt64(raw.Format.Size),
		FormatName:      raw.Format.FormatName,
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch CodecType(s.CodecType) {
		case CodecVideo:
			// Cover art is reported as a video stream; it is never the one to encode.
			if s.Disposition["attached_pic"] == 1 || info.Video != nil {
				continue
			}
			info.Video = convertStream(s, CodecVideo)
		case CodecAudio:
			if info.Audio == nil {
				info.Audio = convertStream(s, CodecAudio)
			}
		}
	}

	if info.Video == nil {
		return nil, ErrNoVideoStream
	}
	return info, nil
}

func convertStream(s *ffprobeStream, kind CodecType) *StreamDescriptor {
	sd := &StreamDescriptor{
		Index:     s.Index,
		CodecType: kind,
		CodecName: s.CodecName,
		BitRate:   parseInt64(s.BitRate),
	}
	if kind == CodecVideo {
		sd.Width = s.Width
		sd.Height = s.Height
		sd.AvgFrameRate = s.AvgFrameRate
	}
	return sd
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

// parseInt64 returns 0 for empty, "N/A", negative or malformed values.
func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseDuration returns 0 for anything that is not a finite, non-negative
// number of seconds.
func parseDuration(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
