package probe

import (
	"strconv"
	"strings"
)

// CodecType classifies an elementary stream.
type CodecType string

const (
	CodecVideo CodecType = "video"
	CodecAudio CodecType = "audio"
	CodecOther CodecType = "other"
)

// DefaultFrameRate is used when a video stream's average frame rate is
// absent or malformed.
var DefaultFrameRate = Rational{Num: 30, Den: 1}

// Rational is an ffprobe-style "num/den" value such as avg_frame_rate.
type Rational struct {
	Num int64
	Den int64
}

// ParseRational parses "num/den" (or a bare integer). It reports false on
// malformed input or a zero denominator.
func ParseRational(s string) (Rational, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, false
	}
	numStr, denStr, found := strings.Cut(s, "/")
	if !found {
		denStr = "1"
	}
	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return Rational{}, false
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil || den == 0 {
		return Rational{}, false
	}
	return Rational{Num: num, Den: den}, true
}

// Float returns num/den, or 0 when den is 0.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String renders the value in the form ffmpeg accepts for -r: "30" when the
// denominator is 1, otherwise "30000/1001".
func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10)
}

// StreamDescriptor holds the properties of one elementary stream that the
// policy and the progress display need.
type StreamDescriptor struct {
	Index     int
	CodecType CodecType
	CodecName string
	BitRate   int64 // bits/sec; 0 when not reported
	Width     int
	Height    int
	// AvgFrameRate is the raw avg_frame_rate string; see FrameRate.
	AvgFrameRate string
}

// BitRateKbps returns the stream bitrate in kbps (integer division), or 0
// when unknown.
func (s *StreamDescriptor) BitRateKbps() int64 {
	if s == nil || s.BitRate <= 0 {
		return 0
	}
	return s.BitRate / 1000
}

// FrameRate returns the parsed average frame rate, falling back to
// [DefaultFrameRate] when it is absent, malformed, has a zero denominator,
// or is not positive (ffprobe reports "0/0" for some streams).
func (s *StreamDescriptor) FrameRate() Rational {
	if s == nil {
		return DefaultFrameRate
	}
	r, ok := ParseRational(s.AvgFrameRate)
	if !ok || r.Num <= 0 || r.Den < 0 {
		return DefaultFrameRate
	}
	return r
}

// MediaInfo is the result of probing one input file. Video is always set
// on a successful probe; Audio is nil when the file has no audio stream.
type MediaInfo struct {
	Path            string
	Video           *StreamDescriptor
	Audio           *StreamDescriptor
	DurationSeconds float64 // 0 means unknown
	SizeBytes       int64
	FormatName      string
}

// Resolution returns "WxH" for the video stream, or "unknown".
func (m *MediaInfo) Resolution() string {
	if m.Video == nil || m.Video.Width <= 0 || m.Video.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(m.Video.Width) + "x" + strconv.Itoa(m.Video.Height)
}
