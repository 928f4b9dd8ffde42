package planner

import "github.com/backmassage/bitcap/internal/probe"

// Action describes the per-file processing decision.
type Action int

const (
	ActionTranscode Action = iota
	ActionPassthrough
)

func (a Action) String() string {
	switch a {
	case ActionPassthrough:
		return "passthrough"
	case ActionTranscode:
		return "transcode"
	default:
		return "unknown"
	}
}

// AudioMode describes how the audio track is carried into the output.
type AudioMode int

const (
	AudioNone        AudioMode = iota // Source has no audio; output gets -an.
	AudioCopy                         // Stream-copy the existing audio.
	AudioReencodeAAC                  // Re-encode to AAC at the target bitrate.
)

func (m AudioMode) String() string {
	switch m {
	case AudioNone:
		return "none"
	case AudioCopy:
		return "copy"
	case AudioReencodeAAC:
		return "aac"
	default:
		return "unknown"
	}
}

// TranscodePlan holds the decisions for one file. It is produced by
// [Policy.Decide] and consumed once by the executor. The encode fields are
// only meaningful when Action is ActionTranscode.
type TranscodePlan struct {
	Action Action

	// Video encoding.
	VideoCodec       string // e.g. "libx264"
	VideoBitrateKbps int
	FrameRate        probe.Rational

	// Audio.
	Audio            AudioMode
	AudioCodec       string // set only for AudioReencodeAAC
	AudioBitrateKbps int    // set only for AudioReencodeAAC

	// Stream selection (absolute ffprobe indices); AudioStreamIndex is -1
	// when there is no audio.
	VideoStreamIndex int
	AudioStreamIndex int

	// Source figures, kept for logging.
	SourceVideoKbps int64
	SourceAudioKbps int64
}
