package planner

import (
	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/probe"
)

// Policy turns probed metadata into a TranscodePlan using fixed thresholds.
type Policy struct {
	th  config.Thresholds
	enc config.Encoders
}

// New returns a Policy for the given thresholds and encoders.
func New(th config.Thresholds, enc config.Encoders) *Policy {
	return &Policy{th: th, enc: enc}
}

// Thresholds returns the thresholds the policy was built with.
func (p *Policy) Thresholds() config.Thresholds { return p.th }

// Decide produces the plan for one file. info must carry a video stream;
// the prober guarantees this.
//
// Flow:
//  1. Known video bitrate strictly below the threshold → passthrough.
//  2. Otherwise transcode: fixed video codec and target bitrate, output
//     frame rate taken from the source (30 when unknown).
//  3. Audio plan (none, copy, or AAC re-encode).
func (p *Policy) Decide(info *probe.MediaInfo) *TranscodePlan {
	plan := &TranscodePlan{
		VideoStreamIndex: info.Video.Index,
		AudioStreamIndex: -1,
		SourceVideoKbps:  info.Video.BitRateKbps(),
		SourceAudioKbps:  info.Audio.BitRateKbps(),
	}

	// --- 1. Passthrough ---
	if plan.SourceVideoKbps > 0 && plan.SourceVideoKbps < int64(p.th.VideoBitrateThresholdKbps) {
		plan.Action = ActionPassthrough
		return plan
	}

	// --- 2. Video ---
	plan.Action = ActionTranscode
	plan.VideoCodec = p.enc.Video
	plan.VideoBitrateKbps = p.th.TargetVideoBitrateKbps
	plan.FrameRate = info.Video.FrameRate()

	// --- 3. Audio ---
	p.planAudio(plan, info.Audio)
	return plan
}
