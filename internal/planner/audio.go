package planner

import "github.com/backmassage/bitcap/internal/probe"

// planAudio fills the audio fields of plan.
//
//   - No audio stream → AudioNone (produces -an).
//   - Bitrate at or above the copy ceiling → AAC at the target bitrate.
//   - Otherwise, including unknown bitrate (0) → stream copy, to avoid a
//     lossy-to-lossy re-encode when the source is already small enough or
//     cannot be verified.
func (p *Policy) planAudio(plan *TranscodePlan, audio *probe.StreamDescriptor) {
	if audio == nil {
		plan.Audio = AudioNone
		return
	}
	plan.AudioStreamIndex = audio.Index
	if audio.BitRateKbps() >= int64(p.th.AudioCopyCeilingKbps) {
		plan.Audio = AudioReencodeAAC
		plan.AudioCodec = p.enc.Audio
		plan.AudioBitrateKbps = p.th.TargetAudioBitrateKbps
		return
	}
	plan.Audio = AudioCopy
}
