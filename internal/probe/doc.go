// Package probe provides ffprobe-based media inspection. A single JSON call
// per file yields the first video stream, the first audio stream, and the
// container duration.
//
// Missing or malformed numeric fields never fail a probe: bitrates fall back
// to 0 (unknown), duration to 0 (unknown), and frame rate to 30/1. A probe
// only fails when ffprobe itself fails or no video stream exists
// ([ErrNoVideoStream]).
package probe
