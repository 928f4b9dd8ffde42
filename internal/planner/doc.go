// Package planner decides per-file action (passthrough or transcode) and
// builds the TranscodePlan that the ffmpeg package consumes. Decisions are
// pure functions of the probed metadata and the configured thresholds.
package planner
