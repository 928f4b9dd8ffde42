// Package ffmpeg builds and runs the transcode command for one file, parses
// its -progress stream into percent updates, and turns the exit status into
// a per-file outcome.
//
// The encode writes to a hidden staging file beside the final output; only
// after ffmpeg exits 0 is that file synced, renamed into place, and the
// source deleted. Any failure removes the staging file and any stale output.
// There are no retries.
package ffmpeg
