package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const (
	keyOutTimeMS = "out_time_ms="
	lineEnd      = "progress=end"

	maxProgressLine = 1024 * 1024
)

// ProgressEvent is one surfaced progress sample.
type ProgressEvent struct {
	ElapsedSeconds float64
	Percent        int // 0..100
}

// LineStream yields the lines of an ffmpeg progress pipe one at a time.
// Next blocks until a line arrives or the pipe closes; the stream cannot be
// restarted.
type LineStream struct {
	sc   *bufio.Scanner
	line string
}

// NewLineStream wraps r. Lines longer than 1 MiB end the stream with an error.
func NewLineStream(r io.Reader) *LineStream {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxProgressLine)
	return &LineStream{sc: sc}
}

// Next advances to the next line, reporting false at end of stream.
func (s *LineStream) Next() bool {
	if !s.sc.Scan() {
		return false
	}
	s.line = strings.TrimSpace(s.sc.Text())
	return true
}

// Line returns the current line with surrounding whitespace removed.
func (s *LineStream) Line() string { return s.line }

// Err returns the first read error, or nil at a clean end of stream.
func (s *LineStream) Err() error { return s.sc.Err() }

// Tracker converts progress lines into percent events for one run.
// Surfaced percents are strictly increasing, so a run produces at most 101
// events however many lines ffmpeg writes.
type Tracker struct {
	duration float64
	last     int
	elapsed  float64
	done     bool
}

// NewTracker returns a Tracker for a source of duration seconds.
func NewTracker(duration float64) *Tracker {
	return &Tracker{duration: duration, last: -1}
}

// Observe consumes one line. It returns an event when the line moves the
// percent past the last surfaced value. Unparseable values and a zero
// duration are ignored. "progress=end" surfaces 100 if it has not been
// surfaced yet and marks the tracker done.
func (t *Tracker) Observe(line string) (ProgressEvent, bool) {
	if t.done {
		return ProgressEvent{}, false
	}
	line = strings.TrimSpace(line)

	switch {
	case line == lineEnd:
		t.done = true
		if t.duration > t.elapsed {
			t.elapsed = t.duration
		}
		if t.last == 100 {
			return ProgressEvent{}, false
		}
		t.last = 100
		return ProgressEvent{ElapsedSeconds: t.elapsed, Percent: 100}, true

	case strings.HasPrefix(line, keyOutTimeMS):
		// Despite the name, ffmpeg reports out_time_ms in microseconds.
		us, err := strconv.ParseInt(strings.TrimPrefix(line, keyOutTimeMS), 10, 64)
		if err != nil || t.duration <= 0 {
			return ProgressEvent{}, false
		}
		seconds := float64(us) / 1_000_000
		if seconds > t.elapsed {
			t.elapsed = seconds
		}
		pct := clampPercent(int(seconds / t.duration * 100))
		if pct <= t.last {
			return ProgressEvent{}, false
		}
		t.last = pct
		return ProgressEvent{ElapsedSeconds: t.elapsed, Percent: pct}, true
	}
	return ProgressEvent{}, false
}

// Done reports whether the end marker has been seen.
func (t *Tracker) Done() bool { return t.done }

// Percent returns the last surfaced percent, or -1 before the first event.
func (t *Tracker) Percent() int { return t.last }

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
