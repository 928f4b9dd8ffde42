package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/bitcap/internal/planner"
	"github.com/backmassage/bitcap/internal/probe"
	"github.com/backmassage/bitcap/internal/report"
)

func transcodePlan(audio planner.AudioMode) *planner.TranscodePlan {
	p := &planner.TranscodePlan{
		Action:           planner.ActionTranscode,
		VideoCodec:       "libx264",
		VideoBitrateKbps: 20000,
		FrameRate:        probe.Rational{Num: 30, Den: 1},
		Audio:            audio,
		VideoStreamIndex: 0,
		AudioStreamIndex: 1,
	}
	if audio == planner.AudioNone {
		p.AudioStreamIndex = -1
	}
	if audio == planner.AudioReencodeAAC {
		p.AudioCodec = "aac"
		p.AudioBitrateKbps = 192
	}
	return p
}

// --- Builder ---

func TestBuild_AudioCopy(t *testing.T) {
	args := Build("ffmpeg", "/in/a.mp4", "/out/a.mp4", transcodePlan(planner.AudioCopy))
	want := []string{
		"ffmpeg", "-hide_banner", "-nostdin",
		"-i", "/in/a.mp4",
		"-map", "0:0", "-map", "0:1",
		"-c:v", "libx264", "-b:v", "20000k", "-r", "30",
		"-c:a", "copy",
		"-progress", "pipe:1", "-nostats", "-loglevel", "error",
		"-y", "/out/a.mp4",
	}
	assert.Equal(t, want, args)
}

func TestBuild_AudioVariants(t *testing.T) {
	aac := strings.Join(Build("ffmpeg", "in", "out", transcodePlan(planner.AudioReencodeAAC)), " ")
	assert.Contains(t, aac, "-c:a aac -b:a 192k")
	assert.NotContains(t, aac, "-an")

	none := Build("ffmpeg", "in", "out", transcodePlan(planner.AudioNone))
	joined := strings.Join(none, " ")
	assert.Contains(t, joined, "-an")
	assert.NotContains(t, joined, "-c:a")
	assert.NotContains(t, joined, "0:-1")
	assert.Equal(t, "out", none[len(none)-1])
}

func TestBuild_RationalFrameRate(t *testing.T) {
	plan := transcodePlan(planner.AudioNone)
	plan.FrameRate = probe.Rational{Num: 30000, Den: 1001}
	joined := strings.Join(Build("/opt/ffmpeg", "in", "out", plan), " ")
	assert.Contains(t, joined, "-r 30000/1001")
	assert.True(t, strings.HasPrefix(joined, "/opt/ffmpeg "))
}

// --- Progress tracking ---

func observeAll(tr *Tracker, lines ...string) []int {
	var got []int
	for _, l := range lines {
		if ev, ok := tr.Observe(l); ok {
			got = append(got, ev.Percent)
		}
	}
	return got
}

func TestTracker_HalfThenEnd(t *testing.T) {
	tr := NewTracker(120)
	got := observeAll(tr, "frame=10", "out_time_ms=60000000", "progress=continue", "progress=end")
	assert.Equal(t, []int{50, 100}, got)
	assert.True(t, tr.Done())
}

func TestTracker_MonotonicAndClamped(t *testing.T) {
	tr := NewTracker(10)
	got := observeAll(tr,
		"out_time_ms=1000000",
		"out_time_ms=1000000",
		"out_time_ms=500000",
		"out_time_ms=-2000000",
		"out_time_ms=30000000",
		"out_time_ms=40000000",
		"progress=end",
	)
	assert.Equal(t, []int{10, 100}, got, "no repeats, no regressions, end does not repeat 100")
}

func TestTracker_MalformedAndZeroDuration(t *testing.T) {
	tr := NewTracker(60)
	assert.Empty(t, observeAll(tr, "out_time_ms=N/A", "out_time_ms=", "garbage", "out_time=00:00:01.000000"))

	zero := NewTracker(0)
	assert.Equal(t, []int{100}, observeAll(zero, "out_time_ms=5000000", "progress=end"))
}

func TestTracker_IgnoresLinesAfterEnd(t *testing.T) {
	tr := NewTracker(100)
	observeAll(tr, "progress=end")
	assert.Empty(t, observeAll(tr, "out_time_ms=10000000", "progress=end"))
	assert.Equal(t, 100, tr.Percent())
}

func TestTracker_ElapsedSeconds(t *testing.T) {
	tr := NewTracker(120)
	ev, ok := tr.Observe("out_time_ms=30000000")
	require.True(t, ok)
	assert.Equal(t, 25, ev.Percent)
	assert.InDelta(t, 30.0, ev.ElapsedSeconds, 1e-9)
}

func TestLineStream(t *testing.T) {
	s := NewLineStream(strings.NewReader("a=1\r\n  b=2  \n\nprogress=end"))
	var lines []string
	for s.Next() {
		lines = append(lines, s.Line())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"a=1", "b=2", "", "progress=end"}, lines)
}

func TestLineStream_OverlongLine(t *testing.T) {
	s := NewLineStream(strings.NewReader(strings.Repeat("x", maxProgressLine+10) + "\n"))
	assert.False(t, s.Next())
	assert.Error(t, s.Err())
}

// --- Failure classification ---

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		stderr string
		want   string
	}{
		{"Unknown encoder 'libx264'", CategoryEncoder},
		{"Error while opening encoder for output stream #0:0", CategoryEncoder},
		{"in.mp4: Invalid data found when processing input", CategoryInput},
		{"moov atom not found", CategoryInput},
		{"av_interleaved_write_frame(): No space left on device", CategoryDiskFull},
		{"out.mp4: Permission denied", CategoryPermission},
		{"exit status 1", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyFailure(tt.stderr), "stderr %q", tt.stderr)
	}
}

// --- Executor ---

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
// $last inside body is the output path.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

type execFixture struct {
	input  string
	output string
}

func newFixture(t *testing.T) execFixture {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "compressed")
	require.NoError(t, os.Mkdir(out, 0o755))
	in := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(in, []byte(strings.Repeat("v", 4096)), 0o644))
	return execFixture{input: in, output: filepath.Join(out, "clip.mp4")}
}

func TestExecute_Success(t *testing.T) {
	fx := newFixture(t)
	ff := fakeFFmpeg(t, `printf 'frame=1\nout_time_ms=60000000\nprogress=continue\nprogress=end\n'
printf 'small' > "$last"`)

	var percents []int
	e := &Executor{FFmpegPath: ff}
	o := e.Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioCopy), 120,
		func(ev ProgressEvent) { percents = append(percents, ev.Percent) })

	require.Equal(t, report.Compressed, o.Kind, o.Reason)
	assert.Equal(t, []int{50, 100}, percents)
	assert.Equal(t, "clip.mp4", o.File)
	assert.Equal(t, int64(4096), o.InputBytes)
	assert.Equal(t, int64(5), o.OutputBytes)

	data, err := os.ReadFile(fx.output)
	require.NoError(t, err)
	assert.Equal(t, "small", string(data))
	assert.NoFileExists(t, fx.input, "source is removed after a successful encode")
	assert.NoFileExists(t, StagingPath(fx.output))
}

func TestExecute_WritesToStagingPath(t *testing.T) {
	fx := newFixture(t)
	argsFile := filepath.Join(t.TempDir(), "args")
	ff := fakeFFmpeg(t, `printf '%s\n' "$@" > '`+argsFile+`'
printf 'x' > "$last"`)

	o := (&Executor{FFmpegPath: ff}).Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioNone), 10, nil)
	require.Equal(t, report.Compressed, o.Kind, o.Reason)

	raw, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, StagingPath(fx.output), args[len(args)-1])
	assert.True(t, IsStagingName(filepath.Base(args[len(args)-1])))
}

func TestExecute_FailureCleansUp(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(fx.output, []byte("stale"), 0o644))
	ff := fakeFFmpeg(t, `printf 'partial' > "$last"
echo 'clip.mp4: Invalid data found when processing input' >&2
exit 1`)

	o := (&Executor{FFmpegPath: ff}).Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioCopy), 120, nil)

	require.Equal(t, report.Failed, o.Kind)
	assert.Equal(t, CategoryInput, o.Category)
	assert.Contains(t, o.Reason, "Invalid data found")
	assert.FileExists(t, fx.input, "source is kept on failure")
	assert.NoFileExists(t, fx.output)
	assert.NoFileExists(t, StagingPath(fx.output))
}

func TestExecute_FailureWithoutStderr(t *testing.T) {
	fx := newFixture(t)
	ff := fakeFFmpeg(t, "exit 3")

	o := (&Executor{FFmpegPath: ff}).Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioCopy), 120, nil)
	require.Equal(t, report.Failed, o.Kind)
	assert.Contains(t, o.Reason, "exit status 3")
	assert.Equal(t, CategoryOther, o.Category)
}

func TestExecute_LaunchFailure(t *testing.T) {
	fx := newFixture(t)
	e := &Executor{FFmpegPath: filepath.Join(t.TempDir(), "no-such-ffmpeg")}

	o := e.Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioCopy), 120, nil)
	require.Equal(t, report.Failed, o.Kind)
	assert.Equal(t, CategoryLaunch, o.Category)
	assert.FileExists(t, fx.input)
}

func TestExecute_ExitZeroWithoutOutput(t *testing.T) {
	fx := newFixture(t)
	ff := fakeFFmpeg(t, "printf 'progress=end\\n'")

	o := (&Executor{FFmpegPath: ff}).Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioCopy), 120, nil)
	require.Equal(t, report.Failed, o.Kind)
	assert.Equal(t, CategoryIO, o.Category)
	assert.FileExists(t, fx.input)
}

func TestExecute_Timeout(t *testing.T) {
	fx := newFixture(t)
	ff := fakeFFmpeg(t, "exec sleep 5")

	e := &Executor{FFmpegPath: ff, Timeout: 200 * time.Millisecond}
	o := e.Execute(context.Background(), fx.input, fx.output, transcodePlan(planner.AudioCopy), 120, nil)

	require.Equal(t, report.Failed, o.Kind)
	assert.Equal(t, CategoryTimeout, o.Category)
	assert.Less(t, o.Elapsed, 4*time.Second)
	assert.FileExists(t, fx.input)
}

func TestExecute_RejectsPassthroughPlan(t *testing.T) {
	fx := newFixture(t)
	o := (&Executor{}).Execute(context.Background(), fx.input, fx.output,
		&planner.TranscodePlan{Action: planner.ActionPassthrough}, 120, nil)
	assert.Equal(t, report.Failed, o.Kind)
	assert.FileExists(t, fx.input)
}
