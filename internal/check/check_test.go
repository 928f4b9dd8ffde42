package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/bitcap/internal/config"
)

type recordLogger struct {
	lines []string
}

func (r *recordLogger) add(level, format string, args ...any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordLogger) Info(f string, a ...any)    { r.add("INFO", f, a...) }
func (r *recordLogger) Success(f string, a ...any) { r.add("SUCCESS", f, a...) }
func (r *recordLogger) Warn(f string, a ...any)    { r.add("WARN", f, a...) }
func (r *recordLogger) Error(f string, a ...any)   { r.add("ERROR", f, a...) }
func (r *recordLogger) Debug(f string, a ...any)   { r.add("DEBUG", f, a...) }

func (r *recordLogger) joined() string { return strings.Join(r.lines, "\n") }

func script(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// fakeFFmpeg prints a version, lists encoders, and fails any test encode
// that mentions failEncoder.
func fakeFFmpeg(t *testing.T, failEncoder string) string {
	t.Helper()
	return script(t, "ffmpeg", `case "$*" in
  *-version*) echo "ffmpeg version 6.1-test"; exit 0 ;;
  *-encoders*) printf ' V....D libx264              H.264 / AVC\n A....D aac                  AAC\n'; exit 0 ;;
  *`+failEncoder+`*) exit 1 ;;
esac
exit 0`)
}

func testConfig(t *testing.T, failEncoder string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.FFmpegPath = fakeFFmpeg(t, failEncoder)
	cfg.FFprobePath = script(t, "ffprobe", `echo "ffprobe version 6.1-test"`)
	return &cfg
}

func TestCheckDeps_OK(t *testing.T) {
	assert.NoError(t, CheckDeps(testConfig(t, "no-such-encoder")))
}

func TestCheckDeps_Failures(t *testing.T) {
	cfg := testConfig(t, "libx264")
	assert.ErrorIs(t, CheckDeps(cfg), ErrVideoEncoderFailed)

	cfg = testConfig(t, "sine=frequency")
	assert.ErrorIs(t, CheckDeps(cfg), ErrAudioEncoderFailed)

	cfg = testConfig(t, "none")
	cfg.FFprobePath = filepath.Join(t.TempDir(), "missing-ffprobe")
	assert.ErrorIs(t, CheckDeps(cfg), ErrFFprobeNotFound)

	cfg.FFmpegPath = filepath.Join(t.TempDir(), "missing-ffmpeg")
	assert.ErrorIs(t, CheckDeps(cfg), ErrFFmpegNotFound)
}

func TestRunCheck_ReportsEachStep(t *testing.T) {
	cfg := testConfig(t, "no-such-encoder")
	cfg.InputDir = t.TempDir()
	log := &recordLogger{}

	assert.True(t, RunCheck(cfg, log))
	out := log.joined()
	assert.Contains(t, out, "SUCCESS ffmpeg: ffmpeg version 6.1-test")
	assert.Contains(t, out, "SUCCESS ffprobe: ffprobe version 6.1-test")
	assert.Contains(t, out, "libx264")
	assert.Contains(t, out, "SUCCESS libx264 works")
	assert.Contains(t, out, "SUCCESS aac works")
	assert.Contains(t, out, "read/write ok")
}

func TestRunCheck_FailedEncoder(t *testing.T) {
	log := &recordLogger{}
	assert.False(t, RunCheck(testConfig(t, "libx264"), log))
	assert.Contains(t, log.joined(), "ERROR libx264 test encode failed")
}

func TestRunCheck_MissingTool(t *testing.T) {
	cfg := testConfig(t, "none")
	cfg.FFmpegPath = filepath.Join(t.TempDir(), "missing")
	log := &recordLogger{}
	assert.False(t, RunCheck(cfg, log))
	assert.Contains(t, log.joined(), "ERROR ffmpeg not found")
}

func TestCheckFolder(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckFolder(dir))

	file := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.ErrorIs(t, CheckFolder(file), ErrNotDirectory)

	assert.Error(t, CheckFolder(filepath.Join(dir, "missing")))
}
