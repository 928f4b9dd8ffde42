package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/bitcap/internal/check"
	"github.com/backmassage/bitcap/internal/config"
)

func newTestContext(t *testing.T, flagArgs []string, stdin string) (*commandContext, *bytes.Buffer) {
	t.Helper()
	fs := pflag.NewFlagSet("bitcap", pflag.ContinueOnError)
	flags := config.BindFlags(fs)
	require.NoError(t, fs.Parse(flagArgs))
	var out bytes.Buffer
	return &commandContext{flags: flags, in: strings.NewReader(stdin), out: &out}, &out
}

func TestPromptFolder(t *testing.T) {
	var out bytes.Buffer
	got, err := promptFolder(strings.NewReader("  /videos/trip  \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/videos/trip", got)
	assert.Equal(t, "Enter the folder path: ", out.String())

	got, err = promptFolder(strings.NewReader("/no/newline"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/no/newline", got)

	_, err = promptFolder(strings.NewReader(""), &out)
	assert.Error(t, err)
}

func TestResolveFolder(t *testing.T) {
	dir := t.TempDir()

	ctx, _ := newTestContext(t, nil, "")
	got, err := ctx.resolveFolder([]string{`"` + dir + `/"`})
	require.NoError(t, err)
	assert.Equal(t, dir, got, "quotes and trailing slash are stripped")

	ctx, out := newTestContext(t, nil, "'"+dir+"'\n")
	got, err = ctx.resolveFolder(nil)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.Contains(t, out.String(), "Enter the folder path")

	file := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = ctx.resolveFolder([]string{file})
	assert.ErrorIs(t, err, check.ErrNotDirectory)

	ctx, _ = newTestContext(t, nil, "\n")
	_, err = ctx.resolveFolder(nil)
	assert.Error(t, err)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitcap.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
preset = "compact"
encode_timeout_seconds = 30

[thresholds]
target_audio_bitrate_kbps = 160
`), 0o644))

	ctx, _ := newTestContext(t, []string{"--config", path, "--timeout", "90", "--dry-run"}, "")
	cfg, err := ctx.loadConfig("/videos/")
	require.NoError(t, err)

	assert.Equal(t, "/videos", cfg.InputDir)
	assert.Equal(t, 15000, cfg.Thresholds.VideoBitrateThresholdKbps, "preset from file")
	assert.Equal(t, 160, cfg.Thresholds.TargetAudioBitrateKbps, "explicit key beats preset")
	assert.Equal(t, 90, cfg.EncodeTimeoutSeconds, "flag beats file")
	assert.True(t, cfg.DryRun)
}

func TestLoadConfig_Errors(t *testing.T) {
	ctx, _ := newTestContext(t, []string{"--preset", "tiny"}, "")
	_, err := ctx.loadConfig("/videos")
	assert.Error(t, err)

	ctx, _ = newTestContext(t, []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, "")
	_, err = ctx.loadConfig("/videos")
	assert.Error(t, err)
}

func TestRootCommand_Wiring(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["analyze"])
	assert.True(t, names["check"])

	for _, flag := range []string{"config", "preset", "dry-run", "watch", "timeout", "verbose", "color", "no-color", "log"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	root.SetArgs([]string{"a", "b"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute(), "at most one folder")
}

func TestAnalyzeCommand_FakeProbe(t *testing.T) {
	tools := t.TempDir()
	probe := filepath.Join(tools, "ffprobe")
	require.NoError(t, os.WriteFile(probe, []byte(`#!/bin/sh
echo '{"streams":[{"index":0,"codec_type":"video","codec_name":"h264","bit_rate":"8000000","avg_frame_rate":"30/1"}],"format":{"duration":"10"}}'
`), 0o755))
	cfgPath := filepath.Join(tools, "bitcap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ffprobe_path: "+probe+"\ncolor: never\n"), 0o644))

	videos := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(videos, "clip.mp4"), []byte("x"), 0o644))

	root := newRootCommand()
	root.SetArgs([]string{"analyze", "--config", cfgPath, videos})
	require.NoError(t, root.Execute())
	assert.FileExists(t, filepath.Join(videos, "clip.mp4"))
}
