// Package config holds runtime configuration: defaults, bitrate presets,
// config-file loading, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Preset names. Standard is the default; compact trades quality for size.
const (
	PresetStandard = "standard"
	PresetCompact  = "compact"
)

// Thresholds are the four bitrate knobs that drive the transcode policy.
// All values are in kbps.
type Thresholds struct {
	// Files whose video bitrate is known and strictly below this are moved
	// without re-encoding.
	VideoBitrateThresholdKbps int `toml:"video_bitrate_threshold_kbps" yaml:"video_bitrate_threshold_kbps"`
	TargetVideoBitrateKbps    int `toml:"target_video_bitrate_kbps" yaml:"target_video_bitrate_kbps"`
	// Audio at or above this is re-encoded to AAC; below it is stream-copied.
	AudioCopyCeilingKbps   int `toml:"audio_copy_ceiling_kbps" yaml:"audio_copy_ceiling_kbps"`
	TargetAudioBitrateKbps int `toml:"target_audio_bitrate_kbps" yaml:"target_audio_bitrate_kbps"`
}

// Encoders names the ffmpeg encoders used on the transcode path.
type Encoders struct {
	Video string `toml:"video" yaml:"video"` // Default: "libx264".
	Audio string `toml:"audio" yaml:"audio"` // Default: "aac".
}

var presets = map[string]Thresholds{
	PresetStandard: {
		VideoBitrateThresholdKbps: 20_000,
		TargetVideoBitrateKbps:    20_000,
		AudioCopyCeilingKbps:      225,
		TargetAudioBitrateKbps:    192,
	},
	PresetCompact: {
		VideoBitrateThresholdKbps: 15_000,
		TargetVideoBitrateKbps:    15_000,
		AudioCopyCeilingKbps:      194,
		TargetAudioBitrateKbps:    194,
	},
}

// PresetThresholds returns the thresholds registered under name.
func PresetThresholds(name string) (Thresholds, bool) {
	th, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return th, ok
}

// PresetNames returns the known preset names in display order.
func PresetNames() []string {
	return []string{PresetStandard, PresetCompact}
}

// DefaultExtensions is the candidate extension set (lowercase, leading dot).
var DefaultExtensions = []string{".mp4", ".mov", ".m4v", ".3gp", ".avi", ".mkv", ".webm"}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then overlaid by [Load] and [Flags.Apply] before being passed (by pointer)
// to the packages that need it.
type Config struct {
	// Paths.
	InputDir     string   `toml:"-" yaml:"-"`
	OutputSubdir string   `toml:"output_subdir" yaml:"output_subdir"` // Default: "compressed".
	Extensions   []string `toml:"extensions" yaml:"extensions"`

	// Policy.
	Preset     string     `toml:"preset" yaml:"preset"` // Informational once applied.
	Thresholds Thresholds `toml:"thresholds" yaml:"thresholds"`
	Encoders   Encoders   `toml:"encoders" yaml:"encoders"`

	// External tools.
	FFmpegPath  string `toml:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path" yaml:"ffprobe_path"`

	// EncodeTimeoutSeconds bounds a single transcode. 0 (default) means no
	// timeout: a hung ffmpeg blocks the batch.
	EncodeTimeoutSeconds int `toml:"encode_timeout_seconds" yaml:"encode_timeout_seconds"`

	// Behavior flags.
	DryRun             bool `toml:"-" yaml:"-"`
	Watch              bool `toml:"watch" yaml:"watch"`
	WatchSettleSeconds int  `toml:"watch_settle_seconds" yaml:"watch_settle_seconds"` // Default: 10.

	// Display and logging.
	Verbose   bool      `toml:"verbose" yaml:"verbose"`
	ColorMode ColorMode `toml:"color" yaml:"color"`
	LogFile   string    `toml:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a Config using the standard preset.
func DefaultConfig() Config {
	th, _ := PresetThresholds(PresetStandard)
	return Config{
		OutputSubdir:       "compressed",
		Extensions:         append([]string(nil), DefaultExtensions...),
		Preset:             PresetStandard,
		Thresholds:         th,
		Encoders:           Encoders{Video: "libx264", Audio: "aac"},
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		WatchSettleSeconds: 10,
		ColorMode:          ColorAuto,
	}
}

// ApplyPreset replaces the thresholds with the named preset.
func (c *Config) ApplyPreset(name string) error {
	th, ok := PresetThresholds(name)
	if !ok {
		return fmt.Errorf("unknown preset %q (use %s)", name, strings.Join(PresetNames(), " or "))
	}
	c.Thresholds = th
	c.Preset = strings.ToLower(strings.TrimSpace(name))
	return nil
}

// EncodeTimeout returns the per-file transcode timeout; zero means none.
func (c *Config) EncodeTimeout() time.Duration {
	return time.Duration(c.EncodeTimeoutSeconds) * time.Second
}

// WatchSettle returns how long watch mode waits after the last change.
func (c *Config) WatchSettle() time.Duration {
	return time.Duration(c.WatchSettleSeconds) * time.Second
}

// OutputDir returns the directory that receives moved and compressed files.
func (c *Config) OutputDir() string {
	return filepath.Join(c.InputDir, c.OutputSubdir)
}

// NormalizeDirArg strips surrounding quotes and trailing slashes from a
// directory path. Quotes show up when a path is pasted from a file manager.
// The filesystem root "/" is returned unchanged.
func NormalizeDirArg(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges, and canonicalizes the
// extension list. It does not touch the filesystem.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	th := c.Thresholds
	if th.VideoBitrateThresholdKbps <= 0 || th.TargetVideoBitrateKbps <= 0 {
		return errors.New("video bitrate threshold and target must be positive kbps values")
	}
	if th.AudioCopyCeilingKbps <= 0 || th.TargetAudioBitrateKbps <= 0 {
		return errors.New("audio copy ceiling and target must be positive kbps values")
	}

	if strings.TrimSpace(c.Encoders.Video) == "" || strings.TrimSpace(c.Encoders.Audio) == "" {
		return errors.New("video and audio encoders must not be empty")
	}
	if strings.TrimSpace(c.FFmpegPath) == "" || strings.TrimSpace(c.FFprobePath) == "" {
		return errors.New("ffmpeg and ffprobe paths must not be empty")
	}

	sub := strings.TrimSpace(c.OutputSubdir)
	if sub == "" || sub == "." || strings.ContainsRune(sub, filepath.Separator) {
		return fmt.Errorf("invalid output subdir %q (use a plain directory name)", c.OutputSubdir)
	}

	if c.EncodeTimeoutSeconds < 0 {
		return errors.New("encode timeout must not be negative")
	}
	if c.WatchSettleSeconds < 0 {
		return errors.New("watch settle delay must not be negative")
	}

	exts, err := normalizeExtensions(c.Extensions)
	if err != nil {
		return err
	}
	c.Extensions = exts
	return nil
}

// normalizeExtensions lowercases entries and adds the leading dot.
// Accepted forms: "mp4", ".mp4", ".MP4".
func normalizeExtensions(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, errors.New("extension list must not be empty")
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			return nil, fmt.Errorf("invalid extension %q", e)
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}
