// Package check provides system diagnostics (the check command) and
// pre-run dependency validation (CheckDeps) for ffmpeg, ffprobe, and the
// configured video and audio encoders.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/backmassage/bitcap/internal/config"
)

// Sentinel errors returned by CheckDeps and CheckFolder.
var (
	ErrFFmpegNotFound     = errors.New("ffmpeg not found")
	ErrFFprobeNotFound    = errors.New("ffprobe not found")
	ErrVideoEncoderFailed = errors.New("video encoder test failed")
	ErrAudioEncoderFailed = errors.New("audio encoder test failed")
	ErrNotDirectory       = errors.New("not a directory")
	ErrFolderAccess       = errors.New("insufficient permissions")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

// RunCheck prints the availability of ffmpeg and ffprobe, the matching
// encoders, and the result of short test encodes. It is informational only
// and reports whether every check passed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(log, "ffmpeg", cfg.FFmpegPath)
	ok = checkTool(log, "ffprobe", cfg.FFprobePath) && ok
	if !ok {
		return false
	}
	listEncoders(log, cfg)
	ok = checkVideoEncoder(log, cfg) && ok
	ok = checkAudioEncoder(log, cfg) && ok

	if cfg.InputDir != "" {
		if err := CheckFolder(cfg.InputDir); err != nil {
			log.Error("Folder: %v", err)
			ok = false
		} else {
			log.Success("Folder: %s (read/write ok)", cfg.InputDir)
		}
	}
	return ok
}

// checkTool verifies a binary resolves and logs its version line.
func checkTool(log Logger, label, path string) bool {
	resolved, err := exec.LookPath(path)
	if err != nil {
		log.Error("%s not found (%s)", label, path)
		return false
	}
	out, err := exec.Command(resolved, "-version").Output()
	if err != nil {
		log.Warn("%s found at %s but -version failed: %v", label, resolved, err)
		return true
	}
	firstLine, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	log.Success("%s: %s", label, firstLine)
	log.Debug("%s path: %s", label, resolved)
	return true
}

// listEncoders logs the encoders ffmpeg reports that match the configured
// video and audio encoder names.
func listEncoders(log Logger, cfg *config.Config) {
	out, err := exec.Command(cfg.FFmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	log.Info("Configured encoders:")
	found := false
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if fields[1] == cfg.Encoders.Video || fields[1] == cfg.Encoders.Audio {
			log.Info("  %s", strings.TrimSpace(line))
			found = true
		}
	}
	if !found {
		log.Warn("  none of %s, %s listed by ffmpeg", cfg.Encoders.Video, cfg.Encoders.Audio)
	}
}

func checkVideoEncoder(log Logger, cfg *config.Config) bool {
	log.Info("Testing %s...", cfg.Encoders.Video)
	if runSilent(cfg.FFmpegPath, videoTestArgs(cfg.Encoders.Video)...) {
		log.Success("%s works", cfg.Encoders.Video)
		return true
	}
	log.Error("%s test encode failed", cfg.Encoders.Video)
	return false
}

func checkAudioEncoder(log Logger, cfg *config.Config) bool {
	log.Info("Testing %s...", cfg.Encoders.Audio)
	if runSilent(cfg.FFmpegPath, audioTestArgs(cfg.Encoders.Audio)...) {
		log.Success("%s works", cfg.Encoders.Audio)
		return true
	}
	log.Error("%s test encode failed", cfg.Encoders.Audio)
	return false
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe must resolve and
// the configured encoders must complete a short test encode. Returns a
// wrapped sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, cfg.FFmpegPath)
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, cfg.FFprobePath)
	}
	if !runSilent(cfg.FFmpegPath, videoTestArgs(cfg.Encoders.Video)...) {
		return fmt.Errorf("%w: %s", ErrVideoEncoderFailed, cfg.Encoders.Video)
	}
	if !runSilent(cfg.FFmpegPath, audioTestArgs(cfg.Encoders.Audio)...) {
		return fmt.Errorf("%w: %s", ErrAudioEncoderFailed, cfg.Encoders.Audio)
	}
	return nil
}

// CheckFolder verifies path is a directory the process can list, read, and
// write (sources are moved out and a compressed subfolder is created).
func CheckFolder(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrFolderAccess, err)
	}
	return nil
}

// --- internal helpers ---

// videoTestArgs returns the ffmpeg arguments for a minimal test encode with
// the given video encoder.
func videoTestArgs(encoder string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", encoder, "-b:v", "1000k",
		"-f", "null", "-",
	}
}

func audioTestArgs(encoder string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", encoder, "-b:a", "128k",
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
