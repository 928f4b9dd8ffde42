package config

// This file binds CLI flags. Flag values are captured into Flags and applied
// after the config file is loaded, so that precedence is:
// defaults < config file < --preset < other flags.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds the raw CLI flag values until [Flags.Apply] copies the ones
// the user actually set into a Config.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath string

	preset     string
	dryRun     bool
	watch      bool
	timeout    int
	verbose    bool
	forceColor bool
	noColor    bool
	logFile    string
}

// BindFlags registers all bitcap flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Config file (.toml, .yaml)")
	fs.StringVar(&f.preset, "preset", "", "Bitrate preset: "+strings.Join(PresetNames(), " | "))

	fs.BoolVarP(&f.dryRun, "dry-run", "d", false, "Probe and decide only; do not move or encode")
	fs.BoolVarP(&f.watch, "watch", "w", false, "Keep running and process new files as they appear")
	fs.IntVar(&f.timeout, "timeout", 0, "Per-file encode timeout in seconds (0 = none)")

	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	fs.StringVarP(&f.logFile, "log", "l", "", "Append logs to file")
	return f
}

// Apply copies flags that were explicitly set onto cfg.
func (f *Flags) Apply(cfg *Config) error {
	if f.changed("preset") {
		if err := cfg.ApplyPreset(f.preset); err != nil {
			return err
		}
	}
	if f.changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if f.changed("watch") {
		cfg.Watch = f.watch
	}
	if f.changed("timeout") {
		if f.timeout < 0 {
			return fmt.Errorf("--timeout must not be negative (got %d)", f.timeout)
		}
		cfg.EncodeTimeoutSeconds = f.timeout
	}
	if f.changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if f.changed("log") {
		cfg.LogFile = f.logFile
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
	return nil
}

func (f *Flags) changed(name string) bool {
	fl := f.fs.Lookup(name)
	return fl != nil && fl.Changed
}
