package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load overlays the config file at path onto cfg. The format is chosen by
// extension: .toml, or .yaml/.yml. A "preset" key is applied first so that
// explicit [thresholds] keys in the same file override individual values.
// Keys absent from the file keep their current values.
func Load(path string, cfg *Config) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	unmarshal, err := decoderFor(path)
	if err != nil {
		return err
	}

	var head struct {
		Preset string `toml:"preset" yaml:"preset"`
	}
	if err := unmarshal(data, &head); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if head.Preset != "" {
		if err := cfg.ApplyPreset(head.Preset); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if head.Preset != "" {
		cfg.Preset = strings.ToLower(strings.TrimSpace(head.Preset))
	}
	return nil
}

func decoderFor(path string) (func([]byte, any) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal, nil
	case ".yaml", ".yml":
		return yaml.Unmarshal, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
}
