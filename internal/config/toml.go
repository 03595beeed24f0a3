// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Gym      GymConfig      `toml:"gym"`
	Log      LogConfig      `toml:"log"`
}

// AnalysisConfig maps weight report settings.
type AnalysisConfig struct {
	Window *int     `toml:"window"`
	Target *float64 `toml:"target"`
	Since  *string  `toml:"since"`
}

// GymConfig maps default gym input files.
type GymConfig struct {
	Routine *string `toml:"routine"`
	Log     *string `toml:"log"`
}

// LogConfig maps diagnostics settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
	JSON  *bool   `toml:"json"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `wtrack config` when no config file exists yet.
const Template = `# wtrack configuration. Command-line flags override these values.

[analysis]
# window = 7
# target = 75.0
# since = "2025-01-01"

[gym]
# routine = "~/fitness/routine.yaml"
# log = "~/fitness/FitNotes_Export.csv"

[log]
# level = "warn"
# file = "~/.local/state/wtrack/wtrack.log"
# json = false
`
