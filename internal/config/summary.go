package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultSummaryConfigPath is looked up in the working directory.
const DefaultSummaryConfigPath = "summary.toml"

// SummaryFileConfig represents the optional TOML file of the summary CLI.
type SummaryFileConfig struct {
	Summary SummarySection `toml:"summary"`
	Export  ExportSection  `toml:"export"`
}

// SummarySection maps build settings.
type SummarySection struct {
	Input  *string `toml:"input"`
	Output *string `toml:"output"`
}

// ExportSection maps export settings.
type ExportSection struct {
	Owner  *string `toml:"owner"`
	Repo   *string `toml:"repo"`
	Output *string `toml:"output"`
}

// LoadSummaryConfig reads a TOML config from the given path. Missing file is not an error.
func LoadSummaryConfig(path string) (SummaryFileConfig, error) {
	if path == "" {
		return SummaryFileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return SummaryFileConfig{}, nil
		}
		return SummaryFileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg SummaryFileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return SummaryFileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
