package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/CTAG07/funnelgen/pkg/landing"
	"github.com/natefinch/atomic"
)

// RunConfig holds settings for the process itself rather than for the pages.
type RunConfig struct {
	LogLevel     string `json:"log_level"`
	TemplateDir  string `json:"template_dir"`
	ManifestPath string `json:"manifest_path"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Run       *RunConfig      `json:"run_config"`
	Generator *landing.Config `json:"generator_config"`
}

// DefaultRunConfig creates a run configuration with default values. The
// manifest is disabled until manifest_path is set.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		LogLevel:     "info",
		TemplateDir:  "",
		ManifestPath: "",
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Run:       DefaultRunConfig(),
		Generator: landing.DefaultConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Generation can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Run == nil {
		config.Run = DefaultRunConfig()
	}
	if config.Generator == nil {
		config.Generator = landing.DefaultConfig()
	}

	return config, nil
}

// applyArgs overrides the four input settings from positional arguments:
// main site URL, target site URL, keyword list path, photo list path.
func applyArgs(config *landing.Config, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 4:
		config.MainSiteURL = args[0]
		config.TargetSiteURL = args[1]
		config.KeywordListPath = args[2]
		config.PhotoListPath = args[3]
		return nil
	default:
		return fmt.Errorf("expected 0 or 4 positional arguments, got %d", len(args))
	}
}
