// Package config loads the xsload.yml tool configuration: where firmware
// images and bitstreams live, and where phase events should be published.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is consulted when no --config flag is given.
const DefaultPath = "xsload.yml"

// Config is the top-level tool configuration.
type Config struct {
	// DataDir holds the per-variant firmware and bitstream files, laid
	// out as <data_dir>/<variant-dir>/<image>.
	DataDir string `yaml:"data_dir"`
	// ProgressBroker, when set, is an MQTT URL phase events are mirrored
	// to (mqtt://host:port[/topic]).
	ProgressBroker string `yaml:"progress_broker,omitempty"`
}

// Default returns the configuration used when no file exists: data files
// alongside the binary.
func Default() *Config {
	return &Config{DataDir: "data"}
}

// Load reads and validates a configuration file. A missing file at the
// default path falls back to Default; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// ImagePath resolves a data file for a board variant directory.
func (c *Config) ImagePath(variantDir, name string) string {
	return filepath.Join(c.DataDir, variantDir, name)
}
