package config

import (
	"fmt"
	"time"
)

// Config represents a printvault.yaml configuration file.
// All values are optional and act as defaults for printvault flags.
// CLI flags always override config values.
type Config struct {
	// TempDir is the parent for scratch extraction directories.
	TempDir string `yaml:"temp_dir"`
	// MaxAttempts is the default retry limit handed to the task substrate.
	MaxAttempts int           `yaml:"max_attempts"`
	Storage     StorageConfig `yaml:"storage"`
	Import      ImportConfig  `yaml:"import"`
	Adapter     AdapterConfig `yaml:"adapter"`
}

// StorageConfig holds storage defaults from the config file.
type StorageConfig struct {
	// Backend selects the storage implementation: "fs" or "s3".
	Backend string `yaml:"backend"`
	// Path is the fs root directory, or "bucket/prefix" for s3.
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// ImportConfig holds folder-import defaults from the config file.
type ImportConfig struct {
	// Pattern is the folder-import template, e.g. "{Collection}/{model}".
	Pattern string `yaml:"pattern"`
	// Strategy is the copy strategy: copy, hardlink, or move.
	Strategy string `yaml:"strategy"`
}

// AdapterConfig holds notification adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
