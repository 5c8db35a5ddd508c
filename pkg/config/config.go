// Package config provides configuration loading and management for breastcrop.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"breastcrop/pkg/logging"
	"breastcrop/pkg/tissue"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Crop parameters
	Crop struct {
		// StrictDecompression fails a load on an incomplete data chunk
		// instead of logging a warning
		StrictDecompression bool `yaml:"strictDecompression"`

		// CompressionLevel is the gzip level for the cropped data file
		CompressionLevel int `yaml:"compressionLevel"`
	} `yaml:"crop"`

	// Label values that differ from the phantom generator's defaults
	Labels struct {
		Background *uint8 `yaml:"background,omitempty"`
		Paddle     *uint8 `yaml:"paddle,omitempty"`
	} `yaml:"labels"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warning, error, silent
		Level string `yaml:"level"`

		// Logfile, when set, receives log output instead of stderr
		Logfile string `yaml:"logfile"`

		// MaxSize is the log file size in MB before rotation
		MaxSize int `yaml:"maxSize"`

		// MaxAge is the number of days rotated files are kept
		MaxAge int `yaml:"maxAge"`
	} `yaml:"logging"`

	// Output parameters
	Output struct {
		// Summary prints label statistics of the input and cropped volumes
		Summary bool `yaml:"summary"`

		// Verbose logs every boundary search, as --verbose does
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Crop.StrictDecompression = false
	cfg.Crop.CompressionLevel = gzip.DefaultCompression

	cfg.Logging.Level = "info"
	cfg.Logging.MaxSize = 100
	cfg.Logging.MaxAge = 30

	cfg.Output.Summary = true

	return cfg
}

// Validate checks values that YAML decoding cannot
func (c *Config) Validate() error {
	if c.Crop.CompressionLevel < gzip.HuffmanOnly || c.Crop.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("compressionLevel %d out of range", c.Crop.CompressionLevel)
	}
	if _, err := logging.ParseMode(c.Logging.Level); err != nil {
		return err
	}
	if c.Labels.Background != nil && c.Labels.Paddle != nil && *c.Labels.Background == *c.Labels.Paddle {
		return fmt.Errorf("background and paddle labels must differ, both are %d", *c.Labels.Paddle)
	}
	return nil
}

// TissueLabels builds the label table with any overrides applied
func (c *Config) TissueLabels() tissue.Labels {
	labels := tissue.Default()
	if c.Labels.Background != nil {
		labels.Background = *c.Labels.Background
	}
	if c.Labels.Paddle != nil {
		labels.Paddle = *c.Labels.Paddle
	}
	return labels
}

// LogConfig returns the rotating log file settings
func (c *Config) LogConfig() *logging.LogConfig {
	return &logging.LogConfig{
		Logfile: c.Logging.Logfile,
		MaxSize: c.Logging.MaxSize,
		MaxAge:  c.Logging.MaxAge,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
