// Package config provides configuration loading for the nuclei tools
// server. It reads an optional YAML file, an optional .env file and a few
// environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/nuclei-tools-mcp/internal/model"
	"github.com/ironsheep/nuclei-tools-mcp/internal/segment"
)

// Environment variables read by LoadEnv.
const (
	EnvLogLevel = "NUCLEI_MCP_LOG_LEVEL"
	EnvWorkers  = "NUCLEI_MCP_WORKERS"
	EnvConfig   = "NUCLEI_MCP_CONFIG"
)

// Config represents the server configuration loaded from YAML.
type Config struct {
	// Segmentation holds the tree construction and analysis parameters.
	Segmentation segment.Options `yaml:"segmentation"`

	// Encoding parameters
	Encoding struct {
		// MinMaskSize drops masks whose run lengths total at most this many
		// pixels when writing RLE records.
		MinMaskSize int `yaml:"minMaskSize"`
	} `yaml:"encoding"`

	// Model holds the prediction parameters.
	Model model.PredictOptions `yaml:"model"`

	// Channel parameters
	Channel struct {
		// SmoothRadius is the Gaussian radius applied before segmentation.
		// Zero disables smoothing.
		SmoothRadius float64 `yaml:"smoothRadius"`
	} `yaml:"channel"`

	// Log parameters
	Log struct {
		// Level is "debug" for verbose progress logging.
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{
		Segmentation: segment.DefaultOptions(),
		Model:        model.DefaultPredictOptions(),
	}
	cfg.Segmentation.Workers = runtime.NumCPU()
	cfg.Encoding.MinMaskSize = 5
	cfg.Channel.SmoothRadius = 0
	cfg.Log.Level = "info"
	return cfg
}

// Debug reports whether verbose logging is enabled.
func (c *Config) Debug() bool { return c.Log.Level == "debug" }

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// LoadEnv loads the .env files given (or ./.env when none are given,
// ignoring its absence), reads the config file named by NUCLEI_MCP_CONFIG
// and applies the remaining environment overrides.
func LoadEnv(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	cfg, err := LoadConfig(os.Getenv(EnvConfig))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid %s %q: want a positive integer", EnvWorkers, v)
		}
		c.Segmentation.Workers = n
	}
	return nil
}
