// Package config provides unified configuration for the benchmark harness.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iamkarasik/hardwood/internal/errors"
)

// Config holds the harness configuration.
type Config struct {
	// DataDir is the directory benchmark datasets are read from (local
	// storage) and downloaded into by fetch
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Runs is the number of timed runs per contender
	Runs int `json:"runs" yaml:"runs"`

	// Contenders selects which contenders run; "all" selects every
	// registered one
	Contenders []string `json:"contenders" yaml:"contenders"`

	// HistoryPath is the SQLite session history database; empty disables
	// recording
	HistoryPath string `json:"history_path" yaml:"history_path"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Verify configuration
	Verify VerifyConfig `json:"verify" yaml:"verify"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// VerifyConfig holds result verification configuration.
type VerifyConfig struct {
	// Tolerance is the relative tolerance for float field comparison
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultConfig returns the default configuration for local runs.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "./data",
		Runs:       5,
		Contenders: []string{"all"},
		Storage: StorageConfig{
			Type: "local",
		},
		Verify: VerifyConfig{
			Tolerance: 1e-6,
		},
	}
}

// Validate validates the configuration. All violations are configuration
// errors, raised before any I/O happens.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.NewConfigError(errors.CodeInvalidConfig, "data_dir is required")
	}

	if c.Runs < 1 {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("runs must be at least 1, got %d", c.Runs))
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("invalid storage type: %s (must be local or s3)", c.Storage.Type))
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			"s3.bucket is required when storage type is s3")
	}

	if c.Verify.Tolerance < 0 || c.Verify.Tolerance >= 1 {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("verify.tolerance must be in [0, 1), got %g", c.Verify.Tolerance))
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryConfig, errors.CodeInvalidConfig,
			"failed to read config file", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCategoryConfig, errors.CodeInvalidConfig,
				"failed to parse YAML config", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCategoryConfig, errors.CodeInvalidConfig,
				"failed to parse JSON config", err)
		}
	default:
		return nil, errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unsupported config file format: %s", ext))
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the HARDWOOD_ prefix; unparseable values are
// ignored and the prior value stands.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("HARDWOOD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("HARDWOOD_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Runs = n
		}
	}
	if v := os.Getenv("HARDWOOD_CONTENDERS"); v != "" {
		cfg.Contenders = splitList(v)
	}
	if v := os.Getenv("HARDWOOD_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = v
	}

	// Storage configuration
	if v := os.Getenv("HARDWOOD_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("HARDWOOD_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("HARDWOOD_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("HARDWOOD_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("HARDWOOD_S3_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}

	// Verification configuration
	if v := os.Getenv("HARDWOOD_VERIFY_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Verify.Tolerance = f
		}
	}
}

// splitList splits a comma-separated value into trimmed non-empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
