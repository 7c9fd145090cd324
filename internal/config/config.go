// Package config provides unified configuration for the loadgen tool.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the tool configuration. Workload shape lives in the spec
// documents; this covers everything about how a run executes.
type Config struct {
	// DataDir is the base directory for tool state (manifest, spill files).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// OutputDir is where generated workload files land. Empty means next to
	// the spec file.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Seed seeds the run's random generator. 0 draws a seed from the clock,
	// making runs unrepeatable; set it explicitly for reproducible output.
	Seed int64 `json:"seed" yaml:"seed"`

	// BufferSizeKB is the output buffer size in KiB (default 1024).
	BufferSizeKB int `json:"buffer_size_kb" yaml:"buffer_size_kb"`

	// KeySetStrategy overrides key-set selection: auto, slice, hashed,
	// bloom, indexed.
	KeySetStrategy string `json:"keyset_strategy" yaml:"keyset_strategy"`

	// AllowDuplicateKeys permits identical insert keys within a section.
	// Set false to force the de-duplicating key set.
	AllowDuplicateKeys bool `json:"allow_duplicate_keys" yaml:"allow_duplicate_keys"`

	// Compress writes snappy-framed output (.txt.sz).
	Compress bool `json:"compress" yaml:"compress"`

	// Parallel configuration for per-section workers.
	Parallel ParallelConfig `json:"parallel" yaml:"parallel"`

	// Manifest configuration for the run ledger.
	Manifest ManifestConfig `json:"manifest" yaml:"manifest"`

	// S3 configuration for post-run artifact upload.
	S3 S3Config `json:"s3" yaml:"s3"`
}

// ParallelConfig holds parallel-generation settings.
type ParallelConfig struct {
	// Enabled turns on per-section parallel generation. Serial and parallel
	// runs of the same seed produce different (each deterministic) streams.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Workers is the number of concurrent section workers.
	Workers int `json:"workers" yaml:"workers"`

	// SpillDir holds per-section spill files during merge.
	SpillDir string `json:"spill_dir" yaml:"spill_dir"`
}

// ManifestConfig holds run-ledger settings.
type ManifestConfig struct {
	// Enabled records every run in the SQLite catalog.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the catalog database path.
	Path string `json:"path" yaml:"path"`
}

// S3Config holds S3 upload settings.
type S3Config struct {
	// Enabled uploads finished workload files to S3 after generation.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Bucket is the destination bucket.
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region.
	Region string `json:"region" yaml:"region"`

	// Endpoint is an optional custom endpoint (MinIO, LocalStack).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Prefix is prepended to uploaded object keys.
	Prefix string `json:"prefix" yaml:"prefix"`

	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:            "./data/loadgen",
		Seed:               0,
		BufferSizeKB:       1024,
		KeySetStrategy:     "auto",
		AllowDuplicateKeys: true,
		Parallel: ParallelConfig{
			Enabled: false,
			Workers: 4,
		},
		Manifest: ManifestConfig{
			Enabled: true,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/loadgen"
	}
	if c.Manifest.Path == "" {
		c.Manifest.Path = filepath.Join(c.DataDir, "manifest.db")
	}
	if c.Parallel.SpillDir == "" {
		c.Parallel.SpillDir = filepath.Join(c.DataDir, "spill")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.KeySetStrategy {
	case "auto", "slice", "hashed", "bloom", "indexed":
	default:
		return fmt.Errorf("invalid keyset_strategy: %s (must be auto, slice, hashed, bloom, or indexed)", c.KeySetStrategy)
	}

	if c.BufferSizeKB <= 0 {
		return fmt.Errorf("buffer_size_kb must be positive, got %d", c.BufferSizeKB)
	}

	if c.Parallel.Enabled && c.Parallel.Workers < 1 {
		return fmt.Errorf("parallel.workers must be at least 1, got %d", c.Parallel.Workers)
	}

	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3 upload is enabled")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the LOADGEN_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("LOADGEN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOADGEN_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("LOADGEN_SEED"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Seed)
	}
	if v := os.Getenv("LOADGEN_KEYSET_STRATEGY"); v != "" {
		cfg.KeySetStrategy = v
	}
	if v := os.Getenv("LOADGEN_ALLOW_DUPLICATE_KEYS"); v != "" {
		cfg.AllowDuplicateKeys = v == "true" || v == "1"
	}
	if v := os.Getenv("LOADGEN_COMPRESS"); v != "" {
		cfg.Compress = v == "true" || v == "1"
	}

	// Parallel configuration
	if v := os.Getenv("LOADGEN_PARALLEL"); v != "" {
		cfg.Parallel.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("LOADGEN_PARALLEL_WORKERS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Parallel.Workers)
	}

	// Manifest configuration
	if v := os.Getenv("LOADGEN_MANIFEST"); v != "" {
		cfg.Manifest.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("LOADGEN_MANIFEST_PATH"); v != "" {
		cfg.Manifest.Path = v
	}

	// S3 configuration
	if v := os.Getenv("LOADGEN_S3_UPLOAD"); v != "" {
		cfg.S3.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("LOADGEN_S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("LOADGEN_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("LOADGEN_S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("LOADGEN_S3_PREFIX"); v != "" {
		cfg.S3.Prefix = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.OutputDir, c.Parallel.SpillDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
