// Package config loads the mainline YAML configuration and applies
// environment variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the mainline tools.
type Config struct {
	Data     Data     `yaml:"data"`
	Build    Build    `yaml:"build"`
	Provider Provider `yaml:"provider"`
	Logging  Logging  `yaml:"logging"`
}

// Data holds input and output locations.
type Data struct {
	// VolumeDir holds the per-contract daily files used to judge liquidity.
	VolumeDir string `yaml:"volume_dir"`
	// KlineDir holds the per-contract daily files stitched into the
	// continuous series. Defaults to VolumeDir when empty.
	KlineDir   string `yaml:"kline_dir"`
	OutputDir  string `yaml:"output_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Build controls the continuous-series construction pass.
type Build struct {
	Product            string `yaml:"product"`
	AllowDeliveryMonth bool   `yaml:"allow_delivery_month"`

	// SuffixMode selects how the 4-digit contract suffix is read:
	// "year-month" (RB2401 = Jan 2024) or "year-day". Never auto-detected.
	SuffixMode string `yaml:"suffix_mode"`

	// DateUniverse selects the trading-day set: "contract-months" derives
	// one representative day per contract period, "bar-rows" unions every
	// trade date present in any contract's table.
	DateUniverse string `yaml:"date_universe"`

	// ContractList optionally names a CSV with a "symbol" column; when set,
	// every listed contract must have a file in both data directories.
	ContractList string `yaml:"contract_list"`

	// Formats lists the result sinks to write: "csv", "parquet", "sqlite".
	Formats []string `yaml:"formats"`
}

// Provider holds credentials and limits for the remote mapping API.
type Provider struct {
	Token           string `yaml:"token"`
	BaseURL         string `yaml:"base_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	MaxRetries      int    `yaml:"max_retries"`
	RetryBaseMS     int    `yaml:"retry_base_ms"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Data: Data{
			VolumeDir: "./data",
			OutputDir: "./data/out",
		},
		Build: Build{
			SuffixMode:   "year-month",
			DateUniverse: "contract-months",
			Formats:      []string{"csv"},
		},
		Provider: Provider{
			BaseURL:         "http://api.tushare.pro",
			RateLimitPerMin: 60,
			MaxRetries:      4,
			RetryBaseMS:     500,
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.VolumeDir = v
		if cfg.Data.KlineDir != "" {
			cfg.Data.KlineDir = v
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Data.OutputDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Data.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical provider token variable, same name the upstream SDK reads.
	if v := os.Getenv("TUSHARE_TOKEN"); v != "" {
		cfg.Provider.Token = v
	}
}
