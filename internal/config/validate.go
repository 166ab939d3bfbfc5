package config

import (
	"errors"
	"fmt"
	"regexp"
)

var productRe = regexp.MustCompile(`^[A-Za-z]{1,3}$`)

// Validate checks that all required fields are set and enum values are valid.
// It is called after flag overrides, immediately before any processing.
func (c *Config) Validate() error {
	if c.Build.Product == "" {
		return errors.New("build.product is required")
	}
	if !productRe.MatchString(c.Build.Product) {
		return fmt.Errorf("build.product %q must be 1-3 letters", c.Build.Product)
	}

	if c.Data.VolumeDir == "" {
		return errors.New("data.volume_dir is required")
	}
	if c.Data.OutputDir == "" {
		return errors.New("data.output_dir is required")
	}

	switch c.Build.SuffixMode {
	case "year-month", "year-day":
	default:
		return fmt.Errorf("build.suffix_mode must be year-month or year-day, got %q", c.Build.SuffixMode)
	}

	switch c.Build.DateUniverse {
	case "contract-months", "bar-rows":
	default:
		return fmt.Errorf("build.date_universe must be contract-months or bar-rows, got %q", c.Build.DateUniverse)
	}

	if len(c.Build.Formats) == 0 {
		return errors.New("build.formats must list at least one sink")
	}
	for _, f := range c.Build.Formats {
		switch f {
		case "csv", "parquet":
		case "sqlite":
			if c.Data.SQLitePath == "" {
				return errors.New("data.sqlite_path is required when the sqlite sink is enabled")
			}
		default:
			return fmt.Errorf("build.formats contains unknown sink %q", f)
		}
	}

	if c.Provider.RateLimitPerMin < 1 {
		return errors.New("provider.rate_limit_per_min must be >= 1")
	}
	if c.Provider.MaxRetries < 1 {
		return errors.New("provider.max_retries must be >= 1")
	}

	return nil
}
