package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type ScraperConfig struct {
	// Sources enabled for aggregation when the caller does not name any.
	Sources []string `mapstructure:"sources"`

	// SourceTimeout bounds a single adapter fetch.
	SourceTimeout time.Duration `mapstructure:"source_timeout"`

	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
	DefaultMaxPerSource  int     `mapstructure:"default_max_per_source"`

	// BackgroundCron is an optional cron spec that kicks off a background
	// run over the curated keyword list. Empty disables the cadence.
	BackgroundCron         string   `mapstructure:"background_cron"`
	BackgroundKeywords     []string `mapstructure:"background_keywords"`
	BackgroundMaxPerSource int      `mapstructure:"background_max_per_source"`
}

func (config ScraperConfig) validate() error {
	var errs []error

	if config.SourceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("source_timeout must be positive"))
	}
	if config.MaxRequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must be positive"))
	}
	if config.DefaultMaxPerSource < 1 {
		errs = append(errs, fmt.Errorf("default_max_per_source must be at least 1"))
	}
	if config.BackgroundMaxPerSource < 1 {
		errs = append(errs, fmt.Errorf("background_max_per_source must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config ScraperConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("scraper.source_timeout", "SOURCE_TIMEOUT"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.max_requests_per_second", "SCRAPER_MAX_REQUESTS_PER_SECOND"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.default_max_per_source", "DEFAULT_MAX_PER_SOURCE"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.background_cron", "BACKGROUND_CRON"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.background_max_per_source", "BACKGROUND_MAX_PER_SOURCE"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
