package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
)

type logLevel string

const (
	LevelInfo    logLevel = "INFO"
	LevelDebug   logLevel = "DEBUG"
	LevelWarning logLevel = "WARNING"
	LevelError   logLevel = "ERROR"
	LevelFatal   logLevel = "FATAL"
)

// LokiSection configures optional log shipping. An empty url disables it;
// user and password are only meaningful together with a url.
type LokiSection struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type LoggerConfig struct {
	LogLevel   logLevel    `mapstructure:"log_level"`
	AppName    string      `mapstructure:"app_name"`
	OutputFile string      `mapstructure:"output_file"`
	Loki       LokiSection `mapstructure:"loki"`
}

func (config LoggerConfig) validate() error {
	var errs []error

	switch config.LogLevel {
	case LevelInfo, LevelDebug, LevelWarning, LevelError, LevelFatal:
	case "":
		errs = append(errs, fmt.Errorf("missing variable: log_level"))
	default:
		errs = append(errs, fmt.Errorf("unknown log_level: %v", config.LogLevel))
	}

	if config.OutputFile == "" {
		errs = append(errs, fmt.Errorf("missing variable: output_file"))
	}

	if config.Loki.URL == "" && (config.Loki.User != "" || config.Loki.Password != "") {
		errs = append(errs, fmt.Errorf("loki credentials set without loki url"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config LoggerConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("logger.log_level", "LOG_LEVEL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("logger.app_name", "APP_NAME"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("logger.loki.url", "LOKI_URL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("logger.loki.user", "LOKI_USER"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("logger.loki.password", "LOKI_PASSWORD"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
