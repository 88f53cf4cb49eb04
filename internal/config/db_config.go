package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`

	// BusyTimeout is how long sqlite waits on a locked database before
	// failing a statement. Concurrent upserts from a background run and a
	// manual scrape rely on it.
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`

	// JournalMode is the sqlite journaling pragma. Empty leaves the driver
	// default.
	JournalMode string `mapstructure:"journal_mode"`
}

// DSN renders the connection string with the configured sqlite pragmas
// appended.
func (config DBConfig) DSN() string {

	var pragmas []string
	if config.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", config.BusyTimeout.Milliseconds()))
	}
	if config.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", config.JournalMode))
	}

	if len(pragmas) == 0 {
		return config.ConnectionString
	}

	separator := "?"
	if strings.Contains(config.ConnectionString, "?") {
		separator = "&"
	}
	return config.ConnectionString + separator + strings.Join(pragmas, "&")
}

func (config DBConfig) validate() error {
	var errs []error

	if config.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("missing variable: db connection string"))
	}
	if config.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("busy_timeout must not be negative"))
	}

	switch strings.ToUpper(config.JournalMode) {
	case "", "WAL", "DELETE", "TRUNCATE", "MEMORY":
	default:
		errs = append(errs, fmt.Errorf("unsupported journal_mode: %v", config.JournalMode))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("db.busy_timeout", "DB_BUSY_TIMEOUT"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
