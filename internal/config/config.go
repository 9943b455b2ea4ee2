// Package config loads and validates awardfeed configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Filters FilterConfig  `mapstructure:"filters"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig addresses the USAspending API and controls the poll loop.
type APIConfig struct {
	BaseURL              string            `mapstructure:"base_url"`
	DownloadPath         string            `mapstructure:"download_path"`
	StatusPath           string            `mapstructure:"status_path"`
	UserAgent            string            `mapstructure:"user_agent"`
	Headers              map[string]string `mapstructure:"headers"`
	TimeoutSeconds       int               `mapstructure:"timeout_seconds"`
	PollInitialSeconds   int               `mapstructure:"poll_initial_seconds"`
	PollMaxSeconds       int               `mapstructure:"poll_max_seconds"`
	GroupDeadlineMinutes int               `mapstructure:"group_deadline_minutes"`
}

// FilterConfig holds the static search filters. Keywords are the only
// user-editable filter at run time; the date range is fixed per deployment.
type FilterConfig struct {
	Keywords  []string `mapstructure:"keywords"`
	StartDate string   `mapstructure:"start_date"`
	EndDate   string   `mapstructure:"end_date"`
}

// OutputConfig controls the optional XLSX sink.
type OutputConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// ServerConfig controls serve-mode HTTP behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AWARDFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.usaspending.gov")
	v.SetDefault("api.download_path", "/api/v2/download/awards/")
	v.SetDefault("api.status_path", "/api/v2/download/status")
	v.SetDefault("api.user_agent", "awardfeed/1.0 (+https://github.com/spendwatch/awardfeed)")
	v.SetDefault("api.timeout_seconds", 60)
	v.SetDefault("api.poll_initial_seconds", 1)
	v.SetDefault("api.poll_max_seconds", 30)
	// zero keeps the poll wait unbounded, matching the upstream job lifecycle
	v.SetDefault("api.group_deadline_minutes", 0)

	v.SetDefault("filters.keywords", []string{})
	v.SetDefault("filters.start_date", "2007-10-01")
	v.SetDefault("filters.end_date", "2025-09-30")

	v.SetDefault("output.path", "awards.xlsx")
	v.SetDefault("output.sheet", "Awards")

	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.API.PollInitialSeconds <= 0 {
		return fmt.Errorf("api.poll_initial_seconds must be positive")
	}
	if c.API.PollMaxSeconds < c.API.PollInitialSeconds {
		return fmt.Errorf("api.poll_max_seconds must be >= api.poll_initial_seconds")
	}
	if c.API.GroupDeadlineMinutes < 0 {
		return fmt.Errorf("api.group_deadline_minutes must not be negative")
	}
	for _, field := range []struct{ name, value string }{
		{"filters.start_date", c.Filters.StartDate},
		{"filters.end_date", c.Filters.EndDate},
	} {
		if _, err := time.Parse("2006-01-02", field.value); err != nil {
			return fmt.Errorf("%s: invalid date %q", field.name, field.value)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// PollInitial returns the initial poll delay as a Duration.
func (c APIConfig) PollInitial() time.Duration {
	return time.Duration(c.PollInitialSeconds) * time.Second
}

// PollMax returns the poll delay cap as a Duration.
func (c APIConfig) PollMax() time.Duration {
	return time.Duration(c.PollMaxSeconds) * time.Second
}

// GroupDeadline returns the per-group fetch deadline, zero when unbounded.
func (c APIConfig) GroupDeadline() time.Duration {
	return time.Duration(c.GroupDeadlineMinutes) * time.Minute
}

// Timeout returns the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
