// Package config loads launchsync settings from a YAML file, LAUNCHSYNC_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/remote"
)

// EnvPrefix prefixes every environment override, e.g.
// LAUNCHSYNC_SYNC_PAGE_SIZE=50.
const EnvPrefix = "LAUNCHSYNC"

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// Logger converts the section for logger.Init.
func (c LoggingConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level, Format: c.Format, Output: c.Output}
}

// DatabaseConfig selects the cache backend.
type DatabaseConfig struct {
	// Backend is sqlite or memory.
	Backend string `mapstructure:"backend" validate:"required,oneof=sqlite memory"`
	// Path is the SQLite database file; required for the sqlite backend.
	Path string `mapstructure:"path" validate:"required_if=Backend sqlite"`
}

// RemoteConfig points at the Launch Library API.
type RemoteConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

// SyncConfig tunes the coordinator.
type SyncConfig struct {
	PageSize     int           `mapstructure:"page_size" validate:"gte=1,lte=100"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gte=0"`
	StaleAfter   time.Duration `mapstructure:"stale_after" validate:"gt=0"`
	// PastOrder is the display order of the past partition.
	PastOrder string `mapstructure:"past_order" validate:"oneof=asc desc"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stderr"},
		Database: DatabaseConfig{
			Backend: "sqlite",
			Path:    "launchsync.db",
		},
		Remote: RemoteConfig{
			BaseURL:   remote.DefaultBaseURL,
			Timeout:   30 * time.Second,
			UserAgent: remote.DefaultUserAgent,
		},
		Sync: SyncConfig{
			PageSize:     launchsync.DefaultPageSize,
			FetchTimeout: launchsync.DefaultFetchTimeout,
			StaleAfter:   launchsync.DefaultStaleAfter,
			PastOrder:    launch.Descending.String(),
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load reads configPath (optional), applies environment overrides and
// validates the result.
//
// Precedence, highest first: environment, file, defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("configuration file not found: %s", configPath)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent
// from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("database.backend", d.Database.Backend)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("remote.base_url", d.Remote.BaseURL)
	v.SetDefault("remote.timeout", d.Remote.Timeout)
	v.SetDefault("remote.user_agent", d.Remote.UserAgent)
	v.SetDefault("sync.page_size", d.Sync.PageSize)
	v.SetDefault("sync.fetch_timeout", d.Sync.FetchTimeout)
	v.SetDefault("sync.stale_after", d.Sync.StaleAfter)
	v.SetDefault("sync.past_order", d.Sync.PastOrder)
	v.SetDefault("server.addr", d.Server.Addr)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Order returns the configured order of the past partition.
func (c *SyncConfig) Order() launch.Order {
	if o, err := launch.ParseOrder(c.PastOrder); err == nil {
		return o
	}
	return launch.Descending
}

// Coordinator converts the sync section into a coordinator configuration.
func (c *SyncConfig) Coordinator() launchsync.Config {
	return launchsync.Config{
		PageSize:     c.PageSize,
		FetchTimeout: c.FetchTimeout,
		StaleAfter:   c.StaleAfter,
	}
}
