// Package config loads application settings from defaults, an optional
// YAML file, a .env file and DCS_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DCS_SERVER_ADDR.
const EnvPrefix = "DCS"

// AppName names the default config file and directories.
const AppName = "docker-cmd-studio"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	List     ListConfig     `mapstructure:"list"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	SessionSecret string `mapstructure:"session_secret"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type AuthConfig struct {
	LoginRPS   float64 `mapstructure:"login_rps"`
	LoginBurst int     `mapstructure:"login_burst"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ListConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("database.path", "./data/studio.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
	v.SetDefault("auth.login_rps", 1.0)
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("list.default_page_size", 10)
	v.SetDefault("list.max_page_size", 100)
}

// NewViper returns a viper instance with defaults and environment binding in
// place. If cfgFile is set it must exist; otherwise docker-cmd-studio.yaml is
// looked up in the working directory, the user config dir and /etc, and a
// missing file is not an error. A .env file in the working directory is
// loaded into the process environment first.
func NewViper(cfgFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}
	v.AddConfigPath(filepath.Join("/etc", AppName))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every setting that cannot be used. The session secret is
// only checked when requireSecret is true, since the offline commands do
// not serve HTTP.
func (c *Config) Validate(requireSecret bool) error {
	var errs []error

	if requireSecret && len(c.Server.SessionSecret) < 32 {
		errs = append(errs, errors.New("server.session_secret must be at least 32 characters"))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.LoginRPS <= 0 {
		errs = append(errs, errors.New("auth.login_rps must be positive"))
	}
	if c.Auth.LoginBurst < 1 {
		errs = append(errs, errors.New("auth.login_burst must be at least 1"))
	}
	if c.List.MaxPageSize < 1 {
		errs = append(errs, errors.New("list.max_page_size must be at least 1"))
	}
	if c.List.DefaultPageSize < 1 || c.List.DefaultPageSize > c.List.MaxPageSize {
		errs = append(errs, fmt.Errorf("list.default_page_size must be between 1 and %d", c.List.MaxPageSize))
	}

	return errors.Join(errs...)
}
