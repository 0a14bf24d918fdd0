package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the app.
type Config struct {
	Instance       string
	DBPath         string
	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads config.toml from ~/.config/lemmer (or the directory given
// in LEMMER_CONFIG_DIR), with every key overridable through LEMMER_*
// environment variables. A missing config file is fine; the defaults
// stand on their own.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")

	dir := os.Getenv("LEMMER_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".config", "lemmer")
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("LEMMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("instance", "lemmy.ml")
	v.SetDefault("db_path", filepath.Join(dir, "lemmer.db"))
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Instance:       v.GetString("instance"),
		DBPath:         v.GetString("db_path"),
		LogLevel:       v.GetString("log_level"),
		RequestTimeout: v.GetDuration("request_timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Instance == "" {
		return errors.New("instance is required")
	}
	if strings.Contains(c.Instance, "://") || strings.Contains(c.Instance, "/") {
		return fmt.Errorf("instance must be a bare hostname: %s", c.Instance)
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive: %s", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log_level: %s", c.LogLevel)
	}
	return nil
}
