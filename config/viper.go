package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIHost    string   `toml:"api_host" mapstructure:"api_host"`
	APIPort    int      `toml:"api_port" mapstructure:"api_port"`
	APIRPM     int      `toml:"api_rpm" mapstructure:"api_rpm"`
	APIKeyAuth bool     `toml:"api_key_auth" mapstructure:"api_key_auth"`
	APIKeys    []string `toml:"api_keys" mapstructure:"api_keys"`
	BodyLimit  int      `toml:"body_limit" mapstructure:"body_limit"`
	LogLevel   string   `toml:"log_level" mapstructure:"log_level"`

	ServerURL     string        `toml:"server_url" mapstructure:"server_url"`
	ClientTimeout time.Duration `toml:"client_timeout" mapstructure:"client_timeout"`
	Formatter     string        `toml:"formatter" mapstructure:"formatter"`

	Cache   CacheConfig   `toml:"cache" mapstructure:"cache"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Solver  SolverConfig  `toml:"solver" mapstructure:"solver"`
}

type CacheConfig struct {
	Backend   string        `toml:"backend" mapstructure:"backend"`
	RedisAddr string        `toml:"redis_addr" mapstructure:"redis_addr"`
	Prefix    string        `toml:"prefix" mapstructure:"prefix"`
	TTL       time.Duration `toml:"ttl" mapstructure:"ttl"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DBPath  string `toml:"db_path" mapstructure:"db_path"`
}

type SolverConfig struct {
	MaxDepth int           `toml:"max_depth" mapstructure:"max_depth"`
	Timeout  time.Duration `toml:"timeout" mapstructure:"timeout"`
}

var C *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_host", "0.0.0.0")
	v.SetDefault("api_port", 5000)
	v.SetDefault("api_rpm", 120)
	v.SetDefault("api_key_auth", false)
	v.SetDefault("api_keys", []string{})
	v.SetDefault("body_limit", DefaultBodyLimit)
	v.SetDefault("log_level", "debug")
	v.SetDefault("server_url", "http://localhost:5000")
	v.SetDefault("client_timeout", time.Duration(0))
	v.SetDefault("formatter", "terminal")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.prefix", "integral:")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", "history.db")
	v.SetDefault("solver.max_depth", 6)
	v.SetDefault("solver.timeout", 5*time.Second)
}

// Load reads path (config.toml when empty) and the INTEGRAL_* environment.
// A missing file only leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = "config.toml"
	}
	v.SetConfigFile(path)
	v.SetEnvPrefix("INTEGRAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func InitConfig(path string) {
	if C != nil {
		return
	}
	cfg, err := Load(path)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	C = cfg
	slog.Debug("config loaded", "api_port", C.APIPort, "cache", C.Cache.Backend, "history", C.History.Enabled)
}

func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return l
}
