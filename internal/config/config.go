package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. EVDASH_DATASET_SOURCE.
const EnvPrefix = "EVDASH"

// Config holds all settings of the dashboard service. Values come from an
// optional YAML file, a .env file and the environment, in rising priority.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Log     LogConfig     `mapstructure:"log"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Reload  ReloadConfig  `mapstructure:"reload"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatasetConfig points at the registration CSV, a local path or http(s) URL.
type DatasetConfig struct {
	Source  string        `mapstructure:"source"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ChartsConfig is the default PNG size of rendered charts.
type ChartsConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ReloadConfig throttles dataset reloads: one token every Every, up to Burst.
type ReloadConfig struct {
	Every time.Duration `mapstructure:"every"`
	Burst int           `mapstructure:"burst"`
}

// Load reads configuration. An empty path searches for evdash.yaml in the
// working directory; a missing file there is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("evdash")
		v.SetConfigType("yaml")
	}

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("dataset.source", "Electric_Vehicle_Population_Data.csv")
	v.SetDefault("dataset.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("charts.width", 1024)
	v.SetDefault("charts.height", 512)
	v.SetDefault("reload.every", "10s")
	v.SetDefault("reload.burst", 1)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Dataset.Source) == "" {
		return errors.New("dataset.source must be set")
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return fmt.Errorf("charts size must be positive, got %dx%d", c.Charts.Width, c.Charts.Height)
	}
	if c.Reload.Burst < 1 {
		return fmt.Errorf("reload.burst must be at least 1, got %d", c.Reload.Burst)
	}
	return nil
}
