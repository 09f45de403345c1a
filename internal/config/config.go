// Package config loads requp settings from .requp.yaml, REQUP_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/frederic-klein/requp/internal/index"
	"github.com/frederic-klein/requp/internal/requirements"
)

// Config holds all runtime configuration.
type Config struct {
	IndexURL          string        `mapstructure:"index_url"`
	IndexFile         string        `mapstructure:"index_file"`
	CacheDir          string        `mapstructure:"cache_dir"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	Workers           int           `mapstructure:"workers"`
	PrereleaseMarkers []string      `mapstructure:"prerelease_markers"`
	UpdateRanged      bool          `mapstructure:"update_ranged"`
	Verbose           bool          `mapstructure:"verbose"`
}

// Init points viper at the config file and environment. An explicit cfgFile
// must exist; otherwise .requp.yaml is looked up in the working directory and
// the home directory, and its absence is not an error.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".requp")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("REQUP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("index_url", index.DefaultURL)
	viper.SetDefault("index_file", "")
	viper.SetDefault("cache_dir", defaultCacheDir())
	viper.SetDefault("cache_ttl", index.DefaultTTL)
	viper.SetDefault("workers", 5)
	viper.SetDefault("prerelease_markers", requirements.DefaultPrereleaseMarkers)
	viper.SetDefault("update_ranged", true)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.CacheTTL < 0:
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	case c.IndexFile == "" && c.IndexURL == "":
		return errors.New("one of index_url or index_file must be set")
	}
	return nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".requp", "cache")
	}
	return filepath.Join(home, ".requp", "cache")
}
