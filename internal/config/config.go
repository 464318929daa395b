// Package config loads runtime settings from an env file, an optional YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AppName        = "product-attributes"
	EnvFileName    = "config.env"
	ConfigFileName = "config"
	EnvPrefix      = "PRODUCT_ATTRIBUTES"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config holds all configuration for the CLI.
type Config struct {
	Vision   VisionConfig   `mapstructure:"vision"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Download DownloadConfig `mapstructure:"download"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

// VisionConfig configures the Cloud Vision client.
type VisionConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	MaxResults        int     `mapstructure:"max_results"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// GeminiConfig configures the generative stage. An empty key disables it.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DownloadConfig bounds image downloads.
type DownloadConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	MaxSize int64         `mapstructure:"max_size"`
}

// CacheConfig selects the vision signal cache backend.
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "none", "sqlite" or "redis"
	SQLitePath    string        `mapstructure:"sqlite_path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads configuration. An explicit path must exist; with an empty path
// config.yaml is looked up in the working directory and the user config
// directory, and a missing file is not an error. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if configBase, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configBase, AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnv maps the conventional provider key variables alongside the
// prefixed ones.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"vision.api_key": {EnvPrefix + "_VISION_API_KEY", "GOOGLE_VISION_API_KEY"},
		"gemini.api_key": {EnvPrefix + "_GEMINI_API_KEY", "GEMINI_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "https://vision.googleapis.com")
	v.SetDefault("vision.max_results", 10)
	v.SetDefault("vision.requests_per_second", 0)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("download.timeout", 30*time.Second)
	v.SetDefault("download.max_size", 10<<20)

	v.SetDefault("cache.type", CacheNone)
	v.SetDefault("cache.sqlite_path", "")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

func validate(cfg *Config) error {
	cfg.Cache.Type = strings.ToLower(strings.TrimSpace(cfg.Cache.Type))
	switch cfg.Cache.Type {
	case "", CacheNone:
		cfg.Cache.Type = CacheNone
	case CacheSQLite:
		if cfg.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path is required for the sqlite cache")
		}
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}

	if cfg.Vision.MaxResults <= 0 {
		return fmt.Errorf("vision.max_results must be positive")
	}
	if cfg.Vision.RequestsPerSecond < 0 {
		return fmt.Errorf("vision.requests_per_second must not be negative")
	}
	if cfg.Download.Timeout <= 0 {
		return fmt.Errorf("download.timeout must be positive")
	}
	if cfg.Download.MaxSize <= 0 {
		return fmt.Errorf("download.max_size must be positive")
	}
	return nil
}
