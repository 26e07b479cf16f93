// Package config loads the sortvis configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/sortvis/internal/logging"
	"github.com/aretw0/sortvis/internal/runtime"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Algorithm  string        `mapstructure:"algorithm"`
	Size       int           `mapstructure:"size"`
	Speed      int           `mapstructure:"speed"`
	MergeTrace string        `mapstructure:"merge_trace"`
	Tick       time.Duration `mapstructure:"tick"`
	Seed       uint64        `mapstructure:"seed"`

	// DocsDir holds markdown overrides for the algorithm documentation.
	DocsDir string `mapstructure:"docs_dir"`

	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig configures the HTTP and MCP surfaces.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxSessions int    `mapstructure:"max_sessions"`
	BaseURL     string `mapstructure:"base_url"`
}

// RedisConfig enables the Redis frame bus and session locks.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Algorithm:  string(domain.DefaultAlgorithm),
		Size:       domain.DefaultSize,
		Speed:      domain.DefaultSpeed,
		MergeTrace: string(runtime.MergeTraceFull),
		Tick:       runtime.DefaultTick,
		Server: ServerConfig{
			Addr:        ":8080",
			MaxSessions: 64,
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Prefix:  "sortvis:",
			LockTTL: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode applies a generic map onto cfg. Strings like "250ms" become durations and
// numeric strings become numbers.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate rejects unknown enumerations. Size and speed are clamped by the engine.
func (c Config) Validate() error {
	if _, err := domain.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := runtime.ParseMergeTrace(c.MergeTrace); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Tick < 0 {
		return fmt.Errorf("invalid config: negative tick %s", c.Tick)
	}
	return nil
}
