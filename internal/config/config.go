// Package config loads routinr settings from YAML and ROUTINR_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "ROUTINR_"
	maxConfigFileSize = 1024 * 1024
	DefaultAPIURL     = "http://localhost:5000/api/v1"
)

type Config struct {
	API    APIConfig    `koanf:"api"`
	Server ServerConfig `koanf:"server"`
	Sync   SyncConfig   `koanf:"sync"`
	Log    LogConfig    `koanf:"log"`
}

type APIConfig struct {
	URL        string        `koanf:"url"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	MaxRetries int           `koanf:"max_retries"`
}

type ServerConfig struct {
	Addr   string `koanf:"addr"`
	DBPath string `koanf:"db_path"`
}

type SyncConfig struct {
	QueueSize int           `koanf:"queue_size"`
	Timeout   time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Debug bool   `koanf:"debug"`
	Dir   string `koanf:"dir"`
}

// Dir returns ~/.config/routinr.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(cfg, "routinr"), nil
}

// DefaultPath returns ~/.config/routinr/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the YAML file at path (the default path when empty), then
// applies environment overrides. A missing file is not an error.
//
// Environment variables drop the ROUTINR_ prefix and split on the first
// underscore: ROUTINR_API_URL sets api.url, ROUTINR_SYNC_QUEUE_SIZE sets
// sync.queue_size.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) error {
	if cfg.API.URL == "" {
		cfg.API.URL = DefaultAPIURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.RateLimit == 0 {
		cfg.API.RateLimit = 10
	}
	if cfg.API.MaxRetries == 0 {
		cfg.API.MaxRetries = 2
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Sync.QueueSize == 0 {
		cfg.Sync.QueueSize = 64
	}
	if cfg.Sync.Timeout == 0 {
		cfg.Sync.Timeout = 10 * time.Second
	}

	if cfg.Server.DBPath == "" || cfg.Log.Dir == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if cfg.Server.DBPath == "" {
			cfg.Server.DBPath = filepath.Join(dir, "routinr.db")
		}
		if cfg.Log.Dir == "" {
			cfg.Log.Dir = filepath.Join(dir, "logs")
		}
	}
	return nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q (must be http or https)", c.API.URL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api timeout cannot be negative")
	}
	if c.API.RateLimit < 0 {
		return errors.New("api rate limit cannot be negative")
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		return fmt.Errorf("invalid api max retries: %d (must be 0-10)", c.API.MaxRetries)
	}
	if c.Sync.QueueSize < 1 {
		return fmt.Errorf("invalid sync queue size: %d", c.Sync.QueueSize)
	}
	if c.Sync.Timeout <= 0 {
		return errors.New("sync timeout must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	return nil
}
