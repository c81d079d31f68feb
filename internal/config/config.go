package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Books source kinds.
const (
	SourceMemory = "memory"
	SourceHTTP   = "http"
)

// Config holds the settings shared by the shelf TUI and catalog server.
type Config struct {
	Source       string        `env:"SOURCE"`
	CatalogURL   string        `env:"CATALOG_URL"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT"`
	Latency      time.Duration `env:"LATENCY"`
	SeedPath     string        `env:"SEED_PATH"`
	LogPath      string        `env:"LOG_PATH"`
	Listen       string        `env:"LISTEN"`
}

const (
	defaultConfigPath   = "~/.config/shelf/config.toml"
	defaultCatalogURL   = "http://127.0.0.1:7488"
	defaultFetchTimeout = 5 * time.Second
	defaultLogPath      = "~/.local/state/shelf/shelf.log"
	defaultListen       = "127.0.0.1:7488"
	envPrefix           = "SHELF_"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source:       SourceMemory,
		CatalogURL:   defaultCatalogURL,
		FetchTimeout: defaultFetchTimeout,
		LogPath:      mustExpand(defaultLogPath),
		Listen:       defaultListen,
	}
}

// Load reads the TOML file at path (or the default location), overlays
// SHELF_* environment variables and validates the result. A missing file
// is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	fileCfg, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("merge config: %w", err)
	}

	var envCfg Config
	if err := env.ParseWithOptions(&envCfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := mergo.Merge(&cfg, envCfg, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("merge env: %w", err)
	}

	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	cfg.CatalogURL = strings.TrimSpace(cfg.CatalogURL)
	cfg.Listen = strings.TrimSpace(cfg.Listen)
	if seed := strings.TrimSpace(cfg.SeedPath); seed != "" {
		cfg.SeedPath = mustExpand(seed)
	}
	cfg.LogPath = mustExpand(cfg.LogPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.Source {
	case SourceMemory:
	case SourceHTTP:
		if c.CatalogURL == "" {
			return fmt.Errorf("catalog_url is required for the http source")
		}
	default:
		return fmt.Errorf("unknown source %q (want %q or %q)", c.Source, SourceMemory, SourceHTTP)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.Latency < 0 {
		return fmt.Errorf("latency must not be negative, got %s", c.Latency)
	}
	return nil
}

func readFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Source       string `toml:"source"`
		CatalogURL   string `toml:"catalog_url"`
		FetchTimeout string `toml:"fetch_timeout"`
		Latency      string `toml:"latency"`
		SeedPath     string `toml:"seed_path"`
		LogPath      string `toml:"log_path"`
		Listen       string `toml:"listen"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Source:     strings.TrimSpace(raw.Source),
		CatalogURL: strings.TrimSpace(raw.CatalogURL),
		SeedPath:   strings.TrimSpace(raw.SeedPath),
		LogPath:    strings.TrimSpace(raw.LogPath),
		Listen:     strings.TrimSpace(raw.Listen),
	}
	if cfg.FetchTimeout, err = parseDuration("fetch_timeout", raw.FetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Latency, err = parseDuration("latency", raw.Latency); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
