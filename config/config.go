// Package config handles loading and managing application configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ooovooo/qrcard/card"
)

// CardConfig holds the rendering parameters for generated cards.
type CardConfig struct {
	Size       int    `yaml:"size"`
	BoxSize    int    `yaml:"box_size"`
	Border     int    `yaml:"border"`
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
	MaxVersion int    `yaml:"max_version"`
	Watermark  string `yaml:"watermark"`
}

// Config holds all application configuration values.
type Config struct {
	Port       int        `yaml:"port"`
	DataDir    string     `yaml:"data_dir"`
	SkinsDir   string     `yaml:"skins_dir"`
	WebhookURL string     `yaml:"webhook_url"`
	LogLevel   string     `yaml:"log_level"`
	Card       CardConfig `yaml:"card"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &Config{
		Port:     8640,
		DataDir:  filepath.Join(homeDir, ".qrcard"),
		LogLevel: "info",
		Card: CardConfig{
			Size:       card.DefaultSize,
			BoxSize:    card.DefaultBoxSize,
			Border:     card.DefaultBorder,
			Foreground: card.DefaultForeground,
			Background: card.DefaultBackground,
			MaxVersion: card.DefaultMaxVersion,
			Watermark:  card.DefaultWatermark,
		},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. Variables from a .env file in the
// working directory are loaded first (existing environment wins), then
// QRCARD_* environment variables override file and default values.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist, proceed with defaults.
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	applyEnvOverrides(cfg)

	if cfg.SkinsDir == "" {
		cfg.SkinsDir = filepath.Join(cfg.DataDir, "skins")
	}
	return cfg, nil
}

// applyEnvOverrides applies QRCARD_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRCARD_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QRCARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("QRCARD_SKINS_DIR"); v != "" {
		cfg.SkinsDir = v
	}
	if v := os.Getenv("QRCARD_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("QRCARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QRCARD_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Card.Size = n
		}
	}
	if v := os.Getenv("QRCARD_FOREGROUND"); v != "" {
		cfg.Card.Foreground = v
	}
	if v := os.Getenv("QRCARD_BACKGROUND"); v != "" {
		cfg.Card.Background = v
	}
}

// CardOptions converts the card section into generator options.
func (c *Config) CardOptions() card.Options {
	opts := card.DefaultOptions()
	opts.Size = c.Card.Size
	opts.BoxSize = c.Card.BoxSize
	opts.Border = c.Card.Border
	opts.Foreground = c.Card.Foreground
	opts.Background = c.Card.Background
	if c.Card.MaxVersion != 0 {
		opts.MaxVersion = c.Card.MaxVersion
	}
	return opts
}

// CardsDir is where the HTTP API stores rendered cards.
func (c *Config) CardsDir() string {
	return filepath.Join(c.DataDir, "cards")
}

// DBPath is the location of the card history database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "cards.db")
}

// EnsureDataDir creates the data, skins and cards directories if they do
// not already exist.
func (c *Config) EnsureDataDir() error {
	for _, dir := range []string{c.DataDir, c.SkinsDir, c.CardsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating dir %s: %w", dir, err)
		}
	}
	return nil
}
