// Package config loads viewer configuration from an optional YAML file.
// Flags override everything here.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds user-configurable viewer settings.
type Config struct {
	// Database is the path to the glosco state database.
	Database string `yaml:"database"`
	// Idents restricts the view to these reporting idents; empty shows all.
	Idents []string `yaml:"idents"`
	// HistorySec is the fade window for ended connections, in seconds.
	HistorySec float64 `yaml:"history_seconds"`
	// UpdateMS is the poll period in milliseconds.
	UpdateMS int `yaml:"update_ms"`
	// Width and Height bound the viewport new hosts are placed in.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:   "glosco.db",
		HistorySec: 5.0,
		UpdateMS:   250,
		Width:      1280,
		Height:     800,
	}
}

// Load reads configuration from a YAML file. An empty path or missing file
// falls back to defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.UpdateMS <= 0 {
		cfg.UpdateMS = Default().UpdateMS
	}
	if cfg.Width <= 0 {
		cfg.Width = Default().Width
	}
	if cfg.Height <= 0 {
		cfg.Height = Default().Height
	}
	return cfg, nil
}
