// Package config loads sketchpad settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	History   HistoryConfig   `yaml:"history"`
	Paste     PasteConfig     `yaml:"paste"`
	Brush     BrushConfig     `yaml:"brush"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Input     InputConfig     `yaml:"input"`
}

// CanvasConfig sizes the drawing surface; new shapes are centered on it.
type CanvasConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Background string  `yaml:"background"`
}

// HistoryConfig bounds undo history.
type HistoryConfig struct {
	MaxDepth       int `yaml:"max_depth"`       // 0 = unbounded
	PersistEntries int `yaml:"persist_entries"` // per document in SQLite
}

// PasteConfig places pasted plain text. Left and Top default to 100 when
// absent; an explicit 0 is kept.
type PasteConfig struct {
	Left     *float64 `yaml:"left"`
	Top      *float64 `yaml:"top"`
	FontSize float64  `yaml:"font_size"`
}

// BrushConfig controls freehand strokes.
type BrushConfig struct {
	Width float64 `yaml:"width"`
}

// AutosaveConfig schedules background saves of dirty documents.
type AutosaveConfig struct {
	Schedule string `yaml:"schedule"` // cron spec or "@every 30s"; "off" disables
}

// ClipboardConfig selects the clipboard backend.
type ClipboardConfig struct {
	Backend     string        `yaml:"backend"` // system | memory
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// InputConfig tunes gesture recognition.
type InputConfig struct {
	TapReset time.Duration `yaml:"tap_reset"` // max gap between the taps of a double tap
}

const (
	BackendSystem = "system"
	BackendMemory = "memory"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		homeDir, _ := os.UserHomeDir()
		c.DataDir = filepath.Join(homeDir, ".local", "share", "sketchpad")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = 1280
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = 800
	}
	if c.Canvas.Background == "" {
		c.Canvas.Background = "white"
	}
	if c.History.MaxDepth < 0 {
		c.History.MaxDepth = 0
	} else if c.History.MaxDepth == 0 {
		c.History.MaxDepth = 100
	}
	if c.History.PersistEntries <= 0 {
		c.History.PersistEntries = 40
	}
	if c.Paste.Left == nil {
		c.Paste.Left = ptr(100.0)
	}
	if c.Paste.Top == nil {
		c.Paste.Top = ptr(100.0)
	}
	if c.Paste.FontSize <= 0 {
		c.Paste.FontSize = 24
	}
	if c.Brush.Width <= 0 {
		c.Brush.Width = 5
	}
	if c.Autosave.Schedule == "" {
		c.Autosave.Schedule = "@every 30s"
	}
	if c.Clipboard.Backend == "" {
		c.Clipboard.Backend = BackendSystem
	}
	if c.Input.TapReset <= 0 {
		c.Input.TapReset = 300 * time.Millisecond
	}
}

func ptr[T any](v T) *T { return &v }

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Clipboard.Backend {
	case BackendSystem, BackendMemory:
	default:
		return fmt.Errorf("clipboard.backend: unknown backend %q", c.Clipboard.Backend)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DBPath is where the SQLite database lives.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "sketchpad.db")
}

// DefaultPath is the config file looked up when none is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "sketchpad", "config.yaml")
}

// LoadFile reads a YAML configuration file. A missing file yields defaults.
// A history.max_depth of -1 in the file means unbounded.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", s)
}
