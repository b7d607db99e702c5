package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where the windowed host looks for its config when no
// -config flag or environment override is given.
const DefaultPath = "config/game.toml"

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Game    GameConfig    `toml:"game"`
	Paths   PathsConfig   `toml:"paths"`
	Logging LoggingConfig `toml:"logging"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type GameConfig struct {
	Seed        int64   `toml:"seed"`         // 0 = seed from the clock
	Difficulty  string  `toml:"difficulty"`   // easy, medium, hard, extreme or a name from presets_file
	Mode        string  `toml:"mode"`         // "wave" or "classic"
	StartLevel  int     `toml:"start_level"`  // >= 1
	ReturnSpeed float64 `toml:"return_speed"` // px/s for divers flying home
	PresetsFile string  `toml:"presets_file"` // optional YAML preset table
}

type PathsConfig struct {
	DiveDepth     float64 `toml:"dive_depth"`      // px below the launch point a dive reaches
	Amplitude     float64 `toml:"amplitude"`       // px of lateral swing for curved dives
	MinDurationMs float64 `toml:"min_duration_ms"` // shortest dive
	MaxDurationMs float64 `toml:"max_duration_ms"` // longest dive
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML config file over the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Defaults when the file
// does not exist. Any other read or parse failure is still returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Defaults returns the settings used when no config file is present.
func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Formation Strike",
			Width:  960,
			Height: 720,
		},
		Game: GameConfig{
			Difficulty:  "medium",
			Mode:        "wave",
			StartLevel:  1,
			ReturnSpeed: 220,
		},
		Paths: PathsConfig{
			DiveDepth:     420,
			Amplitude:     90,
			MinDurationMs: 2200,
			MaxDurationMs: 3400,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Game.StartLevel < 1 {
		return fmt.Errorf("start_level must be >= 1, got %d", c.Game.StartLevel)
	}
	if c.Game.Mode != "wave" && c.Game.Mode != "classic" {
		return fmt.Errorf("unknown mode %q (supported: wave, classic)", c.Game.Mode)
	}
	if c.Game.ReturnSpeed <= 0 {
		return fmt.Errorf("return_speed must be positive, got %g", c.Game.ReturnSpeed)
	}
	if c.Paths.MinDurationMs <= 0 || c.Paths.MaxDurationMs < c.Paths.MinDurationMs {
		return fmt.Errorf("invalid dive duration range [%g, %g]", c.Paths.MinDurationMs, c.Paths.MaxDurationMs)
	}
	return nil
}
