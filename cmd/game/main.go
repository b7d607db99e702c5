package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/Garsondee/Formation-Strike/internal/config"
	"github.com/Garsondee/Formation-Strike/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// configEnv overrides the config path when -config is not given.
const configEnv = "FORMATION_STRIKE_CONFIG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to game.toml (default "+config.DefaultPath+")")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	preset, err := resolvePreset(cfg.Game)
	if err != nil {
		return err
	}
	mode, ok := game.ParseFormationMode(cfg.Game.Mode)
	if !ok {
		return fmt.Errorf("unknown formation mode %q", cfg.Game.Mode)
	}

	opts := game.Options{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Seed:       cfg.Game.Seed,
		StartLevel: cfg.Game.StartLevel,
		Preset:     preset,
		Mode:       mode,
		Paths: game.PathGenerator{
			DiveDepth:     cfg.Paths.DiveDepth,
			Amplitude:     cfg.Paths.Amplitude,
			MinDurationMs: cfg.Paths.MinDurationMs,
			MaxDurationMs: cfg.Paths.MaxDurationMs,
		},
		ReturnSpeed: cfg.Game.ReturnSpeed,
		Logger:      log,
	}
	log.Info("starting",
		zap.String("config", path),
		zap.String("difficulty", preset.Name),
		zap.String("mode", mode.String()),
		zap.Int("start_level", opts.StartLevel),
	)

	g := game.New(opts)
	w, h := g.WindowSize()
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// resolvePreset picks the difficulty named in the config, looking in the
// optional YAML preset table before the built-in presets.
func resolvePreset(gc config.GameConfig) (game.DifficultyMultipliers, error) {
	if gc.PresetsFile != "" {
		table, err := config.LoadPresets(gc.PresetsFile)
		switch {
		case err == nil:
			if p, ok := table.Get(gc.Difficulty); ok {
				return game.MultipliersFromPreset(p), nil
			}
		case !errors.Is(err, fs.ErrNotExist):
			return game.DifficultyMultipliers{}, err
		}
	}
	if p, ok := game.PresetByName(gc.Difficulty); ok {
		return p, nil
	}
	return game.DifficultyMultipliers{}, fmt.Errorf("unknown difficulty %q", gc.Difficulty)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
