package game

import (
	"math"
	"strings"

	"github.com/Garsondee/Formation-Strike/internal/config"
)

// Level-driven base constants for the scaling engine.
const (
	BaseRows    = 5
	BaseCols    = 8
	BaseSpeedMs = 1000.0 // classic-mode step interval at level 1 (smaller = faster)
	MaxRows     = 8
	MaxCols     = 10
	MinSpeedMs  = 300.0

	maxWaveSize          = 8
	maxSimultaneousWaves = 4
	maxHomingStrength    = 0.35
)

// DifficultyMultipliers is a named multiplier bundle applied on top of the
// level formulas. Speed and WaveInterval divide their base value (larger is
// faster / shorter); every other multiplier scales its base value up.
type DifficultyMultipliers struct {
	Name          string
	Speed         float64
	BombFrequency float64
	WaveInterval  float64
	WaveSize      float64
	RowCount      float64
	Points        float64
	MinRows       int
}

// Built-in presets.
var (
	Easy = DifficultyMultipliers{
		Name: "easy", Speed: 0.8, BombFrequency: 0.6, WaveInterval: 0.8,
		WaveSize: 0.75, RowCount: 0.8, Points: 0.75, MinRows: 3,
	}
	Medium = DifficultyMultipliers{
		Name: "medium", Speed: 1, BombFrequency: 1, WaveInterval: 1,
		WaveSize: 1, RowCount: 1, Points: 1, MinRows: 4,
	}
	Hard = DifficultyMultipliers{
		Name: "hard", Speed: 1.25, BombFrequency: 1.5, WaveInterval: 1.25,
		WaveSize: 1.25, RowCount: 1.2, Points: 1.5, MinRows: 5,
	}
	Extreme = DifficultyMultipliers{
		Name: "extreme", Speed: 1.5, BombFrequency: 2, WaveInterval: 1.5,
		WaveSize: 1.5, RowCount: 1.4, Points: 2, MinRows: 6,
	}
)

// Presets lists the built-in presets from easiest to hardest.
func Presets() []DifficultyMultipliers {
	return []DifficultyMultipliers{Easy, Medium, Hard, Extreme}
}

// PresetByName looks up a built-in preset, case-insensitively.
func PresetByName(name string) (DifficultyMultipliers, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return DifficultyMultipliers{}, false
}

// MultipliersFromPreset converts a preset loaded from disk.
func MultipliersFromPreset(p config.Preset) DifficultyMultipliers {
	return DifficultyMultipliers{
		Name:          strings.ToLower(p.Name),
		Speed:         p.SpeedMultiplier,
		BombFrequency: p.BombFrequencyMultiplier,
		WaveInterval:  p.WaveIntervalMultiplier,
		WaveSize:      p.WaveSizeMultiplier,
		RowCount:      p.RowCountMultiplier,
		Points:        p.PointsMultiplier,
		MinRows:       p.MinRows,
	}
}

// LevelConfig is the fully resolved parameter bundle for one level.
type LevelConfig struct {
	Level      int
	Difficulty string

	Rows int
	Cols int

	MoveIntervalMs   float64 // classic mode: ms between formation steps
	FormationSpeed   float64 // wave mode: lateral drift in px/s
	BombFrequency    float64 // expected bombs per second from the whole formation
	PointsMultiplier float64

	WaveMinSize          int
	WaveMaxSize          int
	MaxSimultaneousWaves int
	WaveIntervalMin      float64 // ms
	WaveIntervalMax      float64 // ms
	HomingStrength       float64 // [0, maxHomingStrength]
}

// Resolve computes the configuration for a level under a difficulty preset.
// It is a pure function. level must be >= 1; this is not checked.
func Resolve(level int, preset DifficultyMultipliers) LevelConfig {
	step := level - 1

	baseRows := min(BaseRows+step/3, MaxRows)
	baseSpeedMs := math.Max(BaseSpeedMs-float64(step)*50, MinSpeedMs)
	baseBombFreq := 0.3 + float64(step)*0.1
	basePoints := 1 + float64(step)*0.5

	rows := int(math.Floor(float64(baseRows) * preset.RowCount))
	rows = min(max(rows, preset.MinRows), MaxRows)

	// Wave-mode bases.
	baseDrift := math.Min(40+float64(step)*5, 100)
	baseWaveMin := 1 + step/4
	baseWaveMax := 2 + step/2
	baseIntervalMax := math.Max(4000-float64(step)*250, 1500)
	baseIntervalMin := math.Max(2000-float64(step)*150, 600)

	waveMin := min(max(1, int(math.Floor(float64(baseWaveMin)*preset.WaveSize))), maxWaveSize)
	waveMax := min(int(math.Floor(float64(baseWaveMax)*preset.WaveSize)), maxWaveSize)
	waveMax = max(waveMax, waveMin)

	intervalMax := baseIntervalMax / preset.WaveInterval
	intervalMin := math.Min(baseIntervalMin/preset.WaveInterval, intervalMax)

	return LevelConfig{
		Level:      level,
		Difficulty: preset.Name,

		Rows: rows,
		Cols: min(BaseCols+step/5, MaxCols),

		MoveIntervalMs:   math.Max(baseSpeedMs/preset.Speed, MinSpeedMs/2),
		FormationSpeed:   baseDrift * preset.Speed,
		BombFrequency:    baseBombFreq * preset.BombFrequency,
		PointsMultiplier: basePoints * preset.Points,

		WaveMinSize:          waveMin,
		WaveMaxSize:          waveMax,
		MaxSimultaneousWaves: min(1+step/3, maxSimultaneousWaves),
		WaveIntervalMin:      intervalMin,
		WaveIntervalMax:      intervalMax,
		HomingStrength:       math.Min(float64(step)*0.05, maxHomingStrength),
	}
}
