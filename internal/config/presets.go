package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxPresetRows mirrors the hard row cap applied by the scaling engine; a
// preset floor above it could never be honoured.
const maxPresetRows = 8

// Preset is one named difficulty multiplier bundle as stored on disk.
type Preset struct {
	Name                    string  `yaml:"name"`
	SpeedMultiplier         float64 `yaml:"speed"` // divides move interval, multiplies drift
	BombFrequencyMultiplier float64 `yaml:"bomb_frequency"`
	WaveIntervalMultiplier  float64 `yaml:"wave_interval"` // divides the inter-wave delay
	WaveSizeMultiplier      float64 `yaml:"wave_size"`
	RowCountMultiplier      float64 `yaml:"row_count"`
	PointsMultiplier        float64 `yaml:"points"`
	MinRows                 int     `yaml:"min_rows"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// PresetTable holds presets keyed by lower-cased name.
type PresetTable struct {
	presets map[string]Preset
	order   []string
}

// Get returns the preset with the given name (case-insensitive).
func (t *PresetTable) Get(name string) (Preset, bool) {
	p, ok := t.presets[strings.ToLower(name)]
	return p, ok
}

// Names returns preset names in file order.
func (t *PresetTable) Names() []string {
	return t.order
}

// Count returns the number of presets.
func (t *PresetTable) Count() int {
	return len(t.presets)
}

// LoadPresets loads and validates a difficulty preset table from YAML.
func LoadPresets(path string) (*PresetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	return ParsePresets(raw)
}

// ParsePresets decodes a YAML preset table.
func ParsePresets(raw []byte) (*PresetTable, error) {
	var f presetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, fmt.Errorf("parse presets: no presets defined")
	}
	t := &PresetTable{presets: make(map[string]Preset, len(f.Presets))}
	for _, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(p.Name)
		if _, dup := t.presets[key]; dup {
			return nil, fmt.Errorf("preset %q: defined twice", p.Name)
		}
		t.presets[key] = p
		t.order = append(t.order, p.Name)
	}
	return t, nil
}

// Validate rejects presets that would make the scaling engine emit a
// degenerate configuration.
func (p Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("preset without a name")
	}
	mults := []struct {
		field string
		v     float64
	}{
		{"speed", p.SpeedMultiplier},
		{"bomb_frequency", p.BombFrequencyMultiplier},
		{"wave_interval", p.WaveIntervalMultiplier},
		{"wave_size", p.WaveSizeMultiplier},
		{"row_count", p.RowCountMultiplier},
		{"points", p.PointsMultiplier},
	}
	for _, m := range mults {
		if m.v <= 0 {
			return fmt.Errorf("preset %q: %s multiplier must be positive, got %g", p.Name, m.field, m.v)
		}
	}
	if p.MinRows < 1 || p.MinRows > maxPresetRows {
		return fmt.Errorf("preset %q: min_rows must be in 1..%d, got %d", p.Name, maxPresetRows, p.MinRows)
	}
	return nil
}
