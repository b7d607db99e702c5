package game

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// TestSim is a headless simulation harness used by tests and the headless
// report. It mirrors the formation half of Game.Update (grid, then waves)
// without any Ebiten dependency and supports deterministic seeding and
// structured logging.
type TestSim struct {
	Width    int
	Height   int
	Grid     *Grid
	Waves    *WaveCoordinator
	Config   LevelConfig
	SimLog   *SimLog
	Reporter *SimReporter
	Events   []WaveEvent

	rng     RandomSource
	level   int
	preset  DifficultyMultipliers
	mode    FormationMode
	rows    int // 0 keeps the resolved value
	cols    int
	paths   PathGenerator
	retSpd  float64
	targetX float64
	tickMs  float64
	log     *zap.Logger

	tick int
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // seed, level, preset, sizes: applied first
	simOptWorld                      // touches the built grid: applied last
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithRandom injects a random source, e.g. a scripted one.
func WithRandom(src RandomSource) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = src
	}}
}

// WithLevel sets the level passed to Resolve.
func WithLevel(level int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.level = level
	}}
}

// WithPreset sets the difficulty preset passed to Resolve.
func WithPreset(p DifficultyMultipliers) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.preset = p
	}}
}

// WithGridSize overrides the resolved formation dimensions.
func WithGridSize(rows, cols int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rows = rows
		ts.cols = cols
	}}
}

// WithMode selects the formation movement mode.
func WithMode(mode FormationMode) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.mode = mode
	}}
}

// WithPaths overrides the dive path generator.
func WithPaths(pg PathGenerator) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.paths = pg
	}}
}

// WithReturn sets the homeward flight speed in px/s.
func WithReturn(pxPerSec float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.retSpd = pxPerSec
	}}
}

// WithTargetX fixes the defender x used for homing.
func WithTargetX(x float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.targetX = x
	}}
}

// WithTickMs sets the simulated frame length.
func WithTickMs(ms float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tickMs = ms
	}}
}

// WithSimLogger routes coordinator debug logs to log.
func WithSimLogger(log *zap.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.log = log
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithKilled destroys the given slots before the first tick.
func WithKilled(slots ...GridSlot) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		for _, s := range slots {
			ts.Kill(s)
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (seed, level, preset, sizes, verbose)
//  2. Resolve the level and build the grid and coordinator
//  3. World edits (pre-killed slots)
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Width:    960,
		Height:   720,
		SimLog:   NewSimLog(false),
		Reporter: NewSimReporter(reportWindowTicks),
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		level:    1,
		preset:   Medium,
		mode:     ModeWave,
		paths:    DefaultPathGenerator(),
		retSpd:   defaultReturnSpeed,
		targetX:  480,
		tickMs:   1000.0 / 60,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	ts.Config = Resolve(ts.level, ts.preset)
	if ts.rows > 0 {
		ts.Config.Rows = ts.rows
	}
	if ts.cols > 0 {
		ts.Config.Cols = ts.cols
	}
	ts.Grid = NewGrid(ts.Config, ts.mode, float64(ts.Width), 80)
	ts.Waves = NewWaveCoordinator(ts.Grid, ts.rng, ts.Config,
		WithPathGenerator(ts.paths),
		WithReturnSpeed(ts.retSpd),
		WithLogger(ts.log),
		WithObserver(ts.record),
	)

	for _, o := range opts {
		if o.kind == simOptWorld {
			o.fn(ts)
		}
	}
	return ts
}

// Kill destroys the invader at slot, if any.
func (ts *TestSim) Kill(slot GridSlot) {
	if m := ts.Grid.Member(slot); m != nil && m.alive {
		m.Kill()
		ts.SimLog.Add(ts.tick, slotLabel(slot), waveLabel(m.wave), "combat", "killed", m.state.String(), 0)
	}
}

// RunTicks advances the simulation n ticks, logging events to SimLog.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.tick++
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.tick++
		ts.runOneTick()
		if predicate(ts) {
			return ts.tick
		}
	}
	return -1
}

// runOneTick mirrors the formation half of Game.Update.
func (ts *TestSim) runOneTick() {
	tick := ts.tick
	members := ts.Grid.Members()

	prevStates := make(map[*Invader]FlightState, len(members))
	for _, m := range members {
		prevStates[m] = m.state
	}

	ts.Grid.Update(ts.tickMs)
	ts.Waves.SetTargetX(ts.targetX)
	ts.Waves.SetLaunching(ts.Grid.Mode() == ModeWave)
	ts.Waves.Update(ts.tickMs)

	// --- Post-tick logging ---

	for _, m := range members {
		if !m.alive {
			continue
		}
		label := slotLabel(m.slot)
		wave := waveLabel(m.wave)
		if m.state != prevStates[m] {
			ts.SimLog.Add(tick, label, wave, "state", "change",
				fmt.Sprintf("%s → %s", prevStates[m], m.state), 0)
		}
		if m.state == StateInFormation {
			continue
		}
		ts.SimLog.AddVerbose(tick, label, wave, "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", m.x, m.y), 0)
		if m.path != nil {
			ts.SimLog.AddVerbose(tick, label, wave, "path", "progress",
				fmt.Sprintf("%s %.3f", m.path.shape, m.path.progress), m.path.progress)
		}
	}
	ts.SimLog.AddVerbose(tick, "--", "--", "wave", "active",
		fmt.Sprintf("%d", ts.Waves.ActiveWaves()), float64(ts.Waves.ActiveWaves()))

	if tick%60 == 0 {
		ts.Reporter.Collect(tick, ts.Grid, ts.Waves)
	}
}

// record is the coordinator observer.
func (ts *TestSim) record(e WaveEvent) {
	ts.Events = append(ts.Events, e)
	switch e.Kind {
	case EventWaveLaunched, EventWaveRetired:
		ts.SimLog.Add(ts.tick, "--", waveLabel(e.WaveID), "wave", e.Kind.String(),
			fmt.Sprintf("size=%d at=%.0fms", e.Size, e.AtMs), float64(e.Size))
	default:
		ts.SimLog.Add(ts.tick, slotLabel(e.Slot), waveLabel(e.WaveID), "wave", e.Kind.String(),
			fmt.Sprintf("at=%.0fms", e.AtMs), e.AtMs)
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.tick
}

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick     int
	Waves    int
	Invaders []InvaderSnapshot
}

// InvaderSnapshot is a lightweight copy of an invader's state at a tick.
type InvaderSnapshot struct {
	Label   string
	Slot    GridSlot
	Alive   bool
	State   FlightState
	Wave    int
	X, Y    float64
	HasPath bool
}

// Snapshot returns the current state of every invader.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.tick, Waves: ts.Waves.ActiveWaves()}
	for _, m := range ts.Grid.Members() {
		snap.Invaders = append(snap.Invaders, InvaderSnapshot{
			Label:   slotLabel(m.slot),
			Slot:    m.slot,
			Alive:   m.alive,
			State:   m.state,
			Wave:    m.wave,
			X:       m.x,
			Y:       m.y,
			HasPath: m.path != nil,
		})
	}
	return snap
}
