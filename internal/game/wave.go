package game

import (
	"math"

	"go.uber.org/zap"
)

// arrivalThreshold is how close (px) a returning diver must get to its slot
// before it snaps back into formation.
const arrivalThreshold = 5.0

// defaultReturnSpeed is the homeward flight speed in px/s.
const defaultReturnSpeed = 220.0

// Wave is a group of invaders launched together.
type Wave struct {
	ID         int
	LaunchedAt float64 // coordinator clock, ms
	Size       int     // members at launch
	members    []*Invader
}

// Members returns the members still tracked by the wave. Destroyed members
// are pruned on the tick after their destruction.
func (w *Wave) Members() []*Invader {
	return w.members
}

// InFlight counts members still away from the formation for this wave.
func (w *Wave) InFlight() int {
	n := 0
	for _, m := range w.members {
		if m.alive && m.wave == w.ID && m.state != StateInFormation {
			n++
		}
	}
	return n
}

func (w *Wave) pruneDead() {
	kept := w.members[:0]
	for _, m := range w.members {
		if m.alive {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(w.members); i++ {
		w.members[i] = nil
	}
	w.members = kept
}

// WaveEventKind names something the coordinator did.
type WaveEventKind int

const (
	EventWaveLaunched WaveEventKind = iota
	EventDiveComplete               // a member finished its path and turned for home
	EventLanded                     // a member snapped back into its slot
	EventWaveRetired
)

func (k WaveEventKind) String() string {
	switch k {
	case EventWaveLaunched:
		return "wave_launched"
	case EventDiveComplete:
		return "dive_complete"
	case EventLanded:
		return "landed"
	case EventWaveRetired:
		return "wave_retired"
	default:
		return "unknown"
	}
}

// WaveEvent is delivered to the observer registered with WithObserver.
type WaveEvent struct {
	Kind   WaveEventKind
	WaveID int
	Size   int      // wave size for launch/retire events
	Slot   GridSlot // member slot for dive/landing events
	AtMs   float64
}

// WaveStats are running totals since the last Reset.
type WaveStats struct {
	Launched        int
	Retired         int
	MembersLaunched int
	DivesCompleted  int
	Landings        int
	PeakConcurrent  int
	LargestWave     int
}

// CoordinatorOption configures a WaveCoordinator.
type CoordinatorOption func(*WaveCoordinator)

// WithPathGenerator overrides the dive path generator.
func WithPathGenerator(pg PathGenerator) CoordinatorOption {
	return func(c *WaveCoordinator) { c.paths = pg }
}

// WithReturnSpeed sets the homeward flight speed in px/s.
func WithReturnSpeed(pxPerSec float64) CoordinatorOption {
	return func(c *WaveCoordinator) {
		if pxPerSec > 0 {
			c.returnSpeed = pxPerSec
		}
	}
}

// WithLogger attaches a logger. Launches and retirements log at debug.
func WithLogger(log *zap.Logger) CoordinatorOption {
	return func(c *WaveCoordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithObserver registers a callback for coordinator events.
func WithObserver(fn func(WaveEvent)) CoordinatorOption {
	return func(c *WaveCoordinator) { c.observe = fn }
}

// WaveCoordinator decides when formation members peel off to dive, flies
// them along their attack paths and brings them home. It is single-threaded
// and advanced once per frame by Update.
type WaveCoordinator struct {
	grid        Formation
	rng         RandomSource
	cfg         LevelConfig
	paths       PathGenerator
	returnSpeed float64
	log         *zap.Logger
	observe     func(WaveEvent)

	waves        []*Wave
	nowMs        float64
	lastLaunchMs float64
	nextWaveID   int
	targetX      float64
	stats        WaveStats
	holdLaunches bool

	homing []*Invader // scratch: members already returning at tick start
}

// NewWaveCoordinator builds a coordinator over grid for one level.
func NewWaveCoordinator(grid Formation, rng RandomSource, cfg LevelConfig, opts ...CoordinatorOption) *WaveCoordinator {
	c := &WaveCoordinator{
		grid:        grid,
		rng:         rng,
		cfg:         cfg,
		paths:       DefaultPathGenerator(),
		returnSpeed: defaultReturnSpeed,
		log:         zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Reset starts a new level: the config is replaced, every wave is dropped
// and the launch clock restarts.
func (c *WaveCoordinator) Reset(cfg LevelConfig) {
	c.cfg = cfg
	c.waves = nil
	c.nowMs = 0
	c.lastLaunchMs = 0
	c.stats = WaveStats{}
}

// SetTargetX records the defender's horizontal position for homing.
func (c *WaveCoordinator) SetTargetX(x float64) { c.targetX = x }

// SetLaunching enables or holds new launches. Divers already in flight keep
// flying home while launches are held, and their waves still retire.
func (c *WaveCoordinator) SetLaunching(on bool) { c.holdLaunches = !on }

func (c *WaveCoordinator) Config() LevelConfig { return c.cfg }
func (c *WaveCoordinator) Waves() []*Wave      { return c.waves }
func (c *WaveCoordinator) ActiveWaves() int    { return len(c.waves) }
func (c *WaveCoordinator) Stats() WaveStats    { return c.stats }
func (c *WaveCoordinator) NowMs() float64      { return c.nowMs }

// Update runs one frame:
//  1. advance every attacking member, turning completed dives for home
//  2. steer members that were already returning, landing them on arrival
//  3. launch a new wave if the launch conditions hold
//  4. retire waves with no member left in flight
func (c *WaveCoordinator) Update(deltaMs float64) {
	c.nowMs += deltaMs

	c.homing = c.homing[:0]
	for _, w := range c.waves {
		for _, m := range w.members {
			if m.alive && m.wave == w.ID && m.state == StateReturning {
				c.homing = append(c.homing, m)
			}
		}
	}

	for _, w := range c.waves {
		for _, m := range w.members {
			if !m.alive || m.wave != w.ID || m.state != StateAttacking {
				continue
			}
			c.advanceDiver(w, m, deltaMs)
		}
	}

	for _, m := range c.homing {
		c.steerHome(m, deltaMs)
	}

	if c.shouldLaunchWave() {
		c.launchWave()
	}

	c.retireWaves()
}

func (c *WaveCoordinator) advanceDiver(w *Wave, m *Invader, deltaMs float64) {
	if m.path == nil {
		m.BeginReturn()
		return
	}
	m.path.Advance(deltaMs)
	px, py := m.path.Position()
	x := px + (c.targetX-px)*c.cfg.HomingStrength
	m.SetPosition(x, py)
	if m.path.IsComplete() {
		m.BeginReturn()
		c.stats.DivesCompleted++
		c.emit(WaveEvent{Kind: EventDiveComplete, WaveID: w.ID, Slot: m.slot})
	}
}

func (c *WaveCoordinator) steerHome(m *Invader, deltaMs float64) {
	sx, sy := c.grid.SlotPosition(m.slot)
	dx, dy := sx-m.x, sy-m.y
	dist := math.Hypot(dx, dy)
	step := c.returnSpeed * deltaMs / 1000
	if dist > step {
		m.Move(dx/dist*step, dy/dist*step)
		dist -= step
	} else {
		dist = 0
	}
	if dist < arrivalThreshold {
		m.Land(sx, sy)
		c.stats.Landings++
		c.emit(WaveEvent{Kind: EventLanded, WaveID: m.wave, Slot: m.slot})
	}
}

// shouldLaunchWave rerolls the inter-wave interval on every check rather
// than fixing it at the previous launch, so spacing between waves is
// irregular. Keep it that way.
func (c *WaveCoordinator) shouldLaunchWave() bool {
	if c.holdLaunches || len(c.waves) >= c.cfg.MaxSimultaneousWaves {
		return false
	}
	interval := uniform(c.rng, c.cfg.WaveIntervalMin, c.cfg.WaveIntervalMax)
	if c.nowMs-c.lastLaunchMs <= interval {
		return false
	}
	return len(c.frontLine()) > 0
}

// frontLine returns the live parked members of the bottom-most occupied
// row. Only they may start a dive.
func (c *WaveCoordinator) frontLine() []*Invader {
	parked := c.grid.AliveInFormation()
	bottom := -1
	for _, m := range parked {
		if m.alive && m.state == StateInFormation && m.slot.Row > bottom {
			bottom = m.slot.Row
		}
	}
	if bottom < 0 {
		return nil
	}
	var pool []*Invader
	for _, m := range parked {
		if m.alive && m.state == StateInFormation && m.slot.Row == bottom {
			pool = append(pool, m)
		}
	}
	return pool
}

// launchWave picks members from the front line without replacement and
// sends each one off on its own path. Returns nil when nobody can go.
func (c *WaveCoordinator) launchWave() *Wave {
	pool := c.frontLine()
	if len(pool) == 0 {
		return nil
	}
	size := intBetween(c.rng, c.cfg.WaveMinSize, c.cfg.WaveMaxSize)
	size = max(min(size, len(pool)), 1)

	c.nextWaveID++
	w := &Wave{ID: c.nextWaveID, LaunchedAt: c.nowMs, Size: size, members: make([]*Invader, 0, size)}
	for i := 0; i < size; i++ {
		idx := c.rng.Intn(len(pool))
		m := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)

		p := c.paths.Create(c.rng)
		p.Start(m.x, m.y)
		m.Launch(p, w.ID)
		w.members = append(w.members, m)
	}
	c.waves = append(c.waves, w)
	c.lastLaunchMs = c.nowMs

	c.stats.Launched++
	c.stats.MembersLaunched += size
	c.stats.PeakConcurrent = max(c.stats.PeakConcurrent, len(c.waves))
	c.stats.LargestWave = max(c.stats.LargestWave, size)

	c.log.Debug("wave launched",
		zap.Int("wave", w.ID),
		zap.Int("size", size),
		zap.Int("row", w.members[0].slot.Row),
		zap.Int("active", len(c.waves)),
		zap.Float64("at_ms", c.nowMs),
	)
	c.emit(WaveEvent{Kind: EventWaveLaunched, WaveID: w.ID, Size: size})
	return w
}

func (c *WaveCoordinator) retireWaves() {
	kept := c.waves[:0]
	for _, w := range c.waves {
		w.pruneDead()
		if w.InFlight() > 0 {
			kept = append(kept, w)
			continue
		}
		c.stats.Retired++
		c.log.Debug("wave retired",
			zap.Int("wave", w.ID),
			zap.Int("survivors", len(w.members)),
			zap.Float64("flight_ms", c.nowMs-w.LaunchedAt),
		)
		c.emit(WaveEvent{Kind: EventWaveRetired, WaveID: w.ID, Size: w.Size})
	}
	for i := len(kept); i < len(c.waves); i++ {
		c.waves[i] = nil
	}
	c.waves = kept
}

func (c *WaveCoordinator) emit(e WaveEvent) {
	if c.observe == nil {
		return
	}
	e.AtMs = c.nowMs
	c.observe(e)
}
