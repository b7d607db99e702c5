package game

import (
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
)

// fixedFormation is a stationary Formation with slots on a 40px lattice.
type fixedFormation struct {
	members []*Invader
}

func newFixedFormation(rows, cols int) *fixedFormation {
	f := &fixedFormation{}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			slot := GridSlot{Row: r, Col: c}
			x, y := f.SlotPosition(slot)
			f.members = append(f.members, NewInvader(slot, x, y))
		}
	}
	return f
}

func (f *fixedFormation) AliveInFormation() []*Invader {
	var out []*Invader
	for _, m := range f.members {
		if m.IsAlive() && m.State() == StateInFormation {
			out = append(out, m)
		}
	}
	return out
}

func (f *fixedFormation) SlotPosition(s GridSlot) (float64, float64) {
	return 100 + float64(s.Col)*40, 60 + float64(s.Row)*40
}

// singleDiverConfig launches one diver per wave, at most one wave, every
// 100ms. The interval bounds are equal so the check draws nothing.
func singleDiverConfig() LevelConfig {
	return LevelConfig{
		Level:                1,
		Rows:                 2,
		Cols:                 3,
		WaveMinSize:          1,
		WaveMaxSize:          1,
		MaxSimultaneousWaves: 1,
		WaveIntervalMin:      100,
		WaveIntervalMax:      100,
	}
}

// checkWaveInvariants runs the per-tick structural checks shared by the
// soak tests.
func checkWaveInvariants(t *testing.T, ts *TestSim) {
	t.Helper()
	if n, limit := ts.Waves.ActiveWaves(), ts.Config.MaxSimultaneousWaves; n > limit {
		t.Fatalf("T=%d: %d active waves, cap is %d", ts.CurrentTick(), n, limit)
	}
	for _, m := range ts.Grid.Members() {
		if (m.AttackPath() != nil) != (m.State() == StateAttacking) {
			t.Fatalf("T=%d: %s state=%s hasPath=%v", ts.CurrentTick(), slotLabel(m.GridSlot()), m.State(), m.AttackPath() != nil)
		}
	}
	for _, w := range ts.Waves.Waves() {
		if len(w.Members()) == 0 {
			t.Fatalf("T=%d: wave %d kept with no members", ts.CurrentTick(), w.ID)
		}
		if w.InFlight() == 0 {
			t.Fatalf("T=%d: wave %d kept with nobody in flight", ts.CurrentTick(), w.ID)
		}
		for _, m := range w.Members() {
			if !m.IsAlive() {
				t.Fatalf("T=%d: wave %d still tracks dead %s", ts.CurrentTick(), w.ID, slotLabel(m.GridSlot()))
			}
		}
	}
}

func TestWaveCoordinator_WaveShapeAcrossPresets(t *testing.T) {
	for _, p := range Presets() {
		for _, level := range []int{1, 4, 9, 16} {
			ts := NewTestSim(WithSeed(int64(level)*31), WithLevel(level), WithPreset(p))
			seen := map[int]bool{}
			for i := 0; i < 60*40; i++ {
				ts.RunTicks(1)
				checkWaveInvariants(t, ts)

				for _, w := range ts.Waves.Waves() {
					if seen[w.ID] {
						continue
					}
					seen[w.ID] = true
					checkFreshWave(t, ts, w, p.Name)
				}
			}
			if len(seen) == 0 {
				t.Fatalf("%s L%d: no wave launched in 40s", p.Name, level)
			}
		}
	}
}

// checkFreshWave validates a wave on the tick it launched. Nothing lands
// after the launch step, so the parked members seen now are exactly the
// pool the wave was drawn from minus the wave itself.
func checkFreshWave(t *testing.T, ts *TestSim, w *Wave, preset string) {
	t.Helper()
	cfg := ts.Config
	if w.Size > cfg.WaveMaxSize || w.Size < 1 || len(w.Members()) != w.Size {
		t.Fatalf("%s L%d: wave %d size %d (%d members) outside [1,%d]",
			preset, cfg.Level, w.ID, w.Size, len(w.Members()), cfg.WaveMaxSize)
	}
	row := w.Members()[0].GridSlot().Row
	slots := map[GridSlot]bool{}
	for _, m := range w.Members() {
		if slots[m.GridSlot()] {
			t.Fatalf("%s L%d: slot %v picked twice in wave %d", preset, cfg.Level, m.GridSlot(), w.ID)
		}
		slots[m.GridSlot()] = true
		if m.GridSlot().Row != row {
			t.Fatalf("%s L%d: wave %d spans rows %d and %d", preset, cfg.Level, w.ID, row, m.GridSlot().Row)
		}
	}
	leftInRow := 0
	for _, m := range ts.Grid.AliveInFormation() {
		if m.GridSlot().Row > row {
			t.Fatalf("%s L%d: wave %d drew from row %d while %v was parked below it",
				preset, cfg.Level, w.ID, row, m.GridSlot())
		}
		if m.GridSlot().Row == row {
			leftInRow++
		}
	}
	if w.Size < cfg.WaveMinSize && leftInRow > 0 {
		t.Fatalf("%s L%d: wave size %d below min %d with %d still parked in the row",
			preset, cfg.Level, w.Size, cfg.WaveMinSize, leftInRow)
	}
}

func TestWaveCoordinator_DiveCompletesOncePerParticipation(t *testing.T) {
	ts := NewTestSim(WithSeed(5), WithLevel(7), WithPreset(Hard))
	ts.RunTicks(60 * 60)
	type key struct {
		wave int
		slot GridSlot
	}
	dives := map[key]int{}
	for _, e := range ts.Events {
		if e.Kind == EventDiveComplete {
			dives[key{e.WaveID, e.Slot}]++
		}
	}
	if len(dives) == 0 {
		t.Fatal("no dive completed in a minute")
	}
	for k, n := range dives {
		if n != 1 {
			t.Fatalf("wave %d slot %v completed its dive %d times", k.wave, k.slot, n)
		}
	}
}

func TestWaveCoordinator_LandingSnapsExactlyToMovingSlot(t *testing.T) {
	ts := NewTestSim(WithSeed(11), WithLevel(3), WithMode(ModeWave))
	landings := 0
	for i := 0; i < 60*60 && landings < 5; i++ {
		prev := map[*Invader]FlightState{}
		for _, m := range ts.Grid.Members() {
			prev[m] = m.State()
		}
		ts.RunTicks(1)
		for _, m := range ts.Grid.Members() {
			if prev[m] != StateReturning || m.State() != StateInFormation {
				continue
			}
			landings++
			sx, sy := ts.Grid.SlotPosition(m.GridSlot())
			if x, y := m.Position(); x != sx || y != sy {
				t.Fatalf("%s landed at (%.3f,%.3f), slot is (%.3f,%.3f)", slotLabel(m.GridSlot()), x, y, sx, sy)
			}
		}
	}
	if landings == 0 {
		t.Fatal("no diver made it home")
	}
}

func TestWaveCoordinator_ReturnConvergesOnFixedSlot(t *testing.T) {
	f := newFixedFormation(2, 3)
	c := NewWaveCoordinator(f, NewRandom(8), singleDiverConfig(), WithLogger(zaptest.NewLogger(t)))
	c.Update(150)
	if c.ActiveWaves() != 1 {
		t.Fatal("expected one wave after the first interval")
	}
	diver := c.Waves()[0].Members()[0]
	sx, sy := f.SlotPosition(diver.GridSlot())

	lastDist := math.Inf(1)
	for i := 0; i < 2000; i++ {
		c.Update(16)
		switch diver.State() {
		case StateReturning:
			x, y := diver.Position()
			d := math.Hypot(sx-x, sy-y)
			if d > lastDist+1e-9 {
				t.Fatalf("tick %d: returning diver moved away (%.2f -> %.2f)", i, lastDist, d)
			}
			lastDist = d
		case StateInFormation:
			if x, y := diver.Position(); x != sx || y != sy {
				t.Fatalf("landed at (%.3f,%.3f), want (%.1f,%.1f)", x, y, sx, sy)
			}
			if st := c.Stats(); st.Landings != 1 || st.DivesCompleted != 1 {
				t.Fatalf("unexpected stats after landing: %+v", st)
			}
			return
		}
	}
	t.Fatal("diver never landed")
}

func TestWaveCoordinator_ZeroHomingFollowsRawPath(t *testing.T) {
	f := newFixedFormation(1, 4)
	cfg := singleDiverConfig()
	cfg.HomingStrength = 0
	c := NewWaveCoordinator(f, NewRandom(21), cfg)
	c.SetTargetX(900)
	c.Update(150)
	diver := c.Waves()[0].Members()[0]
	p := diver.AttackPath()
	for diver.State() == StateAttacking {
		c.Update(16)
		px, py := p.Position()
		x, y := diver.Position()
		if x != px || y != py {
			t.Fatalf("progress %.3f: diver at (%.4f,%.4f), path at (%.4f,%.4f)", p.Progress(), x, y, px, py)
		}
	}
}

func TestWaveCoordinator_HomingBlendsTowardTarget(t *testing.T) {
	f := newFixedFormation(1, 4)
	cfg := singleDiverConfig()
	cfg.HomingStrength = 0.25
	c := NewWaveCoordinator(f, NewRandom(21), cfg)
	c.SetTargetX(900)
	c.Update(150)
	diver := c.Waves()[0].Members()[0]
	p := diver.AttackPath()
	c.Update(400)
	px, py := p.Position()
	x, y := diver.Position()
	want := px + (900-px)*0.25
	if math.Abs(x-want) > 1e-9 || y != py {
		t.Fatalf("expected (%.3f,%.3f), got (%.3f,%.3f)", want, py, x, y)
	}
}

func TestWaveCoordinator_CompletedDiverWaitsOneTickToSteer(t *testing.T) {
	f := newFixedFormation(1, 2)
	c := NewWaveCoordinator(f, NewRandom(4), singleDiverConfig())
	c.Update(150)
	diver := c.Waves()[0].Members()[0]
	p := diver.AttackPath()
	c.Update(p.DurationMs() * 2)
	if diver.State() != StateReturning {
		t.Fatalf("expected returning, got %s", diver.State())
	}
	ex, ey := p.SamplePosition(1)
	if x, y := diver.Position(); x != ex || y != ey {
		t.Fatalf("diver steered in the completing tick: at (%.2f,%.2f), path end (%.2f,%.2f)", x, y, ex, ey)
	}
	c.Update(16)
	if x, y := diver.Position(); x == ex && y == ey {
		t.Fatal("diver should start steering on the next tick")
	}
}

func TestWaveCoordinator_DestroyedAttackerDropsWave(t *testing.T) {
	f := newFixedFormation(2, 3)
	var retired []WaveEvent
	c := NewWaveCoordinator(f, NewRandom(2), singleDiverConfig(), WithObserver(func(e WaveEvent) {
		if e.Kind == EventWaveRetired {
			retired = append(retired, e)
		}
	}))
	c.Update(150)
	if c.ActiveWaves() != 1 {
		t.Fatal("expected a wave")
	}
	w := c.Waves()[0]
	diver := w.Members()[0]
	diver.Kill()

	c.Update(16)
	if c.ActiveWaves() != 0 {
		t.Fatalf("wave should be dropped once its last member died, have %d", c.ActiveWaves())
	}
	if len(retired) != 1 || retired[0].WaveID != w.ID {
		t.Fatalf("expected one retire event for wave %d, got %+v", w.ID, retired)
	}
	if len(w.Members()) != 0 {
		t.Fatal("dead member should be pruned from the wave")
	}
}

func TestWaveCoordinator_SurvivorKeepsWaveAlive(t *testing.T) {
	f := newFixedFormation(2, 4)
	cfg := singleDiverConfig()
	cfg.WaveMinSize, cfg.WaveMaxSize = 2, 2
	c := NewWaveCoordinator(f, NewRandom(6), cfg)
	c.Update(150)
	w := c.Waves()[0]
	w.Members()[0].Kill()
	c.Update(16)
	if c.ActiveWaves() != 1 || w.InFlight() != 1 {
		t.Fatalf("wave with a live diver should survive: active=%d inFlight=%d", c.ActiveWaves(), w.InFlight())
	}
}

func TestWaveCoordinator_IntervalRerolledEveryCheck(t *testing.T) {
	f := newFixedFormation(1, 3)
	cfg := singleDiverConfig()
	cfg.WaveIntervalMin, cfg.WaveIntervalMax = 1000, 3000
	rng := &scriptedRandom{
		floats:        []float64{0.9, 0.0},
		fallbackFloat: 0.5,
	}
	c := NewWaveCoordinator(f, rng, cfg)

	// First check rolls 2800ms; 1500ms elapsed is not enough.
	c.Update(1500)
	if c.ActiveWaves() != 0 {
		t.Fatal("no wave expected against a 2800ms roll")
	}
	if rng.floatCalls != 1 {
		t.Fatalf("expected one interval draw, got %d", rng.floatCalls)
	}

	// The next check rolls again (1000ms) rather than keeping 2800ms.
	c.Update(100)
	if c.ActiveWaves() != 1 {
		t.Fatal("a fresh roll of 1000ms should launch at 1600ms")
	}
	if at := c.Waves()[0].LaunchedAt; at != 1600 {
		t.Fatalf("expected launch at 1600ms, got %.0f", at)
	}

	// At the cap the interval is not rolled at all.
	calls := rng.floatCalls
	c.Update(16)
	if rng.floatCalls != calls {
		t.Fatalf("interval drawn while at the wave cap (%d -> %d)", calls, rng.floatCalls)
	}
}

func TestWaveCoordinator_HeldLaunchesLetDiversLand(t *testing.T) {
	f := newFixedFormation(2, 3)
	rng := &scriptedRandom{fallbackFloat: 0.5}
	c := NewWaveCoordinator(f, rng, singleDiverConfig())

	c.SetLaunching(false)
	c.Update(500)
	if c.ActiveWaves() != 0 || c.Stats().Launched != 0 {
		t.Fatal("held coordinator should not launch")
	}
	if rng.floatCalls != 0 || rng.intCalls != 0 {
		t.Fatalf("held coordinator drew randomness (%d floats, %d ints)", rng.floatCalls, rng.intCalls)
	}

	c.SetLaunching(true)
	c.Update(16)
	if c.ActiveWaves() != 1 {
		t.Fatal("expected a launch once released")
	}
	id := c.Waves()[0].ID

	c.SetLaunching(false)
	for i := 0; i < 60*20 && c.ActiveWaves() > 0; i++ {
		c.Update(16)
	}
	if c.ActiveWaves() != 0 {
		t.Fatalf("wave %d should land and retire while launches are held", id)
	}
	if st := c.Stats(); st.Launched != 1 || st.Landings != 1 || st.Retired != 1 {
		t.Fatalf("expected one full cycle and nothing more, got %+v", st)
	}
}

func TestWaveCoordinator_EmptyPoolSkipsLaunch(t *testing.T) {
	f := newFixedFormation(1, 3)
	for _, m := range f.members {
		m.Kill()
	}
	rng := &scriptedRandom{fallbackFloat: 0.5}
	c := NewWaveCoordinator(f, rng, singleDiverConfig())
	for i := 0; i < 10; i++ {
		c.Update(200)
	}
	if c.ActiveWaves() != 0 || c.Stats().Launched != 0 {
		t.Fatal("nothing should launch from an empty formation")
	}
	if rng.intCalls != 0 {
		t.Fatalf("selection should not run without a pool, got %d Intn calls", rng.intCalls)
	}
}

func TestWaveCoordinator_FrontLineSkipsEmptiedRow(t *testing.T) {
	var killed []GridSlot
	for c := 0; c < 8; c++ {
		killed = append(killed, GridSlot{Row: 4, Col: c})
	}
	ts := NewTestSim(WithSeed(3), WithKilled(killed...))
	tick := ts.RunUntil(func(ts *TestSim) bool { return ts.Waves.ActiveWaves() > 0 }, 60*10)
	if tick < 0 {
		t.Fatal("no wave launched")
	}
	for _, m := range ts.Waves.Waves()[0].Members() {
		if m.GridSlot().Row != 3 {
			t.Fatalf("expected the new front line (row 3), got %v", m.GridSlot())
		}
	}
}

func TestWaveCoordinator_WaveSizeClampedToPool(t *testing.T) {
	f := newFixedFormation(1, 2)
	cfg := singleDiverConfig()
	cfg.WaveMinSize, cfg.WaveMaxSize = 5, 5
	c := NewWaveCoordinator(f, NewRandom(1), cfg)
	c.Update(150)
	if c.ActiveWaves() != 1 {
		t.Fatal("expected a wave")
	}
	if w := c.Waves()[0]; w.Size != 2 || len(w.Members()) != 2 {
		t.Fatalf("expected wave clamped to pool of 2, got size=%d members=%d", w.Size, len(w.Members()))
	}
}

func TestWaveCoordinator_SoakWithKills(t *testing.T) {
	for _, p := range Presets() {
		ts := NewTestSim(WithSeed(77), WithLevel(10), WithPreset(p))
		rng := NewRandom(78)
		for i := 0; i < 60*90; i++ {
			if i%45 == 0 {
				members := ts.Grid.Members()
				ts.Kill(members[rng.Intn(len(members))].GridSlot())
			}
			ts.RunTicks(1)
			checkWaveInvariants(t, ts)
		}
		if ts.SimLog.CountCategory("wave", "wave_launched") == 0 {
			t.Fatalf("%s: no wave launched", p.Name)
		}
	}
}

func TestWave_InFlightIgnoresRelaunchedMember(t *testing.T) {
	m := NewInvader(GridSlot{}, 0, 0)
	old := &Wave{ID: 1, members: []*Invader{m}}
	m.Launch(DefaultPathGenerator().Create(NewRandom(1)), 1)
	if old.InFlight() != 1 {
		t.Fatal("member should count for its own wave")
	}
	m.Land(0, 0)
	m.Launch(DefaultPathGenerator().Create(NewRandom(2)), 2)
	if old.InFlight() != 0 {
		t.Fatal("a member relaunched with a newer wave must not keep the old wave alive")
	}
}

func TestWaveCoordinator_ResetClearsState(t *testing.T) {
	f := newFixedFormation(2, 3)
	c := NewWaveCoordinator(f, NewRandom(5), singleDiverConfig())
	c.Update(150)
	c.Reset(singleDiverConfig())
	if c.ActiveWaves() != 0 || c.NowMs() != 0 || c.Stats() != (WaveStats{}) {
		t.Fatal("reset should clear waves, clock and stats")
	}
}
