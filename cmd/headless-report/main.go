package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Garsondee/Formation-Strike/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64
	mode     game.FormationMode

	firstLaunchTick  int
	firstDiveTick    int
	firstLandingTick int

	launched       int
	retired        int
	dives          int
	landings       int
	stateChanges   int
	kills          int
	peakConcurrent int
	largestWave    int
	waveSizes      map[int]int

	avgLifetimeMs float64
	maxLifetimeMs float64
	openWaves     int

	windowSummary *game.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var level int
	var difficulty string
	var mode string
	var killChance float64

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&level, "level", 5, "level to resolve")
	flag.StringVar(&difficulty, "difficulty", "medium", "difficulty preset (easy, medium, hard, extreme)")
	flag.StringVar(&mode, "mode", "wave", "formation mode (wave, classic)")
	flag.Float64Var(&killChance, "kill-chance", 0.01, "per-tick chance that one attacking invader is shot down")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if level < 1 {
		fmt.Println("error: -level must be >= 1")
		return
	}
	preset, ok := game.PresetByName(difficulty)
	if !ok {
		fmt.Printf("error: unsupported difficulty %q (supported: easy, medium, hard, extreme)\n", difficulty)
		return
	}
	fm, ok := game.ParseFormationMode(mode)
	if !ok {
		fmt.Printf("error: unsupported mode %q (supported: wave, classic)\n", mode)
		return
	}

	cfg := game.Resolve(level, preset)
	fmt.Printf("=== Headless Wave Report ===\n")
	fmt.Printf("difficulty=%s level=%d mode=%s runs=%d ticks=%d seed_base=%d seed_step=%d kill_chance=%.3f\n",
		preset.Name, level, fm, runs, ticks, seedBase, seedStep, killChance)
	fmt.Printf("resolved: grid=%dx%d wave_size=[%d..%d] max_waves=%d interval=[%.0f..%.0f]ms homing=%.2f\n\n",
		cfg.Rows, cfg.Cols, cfg.WaveMinSize, cfg.WaveMaxSize, cfg.MaxSimultaneousWaves,
		cfg.WaveIntervalMin, cfg.WaveIntervalMax, cfg.HomingStrength)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runWaves(i+1, seed, ticks, level, preset, fm, killChance)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runWaves(runIndex int, seed int64, ticks, level int, preset game.DifficultyMultipliers, mode game.FormationMode, killChance float64) runStats {
	ts := game.NewTestSim(
		game.WithSeed(seed),
		game.WithLevel(level),
		game.WithPreset(preset),
		game.WithMode(mode),
	)
	// Kills use their own stream so the coordinator's draws stay comparable
	// across kill-chance settings.
	shooter := rand.New(rand.NewSource(seed ^ 0x5eed)) // #nosec G404 -- report tooling
	kills := 0
	for i := 0; i < ticks; i++ {
		ts.RunTicks(1)
		if killChance <= 0 || shooter.Float64() >= killChance {
			continue
		}
		if slot, ok := pickTarget(ts.Grid.Members(), shooter); ok {
			ts.Kill(slot)
			kills++
		}
		if ts.Grid.Alive() == 0 {
			break
		}
	}

	st := ts.Waves.Stats()
	avgLife, maxLife, open := waveLifetimes(ts.Events)
	return runStats{
		runIndex:         runIndex,
		seed:             seed,
		mode:             mode,
		firstLaunchTick:  ts.SimLog.FirstTick("wave", game.EventWaveLaunched.String()),
		firstDiveTick:    ts.SimLog.FirstTick("wave", game.EventDiveComplete.String()),
		firstLandingTick: ts.SimLog.FirstTick("wave", game.EventLanded.String()),
		launched:         st.Launched,
		retired:          st.Retired,
		dives:            st.DivesCompleted,
		landings:         st.Landings,
		stateChanges:     ts.SimLog.CountCategory("state", "change"),
		kills:            kills,
		peakConcurrent:   st.PeakConcurrent,
		largestWave:      st.LargestWave,
		waveSizes:        waveSizes(ts.Events),
		avgLifetimeMs:    avgLife,
		maxLifetimeMs:    maxLife,
		openWaves:        open,
		windowSummary:    ts.Reporter.WindowSummary(),
	}
}

// pickTarget chooses a random live attacker, the invaders a player is
// most likely to hit.
func pickTarget(members []*game.Invader, rng *rand.Rand) (game.GridSlot, bool) {
	var targets []game.GridSlot
	for _, m := range members {
		if m.IsAlive() && m.State() == game.StateAttacking {
			targets = append(targets, m.GridSlot())
		}
	}
	if len(targets) == 0 {
		return game.GridSlot{}, false
	}
	return targets[rng.Intn(len(targets))], true
}

// waveLifetimes pairs launch and retire events by wave id. Waves still in
// flight at the end of the run are counted as open.
func waveLifetimes(events []game.WaveEvent) (avgMs, maxMs float64, open int) {
	launched := map[int]float64{}
	var sum float64
	closed := 0
	for _, e := range events {
		switch e.Kind {
		case game.EventWaveLaunched:
			launched[e.WaveID] = e.AtMs
		case game.EventWaveRetired:
			at, ok := launched[e.WaveID]
			if !ok {
				continue
			}
			life := e.AtMs - at
			sum += life
			maxMs = max(maxMs, life)
			closed++
			delete(launched, e.WaveID)
		}
	}
	if closed > 0 {
		avgMs = sum / float64(closed)
	}
	return avgMs, maxMs, len(launched)
}

// waveSizes histograms the size of every launched wave.
func waveSizes(events []game.WaveEvent) map[int]int {
	sizes := map[int]int{}
	for _, e := range events {
		if e.Kind == game.EventWaveLaunched {
			sizes[e.Size]++
		}
	}
	return sizes
}

// healthCheck flags runs where the coordinator looks stuck. A classic
// march never dives, so any launch there is the failure.
func healthCheck(rs runStats) (bool, string) {
	switch {
	case rs.mode == game.ModeClassic && rs.launched > 0:
		return false, "classic_mode_launched"
	case rs.mode == game.ModeClassic:
		return true, "ok"
	case rs.launched == 0:
		return false, "no_launches"
	case rs.dives == 0:
		return false, "no_dive_completed"
	case rs.landings == 0 && rs.kills < rs.dives:
		return false, "divers_never_land"
	case rs.retired == 0 && rs.launched > 1:
		return false, "waves_never_retire"
	}
	return true, "ok"
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_launch=%d first_dive=%d first_landing=%d\n",
		rs.firstLaunchTick, rs.firstDiveTick, rs.firstLandingTick)
	fmt.Printf("event_totals: launched=%d retired=%d dives=%d landings=%d state_change=%d kills=%d\n",
		rs.launched, rs.retired, rs.dives, rs.landings, rs.stateChanges, rs.kills)
	fmt.Printf("waves: peak_concurrent=%d largest=%d sizes=%s\n",
		rs.peakConcurrent, rs.largestWave, formatSizes(rs.waveSizes))
	fmt.Printf("lifetime: avg=%.0fms max=%.0fms open=%d\n", rs.avgLifetimeMs, rs.maxLifetimeMs, rs.openWaves)
	ok, reason := healthCheck(rs)
	fmt.Printf("health: ok=%t reason=%s\n", ok, reason)
	fmt.Print(rs.windowSummary.Format())
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalLaunched := 0
	totalRetired := 0
	totalDives := 0
	totalLandings := 0
	totalKills := 0
	peak := 0
	unhealthy := map[string]int{}
	sizes := map[int]int{}
	launchTicks := make([]int, 0, len(all))
	landingTicks := make([]int, 0, len(all))
	var lifeSum float64

	for _, rs := range all {
		totalLaunched += rs.launched
		totalRetired += rs.retired
		totalDives += rs.dives
		totalLandings += rs.landings
		totalKills += rs.kills
		peak = max(peak, rs.peakConcurrent)
		lifeSum += rs.avgLifetimeMs
		if rs.firstLaunchTick >= 0 {
			launchTicks = append(launchTicks, rs.firstLaunchTick)
		}
		if rs.firstLandingTick >= 0 {
			landingTicks = append(landingTicks, rs.firstLandingTick)
		}
		for size, n := range rs.waveSizes {
			sizes[size] += n
		}
		if ok, reason := healthCheck(rs); !ok {
			unhealthy[reason]++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("avg_per_run: launched=%.1f retired=%.1f dives=%.1f landings=%.1f kills=%.1f\n",
		avg(totalLaunched, len(all)), avg(totalRetired, len(all)), avg(totalDives, len(all)),
		avg(totalLandings, len(all)), avg(totalKills, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_launch=%s first_landing=%s\n",
		avgTickString(launchTicks), avgTickString(landingTicks))
	fmt.Printf("peak_concurrent=%d avg_wave_lifetime=%.0fms sizes=%s\n",
		peak, lifeSum/float64(max(len(all), 1)), formatSizes(sizes))
	if len(unhealthy) == 0 {
		fmt.Println("health: all runs ok")
		return
	}
	reasons := make([]string, 0, len(unhealthy))
	for r, n := range unhealthy {
		reasons = append(reasons, fmt.Sprintf("%s(%d)", r, n))
	}
	sort.Strings(reasons)
	fmt.Printf("health: %s\n", strings.Join(reasons, ","))
}

func formatSizes(sizes map[int]int) string {
	if len(sizes) == 0 {
		return "none"
	}
	keys := make([]int, 0, len(sizes))
	for k := range sizes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d:%d", k, sizes[k]))
	}
	return strings.Join(parts, " ")
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
