package game

import (
	"fmt"
	"sort"
	"strings"
)

// DebugReport renders the session state as plain text for pasting into a
// bug report: the resolved level, every wave in flight, the recent event
// ticker and the reporter's window summary.
func (s *Session) DebugReport() string {
	var b strings.Builder
	cfg := s.cfg
	fmt.Fprintf(&b, "--- Formation Strike debug report ---\n")
	fmt.Fprintf(&b, "tick=%d clock=%.0fms mode=%s difficulty=%s\n",
		s.tick, s.waves.NowMs(), s.grid.Mode(), cfg.Difficulty)
	fmt.Fprintf(&b, "score=%d lives=%d level=%d kills=%d diver_kills=%d (%.0f%%)\n\n",
		s.board.Score, s.board.Lives, s.board.Level, s.board.Kills, s.board.DiverKills, s.board.DiverKillRatio()*100)

	b.WriteString("== level config ==\n")
	fmt.Fprintf(&b, "grid=%dx%d move_interval=%.0fms drift=%.1fpx/s bombs=%.2f/s points=x%.2f\n",
		cfg.Rows, cfg.Cols, cfg.MoveIntervalMs, cfg.FormationSpeed, cfg.BombFrequency, cfg.PointsMultiplier)
	fmt.Fprintf(&b, "wave_size=[%d..%d] max_waves=%d interval=[%.0f..%.0f]ms homing=%.2f\n\n",
		cfg.WaveMinSize, cfg.WaveMaxSize, cfg.MaxSimultaneousWaves, cfg.WaveIntervalMin, cfg.WaveIntervalMax, cfg.HomingStrength)

	b.WriteString("== waves ==\n")
	waves := s.waves.Waves()
	if len(waves) == 0 {
		b.WriteString("(none in flight)\n")
	}
	for _, w := range waves {
		fmt.Fprintf(&b, "%s launched=%.0fms age=%.0fms size=%d in_flight=%d\n",
			waveLabel(w.ID), w.LaunchedAt, s.waves.NowMs()-w.LaunchedAt, w.Size, w.InFlight())
		for _, line := range memberLines(w) {
			b.WriteString("  - ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	st := s.waves.Stats()
	fmt.Fprintf(&b, "totals: launched=%d retired=%d members=%d dives=%d landings=%d peak=%d largest=%d\n\n",
		st.Launched, st.Retired, st.MembersLaunched, st.DivesCompleted, st.Landings, st.PeakConcurrent, st.LargestWave)

	if len(s.results) > 0 {
		b.WriteString("== level results ==\n")
		for _, r := range s.results {
			fmt.Fprintf(&b, "L%-3d %-9s %-32s ticks=%d score=%d kills=%d divers=%d lives_lost=%d waves=%d\n",
				r.Level, r.Outcome, r.Description, r.Ticks, r.Score, r.Kills, r.DiverKills, r.LivesLost, r.WavesSeen)
		}
		b.WriteByte('\n')
	}

	b.WriteString("== recent events ==\n")
	recent := s.ticker.Recent()
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	for _, e := range recent {
		fmt.Fprintf(&b, "%8.0fms %-5s %s\n", e.AtMs, e.Label, e.Message)
	}
	b.WriteByte('\n')
	b.WriteString(s.reporter.WindowSummary().Format())
	return b.String()
}

// memberLines describes each wave member, front line first then by column.
func memberLines(w *Wave) []string {
	members := append([]*Invader(nil), w.members...)
	sort.Slice(members, func(i, j int) bool {
		if members[i].slot.Row != members[j].slot.Row {
			return members[i].slot.Row > members[j].slot.Row
		}
		return members[i].slot.Col < members[j].slot.Col
	})
	lines := make([]string, 0, len(members))
	for _, m := range members {
		line := fmt.Sprintf("%s %-12s at (%.0f,%.0f)", slotLabel(m.slot), m.state, m.x, m.y)
		if m.wave != w.ID {
			line += " relaunched with " + waveLabel(m.wave)
		}
		if m.path != nil {
			line += fmt.Sprintf(" path=%s %.0f%% of %.0fms", m.path.shape, m.path.progress*100, m.path.durationMs)
		}
		lines = append(lines, line)
	}
	return lines
}
