package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a headless simulation.
type SimLogEntry struct {
	Tick     int
	Invader  string  // slot label e.g. "r4c2", or "--" for global events
	Wave     string  // e.g. "w3", or "--"
	Category string  // wave, state, path, grid, combat, level
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] r4c2 w3   state    change          attacking → returning
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-4s %-8s %-15s %s",
		e.Tick, e.Invader, e.Wave, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless simulation.
// Unlike EventTicker (UI ring-buffer), SimLog is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and
// progress entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, invader, wave, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Invader:  invader,
		Wave:     wave,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, invader, wave, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, invader, wave, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// WaveTrail returns every entry tagged with wave id, in order: the launch,
// each member's transitions and milestones, and the retirement.
func (sl *SimLog) WaveTrail(id int) []SimLogEntry {
	label := waveLabel(id)
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Wave == label {
			out = append(out, e)
		}
	}
	return out
}

// Flight returns the state transitions of one invader between fromTick and
// toTick inclusive, e.g. "in_formation → attacking".
func (sl *SimLog) Flight(label string, fromTick, toTick int) []string {
	var out []string
	for _, e := range sl.entries {
		if e.Invader != label || e.Category != "state" || e.Key != "change" {
			continue
		}
		if e.Tick < fromTick || e.Tick > toTick {
			continue
		}
		out = append(out, e.Value)
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// FirstTick returns the tick of the first entry matching category+key, or
// -1 if none.
func (sl *SimLog) FirstTick(category, key string) int {
	for _, e := range sl.entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	return formatEntries(sl.entries)
}

// FormatWave returns the trail of one wave as a log string.
func (sl *SimLog) FormatWave(id int) string {
	return formatEntries(sl.WaveTrail(id))
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the formation and the
// waves in flight.
func (sl *SimLog) Summary(tick int, grid *Grid, coord *WaveCoordinator) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	counts := map[FlightState]int{}
	dead := 0
	for _, m := range grid.Members() {
		if !m.alive {
			dead++
			continue
		}
		counts[m.state]++
	}
	fmt.Fprintf(&sb, "Formation: parked=%d attacking=%d returning=%d dead=%d\n",
		counts[StateInFormation], counts[StateAttacking], counts[StateReturning], dead)

	waves := coord.Waves()
	if len(waves) == 0 {
		sb.WriteString("Waves: none\n")
	}
	for _, w := range waves {
		labels := make([]string, 0, len(w.members))
		for _, m := range w.members {
			labels = append(labels, slotLabel(m.slot)+":"+m.state.String())
		}
		fmt.Fprintf(&sb, "Wave %s: in_flight=%d  [%s]\n", waveLabel(w.ID), w.InFlight(), strings.Join(labels, ", "))
	}

	st := coord.Stats()
	fmt.Fprintf(&sb, "Totals: launched=%d retired=%d dives=%d landings=%d peak=%d\n",
		st.Launched, st.Retired, st.DivesCompleted, st.Landings, st.PeakConcurrent)
	return sb.String()
}

// slotLabel is the short log/ticker name for a slot, e.g. "r4c2".
func slotLabel(s GridSlot) string {
	return fmt.Sprintf("r%dc%d", s.Row, s.Col)
}

// waveLabel is the short log/ticker name for a wave id; 0 renders as "--".
func waveLabel(id int) string {
	if id == 0 {
		return "--"
	}
	return fmt.Sprintf("w%d", id)
}
