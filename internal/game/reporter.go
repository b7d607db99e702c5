package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-activity reports (~10s at 60TPS).
const reportWindowTicks = 600

// SimReport is a snapshot of the formation and its waves at one tick.
type SimReport struct {
	Tick int

	Parked    int
	Attacking int
	Returning int
	Dead      int

	ActiveWaves int
	Totals      WaveStats // cumulative coordinator stats at this tick
}

// InFlight is the number of live members away from their slot.
func (r SimReport) InFlight() int { return r.Attacking + r.Returning }

// SimReporter collects periodic reports and summarises them over a sliding
// window.
type SimReporter struct {
	history     []SimReport
	windowTicks int
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot. Call it periodically (e.g. every 60 ticks / 1s).
func (r *SimReporter) Collect(tick int, grid *Grid, coord *WaveCoordinator) {
	rpt := SimReport{
		Tick:        tick,
		ActiveWaves: coord.ActiveWaves(),
		Totals:      coord.Stats(),
	}
	for _, m := range grid.Members() {
		if !m.alive {
			rpt.Dead++
			continue
		}
		switch m.state {
		case StateInFormation:
			rpt.Parked++
		case StateAttacking:
			rpt.Attacking++
		case StateReturning:
			rpt.Returning++
		}
	}
	r.history = append(r.history, rpt)
}

// Reset drops the history, e.g. when a new level starts.
func (r *SimReporter) Reset() {
	r.history = r.history[:0]
}

// Latest returns the most recent report, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *SimReporter) History() []SimReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	AvgParked      float64
	AvgAttacking   float64
	AvgReturning   float64
	AvgActiveWaves float64
	PeakInFlight   int

	// Deltas of the cumulative totals across the window.
	Launched int
	Retired  int
	Dives    int
	Landings int

	DeadAtEnd int
}

// WindowSummary aggregates the reports within the last windowTicks.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	newest, oldest := window[0], window[len(window)-1]
	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    oldest.Tick,
		ToTick:      newest.Tick,
		SampleCount: len(window),
		Launched:    newest.Totals.Launched - oldest.Totals.Launched,
		Retired:     newest.Totals.Retired - oldest.Totals.Retired,
		Dives:       newest.Totals.DivesCompleted - oldest.Totals.DivesCompleted,
		Landings:    newest.Totals.Landings - oldest.Totals.Landings,
		DeadAtEnd:   newest.Dead,
	}
	for _, rpt := range window {
		wr.AvgParked += float64(rpt.Parked)
		wr.AvgAttacking += float64(rpt.Attacking)
		wr.AvgReturning += float64(rpt.Returning)
		wr.AvgActiveWaves += float64(rpt.ActiveWaves)
		wr.PeakInFlight = max(wr.PeakInFlight, rpt.InFlight())
	}
	wr.AvgParked /= n
	wr.AvgAttacking /= n
	wr.AvgReturning /= n
	wr.AvgActiveWaves /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Wave Activity (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)
	fmt.Fprintf(&sb, "  formation: parked=%.1f attacking=%.1f returning=%.1f dead=%d\n",
		wr.AvgParked, wr.AvgAttacking, wr.AvgReturning, wr.DeadAtEnd)
	fmt.Fprintf(&sb, "  waves:     avg_active=%.2f peak_in_flight=%d (%s)\n",
		wr.AvgActiveWaves, wr.PeakInFlight, pressureLabel(wr.AvgAttacking+wr.AvgReturning))
	fmt.Fprintf(&sb, "  window:    launched=%d retired=%d dives=%d landings=%d\n",
		wr.Launched, wr.Retired, wr.Dives, wr.Landings)
	return sb.String()
}

// pressureLabel describes how many divers are out on average.
func pressureLabel(avgInFlight float64) string {
	switch {
	case avgInFlight >= 8:
		return "swarming"
	case avgInFlight >= 4:
		return "heavy"
	case avgInFlight >= 1:
		return "steady"
	case avgInFlight > 0:
		return "light"
	default:
		return "quiet"
	}
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	return fmt.Sprintf("--- Snapshot T=%d ---\nparked=%d attacking=%d returning=%d dead=%d waves=%d launched=%d\n",
		rpt.Tick, rpt.Parked, rpt.Attacking, rpt.Returning, rpt.Dead, rpt.ActiveWaves, rpt.Totals.Launched)
}
