package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	tickerPanelWidth = 240
	tickerMaxEntries = 48
	tickerLineHeight = 14
)

// TickerEntry is a single line in the event ticker.
type TickerEntry struct {
	AtMs    float64
	Kind    WaveEventKind
	Label   string // e.g. "w3" or "r4c2"
	Message string
}

// EventTicker is a ring buffer of recent wave events rendered on-screen.
type EventTicker struct {
	entries []TickerEntry
	head    int
	count   int
}

// NewEventTicker creates a ticker with a fixed capacity.
func NewEventTicker() *EventTicker {
	return &EventTicker{
		entries: make([]TickerEntry, tickerMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (et *EventTicker) Add(e TickerEntry) {
	et.entries[et.head] = e
	et.head = (et.head + 1) % tickerMaxEntries
	if et.count < tickerMaxEntries {
		et.count++
	}
}

// Observe converts a coordinator event into a ticker line. It has the
// signature WithObserver expects.
func (et *EventTicker) Observe(e WaveEvent) {
	entry := TickerEntry{AtMs: e.AtMs, Kind: e.Kind}
	switch e.Kind {
	case EventWaveLaunched:
		entry.Label = waveLabel(e.WaveID)
		entry.Message = fmt.Sprintf("launch x%d", e.Size)
	case EventWaveRetired:
		entry.Label = waveLabel(e.WaveID)
		entry.Message = "retired"
	case EventDiveComplete:
		entry.Label = slotLabel(e.Slot)
		entry.Message = "dive done, " + waveLabel(e.WaveID)
	case EventLanded:
		entry.Label = slotLabel(e.Slot)
		entry.Message = "home"
	}
	et.Add(entry)
}

// Len returns how many entries are held.
func (et *EventTicker) Len() int { return et.count }

// Clear drops every entry.
func (et *EventTicker) Clear() {
	et.head = 0
	et.count = 0
}

// Recent returns entries in chronological order (oldest first).
func (et *EventTicker) Recent() []TickerEntry {
	result := make([]TickerEntry, et.count)
	for i := 0; i < et.count; i++ {
		idx := (et.head - et.count + i + tickerMaxEntries) % tickerMaxEntries
		result[i] = et.entries[idx]
	}
	return result
}

func tickerColor(k WaveEventKind) color.RGBA {
	switch k {
	case EventWaveLaunched:
		return color.RGBA{R: 240, G: 80, B: 60, A: 255}
	case EventDiveComplete:
		return color.RGBA{R: 240, G: 190, B: 60, A: 255}
	case EventLanded:
		return color.RGBA{R: 80, G: 200, B: 120, A: 255}
	default:
		return color.RGBA{R: 120, G: 120, B: 140, A: 255}
	}
}

// Draw renders the ticker panel with its left edge at panelX.
func (et *EventTicker) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(tickerPanelWidth), float32(panelH), color.RGBA{R: 10, G: 10, B: 16, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 50, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(tickerPanelWidth), 16, color.RGBA{R: 20, G: 20, B: 36, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "WAVE EVENTS", panelX+8, 0)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+tickerPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 50, B: 90, A: 200}, false)

	entries := et.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / tickerLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	recent := 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(tickerPanelWidth-4), float32(tickerLineHeight), color.RGBA{R: 30, G: 30, B: 50, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, tickerColor(e.Kind), false)
		line := fmt.Sprintf("%6.1fs %-5s %s", e.AtMs/1000, e.Label, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y-2)
		y += tickerLineHeight
	}
}
