package game

import "testing"

func TestEventTicker_RingBufferKeepsNewest(t *testing.T) {
	et := NewEventTicker()
	for i := 0; i < tickerMaxEntries+5; i++ {
		et.Add(TickerEntry{AtMs: float64(i)})
	}
	if et.Len() != tickerMaxEntries {
		t.Fatalf("expected %d entries, got %d", tickerMaxEntries, et.Len())
	}
	recent := et.Recent()
	if recent[0].AtMs != 5 || recent[len(recent)-1].AtMs != float64(tickerMaxEntries+4) {
		t.Fatalf("expected entries 5..%d, got %.0f..%.0f", tickerMaxEntries+4, recent[0].AtMs, recent[len(recent)-1].AtMs)
	}
	et.Clear()
	if et.Len() != 0 || len(et.Recent()) != 0 {
		t.Fatal("clear should empty the ticker")
	}
}

func TestEventTicker_Observe(t *testing.T) {
	et := NewEventTicker()
	et.Observe(WaveEvent{Kind: EventWaveLaunched, WaveID: 3, Size: 4, AtMs: 1200})
	et.Observe(WaveEvent{Kind: EventDiveComplete, WaveID: 3, Slot: GridSlot{Row: 4, Col: 2}, AtMs: 3400})
	et.Observe(WaveEvent{Kind: EventLanded, WaveID: 3, Slot: GridSlot{Row: 4, Col: 2}, AtMs: 4100})
	et.Observe(WaveEvent{Kind: EventWaveRetired, WaveID: 3, Size: 4, AtMs: 5000})

	want := []TickerEntry{
		{AtMs: 1200, Kind: EventWaveLaunched, Label: "w3", Message: "launch x4"},
		{AtMs: 3400, Kind: EventDiveComplete, Label: "r4c2", Message: "dive done, w3"},
		{AtMs: 4100, Kind: EventLanded, Label: "r4c2", Message: "home"},
		{AtMs: 5000, Kind: EventWaveRetired, Label: "w3", Message: "retired"},
	}
	got := et.Recent()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEventTicker_DistinctColours(t *testing.T) {
	seen := map[[3]uint8]WaveEventKind{}
	for _, k := range []WaveEventKind{EventWaveLaunched, EventDiveComplete, EventLanded} {
		c := tickerColor(k)
		key := [3]uint8{c.R, c.G, c.B}
		if prev, dup := seen[key]; dup {
			t.Fatalf("%s shares a colour with %s", k, prev)
		}
		seen[key] = k
	}
}
