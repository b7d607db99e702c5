package game

import "testing"

func newBombGrid() *Grid {
	return NewGrid(Resolve(1, Medium), ModeWave, 960, 80)
}

func TestBombDropper_DropsFromLowestInColumn(t *testing.T) {
	g := newBombGrid()
	rng := &scriptedRandom{floats: []float64{0}, ints: []int{3}}
	d := NewBombDropper(rng, Resolve(1, Medium))

	b := d.Update(frameMs, g.Members(), g.Cols(), 0)
	if b == nil {
		t.Fatal("expected a bomb when the roll is below the frequency")
	}
	front := g.Member(GridSlot{Row: g.Rows() - 1, Col: 3})
	bx, by := b.Position()
	if bx != front.x || by != front.y+invaderRadius {
		t.Fatalf("bomb at (%.1f,%.1f), want below r%dc3 at (%.1f,%.1f)",
			bx, by, g.Rows()-1, front.x, front.y+invaderRadius)
	}
	if b.Kind() != KindBomb {
		t.Fatalf("expected a bomb, got %s", b.Kind())
	}
}

func TestBombDropper_SkipsDeadFrontRow(t *testing.T) {
	g := newBombGrid()
	front := g.Member(GridSlot{Row: g.Rows() - 1, Col: 2})
	front.Kill()
	rng := &scriptedRandom{floats: []float64{0}, ints: []int{2}}
	d := NewBombDropper(rng, Resolve(1, Medium))

	b := d.Update(frameMs, g.Members(), g.Cols(), 0)
	behind := g.Member(GridSlot{Row: g.Rows() - 2, Col: 2})
	if _, by := b.Position(); by != behind.y+invaderRadius {
		t.Fatalf("expected bomb from the row behind, got y=%.1f", by)
	}
}

func TestBombDropper_DiverDropsFromItsPosition(t *testing.T) {
	g := newBombGrid()
	diver := g.Member(GridSlot{Row: 0, Col: 5})
	diver.Launch(DefaultPathGenerator().Create(NewRandom(1)), 1)
	diver.SetPosition(300, 600)
	rng := &scriptedRandom{floats: []float64{0}, ints: []int{5}}
	d := NewBombDropper(rng, Resolve(1, Medium))

	b := d.Update(frameMs, g.Members(), g.Cols(), 0)
	if bx, by := b.Position(); bx != 300 || by != 600+invaderRadius {
		t.Fatalf("expected bomb under the diver, got (%.1f,%.1f)", bx, by)
	}
}

func TestBombDropper_RollAboveFrequency(t *testing.T) {
	g := newBombGrid()
	rng := &scriptedRandom{floats: []float64{0.5}}
	d := NewBombDropper(rng, Resolve(1, Medium))
	if b := d.Update(frameMs, g.Members(), g.Cols(), 0); b != nil {
		t.Fatal("no bomb expected when the roll exceeds frequency*dt")
	}
	if rng.intCalls != 0 {
		t.Fatalf("column should not be drawn after a failed roll, got %d calls", rng.intCalls)
	}
}

func TestBombDropper_LiveCap(t *testing.T) {
	g := newBombGrid()
	rng := &scriptedRandom{}
	d := NewBombDropper(rng, Resolve(1, Medium))
	if b := d.Update(frameMs, g.Members(), g.Cols(), 6); b != nil {
		t.Fatal("no bomb expected at the live cap")
	}
	if rng.floatCalls != 0 {
		t.Fatal("capped dropper should not consume draws")
	}
}

func TestBombDropper_ResetAppliesFrequency(t *testing.T) {
	d := NewBombDropper(NewRandom(1), Resolve(1, Medium))
	d.Reset(Resolve(5, Hard))
	if want := Resolve(5, Hard).BombFrequency; d.Frequency() != want {
		t.Fatalf("expected frequency %.2f, got %.2f", want, d.Frequency())
	}
}
