package game

import "math"

// FormationMode selects how the grid as a whole moves.
type FormationMode int

const (
	ModeWave    FormationMode = iota // smooth drift; members peel off in dive waves
	ModeClassic                      // stepped march, drop a row at each edge
)

func (fm FormationMode) String() string {
	switch fm {
	case ModeWave:
		return "wave"
	case ModeClassic:
		return "classic"
	default:
		return "unknown"
	}
}

// ParseFormationMode maps a config string onto a mode.
func ParseFormationMode(s string) (FormationMode, bool) {
	switch s {
	case "wave":
		return ModeWave, true
	case "classic":
		return ModeClassic, true
	}
	return ModeWave, false
}

// Formation is what the wave coordinator needs from the grid. Both calls
// must reflect live state at call time.
type Formation interface {
	AliveInFormation() []*Invader
	SlotPosition(slot GridSlot) (float64, float64)
}

// slotSpacing is the pixel gap between adjacent formation slots.
const slotSpacing = 44.0

// classicStepPx is how far the classic formation marches per step.
const classicStepPx = 12.0

// classicDropPx is how far the classic formation descends at an edge.
const classicDropPx = 18.0

// Grid owns the rectangular arrangement of invaders.
type Grid struct {
	mode    FormationMode
	rows    int
	cols    int
	members []*Invader // row-major

	originX, originY float64 // top-left slot at zero offset
	offsetX, offsetY float64 // whole-formation displacement
	dir              float64 // +1 right, -1 left
	minX, maxX       float64 // horizontal bounds for slot centres

	driftSpeed     float64 // px/s, wave mode
	stepIntervalMs float64 // classic mode
	stepAccumMs    float64
}

// NewGrid lays out a full formation for cfg, centred horizontally in
// [0, width] with its top row at topY.
func NewGrid(cfg LevelConfig, mode FormationMode, width, topY float64) *Grid {
	g := &Grid{mode: mode, originY: topY}
	g.Reset(cfg, width)
	return g
}

// Reset rebuilds the formation for a new level.
func (g *Grid) Reset(cfg LevelConfig, width float64) {
	g.rows = cfg.Rows
	g.cols = cfg.Cols
	g.driftSpeed = cfg.FormationSpeed
	g.stepIntervalMs = cfg.MoveIntervalMs
	g.stepAccumMs = 0
	g.dir = 1
	g.offsetX, g.offsetY = 0, 0
	g.minX = invaderRadius * 2
	g.maxX = width - invaderRadius*2

	span := float64(g.cols-1) * slotSpacing
	g.originX = (width - span) / 2

	g.members = make([]*Invader, 0, g.rows*g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			slot := GridSlot{Row: r, Col: c}
			x, y := g.SlotPosition(slot)
			g.members = append(g.members, NewInvader(slot, x, y))
		}
	}
}

// SetMode switches between wave and classic movement without rebuilding.
func (g *Grid) SetMode(mode FormationMode) {
	g.mode = mode
	g.stepAccumMs = 0
}

func (g *Grid) Mode() FormationMode { return g.mode }
func (g *Grid) Rows() int           { return g.rows }
func (g *Grid) Cols() int           { return g.cols }

// SlotPosition maps a slot to its current world position.
func (g *Grid) SlotPosition(slot GridSlot) (float64, float64) {
	return g.originX + g.offsetX + float64(slot.Col)*slotSpacing,
		g.originY + g.offsetY + float64(slot.Row)*slotSpacing
}

// Members returns every invader, dead or alive, in row-major order.
func (g *Grid) Members() []*Invader {
	return g.members
}

// Member returns the invader at slot, or nil when out of range.
func (g *Grid) Member(slot GridSlot) *Invader {
	if slot.Row < 0 || slot.Row >= g.rows || slot.Col < 0 || slot.Col >= g.cols {
		return nil
	}
	return g.members[slot.Row*g.cols+slot.Col]
}

// AliveInFormation returns live invaders currently parked in their slots.
func (g *Grid) AliveInFormation() []*Invader {
	var out []*Invader
	for _, m := range g.members {
		if m.alive && m.state == StateInFormation {
			out = append(out, m)
		}
	}
	return out
}

// Alive counts live invaders regardless of flight state.
func (g *Grid) Alive() int {
	n := 0
	for _, m := range g.members {
		if m.alive {
			n++
		}
	}
	return n
}

// Bottom returns the y of the lowest live parked invader, or -1 if none.
func (g *Grid) Bottom() float64 {
	bottom := -1.0
	for _, m := range g.members {
		if m.alive && m.state == StateInFormation && m.y > bottom {
			bottom = m.y
		}
	}
	return bottom
}

// Update moves the formation and carries parked members with it. Divers
// are left alone; the coordinator steers them toward the moved slots.
func (g *Grid) Update(deltaMs float64) {
	switch g.mode {
	case ModeWave:
		g.drift(deltaMs)
	case ModeClassic:
		g.march(deltaMs)
	}
	for _, m := range g.members {
		if m.state == StateInFormation {
			m.x, m.y = g.SlotPosition(m.slot)
		}
	}
}

func (g *Grid) drift(deltaMs float64) {
	g.offsetX += g.dir * g.driftSpeed * deltaMs / 1000
	lo, hi, ok := g.liveColumnSpan()
	if !ok {
		return
	}
	if lo < g.minX {
		g.offsetX += g.minX - lo
		g.dir = 1
	} else if hi > g.maxX {
		g.offsetX -= hi - g.maxX
		g.dir = -1
	}
}

func (g *Grid) march(deltaMs float64) {
	if g.stepIntervalMs <= 0 {
		return
	}
	g.stepAccumMs += deltaMs
	for g.stepAccumMs >= g.stepIntervalMs {
		g.stepAccumMs -= g.stepIntervalMs
		lo, hi, ok := g.liveColumnSpan()
		if !ok {
			return
		}
		if (g.dir > 0 && hi+classicStepPx > g.maxX) || (g.dir < 0 && lo-classicStepPx < g.minX) {
			g.offsetY += classicDropPx
			g.dir = -g.dir
			continue
		}
		g.offsetX += g.dir * classicStepPx
	}
}

// liveColumnSpan returns the x extent of the columns that still hold a live
// member, so a thinned-out formation keeps using the full playfield width.
func (g *Grid) liveColumnSpan() (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range g.members {
		if !m.alive {
			continue
		}
		x, _ := g.SlotPosition(m.slot)
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, !math.IsInf(lo, 1)
}
