package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const invaderRadius = 11

// FlightState is the per-entity flight state. There is no terminal state;
// destruction is tracked separately through alive.
type FlightState int

const (
	StateInFormation FlightState = iota // parked in its grid slot
	StateAttacking                      // following an attack path
	StateReturning                      // steering back to its (live) slot
)

func (fs FlightState) String() string {
	switch fs {
	case StateInFormation:
		return "in_formation"
	case StateAttacking:
		return "attacking"
	case StateReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// GridSlot is an entity's fixed identity within the formation.
type GridSlot struct {
	Row, Col int
}

// Invader is one formation member.
type Invader struct {
	kind  Kind
	slot  GridSlot
	state FlightState
	path  *AttackPath
	wave  int // id of the wave this entity is (or was last) flying with
	x, y  float64
	alive bool
}

// NewInvader creates a live invader parked at (x, y).
func NewInvader(slot GridSlot, x, y float64) *Invader {
	return &Invader{
		kind:  KindInvader,
		slot:  slot,
		state: StateInFormation,
		x:     x,
		y:     y,
		alive: true,
	}
}

func (inv *Invader) Kind() Kind                   { return inv.kind }
func (inv *Invader) GridSlot() GridSlot           { return inv.slot }
func (inv *Invader) State() FlightState           { return inv.state }
func (inv *Invader) AttackPath() *AttackPath      { return inv.path }
func (inv *Invader) IsAlive() bool                { return inv.alive }
func (inv *Invader) Position() (float64, float64) { return inv.x, inv.y }
func (inv *Invader) Radius() float64              { return invaderRadius }

// WaveID returns the wave the invader last launched with (0 if never).
func (inv *Invader) WaveID() int { return inv.wave }

// Kill soft-deletes the invader. The coordinator notices on its next tick.
func (inv *Invader) Kill() { inv.alive = false }

func (inv *Invader) SetPosition(x, y float64) {
	inv.x = x
	inv.y = y
}

func (inv *Invader) Move(dx, dy float64) {
	inv.x += dx
	inv.y += dy
}

// SetState changes the flight state. Leaving ATTACKING drops the path.
// Entering ATTACKING needs a bound path, so on a parked invader it does
// nothing; use Launch for that.
func (inv *Invader) SetState(s FlightState) {
	if s == StateAttacking && inv.path == nil {
		return
	}
	inv.state = s
	if s != StateAttacking {
		inv.path = nil
	}
}

// SetAttackPath binds a path, which is only meaningful while attacking.
// A nil path or a non-attacking invader leaves the path cleared.
func (inv *Invader) SetAttackPath(p *AttackPath) {
	if inv.state != StateAttacking {
		inv.path = nil
		return
	}
	inv.path = p
}

// Launch flips IN_FORMATION -> ATTACKING and binds the path in one step.
// Invaders already in flight, or a nil path, are left alone.
func (inv *Invader) Launch(p *AttackPath, waveID int) {
	if inv.state != StateInFormation || p == nil {
		return
	}
	inv.state = StateAttacking
	inv.path = p
	inv.wave = waveID
}

// BeginReturn flips ATTACKING -> RETURNING. The last sampled position is
// kept as the start of return steering.
func (inv *Invader) BeginReturn() {
	inv.state = StateReturning
	inv.path = nil
}

// Land snaps the invader onto its slot and parks it.
func (inv *Invader) Land(x, y float64) {
	inv.x = x
	inv.y = y
	inv.state = StateInFormation
	inv.path = nil
}

// Draw renders the invader. Divers are tinted by flight state.
func (inv *Invader) Draw(screen *ebiten.Image) {
	if !inv.alive {
		return
	}
	var c color.RGBA
	switch inv.state {
	case StateAttacking:
		c = color.RGBA{R: 240, G: 80, B: 60, A: 255}
	case StateReturning:
		c = color.RGBA{R: 240, G: 190, B: 60, A: 255}
	default:
		// Rows shade from cyan at the top to green at the front line.
		shade := uint8(min(inv.slot.Row*24, 160))
		c = color.RGBA{R: 60, G: 140 + shade/2, B: 220 - shade, A: 255}
	}
	r := float32(invaderRadius)
	x, y := float32(inv.x), float32(inv.y)
	vector.FillCircle(screen, x, y, r, c, true)
	// Eyes.
	eye := color.RGBA{R: 10, G: 10, B: 20, A: 255}
	vector.FillCircle(screen, x-r*0.4, y-r*0.2, r*0.18, eye, true)
	vector.FillCircle(screen, x+r*0.4, y-r*0.2, r*0.18, eye, true)

	if inv.state == StateAttacking && inv.path != nil {
		// Heading tick toward where the path goes next.
		nx, ny := inv.path.SamplePosition(inv.path.Progress() + 0.02)
		dx, dy := nx-inv.x, ny-inv.y
		if d := math.Hypot(dx, dy); d > 1e-6 {
			vector.StrokeLine(screen, x, y, x+float32(dx/d)*r*1.6, y+float32(dy/d)*r*1.6, 1.5,
				color.RGBA{R: 255, G: 255, B: 255, A: 140}, true)
		}
	}
}
