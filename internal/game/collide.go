package game

import "math"

// Kind tags every collision participant so pair handling is one switch on
// the kinds rather than type probing.
type Kind int

const (
	KindInvader  Kind = iota
	KindDefender      // the player's ship
	KindShot          // player fire, travels up
	KindBomb          // invader fire, travels down
)

func (k Kind) String() string {
	switch k {
	case KindInvader:
		return "invader"
	case KindDefender:
		return "defender"
	case KindShot:
		return "shot"
	case KindBomb:
		return "bomb"
	default:
		return "unknown"
	}
}

// Collider is anything that can take part in an overlap test.
type Collider interface {
	Kind() Kind
	Position() (float64, float64)
	Radius() float64
	IsAlive() bool
}

// Hit is one resolved overlap between two participants.
type Hit struct {
	A, B Collider
}

func overlaps(a, b Collider) bool {
	ax, ay := a.Position()
	bx, by := b.Position()
	return math.Hypot(ax-bx, ay-by) <= a.Radius()+b.Radius()
}

// Projectile is a shot or bomb in flight.
type Projectile struct {
	kind  Kind
	x, y  float64
	vy    float64 // px/s, negative is up
	alive bool
}

const (
	shotSpeed   = 520.0
	bombSpeed   = 210.0
	shotRadius  = 3.0
	bombRadius  = 4.0
	shotCooldMs = 320.0
)

// NewShot fires a player shot upward from (x, y).
func NewShot(x, y float64) *Projectile {
	return &Projectile{kind: KindShot, x: x, y: y, vy: -shotSpeed, alive: true}
}

// NewBomb drops an invader bomb from (x, y).
func NewBomb(x, y float64) *Projectile {
	return &Projectile{kind: KindBomb, x: x, y: y, vy: bombSpeed, alive: true}
}

func (p *Projectile) Kind() Kind                   { return p.kind }
func (p *Projectile) Position() (float64, float64) { return p.x, p.y }
func (p *Projectile) IsAlive() bool                { return p.alive }
func (p *Projectile) Kill()                        { p.alive = false }

func (p *Projectile) Radius() float64 {
	if p.kind == KindBomb {
		return bombRadius
	}
	return shotRadius
}

// Update moves the projectile and expires it once it leaves [0, height].
func (p *Projectile) Update(deltaMs, height float64) {
	if !p.alive {
		return
	}
	p.y += p.vy * deltaMs / 1000
	if p.y < -10 || p.y > height+10 {
		p.alive = false
	}
}

// Defender is the player's ship.
type Defender struct {
	x, y     float64
	speed    float64 // px/s
	minX     float64
	maxX     float64
	cooldown float64 // ms until the next shot is allowed
	alive    bool
}

const defenderRadius = 14.0

// NewDefender places the ship centred on the bottom of the playfield.
func NewDefender(width, y float64) *Defender {
	return &Defender{
		x:     width / 2,
		y:     y,
		speed: 320,
		minX:  defenderRadius,
		maxX:  width - defenderRadius,
		alive: true,
	}
}

func (d *Defender) Kind() Kind                   { return KindDefender }
func (d *Defender) Position() (float64, float64) { return d.x, d.y }
func (d *Defender) Radius() float64              { return defenderRadius }
func (d *Defender) IsAlive() bool                { return d.alive }
func (d *Defender) X() float64                   { return d.x }

// Steer moves the ship by dir (-1, 0, +1) for deltaMs.
func (d *Defender) Steer(dir, deltaMs float64) {
	d.x += dir * d.speed * deltaMs / 1000
	d.x = math.Max(d.minX, math.Min(d.maxX, d.x))
	if d.cooldown > 0 {
		d.cooldown -= deltaMs
	}
}

// Fire returns a new shot, or nil while the gun is cooling down.
func (d *Defender) Fire() *Projectile {
	if !d.alive || d.cooldown > 0 {
		return nil
	}
	d.cooldown = shotCooldMs
	return NewShot(d.x, d.y-defenderRadius)
}

// Respawn revives the ship at the centre.
func (d *Defender) Respawn() {
	d.x = (d.minX + d.maxX) / 2
	d.alive = true
	d.cooldown = 0
}

// ResolveHits returns every overlapping live pair whose kinds interact:
// shots hit invaders, bombs and invaders hit the defender. Each projectile
// is consumed by at most one hit.
func ResolveHits(defender *Defender, invaders []*Invader, shots, bombs []*Projectile) []Hit {
	var hits []Hit
	consumed := map[*Projectile]bool{}

	var pool []Collider
	pool = append(pool, defender)
	for _, inv := range invaders {
		pool = append(pool, inv)
	}
	for _, p := range shots {
		pool = append(pool, p)
	}
	for _, p := range bombs {
		pool = append(pool, p)
	}

	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			a, b := pool[i], pool[j]
			if !a.IsAlive() || !b.IsAlive() || !interacts(a.Kind(), b.Kind()) {
				continue
			}
			if pa, ok := a.(*Projectile); ok && consumed[pa] {
				continue
			}
			if pb, ok := b.(*Projectile); ok && consumed[pb] {
				continue
			}
			if !overlaps(a, b) {
				continue
			}
			if pa, ok := a.(*Projectile); ok {
				consumed[pa] = true
			}
			if pb, ok := b.(*Projectile); ok {
				consumed[pb] = true
			}
			hits = append(hits, Hit{A: a, B: b})
		}
	}
	return hits
}

// interacts reports whether two kinds can hit each other.
func interacts(a, b Kind) bool {
	if a > b {
		a, b = b, a
	}
	switch {
	case a == KindInvader && b == KindDefender:
		return true
	case a == KindInvader && b == KindShot:
		return true
	case a == KindDefender && b == KindBomb:
		return true
	}
	return false
}
