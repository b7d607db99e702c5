package game

import "math"

// PathShape identifies the family of curve a dive follows.
type PathShape int

const (
	PathStraight PathShape = iota // slanted straight dive
	PathSCurve                    // sinusoidal weave on the way down
	PathLoop                      // full loop-the-loop part way down
	pathShapeCount
)

func (ps PathShape) String() string {
	switch ps {
	case PathStraight:
		return "straight"
	case PathSCurve:
		return "s-curve"
	case PathLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// PathGenerator creates dive paths. The zero value is not usable; start
// from DefaultPathGenerator.
type PathGenerator struct {
	DiveDepth     float64 // px the dive descends below its origin
	Amplitude     float64 // px of lateral swing / loop radius
	MinDurationMs float64
	MaxDurationMs float64
}

// DefaultPathGenerator matches the shipped config defaults.
func DefaultPathGenerator() PathGenerator {
	return PathGenerator{
		DiveDepth:     420,
		Amplitude:     90,
		MinDurationMs: 2200,
		MaxDurationMs: 3400,
	}
}

// Create draws a new path. Shape and every shape parameter are fixed here,
// so samples at a given progress are reproducible for the path's lifetime.
// Call Start before sampling.
func (pg PathGenerator) Create(rng RandomSource) *AttackPath {
	p := &AttackPath{
		shape:      PathShape(rng.Intn(int(pathShapeCount))),
		durationMs: uniform(rng, pg.MinDurationMs, pg.MaxDurationMs),
		depth:      pg.DiveDepth,
		amplitude:  pg.Amplitude * uniform(rng, 0.6, 1.0),
		side:       1,
	}
	if rng.Float64() < 0.5 {
		p.side = -1
	}
	switch p.shape {
	case PathSCurve:
		p.cycles = float64(intBetween(rng, 1, 3)) // half-waves of weave
	case PathLoop:
		p.loopAt = uniform(rng, 0.35, 0.55)
	}
	if p.durationMs <= 0 {
		p.durationMs = 1
	}
	return p
}

// AttackPath is a finite, restartable dive trajectory with a progress cursor.
type AttackPath struct {
	shape      PathShape
	durationMs float64
	depth      float64
	amplitude  float64
	side       float64 // +1 swings right first, -1 left
	cycles     float64 // s-curve half-waves
	loopAt     float64 // loop centre, as a fraction of the descent

	originX, originY float64
	progress         float64
}

// Start binds the path's origin and rewinds it.
func (p *AttackPath) Start(x, y float64) {
	p.originX = x
	p.originY = y
	p.progress = 0
}

// Advance moves the cursor forward by deltaMs. It saturates at 1.
func (p *AttackPath) Advance(deltaMs float64) {
	if p.IsComplete() || deltaMs <= 0 {
		return
	}
	p.progress += deltaMs / p.durationMs
	if p.progress > 1 {
		p.progress = 1
	}
}

// IsComplete reports whether the dive has reached its end.
func (p *AttackPath) IsComplete() bool {
	return p.progress >= 1
}

func (p *AttackPath) Progress() float64   { return p.progress }
func (p *AttackPath) Shape() PathShape    { return p.shape }
func (p *AttackPath) DurationMs() float64 { return p.durationMs }

// Position samples the path at its current progress.
func (p *AttackPath) Position() (float64, float64) {
	return p.SamplePosition(p.progress)
}

// SamplePosition returns the world position at progress t (clamped to [0,1]).
func (p *AttackPath) SamplePosition(t float64) (float64, float64) {
	t = clamp01(t)
	var dx, dy float64
	switch p.shape {
	case PathStraight:
		dx = p.side * p.amplitude * t
		dy = p.depth * t
	case PathSCurve:
		dx = p.side * p.amplitude * math.Sin(math.Pi*p.cycles*t)
		dy = p.depth * t
	case PathLoop:
		dx, dy = p.loopOffset(t)
	}
	return p.originX + dx, p.originY + dy
}

// loopOffset descends to loopAt, runs one full circle of radius amplitude/2
// (during the middle third of the dive), then continues the descent.
func (p *AttackPath) loopOffset(t float64) (float64, float64) {
	const loopStart, loopEnd = 1.0 / 3, 2.0 / 3
	r := p.amplitude / 2
	// Descent is paused during the loop, so the straight segments cover
	// the full depth in the remaining two thirds of the time.
	switch {
	case t < loopStart:
		return 0, p.depth * p.loopAt * (t / loopStart)
	case t < loopEnd:
		a := (t - loopStart) / (loopEnd - loopStart) * 2 * math.Pi
		cy := p.depth * p.loopAt
		// Circle tangent to the descent line at its top-of-loop entry point.
		return p.side * r * (1 - math.Cos(a)), cy + r*math.Sin(a)
	default:
		rest := (t - loopEnd) / (1 - loopEnd)
		return 0, p.depth*p.loopAt + p.depth*(1-p.loopAt)*rest
	}
}
