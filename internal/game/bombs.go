package game

// BombDropper decides when the formation fires back. Each tick it drops a
// bomb with probability bombFrequency*dt, from the lowest live member of a
// randomly chosen column. Divers drop too: the lowest live member of a
// column is picked regardless of flight state.
type BombDropper struct {
	rng       RandomSource
	frequency float64 // bombs per second
	maxLive   int
}

// NewBombDropper builds a dropper for one level.
func NewBombDropper(rng RandomSource, cfg LevelConfig) *BombDropper {
	return &BombDropper{rng: rng, frequency: cfg.BombFrequency, maxLive: 6}
}

// Reset applies a new level's bomb frequency.
func (b *BombDropper) Reset(cfg LevelConfig) { b.frequency = cfg.BombFrequency }

// Frequency returns bombs per second.
func (b *BombDropper) Frequency() float64 { return b.frequency }

// Update returns the bomb dropped this tick, or nil. live is the number of
// bombs currently falling; no new bomb is dropped at the cap.
func (b *BombDropper) Update(deltaMs float64, members []*Invader, cols, live int) *Projectile {
	if b.frequency <= 0 || cols <= 0 || live >= b.maxLive {
		return nil
	}
	if b.rng.Float64() >= b.frequency*deltaMs/1000 {
		return nil
	}
	col := b.rng.Intn(cols)
	shooter := lowestInColumn(members, col)
	if shooter == nil {
		return nil
	}
	return NewBomb(shooter.x, shooter.y+invaderRadius)
}

func lowestInColumn(members []*Invader, col int) *Invader {
	var best *Invader
	for _, m := range members {
		if !m.alive || m.slot.Col != col {
			continue
		}
		if best == nil || m.y > best.y {
			best = m
		}
	}
	return best
}
