package game

import "math"

// --- Points ---

// rowPoints is the value of a parked invader, indexed from the front line
// backwards: the bottom row is cheapest, rows further back pay more.
var rowPoints = [...]int{10, 20, 20, 30, 30, 40, 40, 50}

// diveBonus multiplies the value of an invader shot while away from its slot.
const diveBonus = 2.0

// PointsFor returns the score for destroying inv under cfg. Divers are worth
// double; the level's points multiplier applies on top.
func PointsFor(inv *Invader, rows int, cfg LevelConfig) int {
	fromFront := rows - 1 - inv.slot.Row
	fromFront = max(0, min(fromFront, len(rowPoints)-1))
	v := float64(rowPoints[fromFront])
	if inv.state != StateInFormation {
		v *= diveBonus
	}
	mul := cfg.PointsMultiplier
	if mul <= 0 {
		mul = 1
	}
	return int(math.Round(v * mul))
}

// --- Scoreboard ---

const startingLives = 3

// Scoreboard tracks one player's run across levels.
type Scoreboard struct {
	Score       int
	Lives       int
	Level       int
	Kills       int
	DiverKills  int // kills scored on invaders away from their slot
	LevelsClear int
	BestLevel   int
}

// NewScoreboard starts a run at level.
func NewScoreboard(level int) *Scoreboard {
	level = max(level, 1)
	return &Scoreboard{Lives: startingLives, Level: level, BestLevel: level}
}

// AwardKill credits the kill of inv and returns the points scored.
func (s *Scoreboard) AwardKill(inv *Invader, rows int, cfg LevelConfig) int {
	pts := PointsFor(inv, rows, cfg)
	s.Score += pts
	s.Kills++
	if inv.state != StateInFormation {
		s.DiverKills++
	}
	return pts
}

// LoseLife takes a life and reports whether that loss ended the run. Once
// the lives are gone further calls change nothing and report false.
func (s *Scoreboard) LoseLife() bool {
	if s.Lives == 0 {
		return false
	}
	s.Lives--
	return s.Lives == 0
}

// AdvanceLevel moves to the next level.
func (s *Scoreboard) AdvanceLevel() {
	s.LevelsClear++
	s.Level++
	s.BestLevel = max(s.BestLevel, s.Level)
}

// DiverKillRatio is the share of kills scored on divers, in [0, 1].
func (s *Scoreboard) DiverKillRatio() float64 {
	if s.Kills == 0 {
		return 0
	}
	return clamp01(float64(s.DiverKills) / float64(s.Kills))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
