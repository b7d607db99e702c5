package game

type LevelOutcome int

const (
	OutcomeInProgress LevelOutcome = iota
	OutcomeCleared
	OutcomeInvaded
	OutcomeDestroyed
)

func (o LevelOutcome) String() string {
	switch o {
	case OutcomeCleared:
		return "cleared"
	case OutcomeInvaded:
		return "invaded"
	case OutcomeDestroyed:
		return "destroyed"
	case OutcomeInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// LevelResult records how one attempt at a level ended.
type LevelResult struct {
	Outcome     LevelOutcome
	Level       int
	Difficulty  string
	Mode        FormationMode
	Ticks       int // length of the attempt
	Score       int // score gained during the attempt
	Kills       int
	DiverKills  int
	LivesLost   int
	WavesSeen   int
	Description string
}

// levelMark is the board state at the start of an attempt.
type levelMark struct {
	tick       int
	score      int
	kills      int
	diverKills int
	lives      int
}

func markLevel(tick int, b *Scoreboard) levelMark {
	return levelMark{tick: tick, score: b.Score, kills: b.Kills, diverKills: b.DiverKills, lives: b.Lives}
}

// determineLevelOutcome classifies an attempt from the board deltas since
// mark. invaded is set when a classic formation reached the defender line;
// the life it cost is already off the board.
func determineLevelOutcome(cfg LevelConfig, mode FormationMode, tick int, mark levelMark, b *Scoreboard, waves WaveStats, invaded bool) LevelResult {
	r := LevelResult{
		Level:      cfg.Level,
		Difficulty: cfg.Difficulty,
		Mode:       mode,
		Ticks:      tick - mark.tick,
		Score:      b.Score - mark.score,
		Kills:      b.Kills - mark.kills,
		DiverKills: b.DiverKills - mark.diverKills,
		LivesLost:  mark.lives - b.Lives,
		WavesSeen:  waves.Launched,
	}
	switch {
	case invaded:
		r.Outcome = OutcomeInvaded
		r.Description = "formation_reached_defender_line"
	case b.Lives == 0:
		r.Outcome = OutcomeDestroyed
		r.Description = "defender_destroyed_no_lives_left"
	case r.LivesLost == 0:
		r.Outcome = OutcomeCleared
		r.Description = "cleared_without_losses"
	case r.Kills > 0 && r.DiverKills*2 >= r.Kills:
		r.Outcome = OutcomeCleared
		r.Description = "cleared_mostly_on_divers"
	default:
		r.Outcome = OutcomeCleared
		r.Description = "cleared_after_losses"
	}
	return r
}
