package game

import (
	"strconv"

	"go.uber.org/zap"
)

// frameMs is the simulated frame length at 60 TPS.
const frameMs = 1000.0 / 60

const (
	formationTop     = 80.0
	defenderMargin   = 48.0
	respawnDelayMs   = 1500.0
	invasionMarginPx = defenderRadius * 2
)

// Controls is the player's input for one frame.
type Controls struct {
	Steer float64 // -1 left, 0 idle, +1 right
	Fire  bool
}

// Options configures a Session.
type Options struct {
	Width, Height int
	Seed          int64        // 0 seeds from the clock
	Random        RandomSource // overrides Seed when set
	StartLevel    int
	Preset        DifficultyMultipliers
	Mode          FormationMode
	Paths         PathGenerator
	ReturnSpeed   float64
	Logger        *zap.Logger
}

// DefaultOptions returns the options used when no config file is present.
func DefaultOptions() Options {
	return Options{
		Width:       960,
		Height:      720,
		StartLevel:  1,
		Preset:      Medium,
		Mode:        ModeWave,
		Paths:       DefaultPathGenerator(),
		ReturnSpeed: defaultReturnSpeed,
	}
}

// Session is one run of the game without any rendering: the formation, the
// wave coordinator, the defender and everything they fire, plus the level
// flow between them. Game drives it once per tick.
type Session struct {
	width, height float64
	rng           RandomSource
	preset        DifficultyMultipliers
	startLevel    int
	log           *zap.Logger

	cfg      LevelConfig
	grid     *Grid
	waves    *WaveCoordinator
	dropper  *BombDropper
	defender *Defender
	shots    []*Projectile
	bombs    []*Projectile
	board    *Scoreboard
	ticker   *EventTicker
	reporter *SimReporter

	tick      int
	respawnMs float64
	gameOver  bool
	mark      levelMark
	results   []LevelResult
}

// NewSession builds a session at opts.StartLevel.
func NewSession(opts Options) *Session {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if opts.Preset.Name == "" {
		opts.Preset = Medium
	}
	if opts.Paths == (PathGenerator{}) {
		opts.Paths = DefaultPathGenerator()
	}
	opts.StartLevel = max(opts.StartLevel, 1)
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rng := opts.Random
	if rng == nil {
		rng = NewRandom(opts.Seed)
	}

	s := &Session{
		width:      float64(opts.Width),
		height:     float64(opts.Height),
		rng:        rng,
		preset:     opts.Preset,
		startLevel: opts.StartLevel,
		log:        log,
		ticker:     NewEventTicker(),
		reporter:   NewSimReporter(reportWindowTicks),
		board:      NewScoreboard(opts.StartLevel),
	}
	s.cfg = Resolve(opts.StartLevel, opts.Preset)
	s.grid = NewGrid(s.cfg, opts.Mode, s.width, formationTop)
	s.waves = NewWaveCoordinator(s.grid, rng, s.cfg,
		WithPathGenerator(opts.Paths),
		WithReturnSpeed(opts.ReturnSpeed),
		WithLogger(log.Named("waves")),
		WithObserver(s.ticker.Observe),
	)
	s.dropper = NewBombDropper(rng, s.cfg)
	s.defender = NewDefender(s.width, s.height-defenderMargin)
	s.mark = markLevel(0, s.board)

	s.log.Info("level started",
		zap.Int("level", s.cfg.Level),
		zap.String("difficulty", s.cfg.Difficulty),
		zap.Int("rows", s.cfg.Rows),
		zap.Int("cols", s.cfg.Cols),
		zap.String("mode", opts.Mode.String()),
	)
	return s
}

func (s *Session) Config() LevelConfig           { return s.cfg }
func (s *Session) Grid() *Grid                   { return s.grid }
func (s *Session) Waves() *WaveCoordinator       { return s.waves }
func (s *Session) Defender() *Defender           { return s.defender }
func (s *Session) Shots() []*Projectile          { return s.shots }
func (s *Session) Bombs() []*Projectile          { return s.bombs }
func (s *Session) Board() *Scoreboard            { return s.board }
func (s *Session) Ticker() *EventTicker          { return s.ticker }
func (s *Session) Reporter() *SimReporter        { return s.reporter }
func (s *Session) Preset() DifficultyMultipliers { return s.preset }
func (s *Session) Tick() int                     { return s.tick }
func (s *Session) GameOver() bool                { return s.gameOver }
func (s *Session) Results() []LevelResult        { return s.results }

// ToggleMode flips the formation between wave and classic movement. Only
// wave mode launches dives; divers still out when switching to classic
// finish their flight and land.
func (s *Session) ToggleMode() FormationMode {
	next := ModeClassic
	if s.grid.Mode() == ModeClassic {
		next = ModeWave
	}
	s.grid.SetMode(next)
	s.log.Info("formation mode changed", zap.String("mode", next.String()))
	return next
}

// Step advances the session by one frame of dtMs.
func (s *Session) Step(dtMs float64, in Controls) {
	if s.gameOver {
		return
	}
	s.tick++

	if s.defender.alive {
		s.defender.Steer(in.Steer, dtMs)
		if in.Fire {
			if shot := s.defender.Fire(); shot != nil {
				s.shots = append(s.shots, shot)
			}
		}
	} else {
		s.respawnMs -= dtMs
		if s.respawnMs <= 0 {
			s.defender.Respawn()
		}
	}

	s.grid.Update(dtMs)
	s.waves.SetTargetX(s.defender.X())
	s.waves.SetLaunching(s.grid.Mode() == ModeWave)
	s.waves.Update(dtMs)

	if b := s.dropper.Update(dtMs, s.grid.Members(), s.grid.Cols(), len(s.bombs)); b != nil {
		s.bombs = append(s.bombs, b)
	}
	for _, p := range s.shots {
		p.Update(dtMs, s.height)
	}
	for _, p := range s.bombs {
		p.Update(dtMs, s.height)
	}

	for _, h := range ResolveHits(s.defender, s.grid.Members(), s.shots, s.bombs) {
		s.applyHit(h)
		if s.gameOver {
			return
		}
	}
	s.shots = liveProjectiles(s.shots)
	s.bombs = liveProjectiles(s.bombs)

	if s.tick%60 == 0 {
		s.reporter.Collect(s.tick, s.grid, s.waves)
	}

	switch {
	case s.grid.Alive() == 0:
		s.advanceLevel()
	case s.grid.Mode() == ModeClassic && s.grid.Bottom() >= s.defender.y-invasionMarginPx:
		s.invaded()
	}
}

// kindPair is a hit's participants ordered by Kind.
type kindPair struct{ a, b Kind }

func (s *Session) applyHit(h Hit) {
	a, b := h.A, h.B
	// An earlier hit this frame may already have consumed either side.
	if !a.IsAlive() || !b.IsAlive() {
		return
	}
	if a.Kind() > b.Kind() {
		a, b = b, a
	}
	switch (kindPair{a.Kind(), b.Kind()}) {
	case kindPair{KindInvader, KindShot}:
		inv := a.(*Invader)
		b.(*Projectile).Kill()
		pts := s.board.AwardKill(inv, s.grid.Rows(), s.cfg)
		inv.Kill()
		s.log.Debug("invader destroyed",
			zap.String("slot", slotLabel(inv.slot)),
			zap.String("state", inv.state.String()),
			zap.Int("points", pts),
		)
	case kindPair{KindInvader, KindDefender}:
		inv := a.(*Invader)
		s.board.AwardKill(inv, s.grid.Rows(), s.cfg)
		inv.Kill()
		s.defenderHit("rammed")
	case kindPair{KindDefender, KindBomb}:
		b.(*Projectile).Kill()
		s.defenderHit("bombed")
	}
}

func (s *Session) defenderHit(cause string) {
	s.defender.alive = false
	s.respawnMs = respawnDelayMs
	s.bombs = nil
	over := s.board.LoseLife()
	s.log.Info("defender lost",
		zap.String("cause", cause),
		zap.Int("lives", s.board.Lives),
		zap.Int("level", s.cfg.Level),
	)
	if over {
		s.recordResult(false)
		s.endRun()
	}
}

// invaded handles a classic formation marching down onto the defender line.
func (s *Session) invaded() {
	s.log.Info("formation reached the defender line", zap.Int("level", s.cfg.Level))
	over := s.board.LoseLife()
	s.recordResult(true)
	if over {
		s.endRun()
		return
	}
	s.restartLevel(s.cfg)
}

func (s *Session) endRun() {
	s.gameOver = true
	s.log.Info("game over",
		zap.Int("score", s.board.Score),
		zap.Int("level", s.board.Level),
		zap.Int("kills", s.board.Kills),
	)
}

func (s *Session) advanceLevel() {
	s.recordResult(false)
	s.board.AdvanceLevel()
	cfg := Resolve(s.board.Level, s.preset)
	s.log.Info("level complete",
		zap.Int("next_level", cfg.Level),
		zap.Int("score", s.board.Score),
		zap.Int("rows", cfg.Rows),
		zap.Int("max_waves", cfg.MaxSimultaneousWaves),
		zap.Float64("homing", cfg.HomingStrength),
	)
	s.restartLevel(cfg)
}

func (s *Session) recordResult(invaded bool) {
	r := determineLevelOutcome(s.cfg, s.grid.Mode(), s.tick, s.mark, s.board, s.waves.Stats(), invaded)
	s.results = append(s.results, r)
	s.log.Debug("level result",
		zap.Int("level", r.Level),
		zap.String("outcome", r.Outcome.String()),
		zap.String("description", r.Description),
		zap.Int("score", r.Score),
		zap.Int("lives_lost", r.LivesLost),
	)
}

// restartLevel rebuilds every per-level collaborator from cfg. It is the
// only way level state is reset.
func (s *Session) restartLevel(cfg LevelConfig) {
	s.cfg = cfg
	s.grid.Reset(cfg, s.width)
	s.waves.Reset(cfg)
	s.dropper.Reset(cfg)
	s.shots = nil
	s.bombs = nil
	s.defender.Respawn()
	s.respawnMs = 0
	s.reporter.Reset()
	s.mark = markLevel(s.tick, s.board)
	s.ticker.Add(TickerEntry{Kind: EventWaveRetired, Label: "--", Message: "level " + strconv.Itoa(cfg.Level)})
}

// NewRun starts over from the first level after a game over.
func (s *Session) NewRun() {
	s.board = NewScoreboard(s.startLevel)
	s.gameOver = false
	s.results = nil
	s.ticker.Clear()
	s.restartLevel(Resolve(s.startLevel, s.preset))
}

func liveProjectiles(ps []*Projectile) []*Projectile {
	kept := ps[:0]
	for _, p := range ps {
		if p.alive {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(ps); i++ {
		ps[i] = nil
	}
	return kept
}
