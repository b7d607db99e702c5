package game

import (
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 16

// statusHoldMs is how long a status message stays on screen.
const statusHoldMs = 2000.0

// simSpeeds are the selectable simulation multipliers.
var simSpeeds = []float64{0, 0.25, 0.5, 1, 2, 4}

type Game struct {
	width      int
	height     int
	gameWidth  int // playfield width (ticker panel takes the rest)
	gameHeight int
	offX       int
	offY       int

	session *Session
	log     *zap.Logger

	// Offscreen buffer for the playfield, blitted at the border offset.
	worldBuf *ebiten.Image
	hudFace  text.Face
	stars    []star

	showHUD   bool
	simSpeed  float64 // multiplier: 0=paused
	tickAccum float64 // fractional tick accumulator for sub-1x speeds
	controls  Controls

	status   string
	statusMs float64
}

// star is a backdrop dot.
type star struct {
	x, y  float32
	shade uint8
}

// New builds the windowed game around a fresh session.
func New(opts Options) *Game {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	opts.Logger = log
	g := &Game{
		width:      borderWidth + opts.Width + borderWidth + tickerPanelWidth,
		height:     borderWidth + opts.Height + borderWidth,
		gameWidth:  opts.Width,
		gameHeight: opts.Height,
		offX:       borderWidth,
		offY:       borderWidth,
		session:    NewSession(opts),
		log:        log,
		hudFace:    text.NewGoXFace(basicfont.Face7x13),
		showHUD:    true,
		simSpeed:   1,
	}
	g.worldBuf = ebiten.NewImage(opts.Width, opts.Height)
	g.initStars()
	return g
}

// initStars scatters a fixed backdrop.
func (g *Game) initStars() {
	rng := rand.New(rand.NewSource(54321)) // #nosec G404 -- cosmetic only
	count := 140
	g.stars = make([]star, 0, count)
	for i := 0; i < count; i++ {
		g.stars = append(g.stars, star{
			x:     float32(rng.Intn(g.gameWidth)),
			y:     float32(rng.Intn(g.gameHeight)),
			shade: uint8(60 + rng.Intn(120)),
		})
	}
}

// Session exposes the running session, mainly for tooling.
func (g *Game) Session() *Session { return g.session }

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()

	if g.statusMs > 0 {
		g.statusMs -= frameMs
	}
	if g.simSpeed <= 0 {
		return nil
	}

	// For speeds > 1 run multiple sim ticks per frame.
	// For speeds < 1 accumulate fractions.
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.session.Step(frameMs, g.controls)
	}
	return nil
}

// handleInput reads movement every frame and toggles on key-down edges.
func (g *Game) handleInput() {
	g.controls = Controls{}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		g.controls.Steer--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		g.controls.Steer++
	}
	g.controls.Fire = ebiten.IsKeyPressed(ebiten.KeySpace)

	// H: toggle HUD.
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// M: switch formation movement.
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		mode := g.session.ToggleMode()
		g.flash("formation: " + mode.String())
	}

	// C: copy the debug report.
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyReport()
	}

	// Enter: new run after game over.
	if g.session.GameOver() && inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.session.NewRun()
		g.flash("new run")
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		g.simSpeed = stepSpeed(g.simSpeed, -1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.simSpeed = stepSpeed(g.simSpeed, +1)
	}
}

// stepSpeed moves one notch along simSpeeds in direction dir.
func stepSpeed(cur float64, dir int) float64 {
	idx := 0
	for i, s := range simSpeeds {
		if s <= cur {
			idx = i
		}
	}
	idx = max(0, min(idx+dir, len(simSpeeds)-1))
	return simSpeeds[idx]
}

func (g *Game) copyReport() {
	report := g.session.DebugReport()
	if err := clipboard.WriteAll(report); err != nil {
		g.log.Warn("clipboard copy failed", zap.Error(err))
		g.flash("copy failed: " + err.Error())
		return
	}
	g.log.Info("debug report copied", zap.Int("bytes", len(report)))
	g.flash("report copied")
}

func (g *Game) flash(msg string) {
	g.status = msg
	g.statusMs = statusHoldMs
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 8, G: 8, B: 14, A: 255})

	g.worldBuf.Clear()
	g.drawWorld(g.worldBuf)
	var blit ebiten.DrawImageOptions
	blit.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.worldBuf, &blit)

	// Playfield border frame.
	ox := float32(g.offX)
	oy := float32(g.offY)
	gw := float32(g.gameWidth)
	gh := float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 60, G: 60, B: 110, A: 255}, false)

	tickerX := g.offX + g.gameWidth + g.offX
	g.session.Ticker().Draw(screen, tickerX, g.height)

	g.drawScoreLine(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.statusMs > 0 && g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, g.offX+8, g.offY+g.gameHeight-20)
	}
	if g.session.GameOver() {
		g.drawCentred(screen, "GAME OVER  -  Enter for a new run", g.offY+g.gameHeight/2)
	}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	for _, s := range g.stars {
		vector.FillRect(screen, s.x, s.y, 1.5, 1.5, color.RGBA{R: s.shade, G: s.shade, B: s.shade + 20, A: 255}, false)
	}

	g.drawFormationSlots(screen)
	for _, m := range g.session.Grid().Members() {
		m.Draw(screen)
	}

	shotCol := color.RGBA{R: 230, G: 240, B: 255, A: 255}
	for _, p := range g.session.Shots() {
		x, y := p.Position()
		vector.FillRect(screen, float32(x)-1, float32(y)-6, 2, 12, shotCol, false)
	}
	bombCol := color.RGBA{R: 255, G: 120, B: 40, A: 255}
	for _, p := range g.session.Bombs() {
		x, y := p.Position()
		vector.FillCircle(screen, float32(x), float32(y), bombRadius, bombCol, true)
	}

	g.drawDefender(screen)
}

// drawFormationSlots renders a small ghost circle at every slot a diver is
// heading back to.
func (g *Game) drawFormationSlots(screen *ebiten.Image) {
	grid := g.session.Grid()
	ghost := color.RGBA{R: 120, G: 120, B: 160, A: 90}
	for _, m := range grid.Members() {
		if !m.IsAlive() || m.State() == StateInFormation {
			continue
		}
		sx, sy := grid.SlotPosition(m.GridSlot())
		vector.StrokeCircle(screen, float32(sx), float32(sy), invaderRadius, 1, ghost, true)
		if m.State() == StateReturning {
			x, y := m.Position()
			vector.StrokeLine(screen, float32(x), float32(y), float32(sx), float32(sy), 1, ghost, true)
		}
	}
}

func (g *Game) drawDefender(screen *ebiten.Image) {
	d := g.session.Defender()
	if !d.IsAlive() {
		return
	}
	x, y := d.Position()
	fx, fy := float32(x), float32(y)
	body := color.RGBA{R: 90, G: 220, B: 140, A: 255}
	vector.FillRect(screen, fx-defenderRadius, fy, defenderRadius*2, 8, body, false)
	vector.FillRect(screen, fx-5, fy-8, 10, 8, body, false)
	vector.FillRect(screen, fx-1.5, fy-14, 3, 6, body, false)
}

func (g *Game) drawScoreLine(screen *ebiten.Image) {
	b := g.session.Board()
	cfg := g.session.Config()
	line := fmt.Sprintf("SCORE %06d   LIVES %d   LEVEL %d (%s)   WAVES %d/%d",
		b.Score, b.Lives, cfg.Level, cfg.Difficulty, g.session.Waves().ActiveWaves(), cfg.MaxSimultaneousWaves)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(g.offX+8), float64(g.offY+6))
	op.ColorScale.ScaleWithColor(color.RGBA{R: 230, G: 230, B: 250, A: 255})
	text.Draw(screen, line, g.hudFace, op)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	speedStr := fmt.Sprintf("%gx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	cfg := g.session.Config()
	lines := []string{
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed", speedStr),
		fmt.Sprintf("Mode: %s  M=switch", g.session.Grid().Mode()),
		fmt.Sprintf("Homing %.2f  interval %.0f-%.0fms", cfg.HomingStrength, cfg.WaveIntervalMin, cfg.WaveIntervalMax),
		"Arrows/A,D move  Space fire",
		"C=copy report  H=toggle HUD",
	}

	const lineH = 15
	const padX = 6
	const padY = 5
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*7 + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(g.offX + 6)
	by := float32(g.offY+g.gameHeight) - boxH - 28

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 6, B: 14, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 70, G: 70, B: 130, A: 180}, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(bx)+padX, float64(by)+padY)
	op.ColorScale.ScaleWithColor(color.RGBA{R: 190, G: 190, B: 220, A: 255})
	op.LineSpacing = lineH
	text.Draw(screen, strings.Join(lines, "\n"), g.hudFace, op)
}

func (g *Game) drawCentred(screen *ebiten.Image, msg string, y int) {
	w, _ := text.Measure(msg, g.hudFace, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(g.offX)+(float64(g.gameWidth)-w)/2, float64(y))
	op.ColorScale.ScaleWithColor(color.RGBA{R: 255, G: 90, B: 70, A: 255})
	text.Draw(screen, msg, g.hudFace, op)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// WindowSize returns the full window size including the ticker panel.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}
