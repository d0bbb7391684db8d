// Package dodge implements the survival arena: steer a circle around
// projectiles that stream in from every edge, faster and denser every five
// seconds.
package dodge

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/core"
	"github.com/vovakirdan/minigames/internal/registry"
)

const (
	// HighScoreKey is the local preference key holding the best survival time.
	HighScoreKey = "dodge-high-score"

	hudHeight = 2

	// Terminals report key presses but not releases, so a press keeps the
	// direction held for a few ticks.
	keyHoldTicks = 8
)

var configPath string

// SetConfigPath sets a custom config file path used on the next Reset.
func SetConfigPath(path string) {
	configPath = path
}

// Game adapts the dodge engine to the arcade platform.
type Game struct {
	cfg       config.DodgeConfig
	engine    *Engine
	now       func() time.Time
	highScore int

	// Remaining hold ticks per direction
	holdUp, holdDown, holdLeft, holdRight int

	screenW  int
	screenH  int
	tooSmall bool
}

// New creates a new dodge game.
func New() *Game {
	return &Game{now: time.Now}
}

func init() {
	registry.Register("dodge", func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string { return "dodge" }

// Title returns the display name.
func (g *Game) Title() string { return "Dodge" }

// Reset starts a fresh round.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	dc, err := config.LoadDodge(configPath)
	if err != nil {
		dc = config.DefaultDodgeConfig()
	}
	g.cfg = dc

	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.holdUp, g.holdDown, g.holdLeft, g.holdRight = 0, 0, 0, 0
	g.tooSmall = g.screenW < 30 || g.screenH < 12

	g.engine = NewEngine(dc, rand.New(rand.NewSource(cfg.Seed)), g.now)
	g.engine.SetHighScore(g.highScore)
	g.engine.Start()
}

// Step samples input and runs one physics frame.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		switch g.engine.Status() {
		case StatusPlaying:
			g.engine.Pause()
		case StatusPaused:
			g.engine.Resume()
		}
	}

	if g.engine.Status() != StatusPlaying {
		return core.StepResult{State: g.State()}
	}

	g.engine.Frame(g.sampleInput(in))

	if g.engine.Status() == StatusEnded {
		g.highScore = g.engine.HighScore()
	}
	return core.StepResult{State: g.State()}
}

// sampleInput refreshes held directions from this frame's presses.
func (g *Game) sampleInput(in core.InputFrame) Input {
	hold := func(counter *int, a core.Action) bool {
		if in.Has(a) {
			*counter = keyHoldTicks
		}
		if *counter > 0 {
			*counter--
			return true
		}
		return false
	}

	// A press cancels the opposite direction
	if in.Has(core.ActionUp) {
		g.holdDown = 0
	}
	if in.Has(core.ActionDown) {
		g.holdUp = 0
	}
	if in.Has(core.ActionLeft) {
		g.holdRight = 0
	}
	if in.Has(core.ActionRight) {
		g.holdLeft = 0
	}

	return Input{
		Up:    hold(&g.holdUp, core.ActionUp),
		Down:  hold(&g.holdDown, core.ActionDown),
		Left:  hold(&g.holdLeft, core.ActionLeft),
		Right: hold(&g.holdRight, core.ActionRight),
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:     g.engine.Score(),
		HighScore: g.engine.HighScore(),
		GameOver:  g.engine.Status() == StatusEnded,
		Paused:    g.engine.Status() == StatusPaused || g.tooSmall,
	}
}

// Snapshot returns the end-of-round state submitted to the leaderboard.
func (g *Game) Snapshot() map[string]any {
	return g.engine.Snapshot()
}

// HighScoreKey returns the local preference key for the best score.
func (g *Game) HighScoreKey() string { return HighScoreKey }

// SetHighScore seeds the best score loaded from local storage.
func (g *Game) SetHighScore(score int) {
	if score > g.highScore {
		g.highScore = score
	}
	if g.engine != nil {
		g.engine.SetHighScore(score)
	}
}

// Render draws the arena scaled into the terminal.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		dst.DrawTextCentered(g.screenH/2, "Window too small")
		dst.DrawTextCentered(g.screenH/2+1, "Please resize terminal")
		return
	}

	g.renderHUD(dst)

	field := core.NewRect(0, hudHeight, g.screenW, g.screenH-hudHeight)
	dst.DrawBox(field)

	arena := g.engine.Arena()
	for _, p := range arena.Projectiles {
		x, y, ok := g.toScreen(p.Pos, field)
		if !ok {
			continue
		}
		dst.SetColored(x, y, projectileGlyph(p), projectileColor(p.Size, g.cfg.Projectiles))
	}

	px, py, _ := g.toScreen(arena.Player.Pos, field)
	playerColor := core.ColorBrightCyan
	if !arena.Player.Alive {
		playerColor = core.ColorBrightRed
	}
	dst.SetColored(px, py, '@', playerColor)

	switch g.engine.Status() {
	case StatusPaused:
		dst.DrawMessageBox("PAUSED", "P to resume")
	case StatusEnded:
		dst.DrawMessageBox("HIT!", fmt.Sprintf("Survived %ds  R to restart", g.engine.Score()))
	}
}

func (g *Game) renderHUD(dst *core.Screen) {
	arena := g.engine.Arena()
	left := fmt.Sprintf("DODGE  Time %.1fs  Level %d", arena.Survival().Seconds(), arena.Difficulty())
	dst.DrawText(1, 0, left)

	right := fmt.Sprintf("Best: %ds", g.engine.HighScore())
	dst.DrawText(g.screenW-len(right)-1, 0, right)

	dst.DrawTextColored(1, 1, "Arrows/WASD move  P pause  Q quit", core.ColorGray)
}

// toScreen maps an arena point to a cell inside field's border. Points
// outside the arena (projectiles still entering or leaving) are not drawn.
func (g *Game) toScreen(p core.Vec2, field core.Rect) (int, int, bool) {
	if !g.engine.Arena().Bounds().Contains(p) {
		return 0, 0, false
	}
	innerW := field.W - 2
	innerH := field.H - 2
	x := field.X + 1 + int(p.X/g.cfg.Arena.Width*float64(innerW-1)+0.5)
	y := field.Y + 1 + int(p.Y/g.cfg.Arena.Height*float64(innerH-1)+0.5)
	return x, y, true
}

var spinGlyphs = []rune{'|', '/', '-', '\\'}

func projectileGlyph(p Projectile) rune {
	turn := math.Mod(p.Rotation, 2*math.Pi)
	if turn < 0 {
		turn += 2 * math.Pi
	}
	return spinGlyphs[int(turn/(math.Pi/2))%len(spinGlyphs)]
}

func projectileColor(size float64, pc config.DodgeProjectiles) core.Color {
	switch {
	case size >= pc.BaseSize:
		return core.ColorOrange
	case size > pc.MinSize:
		return core.ColorYellow
	default:
		return core.ColorRed
	}
}
