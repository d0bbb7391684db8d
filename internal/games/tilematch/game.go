// Package tilematch implements the sum-to-ten tile puzzle: select a connected
// group of numbered tiles adding up to exactly ten before the clock runs out.
package tilematch

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/core"
	"github.com/vovakirdan/minigames/internal/registry"
)

const (
	// HighScoreKey is the local preference key holding the best score.
	HighScoreKey = "tilematch-high-score"

	cellWidth  = 3 // " 5 " or "[5]" under the cursor
	hudHeight  = 3
	flashTicks = 30
)

var configPath string

// SetConfigPath sets a custom config file path used on the next Reset.
func SetConfigPath(path string) {
	configPath = path
}

// Game adapts the tile-match engine to the arcade platform.
type Game struct {
	cfg       config.TileMatchConfig
	engine    *Engine
	cursor    Pos
	highScore int

	tickRate    int
	tickCounter int

	screenW  int
	screenH  int
	tooSmall bool

	flash      int // Ticks left on the "+N" cue
	lastPoints int
}

// New creates a new tile-match game.
func New() *Game {
	return &Game{}
}

func init() {
	registry.Register("tilematch", func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string { return "tilematch" }

// Title returns the display name.
func (g *Game) Title() string { return "Tile Match" }

// Reset starts a fresh round.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	tm, err := config.LoadTileMatch(configPath)
	if err != nil {
		tm = config.DefaultTileMatchConfig()
	}
	g.cfg = tm

	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tickRate = cfg.TickRate
	if g.tickRate <= 0 {
		g.tickRate = 60
	}
	g.tickCounter = 0
	g.flash = 0
	g.cursor = Pos{}

	g.engine = NewEngine(tm, rand.New(rand.NewSource(cfg.Seed)))
	g.engine.SetHighScore(g.highScore)
	g.engine.OnClear = func(_, points int) {
		g.lastPoints = points
		g.flash = flashTicks
	}
	g.engine.Start()

	g.checkScreenSize()
}

func (g *Game) checkScreenSize() {
	minW := g.cfg.Grid.Cols*cellWidth + 2
	minH := g.cfg.Grid.Rows + hudHeight + 2
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one platform tick.
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

	g.moveCursor(in)

	if in.Has(core.ActionSelect) || in.Has(core.ActionConfirm) {
		g.engine.Select(g.cursor.Row, g.cursor.Col)
	}

	if g.flash > 0 {
		g.flash--
	}

	// One engine second per TickRate platform ticks
	g.tickCounter++
	if g.tickCounter >= g.tickRate {
		g.tickCounter = 0
		g.engine.Tick()
		if g.engine.Status() == StatusEnded {
			g.highScore = g.engine.HighScore()
		}
	}

	return core.StepResult{State: g.State()}
}

func (g *Game) moveCursor(in core.InputFrame) {
	switch {
	case in.Has(core.ActionUp):
		g.cursor.Row--
	case in.Has(core.ActionDown):
		g.cursor.Row++
	case in.Has(core.ActionLeft):
		g.cursor.Col--
	case in.Has(core.ActionRight):
		g.cursor.Col++
	}
	g.cursor.Row = core.Clamp(g.cursor.Row, 0, g.cfg.Grid.Rows-1)
	g.cursor.Col = core.Clamp(g.cursor.Col, 0, g.cfg.Grid.Cols-1)
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

// Render draws the board, HUD and overlays.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		dst.DrawTextCentered(g.screenH/2, "Window too small")
		dst.DrawTextCentered(g.screenH/2+1, "Please resize terminal")
		return
	}

	boardW := g.cfg.Grid.Cols * cellWidth
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight

	g.renderHUD(dst, boardX, boardW)
	g.renderBoard(dst, boardX, boardY)

	switch g.engine.Status() {
	case StatusPaused:
		dst.DrawMessageBox("PAUSED", "P to resume")
	case StatusEnded:
		dst.DrawMessageBox("TIME UP", fmt.Sprintf("Score %d  R to restart", g.engine.Score()))
	}
}

func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	dst.DrawTextCentered(0, "TILE MATCH")

	left := fmt.Sprintf("Score: %d  Best: %d", g.engine.Score(), g.engine.HighScore())
	dst.DrawText(boardX, 1, left)

	t := g.engine.TimeLeft()
	timeColor := core.ColorDefault
	if t <= 10 {
		timeColor = core.ColorBrightRed
	}
	right := fmt.Sprintf("Time %d:%02d", t/60, t%60)
	dst.DrawTextColored(boardX+boardW-len(right), 1, right, timeColor)

	sum := fmt.Sprintf("Sum %d/%d", g.engine.Sum(), g.cfg.Rules.TargetSum)
	dst.DrawText(boardX, 2, sum)
	if g.flash > 0 {
		dst.DrawTextColored(boardX+len(sum)+2, 2, fmt.Sprintf("+%d", g.lastPoints), core.ColorBrightGreen)
	}
}

func (g *Game) renderBoard(dst *core.Screen, boardX, boardY int) {
	grid := g.engine.Grid()
	for r := range grid.Rows() {
		for c := range grid.Cols() {
			p := Pos{Row: r, Col: c}
			tile := grid.At(p)
			x := boardX + c*cellWidth
			y := boardY + r

			color := valueColor(tile.Value)
			if tile.Selected {
				color = core.ColorHighlight
			}

			left, right := ' ', ' '
			if p == g.cursor {
				left, right = '[', ']'
			}
			dst.SetColored(x, y, left, color)
			dst.SetColored(x+1, y, rune('0'+tile.Value), color)
			dst.SetColored(x+2, y, right, color)
		}
	}
}

func valueColor(v int) core.Color {
	switch v {
	case 1, 9:
		return core.ColorCyan
	case 2, 8:
		return core.ColorGreen
	case 3, 7:
		return core.ColorYellow
	case 4, 6:
		return core.ColorMagenta
	default:
		return core.ColorOrange
	}
}
