package tilematch

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/core"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(config.DefaultTileMatchConfig(), rand.New(rand.NewSource(1)))
	e.Start()
	return e
}

func setValue(e *Engine, row, col, v int) {
	e.grid.tiles[row][col].Value = v
}

func TestIsConnected(t *testing.T) {
	tests := []struct {
		name     string
		cells    []Pos
		expected bool
	}{
		{"empty", nil, true},
		{"single", []Pos{{0, 0}}, true},
		{"horizontal pair", []Pos{{0, 0}, {0, 1}}, true},
		{"vertical pair", []Pos{{0, 0}, {1, 0}}, true},
		{"diagonal pair", []Pos{{0, 0}, {1, 1}}, false},
		{"gap", []Pos{{0, 0}, {0, 2}}, false},
		{"L shape", []Pos{{0, 0}, {1, 0}, {1, 1}, {1, 2}}, true},
		{"bridged out of order", []Pos{{0, 0}, {0, 2}, {0, 1}}, true},
		{"two islands", []Pos{{0, 0}, {0, 1}, {5, 5}, {5, 6}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnected(tt.cells); got != tt.expected {
				t.Errorf("IsConnected(%v) = %v, want %v", tt.cells, got, tt.expected)
			}
		})
	}
}

func TestNewGridValuesInRange(t *testing.T) {
	g := NewGrid(10, 20, 1, 9, rand.New(rand.NewSource(42)))
	if g.Rows() != 10 || g.Cols() != 20 {
		t.Fatalf("grid is %dx%d, want 10x20", g.Rows(), g.Cols())
	}
	for r := range g.Rows() {
		for c := range g.Cols() {
			v := g.At(Pos{r, c}).Value
			if v < 1 || v > 9 {
				t.Errorf("tile (%d,%d) = %d, want 1..9", r, c, v)
			}
		}
	}
}

func TestSelectPairClears(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 0, 0, 3)
	setValue(e, 0, 1, 7)

	if out := e.Select(0, 0); out.Kind != OutcomeAdded {
		t.Fatalf("first Select kind = %v, want added", out.Kind)
	}
	out := e.Select(0, 1)
	if out.Kind != OutcomeCleared || out.Tiles != 2 || out.Points != 20 {
		t.Errorf("Select = %+v, want cleared 2 tiles for 20", out)
	}
	if e.Score() != 20 {
		t.Errorf("Score() = %d, want 20", e.Score())
	}
	if len(e.Selection()) != 0 {
		t.Errorf("selection should be empty after a clear, got %v", e.Selection())
	}
	if e.Grid().At(Pos{0, 0}).Selected || e.Grid().At(Pos{0, 1}).Selected {
		t.Error("cleared tiles should not stay selected")
	}
}

func TestSelectTripleScoresPerTile(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 2, 2, 2)
	setValue(e, 2, 3, 3)
	setValue(e, 3, 3, 5)

	e.Select(2, 2)
	e.Select(2, 3)
	out := e.Select(3, 3)

	if out.Kind != OutcomeCleared || out.Points != 30 {
		t.Errorf("Select = %+v, want cleared for 30", out)
	}
	if e.Score() != 30 {
		t.Errorf("Score() = %d, want 30", e.Score())
	}
}

func TestSelectOverflowDropsSelection(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 0, 0, 6)
	setValue(e, 0, 1, 5)

	e.Select(0, 0)
	out := e.Select(0, 1)

	if out.Kind != OutcomeOverflow {
		t.Errorf("Select kind = %v, want overflow", out.Kind)
	}
	if e.Score() != 0 {
		t.Errorf("Score() = %d, want 0", e.Score())
	}
	if len(e.Selection()) != 0 {
		t.Errorf("selection = %v, want empty", e.Selection())
	}
	if e.Grid().At(Pos{0, 0}).Value != 6 || e.Grid().At(Pos{0, 1}).Value != 5 {
		t.Error("overflow must not regenerate tiles")
	}
}

func TestSelectDisconnectedIgnored(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 0, 0, 1)
	setValue(e, 0, 2, 1)

	e.Select(0, 0)
	if out := e.Select(0, 2); out.Kind != OutcomeIgnored {
		t.Errorf("Select kind = %v, want ignored", out.Kind)
	}
	if sel := e.Selection(); len(sel) != 1 || sel[0] != (Pos{0, 0}) {
		t.Errorf("selection = %v, want [{0 0}]", sel)
	}
	if e.Grid().At(Pos{0, 2}).Selected {
		t.Error("rejected tile should not be marked selected")
	}
}

func TestSelectOutOfRangeIgnored(t *testing.T) {
	e := newTestEngine(t)
	for _, p := range []Pos{{-1, 0}, {0, -1}, {10, 0}, {0, 20}} {
		if out := e.Select(p.Row, p.Col); out.Kind != OutcomeIgnored {
			t.Errorf("Select(%d,%d) kind = %v, want ignored", p.Row, p.Col, out.Kind)
		}
	}
}

func TestDeselectKeepsRemainingTiles(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 0, 0, 1)
	setValue(e, 0, 1, 1)
	setValue(e, 0, 2, 1)

	e.Select(0, 0)
	e.Select(0, 1)
	e.Select(0, 2)

	if out := e.Select(0, 1); out.Kind != OutcomeRemoved {
		t.Fatalf("Select kind = %v, want removed", out.Kind)
	}
	sel := e.Selection()
	if len(sel) != 2 || sel[0] != (Pos{0, 0}) || sel[1] != (Pos{0, 2}) {
		t.Errorf("selection = %v, want [{0 0} {0 2}]", sel)
	}
	if e.Sum() != 2 {
		t.Errorf("Sum() = %d, want 2", e.Sum())
	}
}

func TestRandomClicksKeepInvariants(t *testing.T) {
	e := newTestEngine(t)
	rng := rand.New(rand.NewSource(7))

	for i := range 20000 {
		prevScore := e.Score()
		out := e.Select(rng.Intn(4), rng.Intn(4))

		if !IsConnected(e.Selection()) {
			t.Fatalf("click %d: selection %v is not connected", i, e.Selection())
		}
		if e.Sum() >= 10 {
			t.Fatalf("click %d: committed sum %d, want < 10", i, e.Sum())
		}
		if e.Score()%10 != 0 {
			t.Fatalf("click %d: score %d not a multiple of 10", i, e.Score())
		}
		if out.Kind == OutcomeCleared && e.Score()-prevScore != 10*out.Tiles {
			t.Fatalf("click %d: cleared %d tiles but gained %d", i, out.Tiles, e.Score()-prevScore)
		}
		if out.Kind != OutcomeCleared && e.Score() != prevScore {
			t.Fatalf("click %d: score changed on %v", i, out.Kind)
		}
	}

	for r := range e.Grid().Rows() {
		for c := range e.Grid().Cols() {
			if v := e.Grid().At(Pos{r, c}).Value; v < 1 || v > 9 {
				t.Fatalf("tile (%d,%d) = %d after play, want 1..9", r, c, v)
			}
		}
	}
}

func TestTimerEndsRound(t *testing.T) {
	cfg := config.DefaultTileMatchConfig()
	cfg.Rules.Duration = 3 * time.Second
	e := NewEngine(cfg, rand.New(rand.NewSource(1)))
	e.Start()

	setValue(e, 0, 0, 4)
	setValue(e, 0, 1, 6)
	e.Select(0, 0)
	e.Select(0, 1)

	e.Tick()
	e.Tick()
	if e.Status() != StatusPlaying || e.TimeLeft() != 1 {
		t.Fatalf("after 2 ticks: status %v, timeLeft %d", e.Status(), e.TimeLeft())
	}
	e.Tick()
	if e.Status() != StatusEnded || e.TimeLeft() != 0 {
		t.Errorf("after 3 ticks: status %v, timeLeft %d, want ended at 0", e.Status(), e.TimeLeft())
	}
	if e.HighScore() != 20 {
		t.Errorf("HighScore() = %d, want 20", e.HighScore())
	}

	e.Tick()
	if e.TimeLeft() != 0 {
		t.Error("Tick after the round ended should do nothing")
	}
	if out := e.Select(1, 1); out.Kind != OutcomeIgnored {
		t.Error("Select after the round ended should be ignored")
	}
}

func TestPauseFreezesRound(t *testing.T) {
	e := newTestEngine(t)
	start := e.TimeLeft()

	e.Pause()
	if e.Status() != StatusPaused {
		t.Fatalf("Status() = %v, want paused", e.Status())
	}
	e.Tick()
	if e.TimeLeft() != start {
		t.Errorf("TimeLeft() = %d while paused, want %d", e.TimeLeft(), start)
	}
	if out := e.Select(0, 0); out.Kind != OutcomeIgnored {
		t.Error("Select while paused should be ignored")
	}

	e.Resume()
	e.Tick()
	if e.TimeLeft() != start-1 {
		t.Errorf("TimeLeft() = %d after resume, want %d", e.TimeLeft(), start-1)
	}
}

func TestStartResetsOnlyFromIdleOrEnded(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 0, 0, 5)
	setValue(e, 0, 1, 5)
	e.Select(0, 0)
	e.Select(0, 1)
	e.Tick()

	e.Start()
	if e.Score() != 10 {
		t.Errorf("Start while playing reset the score to %d", e.Score())
	}

	e.End()
	e.Start()
	if e.Score() != 0 || e.TimeLeft() != 120 || e.Status() != StatusPlaying {
		t.Errorf("restart: score %d, timeLeft %d, status %v", e.Score(), e.TimeLeft(), e.Status())
	}
	if e.HighScore() != 10 {
		t.Errorf("HighScore() = %d, want 10 kept across rounds", e.HighScore())
	}
}

func TestOnClearCue(t *testing.T) {
	e := newTestEngine(t)
	var gotTiles, gotPoints int
	e.OnClear = func(tiles, points int) {
		gotTiles, gotPoints = tiles, points
	}
	setValue(e, 4, 4, 9)
	setValue(e, 5, 4, 1)
	e.Select(4, 4)
	e.Select(5, 4)

	if gotTiles != 2 || gotPoints != 20 {
		t.Errorf("OnClear(%d, %d), want (2, 20)", gotTiles, gotPoints)
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine(t)
	setValue(e, 0, 0, 2)
	e.Select(0, 0)

	s := e.Snapshot()
	if s["rows"] != 10 || s["cols"] != 20 || s["selected"] != 1 || s["score"] != 0 || s["timeLeft"] != 120 {
		t.Errorf("Snapshot() = %v", s)
	}
}

func TestGameCursorSelectsTiles(t *testing.T) {
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1})

	setValue(g.engine, 0, 1, 4)

	right := core.NewInputFrame()
	right.Set(core.ActionRight)
	g.Step(right)

	sel := core.NewInputFrame()
	sel.Set(core.ActionSelect)
	g.Step(sel)

	if s := g.engine.Selection(); len(s) != 1 || s[0] != (Pos{0, 1}) {
		t.Errorf("selection = %v, want [{0 1}]", s)
	}
}

func TestGameClockAndPause(t *testing.T) {
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 2, Seed: 1})
	start := g.engine.TimeLeft()

	empty := core.NewInputFrame()
	g.Step(empty)
	g.Step(empty)
	if g.engine.TimeLeft() != start-1 {
		t.Errorf("TimeLeft() = %d after one second of ticks, want %d", g.engine.TimeLeft(), start-1)
	}

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	if !g.Step(pause).State.Paused {
		t.Error("state should be paused")
	}
	g.Step(empty)
	g.Step(empty)
	if g.engine.TimeLeft() != start-1 {
		t.Error("clock advanced while paused")
	}
}

func TestGameRender(t *testing.T) {
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1})

	scr := core.NewScreen(80, 24)
	g.Render(scr)

	if scr.Row(0) == "" {
		t.Error("render produced an empty title row")
	}
	boardX := (80 - 20*cellWidth) / 2
	if got := scr.Get(boardX, hudHeight); got != '[' {
		t.Errorf("cursor cell = %q, want '['", got)
	}
}

func TestGameTooSmall(t *testing.T) {
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 30, ScreenH: 10, TickRate: 60, Seed: 1})
	if !g.State().Paused {
		t.Error("a too-small screen should report paused")
	}
}
