package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/minigames/internal/core"
	"github.com/vovakirdan/minigames/internal/leaderboard"
	"github.com/vovakirdan/minigames/internal/registry"
	"github.com/vovakirdan/minigames/internal/storage"
)

// fakeGame reports whatever state the test sets.
type fakeGame struct {
	id       string
	score    int
	best     int
	over     bool
	resets   int
	steps    int
	snapshot map[string]any
}

func (g *fakeGame) ID() string    { return g.id }
func (g *fakeGame) Title() string { return "Fake" }

func (g *fakeGame) Reset(core.RuntimeConfig) {
	g.resets++
	g.over = false
}

func (g *fakeGame) Step(core.InputFrame) core.StepResult {
	g.steps++
	return core.StepResult{State: g.State()}
}

func (g *fakeGame) Render(dst *core.Screen) { dst.Clear() }

func (g *fakeGame) State() core.GameState {
	return core.GameState{Score: g.score, HighScore: g.best, GameOver: g.over}
}

func (g *fakeGame) Snapshot() map[string]any { return g.snapshot }
func (g *fakeGame) HighScoreKey() string     { return g.id + "-high-score" }
func (g *fakeGame) SetHighScore(score int)   { g.best = score }

func init() {
	registry.Register("tui-test", func() registry.Game {
		return &fakeGame{id: "tui-test"}
	})
}

func tileMatchGame(score int) *fakeGame {
	return &fakeGame{
		id:       "tilematch",
		score:    score,
		snapshot: map[string]any{"score": score, "timeLeft": 0, "rows": 10, "cols": 20, "selected": 0},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		key    string
		action core.Action
		quit   bool
	}{
		{"up", core.ActionUp, false},
		{"w", core.ActionUp, false},
		{"s", core.ActionDown, false},
		{"a", core.ActionLeft, false},
		{"d", core.ActionRight, false},
		{" ", core.ActionSelect, false},
		{"enter", core.ActionConfirm, false},
		{"p", core.ActionPause, false},
		{"esc", core.ActionBack, false},
		{"r", core.ActionRestart, false},
		{"q", core.ActionQuit, true},
		{"ctrl+c", core.ActionQuit, true},
		{"x", core.ActionNone, false},
	}

	for _, tt := range tests {
		action, quit := km.MapKey(keyMsg(tt.key))
		if action != tt.action || quit != tt.quit {
			t.Errorf("MapKey(%q) = %v, %v, want %v, %v", tt.key, action, quit, tt.action, tt.quit)
		}
	}

	if got := km.MapKeyToMenuAction(keyMsg("tab")); got != MenuActionScoreboard {
		t.Errorf("MapKeyToMenuAction(tab) = %v, want MenuActionScoreboard", got)
	}
}

func TestPlayerName(t *testing.T) {
	tests := []struct {
		user     string
		expected string
	}{
		{"kim", "kim"},
		{"kim.lee", "kimlee"},
		{"홍길동", "홍길동"},
		{"root@host", "roothost"},
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst"},
		{"...", ""},
	}

	for _, tt := range tests {
		if got := PlayerName(tt.user); got != tt.expected {
			t.Errorf("PlayerName(%q) = %q, want %q", tt.user, got, tt.expected)
		}
		if _, err := leaderboard.SanitizeName(&tt.expected); err != nil {
			t.Errorf("SanitizeName(%q) error = %v", tt.expected, err)
		}
	}
}

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		expected string
	}{
		{"nothing", Outcome{}, ""},
		{"best only", Outcome{NewBest: true}, "New best!"},
		{"ranked best", Outcome{NewBest: true, Submitted: true, Rank: 2}, "New best! Leaderboard rank #2"},
		{"ranked", Outcome{Submitted: true, Rank: 7}, "Leaderboard rank #7"},
		{"unranked", Outcome{Submitted: true}, "Score submitted"},
		{"duplicate", Outcome{Err: leaderboard.ErrDuplicateScore}, "Score already submitted"},
		{"other error", Outcome{Err: errors.New("boom")}, "Leaderboard: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Message(); got != tt.expected {
				t.Errorf("Message() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	store := openStore(t)
	gate, err := NewLocalGate(store)
	if err != nil {
		t.Fatalf("NewLocalGate() error = %v", err)
	}
	rec := NewRecorder(store, gate, "", "Kim")

	g := tileMatchGame(120)
	rec.LoadBest(g)
	if g.best != 0 {
		t.Errorf("best before any round = %d, want 0", g.best)
	}

	out := rec.Finish(g, core.GameState{Score: 120, GameOver: true})
	if out.Err != nil {
		t.Fatalf("Finish() error = %v", out.Err)
	}
	if !out.NewBest || !out.Submitted || out.Rank != 1 {
		t.Errorf("Finish() = %+v, want new best, submitted, rank 1", out)
	}

	// Same score from the same client inside the duplicate window
	again := rec.Finish(g, core.GameState{Score: 120, GameOver: true})
	if !errors.Is(again.Err, leaderboard.ErrDuplicateScore) {
		t.Errorf("repeat Finish() error = %v, want ErrDuplicateScore", again.Err)
	}
	if again.NewBest {
		t.Error("repeat Finish() should not report a new best")
	}

	fresh := tileMatchGame(0)
	rec.LoadBest(fresh)
	if fresh.best != 120 {
		t.Errorf("LoadBest() = %d, want 120", fresh.best)
	}

	top, err := gate.Top(t.Context(), "tilematch")
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 1 || top[0].PlayerName != "Kim" || top[0].Score != 120 {
		t.Errorf("Top() = %+v, want one entry for Kim with 120", top)
	}
}

func TestRecorderSubmitsAfterLongRound(t *testing.T) {
	store := openStore(t)
	gate, err := NewLocalGate(store)
	if err != nil {
		t.Fatalf("NewLocalGate() error = %v", err)
	}
	now := time.Now()
	gate.WithClock(func() time.Time { return now })
	rec := NewRecorder(store, gate, "", "Lee")

	g := tileMatchGame(90)
	rec.LoadBest(g)

	// Longer than the tile-match session lifetime
	now = now.Add(11 * time.Minute)

	out := rec.Finish(g, core.GameState{Score: 90, GameOver: true})
	if out.Err != nil {
		t.Fatalf("Finish() error = %v", out.Err)
	}
	if !out.Submitted || out.Rank != 1 {
		t.Errorf("Finish() = %+v, want submitted at rank 1", out)
	}
}

func TestRecorderSkipsZeroScore(t *testing.T) {
	store := openStore(t)
	gate, err := NewLocalGate(store)
	if err != nil {
		t.Fatalf("NewLocalGate() error = %v", err)
	}
	rec := NewRecorder(store, gate, "10.0.0.1", "")

	out := rec.Finish(tileMatchGame(0), core.GameState{GameOver: true})
	if out.Submitted || out.Err != nil {
		t.Errorf("Finish() = %+v, want nothing submitted", out)
	}
}

func TestNilRecorderIsOffline(t *testing.T) {
	var rec *Recorder
	g := tileMatchGame(50)

	rec.LoadBest(g)
	if out := rec.Finish(g, g.State()); out != (Outcome{}) {
		t.Errorf("Finish() = %+v, want zero outcome", out)
	}
}

func TestRankOf(t *testing.T) {
	top := []leaderboard.Entry{
		{PlayerName: "Lee", Score: 300, Timestamp: 1},
		{PlayerName: "Kim", Score: 200, Timestamp: 2},
		{PlayerName: "Kim", Score: 200, Timestamp: 5},
		{PlayerName: "Anonymous", Score: 100, Timestamp: 3},
	}

	tests := []struct {
		player   string
		score    int
		expected int
	}{
		{"Kim", 200, 3},
		{"Lee", 300, 1},
		{"", 100, 4},
		{"Park", 200, 0},
	}
	for _, tt := range tests {
		if got := rankOf(top, tt.player, tt.score); got != tt.expected {
			t.Errorf("rankOf(%q, %d) = %d, want %d", tt.player, tt.score, got, tt.expected)
		}
	}
}

func TestGameModelLifecycle(t *testing.T) {
	g := tileMatchGame(40)
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}
	m := NewGameModel(g, nil, cfg)
	m.Init()
	if g.resets != 1 {
		t.Fatalf("Init() resets = %d, want 1", g.resets)
	}

	// Back is ignored while a round is live
	next, _ := m.Update(keyMsg("esc"))
	m = next.(GameModel)
	if m.BackToMenu() {
		t.Error("Back during play should be ignored")
	}

	g.over = true
	next, _ = m.Update(TickMsg{})
	m = next.(GameModel)
	if !m.recorded {
		t.Error("game over tick should record the round")
	}

	next, _ = m.Update(outcomeMsg{round: 0, outcome: Outcome{NewBest: true}})
	m = next.(GameModel)
	if m.Status() != "New best!" {
		t.Errorf("Status() = %q, want New best!", m.Status())
	}

	// Restart opens round 1 and drops stale results
	next, _ = m.Update(keyMsg("r"))
	m = next.(GameModel)
	next, _ = m.Update(TickMsg{})
	m = next.(GameModel)
	if g.resets != 2 || m.round != 1 || m.Status() != "" || m.recorded {
		t.Errorf("after restart: resets=%d round=%d status=%q recorded=%v", g.resets, m.round, m.Status(), m.recorded)
	}

	next, _ = m.Update(outcomeMsg{round: 0, outcome: Outcome{NewBest: true}})
	m = next.(GameModel)
	if m.Status() != "" {
		t.Errorf("stale outcome applied: %q", m.Status())
	}

	g.over = true
	next, _ = m.Update(TickMsg{})
	m = next.(GameModel)
	next, _ = m.Update(keyMsg("b"))
	m = next.(GameModel)
	if !m.BackToMenu() {
		t.Error("Back after game over should return to the menu")
	}
}

func TestGameModelQuit(t *testing.T) {
	m := NewGameModel(tileMatchGame(0), nil, core.DefaultConfig())
	m.Init()

	next, cmd := m.Update(keyMsg("q"))
	m = next.(GameModel)
	if !m.IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestGameModelResizeRestartsLiveRound(t *testing.T) {
	g := tileMatchGame(0)
	m := NewGameModel(g, nil, core.DefaultConfig())
	m.Init()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(GameModel)
	if g.resets != 1 {
		t.Errorf("same-size resize resets = %d, want 1", g.resets)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(GameModel)
	if g.resets != 2 || m.round != 1 {
		t.Errorf("resize: resets=%d round=%d, want 2 and 1", g.resets, m.round)
	}
}

func TestSessionModelNavigation(t *testing.T) {
	cfg := core.DefaultConfig()
	m := NewSessionModel(nil, nil, cfg)

	// Move the cursor to the test game
	for i, item := range m.menu.items {
		if item.GameID == "tui-test" {
			m.menu.cursor = i
		}
	}

	next, _ := m.Update(keyMsg("enter"))
	m = next.(SessionModel)
	if m.gameModel == nil {
		t.Fatal("selecting a game should start it")
	}
	if m.gameModel.game.ID() != "tui-test" {
		t.Errorf("started %q, want tui-test", m.gameModel.game.ID())
	}

	// End the round and go back
	m.gameModel.game.(*fakeGame).over = true
	next, _ = m.Update(TickMsg{})
	m = next.(SessionModel)
	next, _ = m.Update(keyMsg("b"))
	m = next.(SessionModel)
	if m.gameModel != nil {
		t.Fatal("Back after game over should return to the menu")
	}

	next, _ = m.Update(keyMsg("tab"))
	m = next.(SessionModel)
	if m.scoreboard == nil {
		t.Fatal("tab should open the scoreboard")
	}
	if m.View() == "" {
		t.Error("scoreboard view is empty")
	}

	next, _ = m.Update(keyMsg("esc"))
	m = next.(SessionModel)
	if m.scoreboard != nil {
		t.Error("esc should leave the scoreboard")
	}

	next, _ = m.Update(keyMsg("q"))
	m = next.(SessionModel)
	if !m.quitting {
		t.Error("q should end the session")
	}
}

type entrySource struct {
	entries map[string][]leaderboard.Entry
	err     error
	calls   int
}

func (s *entrySource) TopEntries(_ context.Context, game string, _ int) ([]leaderboard.Entry, error) {
	s.calls++
	return s.entries[game], s.err
}

func TestScoreboardModel(t *testing.T) {
	src := &entrySource{entries: map[string][]leaderboard.Entry{
		"tui-test": {{PlayerName: "Kim", Score: 300, Timestamp: 1}, {PlayerName: "Lee", Score: 200, Timestamp: 2}},
	}}
	m := NewScoreboardModel(src, 80, 24)

	if src.calls != 1 {
		t.Errorf("TopEntries() calls = %d, want 1", src.calls)
	}
	var sel int
	for i, g := range m.games {
		if g.ID == "tui-test" {
			sel = i
		}
	}
	m.game = sel
	m.reload()
	if len(m.table.Rows()) != 2 || m.table.Rows()[0][1] != "Kim" {
		t.Errorf("rows = %v, want Kim first of 2", m.table.Rows())
	}
	if !strings.Contains(m.View(), "Kim") {
		t.Error("View() should list the entries")
	}

	next, _ := m.Update(keyMsg("tab"))
	m = next.(ScoreboardModel)
	if want := (sel + 1) % len(m.games); m.game != want {
		t.Errorf("game after tab = %d, want %d", m.game, want)
	}

	src.err = errors.New("offline")
	m.reload()
	if !strings.Contains(m.View(), "unavailable") {
		t.Error("View() should report a failed load")
	}

	next, _ = m.Update(keyMsg("esc"))
	m = next.(ScoreboardModel)
	if !m.IsGoingBack() || m.IsQuitting() {
		t.Error("esc should go back without quitting")
	}
}

func TestScoreboardWithoutSource(t *testing.T) {
	m := NewScoreboardModel(nil, 60, 20)
	if !strings.Contains(m.View(), "No scores yet") {
		t.Errorf("View() = %q, want the empty message", m.View())
	}
}

func TestRenderScreenHighlight(t *testing.T) {
	s := core.NewScreen(4, 1)
	s.DrawText(0, 0, "ab")
	s.SetColored(2, 0, '7', core.ColorHighlight)

	out := RenderScreen(s)
	if out == "" {
		t.Fatal("RenderScreen() returned empty output")
	}
	if _, ok := colorStyles[core.ColorHighlight]; !ok {
		t.Error("highlight color has no style")
	}
	if got := styleFor(core.Color(250)).Render("x"); got != "x" {
		t.Errorf("unknown color rendered %q, want plain", got)
	}
}
