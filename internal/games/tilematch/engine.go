package tilematch

import (
	"math/rand"

	"github.com/vovakirdan/minigames/internal/config"
)

// Status is the engine's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusEnded
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// OutcomeKind describes what a Select call did.
type OutcomeKind int

const (
	OutcomeIgnored  OutcomeKind = iota // Input rejected, nothing changed
	OutcomeAdded                       // Tile joined the selection, sum below target
	OutcomeRemoved                     // Tile left the selection
	OutcomeCleared                     // Sum hit the target, tiles regenerated
	OutcomeOverflow                    // Sum passed the target, selection dropped
)

// Outcome is the result of a Select call.
type Outcome struct {
	Kind   OutcomeKind
	Tiles  int // Tiles cleared (OutcomeCleared only)
	Points int // Score gained (OutcomeCleared only)
}

// Engine is the tile-match state machine: Idle -> Playing <-> Paused -> Ended.
// It is not safe for concurrent use; the platform drives it from one loop.
type Engine struct {
	cfg       config.TileMatchConfig
	rng       *rand.Rand
	grid      *Grid
	selection []Pos
	score     int
	highScore int
	timeLeft  int // Seconds
	status    Status

	// OnClear, when set, fires after every successful match (the success cue).
	OnClear func(tiles, points int)
}

// NewEngine creates an idle engine with a freshly generated grid.
func NewEngine(cfg config.TileMatchConfig, rng *rand.Rand) *Engine {
	e := &Engine{cfg: cfg, rng: rng}
	e.resetBoard()
	return e
}

func (e *Engine) resetBoard() {
	g := e.cfg.Grid
	e.grid = NewGrid(g.Rows, g.Cols, g.MinValue, g.MaxValue, e.rng)
	e.selection = e.selection[:0]
	e.score = 0
	e.timeLeft = e.duration()
}

func (e *Engine) duration() int {
	return int(e.cfg.Rules.Duration.Seconds())
}

// Start begins a new round from Idle or Ended, resetting score, timer and grid.
// It is a no-op while a round is in progress.
func (e *Engine) Start() {
	if e.status != StatusIdle && e.status != StatusEnded {
		return
	}
	e.resetBoard()
	e.status = StatusPlaying
}

// Pause suspends a running round.
func (e *Engine) Pause() {
	if e.status == StatusPlaying {
		e.status = StatusPaused
	}
}

// Resume continues a paused round.
func (e *Engine) Resume() {
	if e.status == StatusPaused {
		e.status = StatusPlaying
	}
}

// Tick advances the countdown by one second. The round ends when it reaches zero.
func (e *Engine) Tick() {
	if e.status != StatusPlaying {
		return
	}
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.timeLeft = 0
		e.End()
	}
}

// End finishes the round from any state and records a new high score.
func (e *Engine) End() {
	e.status = StatusEnded
	if e.score > e.highScore {
		e.highScore = e.score
	}
}

// Select toggles the tile at (row, col) following the selection protocol.
// Invalid input (wrong state, out of range, would disconnect the selection)
// is ignored without any state change.
func (e *Engine) Select(row, col int) Outcome {
	p := Pos{Row: row, Col: col}
	if e.status != StatusPlaying || !e.grid.InBounds(p) {
		return Outcome{Kind: OutcomeIgnored}
	}

	if e.grid.At(p).Selected {
		e.deselect(p)
		return Outcome{Kind: OutcomeRemoved}
	}

	candidate := append(append(make([]Pos, 0, len(e.selection)+1), e.selection...), p)
	if !IsConnected(candidate) {
		return Outcome{Kind: OutcomeIgnored}
	}

	e.selection = candidate
	e.grid.setSelected(p, true)

	sum := e.Sum()
	switch {
	case sum == e.cfg.Rules.TargetSum:
		return e.clearMatch()
	case sum > e.cfg.Rules.TargetSum:
		e.dropSelection()
		return Outcome{Kind: OutcomeOverflow}
	default:
		return Outcome{Kind: OutcomeAdded}
	}
}

func (e *Engine) deselect(p Pos) {
	e.grid.setSelected(p, false)
	for i, s := range e.selection {
		if s == p {
			e.selection = append(e.selection[:i], e.selection[i+1:]...)
			return
		}
	}
}

func (e *Engine) clearMatch() Outcome {
	n := len(e.selection)
	points := n * e.cfg.Rules.PointsPerTile

	e.grid.Regenerate(e.selection)
	e.selection = e.selection[:0]
	e.score += points

	if e.OnClear != nil {
		e.OnClear(n, points)
	}
	return Outcome{Kind: OutcomeCleared, Tiles: n, Points: points}
}

func (e *Engine) dropSelection() {
	for _, s := range e.selection {
		e.grid.setSelected(s, false)
	}
	e.selection = e.selection[:0]
}

// Sum returns the total value of the selected tiles.
func (e *Engine) Sum() int {
	sum := 0
	for _, p := range e.selection {
		sum += e.grid.At(p).Value
	}
	return sum
}

// Selection returns a copy of the selected positions in selection order.
func (e *Engine) Selection() []Pos {
	return append([]Pos(nil), e.selection...)
}

// Grid returns the board.
func (e *Engine) Grid() *Grid { return e.grid }

// Status returns the lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Score returns the current round's score.
func (e *Engine) Score() int { return e.score }

// HighScore returns the best score seen by this engine.
func (e *Engine) HighScore() int { return e.highScore }

// SetHighScore seeds the high score from persisted storage.
func (e *Engine) SetHighScore(score int) {
	if score > e.highScore {
		e.highScore = score
	}
}

// TimeLeft returns the remaining seconds.
func (e *Engine) TimeLeft() int { return e.timeLeft }

// Snapshot returns the state submitted alongside a leaderboard score.
func (e *Engine) Snapshot() map[string]any {
	return map[string]any{
		"score":    e.score,
		"timeLeft": e.timeLeft,
		"rows":     e.grid.Rows(),
		"cols":     e.grid.Cols(),
		"selected": len(e.selection),
	}
}
