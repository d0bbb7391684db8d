package dodge

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/core"
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

// Input is the sampled directional key state for one frame.
type Input struct {
	Up, Down, Left, Right bool
}

// Direction returns the raw (unnormalized) movement vector. Opposite keys
// cancel out.
func (in Input) Direction() core.Vec2 {
	var d core.Vec2
	if in.Up {
		d.Y--
	}
	if in.Down {
		d.Y++
	}
	if in.Left {
		d.X--
	}
	if in.Right {
		d.X++
	}
	return d
}

// Engine is the dodge state machine: Idle -> Playing <-> Paused -> Ended.
type Engine struct {
	cfg       config.DodgeConfig
	rng       *rand.Rand
	clock     *FrameClock
	arena     *Arena
	status    Status
	score     int // Whole survival seconds, fixed at End
	highScore int
}

// NewEngine creates an idle engine. now feeds the frame clock; nil means
// time.Now.
func NewEngine(cfg config.DodgeConfig, rng *rand.Rand, now func() time.Time) *Engine {
	return &Engine{
		cfg:   cfg,
		rng:   rng,
		clock: NewFrameClock(now),
		arena: NewArena(cfg, rng),
	}
}

// Start begins a new round from Idle or Ended.
func (e *Engine) Start() {
	if e.status != StatusIdle && e.status != StatusEnded {
		return
	}
	e.arena = NewArena(e.cfg, e.rng)
	e.score = 0
	e.clock.Reanchor()
	e.status = StatusPlaying
}

// Pause freezes physics and the spawn timer.
func (e *Engine) Pause() {
	if e.status == StatusPlaying {
		e.status = StatusPaused
	}
}

// Resume continues a paused round and re-anchors the frame clock.
func (e *Engine) Resume() {
	if e.status == StatusPaused {
		e.clock.Reanchor()
		e.status = StatusPlaying
	}
}

// Frame runs one animation frame using the measured time since the last one.
func (e *Engine) Frame(in Input) {
	if e.status != StatusPlaying {
		return
	}
	e.Update(in, e.clock.Delta())
}

// Update moves the player and advances the physics by dt.
func (e *Engine) Update(in Input, dt time.Duration) {
	if e.status != StatusPlaying {
		return
	}
	e.arena.MovePlayer(in.Direction(), dt)
	if e.arena.Step(dt) {
		e.End()
	}
}

// End finishes the round, fixing the score at the whole survival seconds.
func (e *Engine) End() {
	e.status = StatusEnded
	e.score = int(e.arena.Survival() / time.Second)
	if e.score > e.highScore {
		e.highScore = e.score
	}
}

// Arena returns the playfield.
func (e *Engine) Arena() *Arena { return e.arena }

// Status returns the lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Score returns the survival seconds so far, or the final score once ended.
func (e *Engine) Score() int {
	if e.status == StatusEnded {
		return e.score
	}
	return int(e.arena.Survival() / time.Second)
}

// HighScore returns the best score seen by this engine.
func (e *Engine) HighScore() int { return e.highScore }

// SetHighScore seeds the high score from persisted storage.
func (e *Engine) SetHighScore(score int) {
	if score > e.highScore {
		e.highScore = score
	}
}

// Snapshot returns the state submitted alongside a leaderboard score.
func (e *Engine) Snapshot() map[string]any {
	return map[string]any{
		"score":        e.Score(),
		"survivalTime": e.arena.Survival().Seconds(),
		"difficulty":   e.arena.Difficulty(),
		"playerX":      e.arena.Player.Pos.X,
		"playerY":      e.arena.Player.Pos.Y,
		"projectiles":  len(e.arena.Projectiles),
	}
}
