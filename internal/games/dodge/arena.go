package dodge

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/core"
)

// Edge identifies the arena side a projectile enters from.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// Projectile is a spinning obstacle crossing the arena.
type Projectile struct {
	Pos           core.Vec2
	Vel           core.Vec2 // Pixels per second
	Size          float64   // Diameter
	Rotation      float64
	RotationSpeed float64 // Radians per second, cosmetic
}

// Player is the dodging circle.
type Player struct {
	Pos   core.Vec2
	Size  float64
	Speed float64
	Alive bool
}

// Arena holds the continuous playfield and runs the physics step.
type Arena struct {
	cfg    config.DodgeConfig
	diff   *config.DifficultyManager
	rng    *rand.Rand
	bounds core.Bounds
	cull   core.Bounds

	Player      Player
	Projectiles []Projectile

	survival   time.Duration
	lastSpawn  time.Duration // Survival time of the last wave
	difficulty int
}

// NewArena creates an empty arena with the player centered.
func NewArena(cfg config.DodgeConfig, rng *rand.Rand) *Arena {
	bounds := core.Bounds{MaxX: cfg.Arena.Width, MaxY: cfg.Arena.Height}
	return &Arena{
		cfg:    cfg,
		diff:   config.NewDifficultyManager(cfg.Difficulty),
		rng:    rng,
		bounds: bounds,
		cull:   bounds.Expand(cfg.Arena.CullMargin),
		Player: Player{
			Pos:   core.Vec2{X: cfg.Arena.Width / 2, Y: cfg.Arena.Height / 2},
			Size:  cfg.Player.Size,
			Speed: cfg.Player.Speed,
			Alive: true,
		},
	}
}

// Survival returns the accumulated survival time.
func (a *Arena) Survival() time.Duration { return a.survival }

// Difficulty returns the current difficulty level.
func (a *Arena) Difficulty() int { return a.difficulty }

// Bounds returns the playfield box.
func (a *Arena) Bounds() core.Bounds { return a.bounds }

// MovePlayer moves the player along dir for dt and clamps it to the arena.
// A diagonal dir is normalized so it moves no faster than a single axis.
func (a *Arena) MovePlayer(dir core.Vec2, dt time.Duration) {
	if dir.X == 0 && dir.Y == 0 {
		return
	}
	step := dir.Normalize().Scale(a.Player.Speed * dt.Seconds())
	a.Player.Pos = a.bounds.ClampPoint(a.Player.Pos.Add(step))
}

// Step advances the simulation by dt and reports whether the player was hit.
func (a *Arena) Step(dt time.Duration) bool {
	a.survival += dt
	a.difficulty = a.diff.Level(a.survival)

	if a.survival-a.lastSpawn > a.diff.SpawnInterval(a.difficulty) {
		a.spawnWave()
		a.lastSpawn = a.survival
	}

	secs := dt.Seconds()
	for i := range a.Projectiles {
		p := &a.Projectiles[i]
		p.Pos = p.Pos.Add(p.Vel.Scale(secs))
		p.Rotation += p.RotationSpeed * secs
	}

	a.cullProjectiles()

	for _, p := range a.Projectiles {
		if core.CirclesOverlap(a.Player.Pos, a.Player.Size, p.Pos, p.Size) {
			a.Player.Alive = false
			return true
		}
	}
	return false
}

func (a *Arena) spawnWave() {
	for range a.diff.SpawnCount(a.difficulty) {
		a.Projectiles = append(a.Projectiles, a.spawnProjectile(Edge(a.rng.Intn(4))))
	}
}

// spawnProjectile places a projectile on a random point of edge, heading
// inward with lateral jitter.
func (a *Arena) spawnProjectile(edge Edge) Projectile {
	w, h := a.cfg.Arena.Width, a.cfg.Arena.Height
	pc := a.cfg.Projectiles

	speed := pc.BaseSpeed * a.diff.SpeedFactor(a.difficulty)
	lateral := (a.rng.Float64()*2 - 1) * pc.Jitter * speed

	var pos, vel core.Vec2
	switch edge {
	case EdgeTop:
		pos = core.Vec2{X: a.rng.Float64() * w, Y: 0}
		vel = core.Vec2{X: lateral, Y: speed}
	case EdgeRight:
		pos = core.Vec2{X: w, Y: a.rng.Float64() * h}
		vel = core.Vec2{X: -speed, Y: lateral}
	case EdgeBottom:
		pos = core.Vec2{X: a.rng.Float64() * w, Y: h}
		vel = core.Vec2{X: lateral, Y: -speed}
	default:
		pos = core.Vec2{X: 0, Y: a.rng.Float64() * h}
		vel = core.Vec2{X: speed, Y: lateral}
	}

	return Projectile{
		Pos:           pos,
		Vel:           vel,
		Size:          a.diff.ProjectileSize(pc.BaseSize, pc.SizeStep, pc.MinSize, a.difficulty),
		RotationSpeed: (a.rng.Float64()*2 - 1) * pc.MaxRotationSpeed,
	}
}

// cullProjectiles drops projectiles outside the expanded arena box, in place.
func (a *Arena) cullProjectiles() {
	kept := a.Projectiles[:0]
	for _, p := range a.Projectiles {
		if a.cull.Contains(p.Pos) {
			kept = append(kept, p)
		}
	}
	a.Projectiles = kept
}
