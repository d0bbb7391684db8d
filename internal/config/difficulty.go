package config

import (
	"math"
	"time"
)

// DifficultyManager turns survival time into the stepwise dodge difficulty
// level and the spawn parameters derived from it.
type DifficultyManager struct {
	cfg DifficultyConfig
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second // Prevent division by zero
	}
	return &DifficultyManager{cfg: cfg}
}

// Level returns floor(survival / interval). Non-decreasing in survival.
func (d *DifficultyManager) Level(survival time.Duration) int {
	if survival <= 0 {
		return 0
	}
	return int(survival / d.cfg.Interval)
}

// MaxLevel returns the highest level reachable within maxSurvival.
func (d *DifficultyManager) MaxLevel(maxSurvival time.Duration) int {
	return d.Level(maxSurvival)
}

// SpawnInterval returns the minimum time between spawn waves at a level,
// never below the configured floor.
func (d *DifficultyManager) SpawnInterval(level int) time.Duration {
	interval := d.cfg.BaseSpawnRate - time.Duration(level)*d.cfg.SpawnRateStep
	if interval < d.cfg.MinSpawnRate {
		interval = d.cfg.MinSpawnRate
	}
	return interval
}

// SpawnCount returns how many projectiles a spawn wave contains.
func (d *DifficultyManager) SpawnCount(level int) int {
	return d.cfg.BaseSpawnCount + level/2
}

// SpeedFactor returns the projectile speed multiplier at a level.
func (d *DifficultyManager) SpeedFactor(level int) float64 {
	return 1.0 + float64(level)*d.cfg.SpeedStep
}

// ProjectileSize returns the projectile diameter at a level, shrinking by
// step per level down to minSize.
func (d *DifficultyManager) ProjectileSize(baseSize, step, minSize float64, level int) float64 {
	return math.Max(minSize, baseSize-float64(level)*step)
}
