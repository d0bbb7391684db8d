// Package config provides YAML-based game and server configuration loading
// and the dodge difficulty schedule.
package config

import "time"

// TileMatchConfig contains all configuration for the tile-match game.
type TileMatchConfig struct {
	Grid  TileMatchGrid  `yaml:"grid"`
	Rules TileMatchRules `yaml:"rules"`
}

// TileMatchGrid defines the board dimensions and tile values.
type TileMatchGrid struct {
	Rows     int `yaml:"rows"`
	Cols     int `yaml:"cols"`
	MinValue int `yaml:"min_value"`
	MaxValue int `yaml:"max_value"`
}

// TileMatchRules defines scoring and the countdown.
type TileMatchRules struct {
	TargetSum     int           `yaml:"target_sum"`
	PointsPerTile int           `yaml:"points_per_tile"`
	Duration      time.Duration `yaml:"duration"`
}

// DodgeConfig contains all configuration for the dodge game.
type DodgeConfig struct {
	Arena       DodgeArena       `yaml:"arena"`
	Player      DodgePlayer      `yaml:"player"`
	Projectiles DodgeProjectiles `yaml:"projectiles"`
	Difficulty  DifficultyConfig `yaml:"difficulty"`
}

// DodgeArena defines the playfield in arena pixels.
type DodgeArena struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	CullMargin float64 `yaml:"cull_margin"` // Projectiles beyond this distance outside the arena are removed
}

// DodgePlayer defines the player's hitbox and movement.
type DodgePlayer struct {
	Size  float64 `yaml:"size"`
	Speed float64 `yaml:"speed"` // Pixels per second
}

// DodgeProjectiles defines projectile speed, size and spin.
type DodgeProjectiles struct {
	BaseSpeed        float64 `yaml:"base_speed"` // Pixels per second at difficulty 0
	Jitter           float64 `yaml:"jitter"`     // Max lateral velocity as a fraction of speed
	BaseSize         float64 `yaml:"base_size"`
	SizeStep         float64 `yaml:"size_step"`
	MinSize          float64 `yaml:"min_size"`
	MaxRotationSpeed float64 `yaml:"max_rotation_speed"` // Radians per second
}

// DifficultyConfig defines the stepwise difficulty ramp.
type DifficultyConfig struct {
	Interval       time.Duration `yaml:"interval"`        // Survival time per difficulty level
	BaseSpawnRate  time.Duration `yaml:"base_spawn_rate"` // Spawn interval at level 0
	SpawnRateStep  time.Duration `yaml:"spawn_rate_step"` // Reduction per level
	MinSpawnRate   time.Duration `yaml:"min_spawn_rate"`
	BaseSpawnCount int           `yaml:"base_spawn_count"`
	SpeedStep      float64       `yaml:"speed_step"` // Speed multiplier added per level
}

// ServerConfig configures the HTTP leaderboard API.
type ServerConfig struct {
	Listen         string            `yaml:"listen"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	TrustedProxies []string          `yaml:"trusted_proxies"`
	PurgeInterval  time.Duration     `yaml:"purge_interval"`
	Store          StoreConfig       `yaml:"store"`
	Leaderboard    LeaderboardConfig `yaml:"leaderboard"`
}

// StoreConfig selects and configures the leaderboard backend.
type StoreConfig struct {
	Driver        string `yaml:"driver"` // "redis" or "sqlite"
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// LeaderboardConfig holds the per-game submission limits.
type LeaderboardConfig struct {
	TopN      int       `yaml:"top_n"`
	TileMatch GateRules `yaml:"tilematch"`
	Dodge     GateRules `yaml:"dodge"`
}

// GateRules are the per-game limits the leaderboard gate enforces.
type GateRules struct {
	MaxScore        int           `yaml:"max_score"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	DuplicateWindow time.Duration `yaml:"duplicate_window"` // 0 disables the duplicate guard
	MaxProjectiles  int           `yaml:"max_projectiles"`
}
