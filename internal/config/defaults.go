package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/tilematch.yaml
var defaultTileMatchYAML []byte

//go:embed defaults/dodge.yaml
var defaultDodgeYAML []byte

//go:embed defaults/server.yaml
var defaultServerYAML []byte

// DefaultTileMatchConfig returns the default tile-match configuration.
func DefaultTileMatchConfig() TileMatchConfig {
	return TileMatchConfig{
		Grid: TileMatchGrid{
			Rows:     10,
			Cols:     20,
			MinValue: 1,
			MaxValue: 9,
		},
		Rules: TileMatchRules{
			TargetSum:     10,
			PointsPerTile: 10,
			Duration:      120 * time.Second,
		},
	}
}

// DefaultDodgeConfig returns the default dodge configuration.
func DefaultDodgeConfig() DodgeConfig {
	return DodgeConfig{
		Arena: DodgeArena{
			Width:      800,
			Height:     600,
			CullMargin: 100,
		},
		Player: DodgePlayer{
			Size:  20,
			Speed: 300,
		},
		Projectiles: DodgeProjectiles{
			BaseSpeed:        150,
			Jitter:           0.5,
			BaseSize:         30,
			SizeStep:         2,
			MinSize:          15,
			MaxRotationSpeed: 6,
		},
		Difficulty: DifficultyConfig{
			Interval:       5 * time.Second,
			BaseSpawnRate:  time.Second,
			SpawnRateStep:  100 * time.Millisecond,
			MinSpawnRate:   200 * time.Millisecond,
			BaseSpawnCount: 3,
			SpeedStep:      0.1,
		},
	}
}

// DefaultServerConfig returns the default API server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen:         ":8080",
		AllowedOrigins: []string{"http://localhost:3000"},
		PurgeInterval:  time.Minute,
		Store: StoreConfig{
			Driver:     "redis",
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "minigames",
			SQLitePath: "~/.arcade/scores.db",
		},
		Leaderboard: LeaderboardConfig{
			TopN: 10,
			TileMatch: GateRules{
				MaxScore:        50000,
				SessionTTL:      10 * time.Minute,
				DuplicateWindow: 30 * time.Second,
			},
			Dodge: GateRules{
				MaxScore:       3600,
				SessionTTL:     60 * time.Minute,
				MaxProjectiles: 1000,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "tilematch":
		return defaultTileMatchYAML
	case "dodge":
		return defaultDodgeYAML
	case "server":
		return defaultServerYAML
	default:
		return nil
	}
}
