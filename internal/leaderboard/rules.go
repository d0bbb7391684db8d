package leaderboard

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/minigames/internal/config"
)

// Rules are one game's submission limits and its state plausibility check.
type Rules struct {
	Game            string
	MaxScore        int
	SessionTTL      time.Duration
	DuplicateWindow time.Duration // 0 disables the duplicate guard

	// CheckState validates the snapshot against the submitted score.
	CheckState func(score int, state map[string]any) error
}

// TileMatchRules builds the tile-match rules from the gate limits and the
// game's own configuration.
func TileMatchRules(gate config.GateRules, tm config.TileMatchConfig) Rules {
	duration := tm.Rules.Duration.Seconds()
	rows, cols := float64(tm.Grid.Rows), float64(tm.Grid.Cols)
	step := tm.Rules.PointsPerTile

	return Rules{
		Game:            "tilematch",
		MaxScore:        gate.MaxScore,
		SessionTTL:      gate.SessionTTL,
		DuplicateWindow: gate.DuplicateWindow,
		CheckState: func(score int, state map[string]any) error {
			f, err := fields(state, "score", "timeLeft", "rows", "cols", "selected")
			if err != nil {
				return err
			}
			switch {
			case f["score"] != float64(score):
				return stateError("score %v does not match submitted %d", f["score"], score)
			case step > 0 && score%step != 0:
				return stateError("score %d is not a multiple of %d", score, step)
			case f["timeLeft"] < 0 || f["timeLeft"] > duration:
				return stateError("timeLeft %v out of range", f["timeLeft"])
			case f["rows"] != rows || f["cols"] != cols:
				return stateError("grid %vx%v, expected %vx%v", f["rows"], f["cols"], rows, cols)
			case f["selected"] < 0 || f["selected"] > rows*cols:
				return stateError("selected %v out of range", f["selected"])
			}
			return nil
		},
	}
}

// DodgeRules builds the dodge rules from the gate limits and the game's own
// configuration.
func DodgeRules(gate config.GateRules, dc config.DodgeConfig) Rules {
	maxSurvival := float64(gate.MaxScore)
	maxDifficulty := float64(config.NewDifficultyManager(dc.Difficulty).MaxLevel(time.Duration(gate.MaxScore) * time.Second))
	maxProjectiles := float64(gate.MaxProjectiles)

	return Rules{
		Game:            "dodge",
		MaxScore:        gate.MaxScore,
		SessionTTL:      gate.SessionTTL,
		DuplicateWindow: gate.DuplicateWindow,
		CheckState: func(score int, state map[string]any) error {
			f, err := fields(state, "score", "survivalTime", "difficulty", "playerX", "playerY", "projectiles")
			if err != nil {
				return err
			}
			switch {
			case f["playerX"] < 0 || f["playerX"] > dc.Arena.Width:
				return stateError("playerX %v outside the arena", f["playerX"])
			case f["playerY"] < 0 || f["playerY"] > dc.Arena.Height:
				return stateError("playerY %v outside the arena", f["playerY"])
			case f["projectiles"] < 0 || f["projectiles"] > maxProjectiles:
				return stateError("projectiles %v out of range", f["projectiles"])
			case f["difficulty"] < 0 || f["difficulty"] > maxDifficulty:
				return stateError("difficulty %v out of range", f["difficulty"])
			case f["survivalTime"] < 0 || f["survivalTime"] > maxSurvival:
				return stateError("survivalTime %v out of range", f["survivalTime"])
			case math.Abs(float64(score)-f["survivalTime"]) > 1:
				return stateError("score %d inconsistent with survivalTime %v", score, f["survivalTime"])
			}
			return nil
		},
	}
}

// DefaultRules returns both games' rules from the loaded configuration.
func DefaultRules(lb config.LeaderboardConfig, tm config.TileMatchConfig, dc config.DodgeConfig) []Rules {
	return []Rules{
		TileMatchRules(lb.TileMatch, tm),
		DodgeRules(lb.Dodge, dc),
	}
}

func stateError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// fields extracts the named numeric fields from a snapshot.
func fields(state map[string]any, names ...string) (map[string]float64, error) {
	if state == nil {
		return nil, stateError("missing game state")
	}
	out := make(map[string]float64, len(names))
	for _, name := range names {
		v, ok := state[name]
		if !ok {
			return nil, stateError("missing field %s", name)
		}
		n, ok := toFloat(v)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, stateError("field %s is not a number", name)
		}
		out[name] = n
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toInt accepts integral numbers only; 12.5 and "12" are rejected.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
