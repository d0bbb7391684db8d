package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/core"
	"github.com/vovakirdan/minigames/internal/leaderboard"
	"github.com/vovakirdan/minigames/internal/registry"
	"github.com/vovakirdan/minigames/internal/storage"
)

// LocalIP is the client address recorded for rounds played in this process.
const LocalIP = "local"

const submitTimeout = 5 * time.Second

// NewLocalGate builds a leaderboard gate over the local scores database,
// using the same rules the HTTP API enforces.
func NewLocalGate(store *storage.Store) (*leaderboard.Gate, error) {
	srv := config.DefaultServerConfig()
	tm, err := config.LoadTileMatch("")
	if err != nil {
		return nil, err
	}
	dc, err := config.LoadDodge("")
	if err != nil {
		return nil, err
	}
	return leaderboard.NewGate(store, srv.Leaderboard.TopN, leaderboard.DefaultRules(srv.Leaderboard, tm, dc)...), nil
}

// Outcome describes what happened to a finished round.
type Outcome struct {
	NewBest   bool
	Submitted bool
	Rank      int // 1-based position in the top list, 0 if not listed
	Err       error
}

// Message returns a one-line summary for the status bar.
func (o Outcome) Message() string {
	switch {
	case errors.Is(o.Err, leaderboard.ErrDuplicateScore):
		return "Score already submitted"
	case o.Err != nil:
		return "Leaderboard: " + o.Err.Error()
	case o.Rank > 0 && o.NewBest:
		return fmt.Sprintf("New best! Leaderboard rank #%d", o.Rank)
	case o.Rank > 0:
		return fmt.Sprintf("Leaderboard rank #%d", o.Rank)
	case o.NewBest:
		return "New best!"
	case o.Submitted:
		return "Score submitted"
	}
	return ""
}

// Recorder persists finished rounds: the local best through the store and a
// leaderboard entry through the gate. A nil store or gate disables that half.
type Recorder struct {
	store  *storage.Store
	gate   *leaderboard.Gate
	ip     string
	player string
	newID  func() string
}

// NewRecorder creates a recorder submitting as player from ip.
func NewRecorder(store *storage.Store, gate *leaderboard.Gate, ip, player string) *Recorder {
	if ip == "" {
		ip = LocalIP
	}
	return &Recorder{
		store:  store,
		gate:   gate,
		ip:     ip,
		player: player,
		newID:  uuid.NewString,
	}
}

// LoadBest seeds g with its persisted local best.
func (r *Recorder) LoadBest(g registry.Game) {
	keeper, ok := g.(registry.HighScoreKeeper)
	if !ok || r == nil || r.store == nil {
		return
	}
	if best, err := r.store.LocalHighScore(keeper.HighScoreKey()); err == nil {
		keeper.SetHighScore(best)
	}
}

// Finish records the final state of g. A leaderboard session is opened
// only here, right before the score goes to the gate.
func (r *Recorder) Finish(g registry.Game, state core.GameState) Outcome {
	var out Outcome
	if r == nil {
		return out
	}

	if keeper, ok := g.(registry.HighScoreKeeper); ok && r.store != nil {
		saved, err := r.store.SaveLocalHighScore(keeper.HighScoreKey(), state.Score)
		if err != nil {
			out.Err = err
			return out
		}
		out.NewBest = saved
	}

	snap, ok := g.(registry.Snapshotter)
	if !ok || r.gate == nil || state.Score <= 0 {
		return out
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	sessionID := r.newID()
	if err := r.gate.RegisterSession(ctx, g.ID(), sessionID, r.ip); err != nil {
		out.Err = err
		return out
	}

	var name *string
	if r.player != "" {
		name = &r.player
	}
	top, err := r.gate.Submit(ctx, g.ID(), leaderboard.Submission{
		Score:      state.Score,
		PlayerName: name,
		SessionID:  sessionID,
		GameState:  snap.Snapshot(),
		IP:         r.ip,
	})
	if err != nil {
		out.Err = err
		return out
	}

	out.Submitted = true
	out.Rank = rankOf(top, r.player, state.Score)
	return out
}

// rankOf finds the newest listed entry matching player and score.
func rankOf(top []leaderboard.Entry, player string, score int) int {
	name, err := leaderboard.SanitizeName(&player)
	if err != nil {
		return 0
	}
	rank := 0
	var newest int64
	for i, e := range top {
		if e.PlayerName == name && e.Score == score && e.Timestamp >= newest {
			rank = i + 1
			newest = e.Timestamp
		}
	}
	return rank
}

// PlayerName reduces a login name to the characters the leaderboard accepts.
func PlayerName(user string) string {
	var b strings.Builder
	n := 0
	for _, r := range user {
		if n == leaderboard.MaxNameLength {
			break
		}
		if unicode.Is(unicode.Hangul, r) || r == ' ' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
			n++
		}
	}
	return strings.TrimSpace(b.String())
}
