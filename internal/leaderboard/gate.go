package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// DefaultTopN is the leaderboard size returned when none is configured.
const DefaultTopN = 10

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// Gate validates session registrations and score submissions for a set of
// games sharing one store. It holds no mutable state; concurrent callers rely
// on the store's atomic operations.
type Gate struct {
	store Store
	rules map[string]Rules
	topN  int
	now   func() time.Time
}

// NewGate creates a gate over store for the given games.
func NewGate(store Store, topN int, rules ...Rules) *Gate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	g := &Gate{
		store: store,
		rules: make(map[string]Rules, len(rules)),
		topN:  topN,
		now:   time.Now,
	}
	for _, r := range rules {
		g.rules[r.Game] = r
	}
	return g
}

// Games returns the ids the gate accepts, sorted.
func (g *Gate) Games() []string {
	ids := make([]string, 0, len(g.rules))
	for id := range g.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rules returns the rules for game.
func (g *Gate) Rules(game string) (Rules, error) {
	r, ok := g.rules[game]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	return r, nil
}

// RegisterSession stores a fresh session for ip under the client's id.
func (g *Gate) RegisterSession(ctx context.Context, game, sessionID, ip string) error {
	r, err := g.Rules(game)
	if err != nil {
		return err
	}
	if !sessionIDPattern.MatchString(sessionID) {
		return ErrInvalidSession
	}

	s := Session{IP: ip, CreatedAt: g.now(), Valid: true}
	if err := g.store.PutSession(ctx, game, sessionID, s, r.SessionTTL); err != nil {
		return fmt.Errorf("leaderboard: store session: %w", err)
	}
	return nil
}

// Submit validates sub and, when accepted, ranks it and returns the new top
// entries. Checks run in order: session, score, game state, name, duplicate.
func (g *Gate) Submit(ctx context.Context, game string, sub Submission) ([]Entry, error) {
	r, err := g.Rules(game)
	if err != nil {
		return nil, err
	}

	if err := g.checkSession(ctx, r, sub); err != nil {
		return nil, err
	}

	score, ok := toInt(sub.Score)
	if !ok || score < 0 || score > r.MaxScore {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, sub.Score)
	}

	if r.CheckState != nil {
		if err := r.CheckState(score, sub.GameState); err != nil {
			return nil, err
		}
	}

	name, err := SanitizeName(sub.PlayerName)
	if err != nil {
		return nil, err
	}

	claimed := false
	if r.DuplicateWindow > 0 {
		claimed, err = g.store.ClaimSubmission(ctx, game, sub.IP, score, r.DuplicateWindow)
		if err != nil {
			return nil, fmt.Errorf("leaderboard: duplicate check: %w", err)
		}
		if !claimed {
			return nil, ErrDuplicateScore
		}
	}

	entry := Entry{
		PlayerName: name,
		Score:      score,
		Timestamp:  g.now().UnixMilli(),
	}
	if err := g.store.AddEntry(ctx, game, entry); err != nil {
		err = fmt.Errorf("leaderboard: add entry: %w", err)
		if claimed {
			if rerr := g.store.ReleaseClaim(ctx, game, sub.IP, score); rerr != nil {
				err = errors.Join(err, fmt.Errorf("leaderboard: release claim: %w", rerr))
			}
		}
		return nil, err
	}

	return g.Top(ctx, game)
}

func (g *Gate) checkSession(ctx context.Context, r Rules, sub Submission) error {
	if sub.SessionID == "" {
		return ErrSessionNotFound
	}

	s, err := g.store.GetSession(ctx, r.Game, sub.SessionID)
	if err != nil {
		return err
	}
	if !s.Valid {
		return ErrSessionNotFound
	}
	if s.IP != sub.IP {
		return ErrSessionForeign
	}
	if g.now().Sub(s.CreatedAt) > r.SessionTTL {
		return ErrSessionExpired
	}
	return nil
}

// Top returns the current top entries for game.
func (g *Gate) Top(ctx context.Context, game string) ([]Entry, error) {
	if _, err := g.Rules(game); err != nil {
		return nil, err
	}
	entries, err := g.store.TopEntries(ctx, game, g.topN)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: read top: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// WithClock replaces the gate's time source and returns the gate.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}
