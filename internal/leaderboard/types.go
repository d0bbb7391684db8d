// Package leaderboard implements the session-gated score submission flow:
// register a short-lived session, then submit a score with a snapshot of the
// final game state, which is checked for plausibility before it is ranked.
package leaderboard

import (
	"context"
	"time"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Timestamp  int64  `json:"timestamp"` // Unix milliseconds
}

// Session is the server-held record behind a client-generated session id.
type Session struct {
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
	Valid     bool      `json:"valid"`
}

// Submission is a score claim as received from a client.
type Submission struct {
	Score      any            // JSON number as decoded, or an int from in-process callers
	PlayerName *string        // nil means no name was sent
	SessionID  string         // Client-generated id passed to RegisterSession
	GameState  map[string]any // Game-specific snapshot
	IP         string         // Requesting client address
}

// Store persists sessions and leaderboards. Implementations must make
// ClaimSubmission atomic so concurrent duplicates cannot both succeed.
type Store interface {
	// PutSession stores s under id, expiring after ttl.
	PutSession(ctx context.Context, game, id string, s Session, ttl time.Duration) error

	// GetSession returns ErrSessionNotFound when id is unknown or expired.
	GetSession(ctx context.Context, game, id string) (Session, error)

	// ClaimSubmission records (ip, score) for window and reports whether it
	// was new. It returns false while an identical claim is still live.
	ClaimSubmission(ctx context.Context, game, ip string, score int, window time.Duration) (bool, error)

	// ReleaseClaim drops a claim made for a submission that was not stored.
	ReleaseClaim(ctx context.Context, game, ip string, score int) error

	// AddEntry inserts e into the game's leaderboard.
	AddEntry(ctx context.Context, game string, e Entry) error

	// TopEntries returns up to n entries by descending score.
	TopEntries(ctx context.Context, game string, n int) ([]Entry, error)
}
