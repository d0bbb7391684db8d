// Package storage provides the leaderboard backends: a SQLite file for the
// local arcade and a single-node API, and Redis for shared deployments.
// The SQLite store uses the pure-Go modernc.org/sqlite driver to avoid CGO.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/minigames/internal/leaderboard"
)

// Store is the SQLite leaderboard store. It also keeps local preferences
// such as each game's best score.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer at a time; SQLite would otherwise report SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// migrate creates the database schema if it doesn't exist.
// Timestamps are unix milliseconds.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS sessions (
			game_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ip TEXT NOT NULL,
			valid INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (game_id, session_id)
		);

		CREATE TABLE IF NOT EXISTS submissions (
			claim_key TEXT PRIMARY KEY,
			expires_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PutSession stores a session, replacing any previous one with the same id.
func (s *Store) PutSession(ctx context.Context, game, id string, sess leaderboard.Session, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (game_id, session_id, ip, valid, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		game, id, sess.IP, sess.Valid, sess.CreatedAt.UnixMilli(), s.now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// GetSession returns a live session or leaderboard.ErrSessionNotFound.
func (s *Store) GetSession(ctx context.Context, game, id string) (leaderboard.Session, error) {
	var (
		sess      leaderboard.Session
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ip, valid, created_at FROM sessions
		 WHERE game_id = ? AND session_id = ? AND expires_at > ?`,
		game, id, s.now().UnixMilli(),
	).Scan(&sess.IP, &sess.Valid, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return leaderboard.Session{}, leaderboard.ErrSessionNotFound
	}
	if err != nil {
		return leaderboard.Session{}, fmt.Errorf("storage: cannot load session: %w", err)
	}
	sess.CreatedAt = time.UnixMilli(createdAt)
	return sess, nil
}

// ClaimSubmission records (ip, score) for window in a single upsert; an
// expired claim is overwritten, a live one is left alone.
func (s *Store) ClaimSubmission(ctx context.Context, game, ip string, score int, window time.Duration) (bool, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (claim_key, expires_at) VALUES (?, ?)
		 ON CONFLICT(claim_key) DO UPDATE SET expires_at = excluded.expires_at
		 WHERE submissions.expires_at <= ?`,
		claimKey(game, ip, score), now.Add(window).UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot claim submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot claim submission: %w", err)
	}
	return n == 1, nil
}

// ReleaseClaim deletes the claim for (ip, score).
func (s *Store) ReleaseClaim(ctx context.Context, game, ip string, score int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM submissions WHERE claim_key = ?", claimKey(game, ip, score))
	if err != nil {
		return fmt.Errorf("storage: cannot release claim: %w", err)
	}
	return nil
}

func claimKey(game, ip string, score int) string {
	return game + ":" + ip + ":" + strconv.Itoa(score)
}

// AddEntry records a ranked score.
func (s *Store) AddEntry(ctx context.Context, game string, e leaderboard.Entry) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO scores (game_id, player_name, score, created_at) VALUES (?, ?, ?, ?)",
		game, e.PlayerName, e.Score, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save score: %w", err)
	}
	return nil
}

// TopEntries retrieves the top n scores for the given game.
// Results are ordered by score descending, earlier entries first on ties.
func (s *Store) TopEntries(ctx context.Context, game string, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		n = leaderboard.DefaultTopN
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT player_name, score, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, created_at ASC
		 LIMIT ?`,
		game, n,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.PlayerName, &e.Score, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// PurgeExpired deletes expired sessions and duplicate-guard claims and
// returns how many rows were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.now().UnixMilli()

	var total int64
	for _, q := range []string{
		"DELETE FROM sessions WHERE expires_at <= ?",
		"DELETE FROM submissions WHERE expires_at <= ?",
	} {
		res, err := s.db.ExecContext(ctx, q, now)
		if err != nil {
			return total, fmt.Errorf("storage: cannot purge expired rows: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// HighScore returns the highest ranked score for the given game.
// Returns 0 if no scores exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	var lastPlayed int64
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(MAX(created_at), 0)
		 FROM scores WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	if lastPlayed > 0 {
		stats.LastPlayed = time.UnixMilli(lastPlayed)
	}

	return stats, nil
}

// Pref returns a stored preference value.
func (s *Store) Pref(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read pref %s: %w", key, err)
	}
	return value, true, nil
}

// SetPref stores a preference value.
func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO prefs (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("storage: cannot write pref %s: %w", key, err)
	}
	return nil
}

// LocalHighScore returns the best score stored under key, 0 if none or if
// the stored value is not a number.
func (s *Store) LocalHighScore(key string) (int, error) {
	v, ok, err := s.Pref(key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// SaveLocalHighScore stores score under key if it beats the stored value.
func (s *Store) SaveLocalHighScore(key string, score int) (bool, error) {
	best, err := s.LocalHighScore(key)
	if err != nil {
		return false, err
	}
	if score <= best {
		return false, nil
	}
	return true, s.SetPref(key, strconv.Itoa(score))
}
