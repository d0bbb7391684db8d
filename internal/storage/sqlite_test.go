package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/minigames/internal/leaderboard"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreAddAndTop(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, score := range []int{100, 50, 200, 100} {
		e := leaderboard.Entry{PlayerName: "p", Score: score, Timestamp: int64(1000 + i)}
		if err := store.AddEntry(ctx, "tilematch", e); err != nil {
			t.Fatalf("AddEntry() failed: %v", err)
		}
	}
	if err := store.AddEntry(ctx, "dodge", leaderboard.Entry{PlayerName: "d", Score: 500}); err != nil {
		t.Fatalf("AddEntry() failed: %v", err)
	}

	top, err := store.TopEntries(ctx, "tilematch", 3)
	if err != nil {
		t.Fatalf("TopEntries() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Expected 3 entries with limit, got %d", len(top))
	}
	if top[0].Score != 200 || top[1].Score != 100 || top[2].Score != 100 {
		t.Errorf("Scores not in expected order: %v", top)
	}
	// Ties keep the earlier entry first
	if top[1].Timestamp != 1000 || top[2].Timestamp != 1003 {
		t.Errorf("tie order = %d, %d, want 1000, 1003", top[1].Timestamp, top[2].Timestamp)
	}

	dodge, err := store.TopEntries(ctx, "dodge", 10)
	if err != nil {
		t.Fatalf("TopEntries() failed: %v", err)
	}
	if len(dodge) != 1 || dodge[0].PlayerName != "d" {
		t.Errorf("dodge entries = %v", dodge)
	}
}

func TestStoreSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := leaderboard.Session{IP: "10.0.0.1", CreatedAt: now, Valid: true}
	if err := store.PutSession(ctx, "tilematch", "abc12345", sess, time.Minute); err != nil {
		t.Fatalf("PutSession() failed: %v", err)
	}

	got, err := store.GetSession(ctx, "tilematch", "abc12345")
	if err != nil {
		t.Fatalf("GetSession() failed: %v", err)
	}
	if got.IP != sess.IP || !got.Valid || !got.CreatedAt.Equal(now) {
		t.Errorf("GetSession() = %+v, want %+v", got, sess)
	}

	if _, err := store.GetSession(ctx, "dodge", "abc12345"); !errors.Is(err, leaderboard.ErrSessionNotFound) {
		t.Errorf("other game GetSession() error = %v, want ErrSessionNotFound", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.GetSession(ctx, "tilematch", "abc12345"); !errors.Is(err, leaderboard.ErrSessionNotFound) {
		t.Errorf("expired GetSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreClaimSubmission(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	claim := func() bool {
		t.Helper()
		ok, err := store.ClaimSubmission(ctx, "tilematch", "10.0.0.1", 120, 30*time.Second)
		if err != nil {
			t.Fatalf("ClaimSubmission() failed: %v", err)
		}
		return ok
	}

	if !claim() {
		t.Fatal("first claim should succeed")
	}
	now = now.Add(29 * time.Second)
	if claim() {
		t.Error("claim within the window should fail")
	}
	now = now.Add(2 * time.Second)
	if !claim() {
		t.Error("claim after the window should succeed")
	}

	ok, err := store.ClaimSubmission(ctx, "tilematch", "10.0.0.2", 120, 30*time.Second)
	if err != nil || !ok {
		t.Errorf("claim from another IP = %v, %v, want true", ok, err)
	}

	// A released claim can be taken again inside the window
	if err := store.ReleaseClaim(ctx, "tilematch", "10.0.0.1", 120); err != nil {
		t.Fatalf("ReleaseClaim() failed: %v", err)
	}
	if !claim() {
		t.Error("claim after release should succeed")
	}
}

func TestStorePurgeExpired(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := leaderboard.Session{IP: "10.0.0.1", CreatedAt: now, Valid: true}
	store.PutSession(ctx, "tilematch", "short-lived", sess, time.Minute)
	store.PutSession(ctx, "dodge", "long-lived", sess, time.Hour)
	store.ClaimSubmission(ctx, "tilematch", "10.0.0.1", 120, 30*time.Second)

	now = now.Add(5 * time.Minute)
	n, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeExpired() removed %d rows, want 2", n)
	}
	if _, err := store.GetSession(ctx, "dodge", "long-lived"); err != nil {
		t.Errorf("live session was purged: %v", err)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// No scores yet
	high, err := store.HighScore("dodge")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for empty game, got %d", high)
	}

	store.AddEntry(ctx, "dodge", leaderboard.Entry{PlayerName: "a", Score: 30})
	store.AddEntry(ctx, "dodge", leaderboard.Entry{PlayerName: "b", Score: 75})

	high, _ = store.HighScore("dodge")
	if high != 75 {
		t.Errorf("Expected high score 75, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.AddEntry(ctx, "dodge", leaderboard.Entry{PlayerName: "a", Score: 30})
	store.AddEntry(ctx, "tilematch", leaderboard.Entry{PlayerName: "b", Score: 40})

	if err := store.ClearScores("dodge"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	dodge, _ := store.TopEntries(ctx, "dodge", 10)
	tm, _ := store.TopEntries(ctx, "tilematch", 10)
	if len(dodge) != 0 || len(tm) != 1 {
		t.Errorf("after clear: dodge %d entries, tilematch %d entries", len(dodge), len(tm))
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.GetGameStats("tilematch")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", stats)
	}

	store.AddEntry(ctx, "tilematch", leaderboard.Entry{PlayerName: "a", Score: 100, Timestamp: 5000})
	store.AddEntry(ctx, "tilematch", leaderboard.Entry{PlayerName: "b", Score: 300, Timestamp: 9000})

	stats, _ = store.GetGameStats("tilematch")
	if stats.GamesCount != 2 || stats.HighScore != 300 || stats.AvgScore != 200 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastPlayed.UnixMilli() != 9000 {
		t.Errorf("LastPlayed = %v, want unix ms 9000", stats.LastPlayed)
	}
}

func TestStoreLocalHighScore(t *testing.T) {
	store := openTestStore(t)

	best, err := store.LocalHighScore("tilematch-high-score")
	if err != nil || best != 0 {
		t.Fatalf("LocalHighScore() = %d, %v, want 0", best, err)
	}

	if saved, err := store.SaveLocalHighScore("tilematch-high-score", 120); err != nil || !saved {
		t.Fatalf("SaveLocalHighScore(120) = %v, %v", saved, err)
	}
	if saved, _ := store.SaveLocalHighScore("tilematch-high-score", 90); saved {
		t.Error("a lower score should not replace the best")
	}

	best, _ = store.LocalHighScore("tilematch-high-score")
	if best != 120 {
		t.Errorf("LocalHighScore() = %d, want 120", best)
	}

	store.SetPref("dodge-high-score", "garbage")
	if best, err := store.LocalHighScore("dodge-high-score"); err != nil || best != 0 {
		t.Errorf("non-numeric pref = %d, %v, want 0", best, err)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	got, err := expandHome("~/.arcade/scores.db")
	if err != nil {
		t.Fatalf("expandHome() failed: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Errorf("expandHome() = %q, want prefix %q", got, home)
	}

	if got, _ := expandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("expandHome() changed an absolute path to %q", got)
	}
}
