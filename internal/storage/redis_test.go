package storage

import (
	"testing"

	"github.com/go-redis/redis/v8"

	"github.com/vovakirdan/minigames/internal/leaderboard"
)

func TestRedisKeys(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	s := NewRedisStore(rdb, "minigames")
	tests := []struct {
		got, expected string
	}{
		{s.sessionKey("tilematch", "abc"), "minigames:tilematch:session:abc"},
		{s.leaderboardKey("dodge"), "minigames:dodge:leaderboard"},
		{s.claimKey("tilematch", "10.0.0.1", 120), "minigames:tilematch:recent:10.0.0.1:120"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("key = %q, want %q", tt.got, tt.expected)
		}
	}

	bare := NewRedisStore(rdb, "")
	if got := bare.leaderboardKey("dodge"); got != "dodge:leaderboard" {
		t.Errorf("unprefixed key = %q, want dodge:leaderboard", got)
	}
}

func TestDecodeMember(t *testing.T) {
	tests := []struct {
		name     string
		member   any
		expected leaderboard.Entry
	}{
		{"valid", `{"playerName":"Kim","score":120,"timestamp":1700000000000}`,
			leaderboard.Entry{PlayerName: "Kim", Score: 120, Timestamp: 1700000000000}},
		{"malformed json", `{"playerName":`, leaderboard.Entry{}},
		{"not a string", 42, leaderboard.Entry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeMember(tt.member); got != tt.expected {
				t.Errorf("decodeMember() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
