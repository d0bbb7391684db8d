package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/leaderboard"
)

// RedisStore keeps sessions as expiring JSON keys and each leaderboard as a
// sorted set of JSON members scored by the entry's score.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, cfg config.StoreConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("storage: cannot connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	return NewRedisStore(rdb, cfg.KeyPrefix), nil
}

// NewRedisStore wraps an existing client. Keys are namespaced under prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(game string, parts ...string) string {
	k := game
	if s.prefix != "" {
		k = s.prefix + ":" + game
	}
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *RedisStore) sessionKey(game, id string) string {
	return s.key(game, "session", id)
}

func (s *RedisStore) leaderboardKey(game string) string {
	return s.key(game, "leaderboard")
}

func (s *RedisStore) claimKey(game, ip string, score int) string {
	return s.key(game, "recent", ip, strconv.Itoa(score))
}

// PutSession stores the session as JSON with ttl as the key expiry.
func (s *RedisStore) PutSession(ctx context.Context, game, id string, sess leaderboard.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("storage: cannot encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.sessionKey(game, id), data, ttl).Err(); err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// GetSession returns a live session or leaderboard.ErrSessionNotFound.
func (s *RedisStore) GetSession(ctx context.Context, game, id string) (leaderboard.Session, error) {
	data, err := s.rdb.Get(ctx, s.sessionKey(game, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return leaderboard.Session{}, leaderboard.ErrSessionNotFound
	}
	if err != nil {
		return leaderboard.Session{}, fmt.Errorf("storage: cannot load session: %w", err)
	}

	var sess leaderboard.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return leaderboard.Session{}, fmt.Errorf("storage: cannot decode session: %w", err)
	}
	return sess, nil
}

// ClaimSubmission uses SET NX with window as the expiry.
func (s *RedisStore) ClaimSubmission(ctx context.Context, game, ip string, score int, window time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.claimKey(game, ip, score), "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("storage: cannot claim submission: %w", err)
	}
	return ok, nil
}

// ReleaseClaim deletes the claim key.
func (s *RedisStore) ReleaseClaim(ctx context.Context, game, ip string, score int) error {
	if err := s.rdb.Del(ctx, s.claimKey(game, ip, score)).Err(); err != nil {
		return fmt.Errorf("storage: cannot release claim: %w", err)
	}
	return nil
}

// AddEntry adds the entry to the game's sorted set.
func (s *RedisStore) AddEntry(ctx context.Context, game string, e leaderboard.Entry) error {
	member, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("storage: cannot encode entry: %w", err)
	}
	err = s.rdb.ZAdd(ctx, s.leaderboardKey(game), &redis.Z{
		Score:  float64(e.Score),
		Member: string(member),
	}).Err()
	if err != nil {
		return fmt.Errorf("storage: cannot save score: %w", err)
	}
	return nil
}

// TopEntries reads the n highest members.
func (s *RedisStore) TopEntries(ctx context.Context, game string, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		n = leaderboard.DefaultTopN
	}
	zs, err := s.rdb.ZRevRangeWithScores(ctx, s.leaderboardKey(game), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(zs))
	for _, z := range zs {
		entries = append(entries, decodeMember(z.Member))
	}
	return entries, nil
}

// decodeMember parses a sorted-set member. Malformed members become zero
// entries rather than failing the whole read.
func decodeMember(member any) leaderboard.Entry {
	str, ok := member.(string)
	if !ok {
		return leaderboard.Entry{}
	}
	var e leaderboard.Entry
	if err := json.Unmarshal([]byte(str), &e); err != nil {
		return leaderboard.Entry{}
	}
	return e
}
