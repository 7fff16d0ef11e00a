package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "candlegame:profile:%s"

// raiseScript sets the high score field to ARGV[2] when it is larger and returns the stored value.
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], ARGV[1])) or 0
local score = tonumber(ARGV[2])
if score > cur then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return score
end
return cur
`)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each profile as a hash with the two record fields.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(player string) string {
	return fmt.Sprintf(keyPrefix, player)
}

// Load returns the stored profile; an absent hash yields the default profile.
func (s *RedisStore) Load(ctx context.Context, player string) (Profile, error) {
	if !ValidPlayer(player) {
		return Profile{}, ErrInvalidPlayer
	}
	rec, err := s.client.HGetAll(ctx, s.key(player)).Result()
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", player, err)
	}
	return FromRecord(rec), nil
}

// Save replaces both fields.
func (s *RedisStore) Save(ctx context.Context, player string, p Profile) error {
	if !ValidPlayer(player) {
		return ErrInvalidPlayer
	}
	if err := s.client.HSet(ctx, s.key(player), p.Record()).Err(); err != nil {
		return fmt.Errorf("save profile %s: %w", player, err)
	}
	return nil
}

// RaiseHighScore updates the high score atomically on the server.
func (s *RedisStore) RaiseHighScore(ctx context.Context, player string, score int) (int, error) {
	if !ValidPlayer(player) {
		return 0, ErrInvalidPlayer
	}
	high, err := raiseScript.Run(ctx, s.client, []string{s.key(player)}, KeyHighScore, score).Int()
	if err != nil {
		return 0, fmt.Errorf("raise high score %s: %w", player, err)
	}
	return high, nil
}

// SetSoundEnabled writes the sound field only.
func (s *RedisStore) SetSoundEnabled(ctx context.Context, player string, enabled bool) error {
	if !ValidPlayer(player) {
		return ErrInvalidPlayer
	}
	if err := s.client.HSet(ctx, s.key(player), KeySoundEnabled, strconv.FormatBool(enabled)).Err(); err != nil {
		return fmt.Errorf("save sound flag %s: %w", player, err)
	}
	return nil
}

// Delete removes a profile.
func (s *RedisStore) Delete(ctx context.Context, player string) error {
	return s.client.Del(ctx, s.key(player)).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
