package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jobgate/api/internal/security"
)

const redisKeyPrefix = "sess:"

// touchScript refreshes last_access_at only when the key still exists, so a
// Touch that loses a race with Remove cannot resurrect the session.
var touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	redis.call("HSET", KEYS[1], "last_access_at", ARGV[1])
	return 1
end
return 0
`)

// RedisStore is the Store implementation backed by redis hashes. Timestamps
// are stored as unix nanoseconds.
type RedisStore struct {
	client *redis.Client
	nowF   func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		nowF:   time.Now,
	}
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}

func (s *RedisStore) Create(ctx context.Context) (Session, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return Session{}, err
	}

	now := s.nowF()
	if err := s.client.HSet(ctx, redisKey(token),
		"created_at", now.UnixNano(),
		"last_access_at", now.UnixNano(),
	).Err(); err != nil {
		return Session{}, fmt.Errorf("redis create session: %w", err)
	}

	return Session{Token: token, CreatedAt: now, LastAccessAt: now}, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	fields, err := s.client.HGetAll(ctx, redisKey(token)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("redis get session: %w", err)
	}
	if len(fields) == 0 {
		return Session{}, ErrSessionNotFound
	}
	return parseSession(token, fields)
}

func (s *RedisStore) Touch(ctx context.Context, token string) error {
	now := s.nowF()
	touched, err := touchScript.Run(ctx, s.client,
		[]string{redisKey(token)}, now.UnixNano()).Int()
	if err != nil {
		return fmt.Errorf("redis touch session: %w", err)
	}
	if touched == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil {
		return fmt.Errorf("redis remove session: %w", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	total := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		total++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis count sessions: %w", err)
	}
	return total, nil
}

func (s *RedisStore) Sweep(ctx context.Context, expired func(Session, time.Time) bool) (int, error) {
	now := s.nowF()
	removed := 0

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		token := key[len(redisKeyPrefix):]

		sess, err := s.Get(ctx, token)
		if err != nil {
			// Removed by a concurrent logout or sweep; nothing to do.
			continue
		}
		if expired(sess, now) {
			if err := s.Remove(ctx, token); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis sweep sessions: %w", err)
	}
	return removed, nil
}

func parseSession(token string, fields map[string]string) (Session, error) {
	createdAt, err := parseUnixNano(fields["created_at"])
	if err != nil {
		return Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	lastAccessAt, err := parseUnixNano(fields["last_access_at"])
	if err != nil {
		return Session{}, fmt.Errorf("parse last_access_at: %w", err)
	}
	return Session{Token: token, CreatedAt: createdAt, LastAccessAt: lastAccessAt}, nil
}

func parseUnixNano(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n), nil
}
