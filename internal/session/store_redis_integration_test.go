package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Needs a running redis; set JOBGATE_TEST_REDIS_ADDR to enable.
func redisTestStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("JOBGATE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBGATE_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return NewRedisStore(client)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := redisTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.CreatedAt.Equal(sess.CreatedAt) || !got.LastAccessAt.Equal(sess.LastAccessAt) {
		t.Errorf("Get = %+v, want %+v", got, sess)
	}

	if err := store.Touch(ctx, sess.Token); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	if err := store.Remove(ctx, sess.Token); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after Remove: err = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisStore_TouchMissing(t *testing.T) {
	store := redisTestStore(t)

	err := store.Touch(context.Background(), "never-issued")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Touch on absent token: err = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisStore_Sweep(t *testing.T) {
	store := redisTestStore(t)
	ctx := context.Background()

	base := time.Now()
	store.nowF = func() time.Time { return base.Add(-time.Hour) }
	stale, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	store.nowF = func() time.Time { return base }
	fresh, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := store.Sweep(ctx, func(s Session, now time.Time) bool {
		return now.Sub(s.LastAccessAt) > 30*time.Minute
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}

	if _, err := store.Get(ctx, stale.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session should be gone")
	}
	if _, err := store.Get(ctx, fresh.Token); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}
