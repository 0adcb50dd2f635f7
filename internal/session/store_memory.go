package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"jobgate/api/internal/security"
)

const shardCount = 64

type shard struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// MemoryStore is the in-memory Store implementation. Sessions are spread
// over a fixed set of shards by token hash so that requests for unrelated
// tokens never contend on the same lock; per-token linearizability comes
// from the owning shard's lock.
type MemoryStore struct {
	shards [shardCount]shard
	nowF   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{nowF: time.Now}
	for i := range s.shards {
		s.shards[i].sessions = make(map[string]Session)
	}
	return s
}

func (s *MemoryStore) shardFor(token string) *shard {
	h := fnv.New32a()
	h.Write([]byte(token))
	return &s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Create(ctx context.Context) (Session, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return Session{}, err
	}

	now := s.nowF()
	sess := Session{
		Token:        token,
		CreatedAt:    now,
		LastAccessAt: now,
	}

	sh := s.shardFor(token)
	sh.mu.Lock()
	sh.sessions[token] = sess
	sh.mu.Unlock()

	return sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (Session, error) {
	sh := s.shardFor(token)
	sh.mu.RLock()
	sess, ok := sh.sessions[token]
	sh.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Touch(ctx context.Context, token string) error {
	now := s.nowF()

	sh := s.shardFor(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	if now.After(sess.LastAccessAt) {
		sess.LastAccessAt = now
		sh.sessions[token] = sess
	}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, token string) error {
	sh := s.shardFor(token)
	sh.mu.Lock()
	delete(sh.sessions, token)
	sh.mu.Unlock()
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		total += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return total, nil
}

func (s *MemoryStore) Sweep(ctx context.Context, expired func(Session, time.Time) bool) (int, error) {
	now := s.nowF()
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for token, sess := range sh.sessions {
			if expired(sess, now) {
				delete(sh.sessions, token)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}
