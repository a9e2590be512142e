// Package store holds the persistence surfaces of the intake service:
// token-scoped progress snapshots and session scratch in Redis, leads and
// submission archives in Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/primedclinic/intake-service/internal/models"
)

// ErrNotFound is returned when no snapshot or session exists for a token.
var ErrNotFound = errors.New("not found")

// ProgressStore keeps exactly one progress snapshot per token. Snapshots
// older than models.SnapshotExpiry are discarded on read rather than
// restored.
type ProgressStore interface {
	Save(ctx context.Context, token string, snap *models.ProgressSnapshot) error
	Load(ctx context.Context, token string) (*models.ProgressSnapshot, error)
	Delete(ctx context.Context, token string) error
}

type redisProgressStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisProgressStore stores snapshots under "<prefix>_<token>" with a
// TTL matching the expiry window; the lazy timestamp check on Load covers
// clients whose clock disagrees with Redis.
func NewRedisProgressStore(client *redis.Client, keyPrefix string) ProgressStore {
	return &redisProgressStore{client: client, keyPrefix: keyPrefix}
}

func (s *redisProgressStore) key(token string) string {
	return fmt.Sprintf("%s_%s", s.keyPrefix, token)
}

func (s *redisProgressStore) Save(ctx context.Context, token string, snap *models.ProgressSnapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(token), buf, models.SnapshotExpiry).Err()
}

func (s *redisProgressStore) Load(ctx context.Context, token string) (*models.ProgressSnapshot, error) {
	buf, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap models.ProgressSnapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return nil, err
	}
	if snap.Expired(time.Now()) {
		_ = s.client.Del(ctx, s.key(token)).Err()
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (s *redisProgressStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

// MemoryProgressStore is an in-memory ProgressStore for tests.
type MemoryProgressStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{snapshots: map[string][]byte{}}
}

func (s *MemoryProgressStore) Save(ctx context.Context, token string, snap *models.ProgressSnapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[token] = buf
	return nil
}

func (s *MemoryProgressStore) Load(ctx context.Context, token string) (*models.ProgressSnapshot, error) {
	s.mu.Lock()
	buf, ok := s.snapshots[token]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var snap models.ProgressSnapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return nil, err
	}
	if snap.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.snapshots, token)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (s *MemoryProgressStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, token)
	return nil
}

// Has reports whether a raw snapshot exists, expired or not.
func (s *MemoryProgressStore) Has(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snapshots[token]
	return ok
}
