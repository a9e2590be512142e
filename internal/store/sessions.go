package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/primedclinic/intake-service/internal/models"
)

// sessionTTL bounds abandoned sessions; active ones are rewritten on every
// state settle so the window keeps sliding.
const sessionTTL = 24 * time.Hour

// SessionStore is the session-scoped scratch storage: the full flow state
// for a token. Cleared on finalization together with the snapshot.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Load(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func sessionKey(token string) string {
	return "intake_session_" + token
}

func (s *redisSessionStore) Save(ctx context.Context, session *models.Session) error {
	buf, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), buf, sessionTTL).Err()
}

func (s *redisSessionStore) Load(ctx context.Context, token string) (*models.Session, error) {
	buf, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal(buf, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// MemorySessionStore is an in-memory SessionStore for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]*models.Session{}}
}

func (s *MemorySessionStore) Save(ctx context.Context, session *models.Session) error {
	copied := *session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = &copied
	return nil
}

func (s *MemorySessionStore) Load(ctx context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
