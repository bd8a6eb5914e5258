package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bookline/models"
	"bookline/utils"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "chat:session:"

// SessionStore holds per-session conversation state. Lock/Unlock serialize
// turns for one session: two in-flight messages for the same id never
// interleave transitions.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Lock(sessionID string)
	Unlock(sessionID string)
}

// RedisSessionStore keeps sessions as JSON values with a TTL, so idle
// conversations expire by policy rather than by explicit deletion.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  utils.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, clock utils.Clock) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		clock:  clock,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Get loads the session for sessionID, or returns a fresh one at START for an
// unseen id. A store failure is surfaced as StoreUnavailableError — prior
// progress is never silently replaced by empty state.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+sessionID).Result()
	if err == redis.Nil {
		now := s.clock.Now()
		return &models.Session{
			SessionID: sessionID,
			Step:      models.StepStart,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}
	return &session, nil
}

// Save writes the session back and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = s.clock.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return &StoreUnavailableError{Err: err}
	}
	if err := s.client.Set(ctx, sessionPrefix+session.SessionID, data, s.ttl).Err(); err != nil {
		return &StoreUnavailableError{Err: err}
	}
	return nil
}

// Lock acquires the per-session mutex, creating it on first use.
func (s *RedisSessionStore) Lock(sessionID string) {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()
	l.Lock()
}

// Unlock releases the per-session mutex.
func (s *RedisSessionStore) Unlock(sessionID string) {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	s.mu.Unlock()
	if ok {
		l.Unlock()
	}
}
