package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore keeps login sessions in Redis. Expiry is handled by key TTL.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Create stores a session for userID that expires after ttl.
func (s *SessionStore) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionPrefix+token, userID, ttl).Err()
}

// Get returns the user ID for a live session.
func (s *SessionStore) Get(ctx context.Context, token string) (string, bool, error) {
	userID, err := s.client.Get(ctx, sessionPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return userID, true, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionPrefix+token).Err()
}
