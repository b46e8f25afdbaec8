package redis

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// SessionStoreInterface defines the interface for login session storage.
type SessionStoreInterface interface {
	Create(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (userID string, ok bool, err error)
	Delete(ctx context.Context, token string) error
}

// TripCacheInterface defines the interface for trip caching.
type TripCacheInterface interface {
	GetTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	TripVersion(ctx context.Context, tripID string) (int64, error)
	SetTrip(ctx context.Context, trip *domain.Trip, version int64) error
	InvalidateTrip(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ SessionStoreInterface = (*SessionStore)(nil)
	_ TripCacheInterface    = (*CacheStore)(nil)
)
