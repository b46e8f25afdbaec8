package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"carpool/internal/domain"
)

// TripCacheTTL bounds how long a trip may be served from cache.
const TripCacheTTL = 60 * time.Second

const (
	tripCachePrefix      = "cache:trip:"
	tripGenerationPrefix = "cache:tripgen:"

	// tripGenerationTTL outlives any cached entry. An expired generation
	// reads as 0, which only makes pending writes fail their check.
	tripGenerationTTL = 24 * time.Hour
)

// errStaleTrip aborts a cache write whose generation has moved on.
var errStaleTrip = errors.New("trip changed since it was read")

// CacheStore handles trip caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// CachedTrip represents a cached trip entity.
type CachedTrip struct {
	ID           string    `json:"id"`
	DriverID     string    `json:"driver_id"`
	DriverName   string    `json:"driver_name"`
	DriverRating float64   `json:"driver_rating"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Seats        int       `json:"seats"`
	Passengers   []string  `json:"passengers"`
	CarModel     string    `json:"car_model,omitempty"`
	CarColor     string    `json:"car_color,omitempty"`
	CarImage     string    `json:"car_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetTrip retrieves a trip from cache. A miss returns nil, nil.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedTrip
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return cached.toDomain(), nil
}

// TripVersion returns the trip's cache generation. Read it before loading
// the trip from the repository and hand it back to SetTrip.
func (s *CacheStore) TripVersion(ctx context.Context, tripID string) (int64, error) {
	version, err := s.client.Get(ctx, tripGenerationPrefix+tripID).Int64()
	if err != nil && err != redis.Nil {
		return 0, err
	}
	return version, nil
}

// SetTrip stores a trip in cache unless it was invalidated after version
// was read. A skipped write is not an error.
func (s *CacheStore) SetTrip(ctx context.Context, trip *domain.Trip, version int64) error {
	data, err := json.Marshal(newCachedTrip(trip))
	if err != nil {
		return err
	}

	genKey := tripGenerationPrefix + trip.ID
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != version {
			return errStaleTrip
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL)
			return nil
		})
		return err
	}, genKey)

	if errors.Is(err, errStaleTrip) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateTrip removes a trip from cache and bumps its generation so
// in-flight reads cannot put the old value back.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	genKey := tripGenerationPrefix + tripID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, tripGenerationTTL)
		pipe.Del(ctx, tripCachePrefix+tripID)
		return nil
	})
	return err
}

func newCachedTrip(t *domain.Trip) *CachedTrip {
	return &CachedTrip{
		ID:           t.ID,
		DriverID:     t.DriverID,
		DriverName:   t.DriverName,
		DriverRating: t.DriverRating,
		Origin:       t.Origin,
		Destination:  t.Destination,
		Date:         t.Date,
		Time:         t.Time,
		Seats:        t.Seats,
		Passengers:   t.Passengers,
		CarModel:     t.CarModel,
		CarColor:     t.CarColor,
		CarImage:     t.CarImage,
		CreatedAt:    t.CreatedAt,
	}
}

func (c *CachedTrip) toDomain() *domain.Trip {
	return &domain.Trip{
		ID:           c.ID,
		DriverID:     c.DriverID,
		DriverName:   c.DriverName,
		DriverRating: c.DriverRating,
		Origin:       c.Origin,
		Destination:  c.Destination,
		Date:         c.Date,
		Time:         c.Time,
		Seats:        c.Seats,
		Passengers:   c.Passengers,
		CarModel:     c.CarModel,
		CarColor:     c.CarColor,
		CarImage:     c.CarImage,
		CreatedAt:    c.CreatedAt,
	}
}
