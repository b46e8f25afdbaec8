package memory

import (
	"context"
	"sync"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// TripRepository is an in-memory implementation of repository.TripRepository.
// Trips are returned in the order they were created.
type TripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip
	order []string
}

// NewTripRepository creates an empty in-memory trip repository.
func NewTripRepository() *TripRepository {
	return &TripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[trip.ID]; ok {
		return repository.ErrDuplicate
	}
	r.trips[trip.ID] = trip.Clone()
	r.order = append(r.order, trip.ID)
	return nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return trip.Clone(), nil
}

// GetAll retrieves all trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	return r.collect(func(*domain.Trip) bool { return true }), nil
}

// Search retrieves the trips matching the filter that still have seats.
func (r *TripRepository) Search(ctx context.Context, filter domain.TripFilter) ([]*domain.Trip, error) {
	return r.collect(filter.Matches), nil
}

// GetByUser retrieves the trips a user drives or rides in.
func (r *TripRepository) GetByUser(ctx context.Context, userID string) ([]*domain.Trip, error) {
	return r.collect(func(t *domain.Trip) bool { return t.Involves(userID) }), nil
}

// Update applies a partial update.
func (r *TripRepository) Update(ctx context.Context, id string, update domain.TripUpdate) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	updated := trip.Clone()
	if err := update.Apply(updated); err != nil {
		return nil, err
	}
	r.trips[id] = updated
	return updated.Clone(), nil
}

// Delete removes a trip regardless of its passengers.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.trips, id)
	for i, tripID := range r.order {
		if tripID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddPassenger adds userID to the roster of a trip with a free seat.
func (r *TripRepository) AddPassenger(ctx context.Context, tripID, userID string) (*domain.Trip, bool, error) {
	return r.mutateRoster(tripID, func(t *domain.Trip) bool { return t.Join(userID) })
}

// RemovePassenger removes userID from the roster.
func (r *TripRepository) RemovePassenger(ctx context.Context, tripID, userID string) (*domain.Trip, bool, error) {
	return r.mutateRoster(tripID, func(t *domain.Trip) bool { return t.Leave(userID) })
}

func (r *TripRepository) mutateRoster(tripID string, mutate func(*domain.Trip) bool) (*domain.Trip, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[tripID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	changed := mutate(trip)
	return trip.Clone(), changed, nil
}

func (r *TripRepository) collect(keep func(*domain.Trip) bool) []*domain.Trip {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trips := make([]*domain.Trip, 0, len(r.order))
	for _, id := range r.order {
		trip := r.trips[id]
		if keep(trip) {
			trips = append(trips, trip.Clone())
		}
	}
	return trips
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
