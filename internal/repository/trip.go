package repository

import (
	"context"

	"carpool/internal/domain"
)

// TripRepository defines the persistence operations for trips.
//
// Implementations must keep every stored trip within its seat capacity and
// free of duplicate passengers, even under concurrent callers.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves all trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// Search retrieves the trips matching the filter that still have seats.
	Search(ctx context.Context, filter domain.TripFilter) ([]*domain.Trip, error)

	// GetByUser retrieves the trips a user drives or rides in.
	GetByUser(ctx context.Context, userID string) ([]*domain.Trip, error)

	// Update applies a partial update. Returns domain.ErrSeatsBelowPassengers
	// if the new seat count cannot hold the current roster.
	Update(ctx context.Context, id string, update domain.TripUpdate) (*domain.Trip, error)

	// Delete removes a trip regardless of its passengers.
	Delete(ctx context.Context, id string) error

	// AddPassenger adds userID to the roster. changed is false when the user
	// was already a passenger or the trip was full.
	AddPassenger(ctx context.Context, tripID, userID string) (trip *domain.Trip, changed bool, err error)

	// RemovePassenger removes userID from the roster. changed is false when
	// the user was not a passenger.
	RemovePassenger(ctx context.Context, tripID, userID string) (trip *domain.Trip, changed bool, err error)
}
