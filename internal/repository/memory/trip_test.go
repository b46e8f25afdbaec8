package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

func seedTrip(t *testing.T, repo *TripRepository, id string, seats int, passengers ...string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Trip{
		ID:          id,
		DriverID:    "driver-1",
		Origin:      "Downtown",
		Destination: "Airport",
		Date:        "2023-06-15",
		Time:        "14:00",
		Seats:       seats,
		Passengers:  passengers,
	}))
}

func TestTripRepository_CreateRejectsInvalidRoster(t *testing.T) {
	repo := NewTripRepository()

	err := repo.Create(context.Background(), &domain.Trip{ID: "t", Seats: 1, Passengers: []string{"a", "b"}})

	assert.ErrorIs(t, err, domain.ErrSeatsBelowPassengers)
}

func TestTripRepository_GetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "trip-1", 2)

	trip, err := repo.GetByID(ctx, "trip-1")
	require.NoError(t, err)
	trip.Passengers = append(trip.Passengers, "intruder")

	stored, err := repo.GetByID(ctx, "trip-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Passengers)
}

func TestTripRepository_GetByIDNotFound(t *testing.T) {
	_, err := NewTripRepository().GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTripRepository_AddPassenger(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "trip-1", 1)

	trip, changed, err := repo.AddPassenger(ctx, "trip-1", "p1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"p1"}, trip.Passengers)

	trip, changed, err = repo.AddPassenger(ctx, "trip-1", "p1")
	require.NoError(t, err)
	assert.False(t, changed, "joining twice must be a no-op")
	assert.Equal(t, []string{"p1"}, trip.Passengers)

	trip, changed, err = repo.AddPassenger(ctx, "trip-1", "p2")
	require.NoError(t, err)
	assert.False(t, changed, "joining a full trip must be a no-op")
	assert.Equal(t, []string{"p1"}, trip.Passengers)
}

func TestTripRepository_RemovePassenger(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "trip-1", 3, "p1", "p2")

	trip, changed, err := repo.RemovePassenger(ctx, "trip-1", "p1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"p2"}, trip.Passengers)

	_, changed, err = repo.RemovePassenger(ctx, "trip-1", "p1")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTripRepository_RosterOnMissingTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()

	_, _, err := repo.AddPassenger(ctx, "missing", "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, _, err = repo.RemovePassenger(ctx, "missing", "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTripRepository_ConcurrentJoinsNeverOverbook(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "trip-1", 3)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = repo.AddPassenger(ctx, "trip-1", fmt.Sprintf("p%d", i%10))
		}(i)
	}
	wg.Wait()

	trip, err := repo.GetByID(ctx, "trip-1")
	require.NoError(t, err)
	assert.Len(t, trip.Passengers, 3)
	assert.NoError(t, trip.Validate())
}

func TestTripRepository_UpdateRejectsSeatsBelowPassengers(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "trip-1", 3, "p1", "p2")
	seats := 1

	_, err := repo.Update(ctx, "trip-1", domain.TripUpdate{Seats: &seats})
	assert.ErrorIs(t, err, domain.ErrSeatsBelowPassengers)

	stored, err := repo.GetByID(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Seats)
}

func TestTripRepository_DeleteWithPassengers(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "trip-1", 3, "p1", "p2")
	seedTrip(t, repo, "trip-2", 3)

	require.NoError(t, repo.Delete(ctx, "trip-1"))

	_, err := repo.GetByID(ctx, "trip-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "trip-2", all[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, "trip-1"), repository.ErrNotFound)
}

func TestTripRepository_SearchAndGetByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	seedTrip(t, repo, "open", 2, "p1")
	seedTrip(t, repo, "full", 1, "p2")

	found, err := repo.Search(ctx, domain.TripFilter{Origin: "down"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "open", found[0].ID)

	mine, err := repo.GetByUser(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "full", mine[0].ID)

	driven, err := repo.GetByUser(ctx, "driver-1")
	require.NoError(t, err)
	assert.Len(t, driven, 2)
}
