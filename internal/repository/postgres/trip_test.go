package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// testDSNEnv names a PostgreSQL database the tests may create schemas in.
const testDSNEnv = "CARPOOL_TEST_POSTGRES_DSN"

// openTestDB returns a pool bound to a fresh schema that is dropped when the
// test ends. Tests are skipped when no database is configured.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	ctx := context.Background()
	schemaName := "carpool_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Close() })

	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schemaName)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schemaName+" CASCADE")
	})

	db, err := sql.Open("postgres", withSearchPath(dsn, schemaName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

// withSearchPath adds a search_path runtime parameter to either DSN form.
func withSearchPath(dsn, schemaName string) string {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schemaName
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&search_path=" + schemaName
	}
	return dsn + "?search_path=" + schemaName
}

func insertTrip(t *testing.T, repo *TripRepository, id string, seats int, passengers ...string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Trip{
		ID:          id,
		DriverID:    "d1",
		DriverName:  "john_driver",
		Origin:      "Downtown",
		Destination: "Airport",
		Date:        "2023-06-15",
		Time:        "14:00",
		Seats:       seats,
		Passengers:  passengers,
		CarModel:    "Toyota Camry",
		CarColor:    "Blue",
		CreatedAt:   time.Now().UTC(),
	}))
}

func TestTripRepository_AddPassenger(t *testing.T) {
	repo := NewTripRepository(openTestDB(t))
	ctx := context.Background()
	insertTrip(t, repo, "t1", 2)

	trip, changed, err := repo.AddPassenger(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"p1"}, trip.Passengers)

	trip, changed, err = repo.AddPassenger(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.False(t, changed, "joining twice is a no-op")
	assert.Equal(t, []string{"p1"}, trip.Passengers)

	_, changed, err = repo.AddPassenger(ctx, "t1", "p2")
	require.NoError(t, err)
	assert.True(t, changed)

	trip, changed, err = repo.AddPassenger(ctx, "t1", "p3")
	require.NoError(t, err)
	assert.False(t, changed, "a full trip takes nobody else")
	assert.Equal(t, []string{"p1", "p2"}, trip.Passengers)

	_, _, err = repo.AddPassenger(ctx, "missing", "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTripRepository_RemovePassenger(t *testing.T) {
	tests := []struct {
		name   string
		remove string
		want   []string
	}{
		{"first", "p1", []string{"p2", "p3"}},
		{"middle", "p2", []string{"p1", "p3"}},
		{"last", "p3", []string{"p1", "p2"}},
	}

	repo := NewTripRepository(openTestDB(t))
	ctx := context.Background()

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := fmt.Sprintf("t%d", i)
			insertTrip(t, repo, id, 3, "p1", "p2", "p3")

			trip, changed, err := repo.RemovePassenger(ctx, id, tt.remove)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.want, trip.Passengers)

			stored, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Passengers)
		})
	}
}

func TestTripRepository_RemovePassengerNoOp(t *testing.T) {
	repo := NewTripRepository(openTestDB(t))
	ctx := context.Background()
	insertTrip(t, repo, "t1", 2, "p1")

	trip, changed, err := repo.RemovePassenger(ctx, "t1", "p2")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"p1"}, trip.Passengers)

	trip, changed, err = repo.RemovePassenger(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, trip.Passengers)

	_, _, err = repo.RemovePassenger(ctx, "missing", "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTripRepository_ConcurrentJoinsRespectCapacity(t *testing.T) {
	repo := NewTripRepository(openTestDB(t))
	ctx := context.Background()
	insertTrip(t, repo, "t1", 3)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, changed, err := repo.AddPassenger(ctx, "t1", fmt.Sprintf("p%d", i))
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				joined++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	trip, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, joined)
	assert.Len(t, trip.Passengers, 3)
	assert.NoError(t, trip.Validate())
}

func TestTripRepository_UpdateSeats(t *testing.T) {
	repo := NewTripRepository(openTestDB(t))
	ctx := context.Background()
	insertTrip(t, repo, "t1", 3, "p1", "p2")

	one := 1
	_, err := repo.Update(ctx, "t1", domain.TripUpdate{Seats: &one})
	assert.ErrorIs(t, err, domain.ErrSeatsBelowPassengers)

	stored, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Seats, "rejected update leaves the trip unchanged")

	two := 2
	dest := "Central Station"
	updated, err := repo.Update(ctx, "t1", domain.TripUpdate{Seats: &two, Destination: &dest})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Seats)
	assert.Equal(t, "Central Station", updated.Destination)
	assert.Equal(t, []string{"p1", "p2"}, updated.Passengers)

	_, err = repo.Update(ctx, "missing", domain.TripUpdate{Seats: &two})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTripRepository_QueriesAndDelete(t *testing.T) {
	repo := NewTripRepository(openTestDB(t))
	ctx := context.Background()
	insertTrip(t, repo, "open", 2, "p1")
	insertTrip(t, repo, "full", 1, "p2")

	found, err := repo.Search(ctx, domain.TripFilter{Destination: "air"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "open", found[0].ID)

	mine, err := repo.GetByUser(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "full", mine[0].ID)

	driving, err := repo.GetByUser(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, driving, 2)

	require.NoError(t, repo.Delete(ctx, "full"))
	_, err = repo.GetByID(ctx, "full")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "full"), repository.ErrNotFound)

	err = repo.Create(ctx, &domain.Trip{ID: "open", Seats: 1, Date: "2023-06-15", Time: "14:00"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
