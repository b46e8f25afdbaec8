package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

const tripColumns = `id, driver_id, driver_name, driver_rating, origin, destination, trip_date, trip_time,
	seats, passengers, COALESCE(car_model, ''), COALESCE(car_color, ''), COALESCE(car_image, ''), created_at`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
//
// Roster changes are single conditional UPDATE statements, so the seat
// capacity and duplicate checks are evaluated by the database against the
// row being written.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO trips (id, driver_id, driver_name, driver_rating, origin, destination, trip_date, trip_time, seats, passengers, car_model, car_color, car_image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	passengers := trip.Passengers
	if passengers == nil {
		passengers = []string{}
	}

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		trip.DriverName,
		trip.DriverRating,
		trip.Origin,
		trip.Destination,
		trip.Date,
		trip.Time,
		trip.Seats,
		pq.Array(passengers),
		nullString(trip.CarModel),
		nullString(trip.CarColor),
		nullString(trip.CarImage),
		trip.CreatedAt,
	)
	return translateError(err)
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return scanTrip(r.q.QueryRowContext(ctx, query, id))
}

// GetAll retrieves all trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at, id`
	return r.queryTrips(ctx, query)
}

// Search retrieves the trips matching the filter that still have seats.
func (r *TripRepository) Search(ctx context.Context, filter domain.TripFilter) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE ($1 = '' OR strpos(lower(origin), lower($1)) > 0)
		  AND ($2 = '' OR strpos(lower(destination), lower($2)) > 0)
		  AND ($3 = '' OR trip_date = $3)
		  AND cardinality(passengers) < seats
		ORDER BY created_at, id
	`
	return r.queryTrips(ctx, query, filter.Origin, filter.Destination, filter.Date)
}

// GetByUser retrieves the trips a user drives or rides in.
func (r *TripRepository) GetByUser(ctx context.Context, userID string) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1 OR $1 = ANY(passengers)
		ORDER BY created_at, id
	`
	return r.queryTrips(ctx, query, userID)
}

// Update applies a partial update. A seat change only succeeds if the
// stored roster still fits.
func (r *TripRepository) Update(ctx context.Context, id string, update domain.TripUpdate) (*domain.Trip, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Origin != nil {
		set("origin", *update.Origin)
	}
	if update.Destination != nil {
		set("destination", *update.Destination)
	}
	if update.Date != nil {
		set("trip_date", *update.Date)
	}
	if update.Time != nil {
		set("trip_time", *update.Time)
	}
	if update.Seats != nil {
		set("seats", *update.Seats)
	}
	if update.CarModel != nil {
		set("car_model", *update.CarModel)
	}
	if update.CarColor != nil {
		set("car_color", *update.CarColor)
	}
	if update.CarImage != nil {
		set("car_image", *update.CarImage)
	}

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if update.Seats != nil {
		args = append(args, *update.Seats)
		where += fmt.Sprintf(" AND cardinality(passengers) <= $%d", len(args))
	}

	query := `UPDATE trips SET ` + strings.Join(sets, ", ") + ` WHERE ` + where + ` RETURNING ` + tripColumns

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, repository.ErrNotFound) {
		// Either the trip is gone or the roster no longer fits.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrSeatsBelowPassengers
	}
	return trip, err
}

// Delete removes a trip regardless of its passengers.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddPassenger appends userID when the trip has a free seat and the user is
// not on the roster yet.
func (r *TripRepository) AddPassenger(ctx context.Context, tripID, userID string) (*domain.Trip, bool, error) {
	query := `
		UPDATE trips
		SET passengers = array_append(passengers, $2::text)
		WHERE id = $1
		  AND NOT ($2::text = ANY(passengers))
		  AND cardinality(passengers) < seats
		RETURNING ` + tripColumns

	return r.mutateRoster(ctx, query, tripID, userID)
}

// RemovePassenger removes the first occurrence of userID from the roster.
func (r *TripRepository) RemovePassenger(ctx context.Context, tripID, userID string) (*domain.Trip, bool, error) {
	query := `
		UPDATE trips
		SET passengers = passengers[:array_position(passengers, $2::text) - 1]
		              || passengers[array_position(passengers, $2::text) + 1:]
		WHERE id = $1
		  AND $2::text = ANY(passengers)
		RETURNING ` + tripColumns

	return r.mutateRoster(ctx, query, tripID, userID)
}

// mutateRoster runs a conditional roster update. When the condition does
// not hold the current trip is returned unchanged.
func (r *TripRepository) mutateRoster(ctx context.Context, query, tripID, userID string) (*domain.Trip, bool, error) {
	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, tripID, userID))
	if err == nil {
		return trip, true, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	trip, err = r.GetByID(ctx, tripID)
	if err != nil {
		return nil, false, err
	}
	return trip, false, nil
}

func (r *TripRepository) queryTrips(ctx context.Context, query string, args ...any) ([]*domain.Trip, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func scanTrip(row scanner) (*domain.Trip, error) {
	var trip domain.Trip
	var passengers pq.StringArray

	err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.DriverName,
		&trip.DriverRating,
		&trip.Origin,
		&trip.Destination,
		&trip.Date,
		&trip.Time,
		&trip.Seats,
		&passengers,
		&trip.CarModel,
		&trip.CarColor,
		&trip.CarImage,
		&trip.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	trip.Passengers = []string(passengers)
	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
