package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// Seeder loads the demo accounts and trips the frontend ships with.
type Seeder struct {
	userRepo repository.UserRepository
	tripRepo repository.TripRepository
}

// NewSeeder creates a new Seeder.
func NewSeeder(userRepo repository.UserRepository, tripRepo repository.TripRepository) *Seeder {
	return &Seeder{userRepo: userRepo, tripRepo: tripRepo}
}

// DemoUsers returns the demo accounts. They have no password and log in by
// username alone.
func DemoUsers() []*domain.User {
	joined := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)
	return []*domain.User{
		{
			ID:           "1",
			Username:     "john_driver",
			Email:        "john@example.com",
			Type:         domain.UserTypeDriver,
			ProfileImage: domain.DefaultImage,
			IDImage:      domain.DefaultImage,
			LicenseImage: domain.DefaultImage,
			CarImage:     domain.DefaultImage,
			Rating:       4.8,
			TripCount:    24,
			JoinDate:     joined.Format(domain.JoinDateLayout),
			CreatedAt:    joined,
		},
		{
			ID:           "2",
			Username:     "sarah_passenger",
			Email:        "sarah@example.com",
			Type:         domain.UserTypePassenger,
			ProfileImage: domain.DefaultImage,
			IDImage:      domain.DefaultImage,
			Rating:       4.9,
			TripCount:    12,
			JoinDate:     joined.AddDate(0, 2, 5).Format(domain.JoinDateLayout),
			CreatedAt:    joined.AddDate(0, 2, 5),
		},
		{
			ID:           "3",
			Username:     "emma_wilson",
			Email:        "emma@example.com",
			Type:         domain.UserTypeDriver,
			ProfileImage: domain.DefaultImage,
			IDImage:      domain.DefaultImage,
			LicenseImage: domain.DefaultImage,
			CarImage:     domain.DefaultImage,
			Rating:       4.9,
			TripCount:    9,
			JoinDate:     joined.AddDate(0, 3, 0).Format(domain.JoinDateLayout),
			CreatedAt:    joined.AddDate(0, 3, 0),
		},
	}
}

// DemoTrips returns the demo trips.
func DemoTrips() []*domain.Trip {
	created := time.Date(2023, time.June, 1, 9, 0, 0, 0, time.UTC)
	return []*domain.Trip{
		{
			ID:           "1",
			DriverID:     "1",
			DriverName:   "john_driver",
			DriverRating: 4.8,
			Origin:       "Downtown",
			Destination:  "Airport",
			Date:         "2023-06-15",
			Time:         "14:00",
			Seats:        3,
			Passengers:   []string{},
			CarModel:     "Toyota Camry",
			CarColor:     "Blue",
			CarImage:     domain.DefaultImage,
			CreatedAt:    created,
		},
		{
			ID:           "2",
			DriverID:     "3",
			DriverName:   "emma_wilson",
			DriverRating: 4.9,
			Origin:       "University",
			Destination:  "Shopping Mall",
			Date:         "2023-06-16",
			Time:         "10:30",
			Seats:        2,
			Passengers:   []string{"2"},
			CarModel:     "Honda Civic",
			CarColor:     "Red",
			CarImage:     domain.DefaultImage,
			CreatedAt:    created.Add(time.Hour),
		},
	}
}

// Seed inserts the demo data. Records that already exist are skipped, so
// seeding is safe to repeat.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, user := range DemoUsers() {
		if err := s.userRepo.Create(ctx, user); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed user %s: %w", user.Username, err)
		}
	}

	for _, trip := range DemoTrips() {
		if err := s.tripRepo.Create(ctx, trip); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed trip %s: %w", trip.ID, err)
		}
	}

	return nil
}
