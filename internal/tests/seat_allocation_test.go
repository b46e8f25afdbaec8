package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/repository/memory"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 1. SEAT ALLOCATION EDGE CASES
// ──────────────────────────────────────────────

func newDriver(id string) *domain.User {
	return &domain.User{ID: id, Username: "driver-" + id, Type: domain.UserTypeDriver, Rating: 4.5}
}

func newPassenger(id string) *domain.User {
	return &domain.User{ID: id, Username: "passenger-" + id, Type: domain.UserTypePassenger, Rating: 5}
}

func publishTrip(t *testing.T, svc *service.TripService, driverID string, seats int) *domain.Trip {
	t.Helper()
	trip, err := svc.CreateTrip(context.Background(), service.CreateTripRequest{
		DriverID:    driverID,
		Origin:      "Downtown",
		Destination: "Airport",
		Date:        "2023-06-15",
		Time:        "14:00",
		Seats:       seats,
		CarModel:    "Toyota Camry",
		CarColor:    "Blue",
	})
	if err != nil {
		t.Fatalf("unexpected error creating trip: %v", err)
	}
	return trip
}

func TestSeats_LastSeatGoesToExactlyOnePassenger(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	tripRepo := memory.NewTripRepository()
	userRepo.AddUser(newDriver("d1"))

	const contenders = 20
	for i := 0; i < contenders; i++ {
		userRepo.AddUser(newPassenger(fmt.Sprintf("p%d", i)))
	}

	svc := service.NewTripService(tripRepo, userRepo, nil, nil, nil)
	trip := publishTrip(t, svc, "d1", 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.JoinTrip(context.Background(), service.RosterRequest{
				TripID: trip.ID,
				UserID: fmt.Sprintf("p%d", i),
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result.Changed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly 1 passenger to get the seat, got %d", winners)
	}

	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored.Passengers) != 1 {
		t.Errorf("expected 1 passenger aboard, got %d", len(stored.Passengers))
	}
}

func TestSeats_JoinTwiceKeepsSingleSeat(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(newDriver("d1"))
	userRepo.AddUser(newPassenger("p1"))
	svc := service.NewTripService(memory.NewTripRepository(), userRepo, nil, nil, nil)
	trip := publishTrip(t, svc, "d1", 3)

	for i := 0; i < 3; i++ {
		if _, err := svc.JoinTrip(context.Background(), service.RosterRequest{TripID: trip.ID, UserID: "p1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stored, _ := svc.GetTrip(context.Background(), trip.ID)
	if len(stored.Passengers) != 1 {
		t.Errorf("expected 1 passenger, got %v", stored.Passengers)
	}
	if stored.AvailableSeats() != 2 {
		t.Errorf("expected 2 available seats, got %d", stored.AvailableSeats())
	}
}

func TestSeats_LeaveFreesSeatForNextPassenger(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(newDriver("d1"))
	userRepo.AddUser(newPassenger("p1"))
	userRepo.AddUser(newPassenger("p2"))
	svc := service.NewTripService(memory.NewTripRepository(), userRepo, nil, nil, nil)
	trip := publishTrip(t, svc, "d1", 1)

	ctx := context.Background()
	if _, err := svc.JoinTrip(ctx, service.RosterRequest{TripID: trip.ID, UserID: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocked, err := svc.JoinTrip(ctx, service.RosterRequest{TripID: trip.ID, UserID: "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked.Changed {
		t.Error("expected join on a full trip to be a no-op")
	}

	if _, err := svc.LeaveTrip(ctx, service.RosterRequest{TripID: trip.ID, UserID: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined, err := svc.JoinTrip(ctx, service.RosterRequest{TripID: trip.ID, UserID: "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !joined.Changed {
		t.Error("expected the freed seat to be taken")
	}
	if !joined.Trip.HasPassenger("p2") || joined.Trip.HasPassenger("p1") {
		t.Errorf("unexpected roster %v", joined.Trip.Passengers)
	}
}

func TestSeats_DriverCannotShrinkBelowRoster(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(newDriver("d1"))
	userRepo.AddUser(newPassenger("p1"))
	userRepo.AddUser(newPassenger("p2"))
	svc := service.NewTripService(memory.NewTripRepository(), userRepo, nil, nil, nil)
	trip := publishTrip(t, svc, "d1", 3)

	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		if _, err := svc.JoinTrip(ctx, service.RosterRequest{TripID: trip.ID, UserID: id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	one := 1
	_, err := svc.UpdateTrip(ctx, service.UpdateTripRequest{
		TripID:  trip.ID,
		ActorID: "d1",
		Update:  domain.TripUpdate{Seats: &one},
	})
	if !errors.Is(err, domain.ErrSeatsBelowPassengers) {
		t.Errorf("expected ErrSeatsBelowPassengers, got %v", err)
	}

	two := 2
	updated, err := svc.UpdateTrip(ctx, service.UpdateTripRequest{
		TripID:  trip.ID,
		ActorID: "d1",
		Update:  domain.TripUpdate{Seats: &two},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsFull() {
		t.Error("expected trip to be full after shrinking to the roster size")
	}
}

func TestSeats_FullTripsHiddenFromSearch(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(newDriver("d1"))
	userRepo.AddUser(newPassenger("p1"))
	svc := service.NewTripService(memory.NewTripRepository(), userRepo, nil, nil, nil)

	full := publishTrip(t, svc, "d1", 1)
	open := publishTrip(t, svc, "d1", 2)

	ctx := context.Background()
	if _, err := svc.JoinTrip(ctx, service.RosterRequest{TripID: full.ID, UserID: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := svc.SearchTrips(ctx, domain.TripFilter{Destination: "airport"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != open.ID {
		t.Errorf("expected only the open trip, got %d results", len(results))
	}

	mine, err := svc.UserTrips(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != full.ID {
		t.Errorf("expected the full trip in the passenger's trips, got %d", len(mine))
	}
}
