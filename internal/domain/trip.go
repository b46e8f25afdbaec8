package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	// TripDateLayout is the format of Trip.Date.
	TripDateLayout = "2006-01-02"

	// TripTimeLayout is the format of Trip.Time.
	TripTimeLayout = "15:04"

	// MaxSeats is the most seats a driver can offer on one trip.
	MaxSeats = 7
)

var (
	// ErrSeatsBelowPassengers is returned when a trip would hold more
	// passengers than it has seats.
	ErrSeatsBelowPassengers = errors.New("seats below passenger count")

	// ErrDuplicatePassenger is returned when a roster lists the same user twice.
	ErrDuplicatePassenger = errors.New("duplicate passenger")
)

// Trip represents a driver-published trip and the passengers who joined it.
type Trip struct {
	ID           string
	DriverID     string
	DriverName   string
	DriverRating float64
	Origin       string
	Destination  string
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	Seats        int
	Passengers   []string
	CarModel     string
	CarColor     string
	CarImage     string
	CreatedAt    time.Time
}

// AvailableSeats returns the number of seats still open.
func (t *Trip) AvailableSeats() int {
	n := t.Seats - len(t.Passengers)
	if n < 0 {
		return 0
	}
	return n
}

// IsFull reports whether no seats are left.
func (t *Trip) IsFull() bool {
	return len(t.Passengers) >= t.Seats
}

// HasPassenger reports whether userID is on the roster.
func (t *Trip) HasPassenger(userID string) bool {
	for _, id := range t.Passengers {
		if id == userID {
			return true
		}
	}
	return false
}

// Involves reports whether userID drives the trip or rides in it.
func (t *Trip) Involves(userID string) bool {
	return t.DriverID == userID || t.HasPassenger(userID)
}

// Join appends userID to the roster. It leaves the trip untouched and
// returns false when the user is already a passenger or the trip is full.
func (t *Trip) Join(userID string) bool {
	if t.HasPassenger(userID) || t.IsFull() {
		return false
	}
	t.Passengers = append(t.Passengers, userID)
	return true
}

// Leave removes the first occurrence of userID from the roster. It
// returns false when the user was not a passenger.
func (t *Trip) Leave(userID string) bool {
	for i, id := range t.Passengers {
		if id == userID {
			passengers := make([]string, 0, len(t.Passengers)-1)
			passengers = append(passengers, t.Passengers[:i]...)
			passengers = append(passengers, t.Passengers[i+1:]...)
			t.Passengers = passengers
			return true
		}
	}
	return false
}

// Validate checks the roster invariants.
func (t *Trip) Validate() error {
	if len(t.Passengers) > t.Seats {
		return ErrSeatsBelowPassengers
	}
	seen := make(map[string]struct{}, len(t.Passengers))
	for _, id := range t.Passengers {
		if _, ok := seen[id]; ok {
			return ErrDuplicatePassenger
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the trip.
func (t *Trip) Clone() *Trip {
	c := *t
	c.Passengers = append([]string(nil), t.Passengers...)
	return &c
}

// TripUpdate is a partial update of the fields a driver may edit.
// Nil fields are left unchanged.
type TripUpdate struct {
	Origin      *string
	Destination *string
	Date        *string
	Time        *string
	Seats       *int
	CarModel    *string
	CarColor    *string
	CarImage    *string
}

// IsEmpty reports whether the update changes nothing.
func (u TripUpdate) IsEmpty() bool {
	return u.Origin == nil && u.Destination == nil && u.Date == nil && u.Time == nil &&
		u.Seats == nil && u.CarModel == nil && u.CarColor == nil && u.CarImage == nil
}

// Apply merges the update into t. The trip is not modified if the new
// seat count would drop below the current number of passengers.
func (u TripUpdate) Apply(t *Trip) error {
	if u.Seats != nil && *u.Seats < len(t.Passengers) {
		return ErrSeatsBelowPassengers
	}
	if u.Origin != nil {
		t.Origin = *u.Origin
	}
	if u.Destination != nil {
		t.Destination = *u.Destination
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Time != nil {
		t.Time = *u.Time
	}
	if u.Seats != nil {
		t.Seats = *u.Seats
	}
	if u.CarModel != nil {
		t.CarModel = *u.CarModel
	}
	if u.CarColor != nil {
		t.CarColor = *u.CarColor
	}
	if u.CarImage != nil {
		t.CarImage = *u.CarImage
	}
	return nil
}

// TripFilter selects trips for the search page. Empty fields match anything.
type TripFilter struct {
	Origin      string // Case-insensitive substring
	Destination string // Case-insensitive substring
	Date        string // Exact match
}

// IsEmpty reports whether no search criteria were given.
func (f TripFilter) IsEmpty() bool {
	return f.Origin == "" && f.Destination == "" && f.Date == ""
}

// Matches reports whether t satisfies the filter and still has a free seat.
func (f TripFilter) Matches(t *Trip) bool {
	if f.Origin != "" && !containsFold(t.Origin, f.Origin) {
		return false
	}
	if f.Destination != "" && !containsFold(t.Destination, f.Destination) {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	return len(t.Passengers) < t.Seats
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
