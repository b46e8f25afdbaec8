package domain

import "time"

// UserType represents the role a user registered with.
type UserType string

const (
	UserTypeDriver    UserType = "driver"
	UserTypePassenger UserType = "passenger"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeDriver || t == UserTypePassenger
}

// DefaultImage is used wherever a user or trip has no uploaded image.
const DefaultImage = "/placeholder.svg"

// DefaultRating is the rating every newly registered user starts with.
const DefaultRating = 5.0

// JoinDateLayout is the format of User.JoinDate.
const JoinDateLayout = "2006-01-02"

// User represents a registered driver or passenger.
type User struct {
	ID           string
	Username     string
	Email        string
	Type         UserType
	PasswordHash string // Empty for seeded demo accounts
	ProfileImage string
	IDImage      string
	LicenseImage string // Drivers only
	CarImage     string // Drivers only
	Rating       float64
	TripCount    int
	JoinDate     string
	CreatedAt    time.Time
}

// IsDriver reports whether the user registered as a driver.
func (u *User) IsDriver() bool {
	return u.Type == UserTypeDriver
}

// IsPassenger reports whether the user registered as a passenger.
func (u *User) IsPassenger() bool {
	return u.Type == UserTypePassenger
}
