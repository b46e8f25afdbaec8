package service

import "errors"

var (
	// ErrInvalidUsername is returned when the username is empty.
	ErrInvalidUsername = errors.New("username is required")

	// ErrInvalidEmail is returned when the email is empty or malformed.
	ErrInvalidEmail = errors.New("email is invalid")

	// ErrInvalidPassword is returned when the password is missing or too short.
	ErrInvalidPassword = errors.New("password must be between 6 and 72 characters")

	// ErrPasswordMismatch is returned when the confirmation does not match.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidUserType is returned when the user type is neither driver nor passenger.
	ErrInvalidUserType = errors.New("user type must be driver or passenger")

	// ErrMissingIDImage is returned when a registration lacks an ID image.
	ErrMissingIDImage = errors.New("id image is required")

	// ErrMissingLicenseImage is returned when a driver registration lacks a license image.
	ErrMissingLicenseImage = errors.New("license image is required for drivers")

	// ErrMissingCarImage is returned when a driver registration lacks a car image.
	ErrMissingCarImage = errors.New("car image is required for drivers")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned when a session token is missing, expired or unknown.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidOrigin is returned when origin is empty.
	ErrInvalidOrigin = errors.New("origin is required")

	// ErrInvalidDestination is returned when destination is empty.
	ErrInvalidDestination = errors.New("destination is required")

	// ErrInvalidDate is returned when the date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidTime is returned when the time is not HH:MM.
	ErrInvalidTime = errors.New("time must be HH:MM")

	// ErrInvalidSeats is returned when the seat count is outside 1..domain.MaxSeats.
	ErrInvalidSeats = errors.New("seats must be between 1 and 7")

	// ErrInvalidCarModel is returned when car model is empty.
	ErrInvalidCarModel = errors.New("car model is required")

	// ErrInvalidCarColor is returned when car color is empty.
	ErrInvalidCarColor = errors.New("car color is required")

	// ErrEmptyUpdate is returned when a trip update changes nothing.
	ErrEmptyUpdate = errors.New("no fields to update")

	// ErrNotDriver is returned when a non-driver tries to publish a trip.
	ErrNotDriver = errors.New("only drivers can publish trips")

	// ErrNotPassenger is returned when a non-passenger tries to join a trip.
	ErrNotPassenger = errors.New("only passengers can join trips")

	// ErrNotTripOwner is returned when someone other than the driver edits or deletes a trip.
	ErrNotTripOwner = errors.New("only the trip's driver can modify it")
)
