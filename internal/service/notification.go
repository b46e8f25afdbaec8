package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"carpool/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationUserRegistered  NotificationType = "USER_REGISTERED"
	NotificationUserLoggedIn    NotificationType = "USER_LOGGED_IN"
	NotificationUserLoggedOut   NotificationType = "USER_LOGGED_OUT"
	NotificationTripCreated     NotificationType = "TRIP_CREATED"
	NotificationTripUpdated     NotificationType = "TRIP_UPDATED"
	NotificationTripDeleted     NotificationType = "TRIP_DELETED"
	NotificationTripJoined      NotificationType = "TRIP_JOINED"
	NotificationTripLeft        NotificationType = "TRIP_LEFT"
	NotificationPassengerJoined NotificationType = "PASSENGER_JOINED"
	NotificationPassengerLeft   NotificationType = "PASSENGER_LEFT"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// NotificationService delivers user-facing notifications. Delivery is a
// structured log entry per notification.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger.Named("notification")}
}

// NotifyRegistered welcomes a newly registered user.
func (s *NotificationService) NotifyRegistered(ctx context.Context, user *domain.User) error {
	return s.send(ctx, Notification{
		Type:        NotificationUserRegistered,
		RecipientID: user.ID,
		Title:       "Registration successful",
		Message:     fmt.Sprintf("Welcome to Ride with Me, %s!", user.Username),
		Data:        map[string]any{"user_type": user.Type},
	})
}

// NotifyLoggedIn greets a user who logged in.
func (s *NotificationService) NotifyLoggedIn(ctx context.Context, user *domain.User) error {
	return s.send(ctx, Notification{
		Type:        NotificationUserLoggedIn,
		RecipientID: user.ID,
		Title:       "Login successful",
		Message:     fmt.Sprintf("Welcome back, %s!", user.Username),
	})
}

// NotifyLoggedOut confirms a logout.
func (s *NotificationService) NotifyLoggedOut(ctx context.Context, userID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationUserLoggedOut,
		RecipientID: userID,
		Title:       "Logged out",
		Message:     "You have been successfully logged out",
	})
}

// NotifyTripCreated confirms a published trip to its driver.
func (s *NotificationService) NotifyTripCreated(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCreated,
		RecipientID: trip.DriverID,
		Title:       "Trip Created",
		Message:     "Your trip has been successfully created",
		Data:        tripData(trip),
	})
}

// NotifyTripUpdated confirms an edit to the trip's driver.
func (s *NotificationService) NotifyTripUpdated(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripUpdated,
		RecipientID: trip.DriverID,
		Title:       "Trip Updated",
		Message:     "The trip details have been updated",
		Data:        tripData(trip),
	})
}

// NotifyTripDeleted confirms a deletion to the trip's driver. Passengers
// are not notified.
func (s *NotificationService) NotifyTripDeleted(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripDeleted,
		RecipientID: trip.DriverID,
		Title:       "Trip Deleted",
		Message:     "The trip has been successfully deleted",
		Data:        map[string]any{"trip_id": trip.ID},
	})
}

// NotifyTripJoined tells the passenger they joined and the driver that a
// seat was taken.
func (s *NotificationService) NotifyTripJoined(ctx context.Context, trip *domain.Trip, passenger *domain.User) error {
	_ = s.send(ctx, Notification{
		Type:        NotificationTripJoined,
		RecipientID: passenger.ID,
		Title:       "Trip Joined",
		Message:     "You have successfully joined the trip",
		Data:        tripData(trip),
	})
	return s.send(ctx, Notification{
		Type:        NotificationPassengerJoined,
		RecipientID: trip.DriverID,
		Title:       "New Passenger",
		Message:     fmt.Sprintf("%s joined your trip to %s", passenger.Username, trip.Destination),
		Data:        tripData(trip),
	})
}

// NotifyTripLeft tells the passenger they left and the driver that a seat
// opened up.
func (s *NotificationService) NotifyTripLeft(ctx context.Context, trip *domain.Trip, passenger *domain.User) error {
	_ = s.send(ctx, Notification{
		Type:        NotificationTripLeft,
		RecipientID: passenger.ID,
		Title:       "Left Trip",
		Message:     "You have left the trip",
		Data:        map[string]any{"trip_id": trip.ID},
	})
	return s.send(ctx, Notification{
		Type:        NotificationPassengerLeft,
		RecipientID: trip.DriverID,
		Title:       "Passenger Left",
		Message:     fmt.Sprintf("%s left your trip to %s", passenger.Username, trip.Destination),
		Data:        tripData(trip),
	})
}

func tripData(trip *domain.Trip) map[string]any {
	return map[string]any{
		"trip_id":         trip.ID,
		"origin":          trip.Origin,
		"destination":     trip.Destination,
		"available_seats": trip.AvailableSeats(),
	}
}

// send delivers a notification.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	s.logger.Info(notification.Title,
		zap.String("type", string(notification.Type)),
		zap.String("recipient", notification.RecipientID),
		zap.String("message", notification.Message),
		zap.Any("data", notification.Data),
		zap.Time("created_at", notification.CreatedAt),
	)

	return nil
}
