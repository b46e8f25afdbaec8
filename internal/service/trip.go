package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// TripService handles trip publishing and seat allocation.
type TripService struct {
	tripRepo            repository.TripRepository
	userRepo            repository.UserRepository
	cacheStore          redis.TripCacheInterface
	notificationService *NotificationService
	logger              *zap.Logger
	now                 func() time.Time
}

// NewTripService creates a new TripService. cacheStore may be nil.
func NewTripService(
	tripRepo repository.TripRepository,
	userRepo repository.UserRepository,
	cacheStore redis.TripCacheInterface,
	notificationService *NotificationService,
	logger *zap.Logger,
) *TripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripService{
		tripRepo:            tripRepo,
		userRepo:            userRepo,
		cacheStore:          cacheStore,
		notificationService: notificationService,
		logger:              logger.Named("trip"),
		now:                 time.Now,
	}
}

// CreateTripRequest contains the parameters for publishing a trip.
type CreateTripRequest struct {
	DriverID    string
	Origin      string
	Destination string
	Date        string
	Time        string
	Seats       int
	CarModel    string
	CarColor    string
	CarImage    string // Optional: defaults to the driver's car image
}

// CreateTrip publishes a new trip with an empty roster.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	req.CarModel = strings.TrimSpace(req.CarModel)
	req.CarColor = strings.TrimSpace(req.CarColor)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	driver, err := s.loadActor(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	if !driver.IsDriver() {
		return nil, ErrNotDriver
	}

	carImage := req.CarImage
	if carImage == "" {
		carImage = driver.CarImage
	}
	if carImage == "" {
		carImage = domain.DefaultImage
	}

	trip := &domain.Trip{
		ID:           uuid.New().String(),
		DriverID:     driver.ID,
		DriverName:   driver.Username,
		DriverRating: driver.Rating,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Date:         req.Date,
		Time:         req.Time,
		Seats:        req.Seats,
		Passengers:   []string{},
		CarModel:     req.CarModel,
		CarColor:     req.CarColor,
		CarImage:     carImage,
		CreatedAt:    s.now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTripCreated(ctx, trip)
	}

	return trip, nil
}

// validateCreateRequest validates the create trip request.
func (s *TripService) validateCreateRequest(req CreateTripRequest) error {
	if req.DriverID == "" {
		return ErrInvalidUserID
	}

	if req.Origin == "" {
		return ErrInvalidOrigin
	}

	if req.Destination == "" {
		return ErrInvalidDestination
	}

	if !isValidDate(req.Date) {
		return ErrInvalidDate
	}

	if !isValidTime(req.Time) {
		return ErrInvalidTime
	}

	if req.Seats < 1 || req.Seats > domain.MaxSeats {
		return ErrInvalidSeats
	}

	if req.CarModel == "" {
		return ErrInvalidCarModel
	}

	if req.CarColor == "" {
		return ErrInvalidCarColor
	}

	return nil
}

func isValidDate(date string) bool {
	_, err := time.Parse(domain.TripDateLayout, date)
	return err == nil
}

func isValidTime(clock string) bool {
	_, err := time.Parse(domain.TripTimeLayout, clock)
	return err == nil
}

// UpdateTripRequest contains the parameters for editing a trip.
type UpdateTripRequest struct {
	TripID  string
	ActorID string
	Update  domain.TripUpdate
}

// UpdateTrip edits a trip on behalf of its driver.
func (s *TripService) UpdateTrip(ctx context.Context, req UpdateTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	update, err := normalizeUpdate(req.Update)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadOwnedTrip(ctx, req.TripID, req.ActorID); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.Update(ctx, req.TripID, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, trip.ID)

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTripUpdated(ctx, trip)
	}

	return trip, nil
}

// normalizeUpdate trims and validates the supplied fields.
func normalizeUpdate(u domain.TripUpdate) (domain.TripUpdate, error) {
	if u.IsEmpty() {
		return u, ErrEmptyUpdate
	}

	required := []struct {
		field **string
		err   error
	}{
		{&u.Origin, ErrInvalidOrigin},
		{&u.Destination, ErrInvalidDestination},
		{&u.CarModel, ErrInvalidCarModel},
		{&u.CarColor, ErrInvalidCarColor},
	}
	for _, r := range required {
		if *r.field == nil {
			continue
		}
		trimmed := strings.TrimSpace(**r.field)
		if trimmed == "" {
			return u, r.err
		}
		*r.field = &trimmed
	}

	if u.Date != nil && !isValidDate(*u.Date) {
		return u, ErrInvalidDate
	}

	if u.Time != nil && !isValidTime(*u.Time) {
		return u, ErrInvalidTime
	}

	if u.Seats != nil && (*u.Seats < 1 || *u.Seats > domain.MaxSeats) {
		return u, ErrInvalidSeats
	}

	return u, nil
}

// DeleteTripRequest contains the parameters for deleting a trip.
type DeleteTripRequest struct {
	TripID  string
	ActorID string
}

// DeleteTrip removes a trip on behalf of its driver, whether or not
// passengers have joined.
func (s *TripService) DeleteTrip(ctx context.Context, req DeleteTripRequest) error {
	if req.TripID == "" {
		return ErrInvalidTripID
	}

	trip, err := s.loadOwnedTrip(ctx, req.TripID, req.ActorID)
	if err != nil {
		return err
	}

	if err := s.tripRepo.Delete(ctx, req.TripID); err != nil {
		return err
	}
	s.invalidate(ctx, req.TripID)

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTripDeleted(ctx, trip)
	}

	return nil
}

// RosterRequest identifies a passenger joining or leaving a trip.
type RosterRequest struct {
	TripID string
	UserID string
}

// RosterResult is the trip after a join or leave. Changed is false when
// the request was a no-op.
type RosterResult struct {
	Trip    *domain.Trip
	Changed bool
}

// JoinTrip takes a seat on a trip. Joining a trip the passenger is already
// on, or one that is full, leaves the roster unchanged.
func (s *TripService) JoinTrip(ctx context.Context, req RosterRequest) (*RosterResult, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	passenger, err := s.loadActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if !passenger.IsPassenger() {
		return nil, ErrNotPassenger
	}

	trip, changed, err := s.tripRepo.AddPassenger(ctx, req.TripID, passenger.ID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.invalidate(ctx, trip.ID)
		if s.notificationService != nil {
			_ = s.notificationService.NotifyTripJoined(ctx, trip, passenger)
		}
	} else {
		s.logger.Debug("join was a no-op",
			zap.String("trip_id", trip.ID),
			zap.String("user_id", passenger.ID),
			zap.Bool("already_passenger", trip.HasPassenger(passenger.ID)),
			zap.Bool("full", trip.IsFull()),
		)
	}

	return &RosterResult{Trip: trip, Changed: changed}, nil
}

// LeaveTrip gives up a seat. Leaving a trip the user is not on leaves the
// roster unchanged.
func (s *TripService) LeaveTrip(ctx context.Context, req RosterRequest) (*RosterResult, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	passenger, err := s.loadActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	trip, changed, err := s.tripRepo.RemovePassenger(ctx, req.TripID, passenger.ID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.invalidate(ctx, trip.ID)
		if s.notificationService != nil {
			_ = s.notificationService.NotifyTripLeft(ctx, trip, passenger)
		}
	}

	return &RosterResult{Trip: trip, Changed: changed}, nil
}

// GetTrip retrieves a trip by ID, serving from cache when available. The
// cache generation is read before the repository so that a mutation landing
// in between makes the cache write a no-op.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.cacheStore == nil {
		return s.tripRepo.GetByID(ctx, tripID)
	}

	cached, err := s.cacheStore.GetTrip(ctx, tripID)
	if err != nil {
		s.logger.Warn("trip cache read failed", zap.String("trip_id", tripID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	version, versionErr := s.cacheStore.TripVersion(ctx, tripID)
	if versionErr != nil {
		s.logger.Warn("trip cache version read failed", zap.String("trip_id", tripID), zap.Error(versionErr))
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if versionErr == nil {
		if err := s.cacheStore.SetTrip(ctx, trip, version); err != nil {
			s.logger.Warn("trip cache write failed", zap.String("trip_id", tripID), zap.Error(err))
		}
	}

	return trip, nil
}

// ListTrips retrieves all trips.
func (s *TripService) ListTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// SearchTrips retrieves the trips with free seats matching the filter.
func (s *TripService) SearchTrips(ctx context.Context, filter domain.TripFilter) ([]*domain.Trip, error) {
	filter.Origin = strings.TrimSpace(filter.Origin)
	filter.Destination = strings.TrimSpace(filter.Destination)
	filter.Date = strings.TrimSpace(filter.Date)

	if filter.Date != "" && !isValidDate(filter.Date) {
		return nil, ErrInvalidDate
	}

	return s.tripRepo.Search(ctx, filter)
}

// UserTrips retrieves the trips a user drives or rides in.
func (s *TripService) UserTrips(ctx context.Context, userID string) ([]*domain.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.tripRepo.GetByUser(ctx, userID)
}

// loadActor retrieves the user performing an operation.
func (s *TripService) loadActor(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}

// loadOwnedTrip retrieves a trip and checks that actorID drives it.
func (s *TripService) loadOwnedTrip(ctx context.Context, tripID, actorID string) (*domain.Trip, error) {
	if actorID == "" {
		return nil, ErrInvalidUserID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != actorID {
		return nil, ErrNotTripOwner
	}

	return trip, nil
}

// invalidate drops a trip from cache after it changed.
func (s *TripService) invalidate(ctx context.Context, tripID string) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateTrip(ctx, tripID); err != nil {
		s.logger.Warn("trip cache invalidation failed", zap.String("trip_id", tripID), zap.Error(err))
	}
}
