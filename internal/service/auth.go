package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// AuthService handles registration, login and sessions.
type AuthService struct {
	userRepo            repository.UserRepository
	tripRepo            repository.TripRepository
	sessions            redis.SessionStoreInterface
	notificationService *NotificationService
	sessionTTL          time.Duration
	bcryptCost          int
	now                 func() time.Time
}

// AuthOptions tunes session lifetime and password hashing.
type AuthOptions struct {
	SessionTTL time.Duration
	BcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	tripRepo repository.TripRepository,
	sessions redis.SessionStoreInterface,
	notificationService *NotificationService,
	opts AuthOptions,
) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:            userRepo,
		tripRepo:            tripRepo,
		sessions:            sessions,
		notificationService: notificationService,
		sessionTTL:          opts.SessionTTL,
		bcryptCost:          opts.BcryptCost,
		now:                 time.Now,
	}
}

// Session is an authenticated login.
type Session struct {
	Token     string
	User      *domain.User
	ExpiresAt time.Time
}

// RegisterRequest contains the parameters for registering a user.
type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string // Optional: checked when set
	Type            domain.UserType
	IDImage         string
	LicenseImage    string // Required for drivers
	CarImage        string // Required for drivers
}

// Register creates a user and logs them in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validateRegisterRequest(req); err != nil {
		return nil, err
	}

	_, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		Type:         req.Type,
		PasswordHash: string(hash),
		ProfileImage: domain.DefaultImage,
		IDImage:      req.IDImage,
		LicenseImage: req.LicenseImage,
		CarImage:     req.CarImage,
		Rating:       domain.DefaultRating,
		TripCount:    0,
		JoinDate:     now.Format(domain.JoinDateLayout),
		CreatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyRegistered(ctx, user)
	}

	return s.startSession(ctx, user)
}

// validateRegisterRequest validates the register request.
func (s *AuthService) validateRegisterRequest(req RegisterRequest) error {
	if req.Username == "" {
		return ErrInvalidUsername
	}

	if req.Email == "" || !emailPattern.MatchString(req.Email) {
		return ErrInvalidEmail
	}

	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		return ErrInvalidPassword
	}

	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return ErrPasswordMismatch
	}

	if !req.Type.Valid() {
		return ErrInvalidUserType
	}

	if strings.TrimSpace(req.IDImage) == "" {
		return ErrMissingIDImage
	}

	if req.Type == domain.UserTypeDriver {
		if strings.TrimSpace(req.LicenseImage) == "" {
			return ErrMissingLicenseImage
		}
		if strings.TrimSpace(req.CarImage) == "" {
			return ErrMissingCarImage
		}
	}

	return nil
}

// Login authenticates a user by username and password. Accounts without a
// stored password hash (seeded demo users) are matched by username alone.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyLoggedIn(ctx, user)
	}

	return s.startSession(ctx, user)
}

// Logout ends the session identified by token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthenticated
	}

	userID, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthenticated
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyLoggedOut(ctx, userID)
	}

	return nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthenticated
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

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers retrieves all users.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.GetAll(ctx)
}

// Profile is a user together with their trip activity.
type Profile struct {
	User         *domain.User
	TripsOffered int // Trips the user drives
	TripsTaken   int // Trips the user rides in
}

// GetProfile retrieves a user with their trip statistics.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	trips, err := s.tripRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	for _, trip := range trips {
		if trip.DriverID == userID {
			profile.TripsOffered++
		} else if trip.HasPassenger(userID) {
			profile.TripsTaken++
		}
	}

	return profile, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*Session, error) {
	token := uuid.New().String()
	if err := s.sessions.Create(ctx, token, user.ID, s.sessionTTL); err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		User:      user,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}, nil
}
