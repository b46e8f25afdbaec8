package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository/memory"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 2. SESSION EDGE CASES
// ──────────────────────────────────────────────

func newAuthService(userRepo *MockUserRepository, sessions *MockSessionStore) *service.AuthService {
	return service.NewAuthService(userRepo, memory.NewTripRepository(), sessions, nil, service.AuthOptions{
		SessionTTL: 2 * time.Hour,
		BcryptCost: 4,
	})
}

func TestSession_CreatedWithConfiguredTTL(t *testing.T) {
	t.Parallel()

	sessions := NewMockSessionStore()
	svc := newAuthService(NewMockUserRepository(), sessions)

	session, err := svc.Register(context.Background(), service.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
		Type:     domain.UserTypePassenger,
		IDImage:  "id.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sessions.TTL(session.Token); got != 2*time.Hour {
		t.Errorf("expected session TTL 2h, got %v", got)
	}
}

func TestSession_ExpiredTokenIsRejected(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "u1", Username: "demo", Type: domain.UserTypePassenger})
	sessions := NewMockSessionStore()
	svc := newAuthService(userRepo, sessions)

	session, err := svc.Login(context.Background(), "demo", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sessions.Expire(session.Token)

	_, err = svc.Authenticate(context.Background(), session.Token)
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSession_LogoutTwiceFails(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "u1", Username: "demo", Type: domain.UserTypeDriver})
	sessions := NewMockSessionStore()
	svc := newAuthService(userRepo, sessions)

	session, err := svc.Login(context.Background(), "demo", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessions.CountSessions() != 0 {
		t.Errorf("expected no sessions after logout, got %d", sessions.CountSessions())
	}

	if err := svc.Logout(context.Background(), session.Token); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSession_StoreFailureSurfaces(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "u1", Username: "demo", Type: domain.UserTypeDriver})
	sessions := NewMockSessionStore()
	sessions.CreateError = errors.New("redis unavailable")
	svc := newAuthService(userRepo, sessions)

	_, err := svc.Login(context.Background(), "demo", "")
	if err == nil {
		t.Fatal("expected error when the session store fails")
	}
}

func TestSession_DeletedUserIsUnauthenticated(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	sessions := NewMockSessionStore()
	svc := newAuthService(userRepo, sessions)

	if err := sessions.Create(context.Background(), "orphan", "ghost", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Authenticate(context.Background(), "orphan")
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSession_RegisterCreatesOneUser(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	svc := newAuthService(userRepo, NewMockSessionStore())

	req := service.RegisterRequest{
		Username:     "bob",
		Email:        "bob@example.com",
		Password:     "secret1",
		Type:         domain.UserTypeDriver,
		IDImage:      "id.png",
		LicenseImage: "license.png",
		CarImage:     "car.png",
	}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, service.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	if userRepo.CountUsers() != 1 {
		t.Errorf("expected 1 user, got %d", userRepo.CountUsers())
	}
	if userRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 Create call, got %d", userRepo.CreateCallCount)
	}
}
