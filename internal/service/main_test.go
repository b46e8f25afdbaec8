package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"carpool/internal/domain"
	"carpool/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	users    *memory.UserRepository
	trips    *memory.TripRepository
	sessions *memory.SessionStore
	logs     *observer.ObservedLogs
	auth     *AuthService
	trip     *TripService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	f := &fixture{
		users:    memory.NewUserRepository(),
		trips:    memory.NewTripRepository(),
		sessions: memory.NewSessionStore(),
		logs:     logs,
	}
	notifications := NewNotificationService(logger)
	f.auth = NewAuthService(f.users, f.trips, f.sessions, notifications, AuthOptions{BcryptCost: 4})
	f.trip = NewTripService(f.trips, f.users, nil, notifications, logger)
	return f
}

func (f *fixture) addUser(t *testing.T, id string, typ domain.UserType) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:       id,
		Username: "user-" + id,
		Type:     typ,
		Rating:   domain.DefaultRating,
		CarImage: "car-" + id + ".png",
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// notifications returns the notification types delivered to recipient.
func (f *fixture) notifications(recipient string) []string {
	var types []string
	for _, entry := range f.logs.FilterField(zap.String("recipient", recipient)).All() {
		types = append(types, entry.ContextMap()["type"].(string))
	}
	return types
}
