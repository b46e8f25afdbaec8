package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	TripHandler   *handler.TripHandler
	Authenticator middleware.Authenticator
	RedisClient   *redis.Client // Optional: enables Idempotency-Key replay
	NewRelicApp   *newrelic.Application
	Logger        *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	requireAuth := []gin.HandlerFunc{
		middleware.AuthMiddleware(deps.Authenticator),
		middleware.NewRelicUserMiddleware(),
	}

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Auth routes.
		auth := v1.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
			auth.POST("/logout", append(requireAuth, deps.AuthHandler.Logout)...)
			auth.GET("/me", append(requireAuth, deps.AuthHandler.Me)...)
		}

		// User routes.
		users := v1.Group("/users")
		{
			users.GET("", deps.UserHandler.GetAll)
			users.GET("/:id", deps.UserHandler.GetUser)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)

			owned := trips.Group("", requireAuth...)
			owned.POST("", deps.TripHandler.CreateTrip)
			owned.PATCH("/:id", deps.TripHandler.UpdateTrip)
			owned.DELETE("/:id", deps.TripHandler.DeleteTrip)
			owned.POST("/:id/join", deps.TripHandler.JoinTrip)
			owned.POST("/:id/leave", deps.TripHandler.LeaveTrip)
		}

		// Current user routes.
		me := v1.Group("/me", requireAuth...)
		{
			me.GET("/trips", deps.TripHandler.MyTrips)
		}
	}

	return router
}
