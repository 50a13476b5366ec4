package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ecorueda/internal/auth"
	"ecorueda/internal/handler"
	"ecorueda/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	VehicleHandler *handler.VehicleHandler
	TripHandler    *handler.TripHandler
	PaymentHandler *handler.PaymentHandler
	Tokens         *auth.JWTManager
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	authRequired := middleware.AuthRequired(deps.Tokens)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Auth routes.
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", deps.AuthHandler.Register)
			authRoutes.POST("/login", deps.AuthHandler.Login)
			authRoutes.POST("/change-password", authRequired, deps.AuthHandler.ChangePassword)
		}

		// Vehicle routes. Reads are public so the map renders before login.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", deps.VehicleHandler.GetAll)
			vehicles.GET("/search", deps.VehicleHandler.Search)
			vehicles.GET("/stats", deps.VehicleHandler.Stats)
			vehicles.GET("/:id", deps.VehicleHandler.Get)
			vehicles.POST("", authRequired, middleware.AdminOnly(), deps.VehicleHandler.Create)
			vehicles.POST("/:id/reserve", authRequired, deps.VehicleHandler.Reserve)
			vehicles.POST("/:id/release", authRequired, deps.VehicleHandler.Release)
		}

		// Trip routes.
		trips := v1.Group("/trips", authRequired)
		{
			trips.POST("/start", deps.TripHandler.Start)
			trips.POST("/finish", deps.TripHandler.Finish)
			trips.POST("/cancel", deps.TripHandler.Cancel)
			trips.GET("/active", deps.TripHandler.Active)
			trips.GET("/history", deps.TripHandler.History)
			trips.GET("/stats", deps.TripHandler.Stats)
			trips.GET("/:id", deps.TripHandler.Get)
		}

		// Payment method routes.
		payments := v1.Group("/payments", authRequired)
		{
			payments.GET("", deps.PaymentHandler.List)
			payments.POST("", deps.PaymentHandler.Add)
			payments.PUT("/:id/default", deps.PaymentHandler.SetDefault)
			payments.DELETE("/:id", deps.PaymentHandler.Delete)
		}

		// Profile routes.
		profile := v1.Group("/profile", authRequired)
		{
			profile.GET("", deps.UserHandler.GetProfile)
			profile.PUT("", deps.UserHandler.UpdateProfile)
			profile.GET("/wallet", deps.UserHandler.GetWallet)
			profile.POST("/wallet/recharge", deps.UserHandler.Recharge)
		}
	}

	return router
}
