package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/neighborhq/backend/internal/cache"
	"github.com/neighborhq/backend/internal/events"
	"github.com/neighborhq/backend/internal/feed"
	"github.com/neighborhq/backend/internal/handlers"
	"github.com/neighborhq/backend/internal/highlight"
	"github.com/neighborhq/backend/internal/middleware"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
	"github.com/neighborhq/backend/internal/repositories"
	"github.com/neighborhq/backend/pkg/config"
	"github.com/neighborhq/backend/pkg/logger"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// The returned teardown releases highlight registrations and the cache
// invalidation subscriptions.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client) (teardown func(), err error) {
	pgdb := db.Postgres

	// AutoMigrate PostgreSQL models
	err = pgdb.AutoMigrate(
		&models.User{},
		&models.Neighborhood{},
		&models.Profile{},
		&models.Notification{},
		&models.Event{},
		&models.EventRSVP{},
		&models.SafetyUpdate{},
		&models.SkillsExchange{},
		&models.GoodsExchange{},
		&models.GroupUpdate{},
	)
	if err != nil {
		return nil, err
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Shared infrastructure ---
	reg := registry.Default()
	bus := events.NewBus()
	dispatcher := highlight.NewDispatcher(logger.Get())
	queryCache := cache.NewQueryCache(db.Redis, cfg.FeedCacheTTL, logger.Get())
	unbindCache := cache.BindInvalidation(bus, queryCache)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	profileRepo := repositories.NewPostgresProfileRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb, reg)
	eventRepo := repositories.NewPostgresEventRepository(pgdb)
	safetyRepo := repositories.NewPostgresSafetyRepository(pgdb)
	exchangeRepo := repositories.NewPostgresExchangeRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)

	fetchers := repositories.NewContentFetchers(pgdb, reg)
	aggregator := feed.NewAggregator(fetchers, profileRepo, reg, logger.Get())

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, profileRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Profile routes
	profileHandler := handlers.NewProfileHandler(profileRepo, userRepo)
	profileHandler.RegisterProfileRoutes(api)
	log.Println("Profile routes configured.")

	// Notification feed routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, aggregator, queryCache)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Highlight routes
	highlightHandler := handlers.NewHighlightHandler(dispatcher, reg)
	highlightHandler.RegisterHighlightRoutes(api)
	log.Println("Highlight routes configured.")

	// Event routes
	eventHandler := handlers.NewEventHandler(eventRepo, notificationRepo, profileRepo, bus, dispatcher)
	eventHandler.RegisterEventRoutes(api)
	log.Println("Event routes configured.")

	// Safety update routes
	safetyHandler := handlers.NewSafetyHandler(safetyRepo, notificationRepo, profileRepo, bus, dispatcher)
	safetyHandler.RegisterSafetyRoutes(api)
	log.Println("Safety routes configured.")

	// Skills and goods exchange routes
	exchangeHandler := handlers.NewExchangeHandler(exchangeRepo, notificationRepo, profileRepo, bus, dispatcher)
	exchangeHandler.RegisterExchangeRoutes(api)
	log.Println("Exchange routes configured.")

	// Group update routes
	groupHandler := handlers.NewGroupHandler(groupRepo, notificationRepo, profileRepo, bus)
	groupHandler.RegisterGroupRoutes(api)
	log.Println("Group routes configured.")

	// Event stream routes
	streamHandler := handlers.NewStreamHandler(bus)
	streamHandler.RegisterStreamRoutes(api)
	log.Println("Stream routes configured.")

	teardown = func() {
		eventHandler.Close()
		safetyHandler.Close()
		exchangeHandler.Close()
		unbindCache()
	}
	return teardown, nil
}
