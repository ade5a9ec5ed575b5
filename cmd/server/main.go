package main

import (
	"context"
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/neighborhq/backend/internal/router"
	"github.com/neighborhq/backend/pkg/config"
	"github.com/neighborhq/backend/pkg/firebase"
	"github.com/neighborhq/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Initialize(cfg.Env)
	defer logger.Get().Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase. Federated login is optional; without credentials
	// the local signup/signin paths still work.
	var firebaseAuthClient *firebaseauth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.Init(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Get().Warn("firebase unavailable, federated login disabled", zap.Error(err))
		} else {
			firebaseAuthClient = firebaseApp.AuthClient
		}
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	teardown, err := router.SetupRoutes(e, cfg, db, firebaseAuthClient)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}
	defer teardown()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
