package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/loopin-app/backend/internal/cache"
	"github.com/loopin-app/backend/internal/router"
	"github.com/loopin-app/backend/pkg/config"
	"github.com/loopin-app/backend/pkg/firebase"
	"github.com/loopin-app/backend/pkg/logger"
	"github.com/loopin-app/backend/validators"
)

func main() {
	// Load environment variables before reading config
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := config.Load()

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize databases
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase (auth + messaging)
	ctx := context.Background()
	fbApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Redis is optional; without it profile lookups skip the cache
	var redisClient *cache.RedisClient
	if cfg.RedisAddr != "" {
		redisClient, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	router.SetupRoutes(e, db, fbApp, redisClient, appLogger, cfg)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
