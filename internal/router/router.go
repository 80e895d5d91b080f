package router

import (
	"log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/cache"
	"github.com/loopin-app/backend/internal/handlers"
	"github.com/loopin-app/backend/internal/middleware"
	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/moderation"
	"github.com/loopin-app/backend/internal/notifications"
	"github.com/loopin-app/backend/internal/push"
	"github.com/loopin-app/backend/internal/repositories"
	"github.com/loopin-app/backend/pkg/config"
	"github.com/loopin-app/backend/pkg/firebase"
)

// SetupRoutes wires repositories, services and handlers onto the Echo instance
func SetupRoutes(e *echo.Echo, db *config.DB, fbApp *firebase.App, redisClient *cache.RedisClient, logger *zap.Logger, cfg *config.Config) {
	// Auto-migrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
		&models.NotificationPreferences{},
		&models.DeviceToken{},
		&models.PushDeliveryLog{},
		&models.ModerationAction{},
	)
	if err != nil {
		log.Fatalf("Failed to auto-migrate database models: %v", err)
	}

	mongoDB := db.Mongo.Database("loopin")

	// Repositories
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	preferenceRepo := repositories.NewPostgresPreferenceRepository(db.Postgres)
	deviceTokenRepo := repositories.NewPostgresDeviceTokenRepository(db.Postgres)
	pushLogRepo := repositories.NewPostgresPushLogRepository(db.Postgres)
	moderationRepo := repositories.NewPostgresModerationRepository(db.Postgres)

	// Push delivery
	gateway := push.NewFCMGateway(fbApp.MessagingClient)
	sender := push.NewSender(deviceTokenRepo, preferenceRepo, pushLogRepo, gateway, logger)
	sender.SetBatchPacing(cfg.PushChunkSize, cfg.PushChunkDelay)

	// Notification aggregation
	profiles := notifications.NewUserProfileResolver(userRepo, redisClient)
	aggregator := notifications.NewAggregator(notificationRepo, profiles, logger, cfg.AggregationWindow)
	notifier := notifications.NewNotifier(aggregator, sender, logger)

	// Moderation rule chain: content safety first, then the default verdict
	engine := moderation.NewEngine(logger,
		moderation.NewKeywordRule(100, cfg.BannedWords, false),
		moderation.NewDefaultRule(models.ModerationStatus(cfg.DefaultModerationStatus), false),
	)
	moderationService := moderation.NewService(engine, postRepo, moderationRepo, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, fbApp.AuthClient)
	userHandler := handlers.NewUserHandler(userRepo)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, moderationService, notifier, logger)
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, notifier, logger)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, notifier, logger)
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notifier, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceRepo)
	deviceTokenHandler := handlers.NewDeviceTokenHandler(deviceTokenRepo, userRepo)
	moderationHandler := handlers.NewModerationHandler(moderationService, postRepo, sender, logger)
	promotionHandler := handlers.NewPromotionHandler(userRepo, sender, logger)

	// Public routes
	handlers.RegisterHealthRoutes(e)
	authGroup := e.Group("/api/v1/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	// Authenticated API (application JWT)
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	userHandler.RegisterUserRoutes(api)
	postHandler.RegisterPostRoutes(api)
	likeHandler.RegisterLikeRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	followHandler.RegisterFollowRoutes(api)
	notificationHandler.RegisterNotificationRoutes(api)
	preferenceHandler.RegisterPreferenceRoutes(api)

	// Mobile routes authenticate with a Firebase ID token directly
	mobile := e.Group("/api/mobile/v1")
	mobile.Use(middleware.FirebaseAuthMiddleware(fbApp.AuthClient))
	deviceTokenHandler.RegisterDeviceTokenRoutes(mobile)

	// Admin routes
	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnly())
	moderationHandler.RegisterModerationRoutes(admin)
	promotionHandler.RegisterPromotionRoutes(admin)
}
