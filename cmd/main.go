package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"familyhub-api/internal/config"
	familyhttp "familyhub-api/internal/family/adapter/http"
	familystore "familyhub-api/internal/family/adapter/persistence/firestore"
	familyusecase "familyhub-api/internal/family/usecase"
	"familyhub-api/internal/firestore"
	"familyhub-api/internal/shared/cache"
	"familyhub-api/internal/shared/logger"
	"familyhub-api/internal/shared/middleware"
	userhttp "familyhub-api/internal/user/adapter/http"
	userstore "familyhub-api/internal/user/adapter/persistence/firestore"
	userusecase "familyhub-api/internal/user/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is a development convenience, absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger().Fatalf("Configuration error: %v", err)
	}

	log := logger.NewLoggerWithConfig(cfg.Log.Level, cfg.Log.Format)
	log.WithFields(map[string]interface{}{
		"environment": cfg.Environment,
		"port":        cfg.Server.Port,
	}).Info("Starting FamilyHub API")

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Firestore client error: %v", err)
	}

	docCache, closeCache := buildCache(cfg, log)
	defer closeCache()

	userRepo := userstore.NewUserRepository(store, docCache, log)
	familyRepo := familystore.NewFamilyRepository(store, docCache, log)

	userUC := userusecase.NewUserUseCase(userRepo, log)
	familyUC := familyusecase.NewFamilyUseCase(familyRepo, userRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      "FamilyHub API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID, X-User-ID",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1", middleware.RequireIdentity())
	userhttp.NewUserHandler(userUC, log).RegisterRoutes(api)
	familyhttp.NewFamilyHandler(familyUC, log).RegisterRoutes(api)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
	log.Info("Server stopped")
}

func buildStore(cfg *config.AppConfig) (firestore.Store, error) {
	clientLog := zap.NewNop()
	if !cfg.IsProduction() {
		if dev, err := zap.NewDevelopment(); err == nil {
			clientLog = dev
		}
	}

	return firestore.NewClient(firestore.Config{
		ProjectID:           cfg.Firestore.ProjectID,
		ServiceAccountEmail: cfg.Firestore.ServiceAccountEmail,
		PrivateKeyPEM:       cfg.Firestore.PrivateKeyPEM,
		Logger:              clientLog,
	})
}

// buildCache prefers Redis when configured and falls back to the
// process-local cache otherwise.
func buildCache(cfg *config.AppConfig, log logger.Logger) (cache.DocumentCache, func()) {
	if cfg.Redis.Addr == "" {
		log.Info("Using in-memory document cache")
		return cache.NewInMemoryCache(), func() {}
	}

	redisCache, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warnf("Redis unavailable, falling back to in-memory cache: %v", err)
		return cache.NewInMemoryCache(), func() {}
	}

	log.WithFields(map[string]interface{}{"addr": cfg.Redis.Addr}).Info("Using Redis document cache")
	return redisCache, func() { _ = redisCache.Close() }
}
