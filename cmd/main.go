package main

import (
	"context"
	"fmt"
	"os"

	redisclient "github.com/yungbote/sproutlingo-backend/internal/clients/redis"
	"github.com/yungbote/sproutlingo-backend/internal/db"
	"github.com/yungbote/sproutlingo-backend/internal/engine"
	"github.com/yungbote/sproutlingo-backend/internal/handlers"
	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/middleware"
	"github.com/yungbote/sproutlingo-backend/internal/observability"
	"github.com/yungbote/sproutlingo-backend/internal/repos"
	"github.com/yungbote/sproutlingo-backend/internal/server"
	"github.com/yungbote/sproutlingo-backend/internal/services"
	"github.com/yungbote/sproutlingo-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "sproutlingo-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() { _ = shutdownOtel(context.Background()) }()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis session store
	sessionStore, err := redisclient.NewSessionStore(log)
	if err != nil {
		log.Fatal("Redis session store init failed", "error", err)
	}
	defer sessionStore.Close()

	// Repos
	log.Info("Setting up repos from main...")
	profileRepo := repos.NewLearnerProfileRepo(thePG, log)
	chunkRepo := repos.NewChunkStateRepo(thePG, log)
	treeRepo := repos.NewSproutTreeRepo(thePG, log)
	sessionRepo := repos.NewSessionRecordRepo(thePG, log)

	// Engine tuning
	thresholds := engine.DefaultThresholds()
	slowMultiplier := utils.GetEnvAsFloat("FILTER_SLOW_MULTIPLIER", thresholds.SlowMultiplier, log)
	inactivityDays := utils.GetEnvAsFloat("FILTER_INACTIVITY_DAYS", thresholds.InactivityDays, log)
	thresholds = thresholds.Apply(engine.ThresholdOverrides{
		SlowMultiplier: &slowMultiplier,
		InactivityDays: &inactivityDays,
	})

	// Grant kind→buffer-days table; owned by the economy service, fed to
	// the tree model as data.
	grantTable := map[string]float64{
		"dew_drop":   utils.GetEnvAsFloat("GRANT_DEW_DROP_DAYS", 1, log),
		"rain_charm": utils.GetEnvAsFloat("GRANT_RAIN_CHARM_DAYS", 3, log),
		"sun_shield": utils.GetEnvAsFloat("GRANT_SUN_SHIELD_DAYS", 7, log),
	}

	// Services
	log.Info("Setting up services from main...")
	profileService := services.NewProfileService(log, profileRepo)
	chunkService := services.NewChunkService(log, chunkRepo, profileRepo)
	sessionService := services.NewSessionService(log, thresholds, sessionStore, sessionRepo, profileService, chunkService, nil)
	treeService := services.NewTreeService(log, treeRepo, grantTable)

	// Handlers
	log.Info("Setting up handlers from main...")
	sessionHandler := handlers.NewSessionHandler(log, sessionService)
	treeHandler := handlers.NewTreeHandler(log, treeService)

	// Middleware
	identityMiddleware := middleware.NewIdentityMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		IdentityMiddleware: identityMiddleware,
		SessionHandler:     sessionHandler,
		TreeHandler:        treeHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
