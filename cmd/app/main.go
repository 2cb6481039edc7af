package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"

	"giveaway-market-backend/internal/common/config"
	"giveaway-market-backend/internal/common/logger"
	"giveaway-market-backend/internal/common/middleware"
	giveawayhttp "giveaway-market-backend/internal/features/giveaway/delivery/http"
	"giveaway-market-backend/internal/features/giveaway/repository"
	giveawaymemory "giveaway-market-backend/internal/features/giveaway/repository/memory"
	giveawayredis "giveaway-market-backend/internal/features/giveaway/repository/redis"
	giveawayservice "giveaway-market-backend/internal/features/giveaway/service"
	tiermemory "giveaway-market-backend/internal/features/tier/repository/memory"
	tierredis "giveaway-market-backend/internal/features/tier/repository/redis"
	"giveaway-market-backend/internal/platform/notify"
	redisplatform "giveaway-market-backend/internal/platform/redis"
	"giveaway-market-backend/internal/utils/random"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("giveaway-market-backend", cfg.Debug)

	var (
		repo  repository.GiveawayRepository
		audit repository.AuditLog
		tiers giveawayservice.TierLookup
	)

	switch cfg.Storage {
	case "memory":
		logger.Warn().Msg("Using in-memory storage, data will not survive restarts")
		memRepo := giveawaymemory.NewRepository()
		repo, audit = memRepo, memRepo
		tiers = tiermemory.NewRepository()
	default:
		client, err := redisplatform.Open(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer client.Close()
		redisRepo := giveawayredis.NewRepository(client)
		repo, audit = redisRepo, redisRepo
		tiers = tierredis.NewRepository(client)
	}

	clock := giveawayservice.NewRealClock()
	svc := giveawayservice.NewGiveawayService(
		repo,
		audit,
		tiers,
		clock,
		random.NewCryptoSource(),
		notify.NewLogSink(zlog.Logger),
		zlog.Logger,
	)

	closer := giveawayservice.NewCloser(
		repo,
		svc,
		clock,
		time.Duration(cfg.Closer.IntervalSec)*time.Second,
		cfg.Closer.MaxConcurrent,
		zlog.Logger,
	)
	closer.Start()
	defer closer.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zlog.Logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	api.Use(middleware.TelegramInitData(
		cfg.Telegram.BotToken,
		time.Duration(cfg.Telegram.InitDataTTLSec)*time.Second,
	))

	handler := giveawayhttp.NewGiveawayHandler(svc, zlog.Logger)
	handler.RegisterRoutes(api, middleware.RequireModerator(cfg.ModeratorIDs))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
