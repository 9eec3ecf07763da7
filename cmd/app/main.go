package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"questlog/internal/api"
	"questlog/internal/middleware"
	"questlog/internal/notify"
	"questlog/internal/repository"
	"questlog/internal/service"
	"questlog/pkg/auth"
	"questlog/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	settings, err := cfg.Settings()
	if err != nil {
		zapLogger.Fatal("Invalid progression settings", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if cfg.Database.Migrate {
		if err := repo.CreateSchema(ctx); err != nil {
			zapLogger.Fatal("Failed to create schema", zap.Error(err))
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	hub := notify.NewHub()
	defer hub.Close()
	notifiers := notify.Fanout{hub}

	if cfg.Notifications.Telegram {
		tg, err := notify.NewTelegramNotifier(notify.TelegramConfig{
			BotToken: cfg.TelegramAuth.TelegramBotToken,
			Debug:    cfg.TelegramAuth.DebugMode,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
		}
		notifiers = append(notifiers, tg)
		g.Go(func() error {
			tg.Run(ctx)
			return nil
		})
	}

	svc := service.New(service.NewStore(repo), settings, notifiers)
	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(svc.ProfileService)

	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewProfileRoutes(a, svc.ProfileService, svc.Ledger, svc.WorkoutService, telegramAuth)
	api.NewQuestRoutes(a, svc.QuestService, telegramAuth)
	api.NewWorkoutRoutes(a, svc.WorkoutService, telegramAuth)
	api.NewGuildRoutes(a, svc.GuildService, svc.LeaderboardService, telegramAuth)
	api.NewAdminRoutes(a, svc.QuestService, svc.WorkoutService, svc.Ledger, telegramAuth, authz)
	api.NewNotificationRoutes(a, hub, telegramAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
