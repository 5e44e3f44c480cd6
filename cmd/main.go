package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/bracket-engine/config"
	"github.com/Dosada05/bracket-engine/db"
	"github.com/Dosada05/bracket-engine/events"
	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/metrics"
	"github.com/Dosada05/bracket-engine/repositories"
	api "github.com/Dosada05/bracket-engine/routes"
	"github.com/Dosada05/bracket-engine/services"
	"github.com/Dosada05/bracket-engine/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Int("default_best_of", cfg.DefaultBestOf))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn, logger); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	// Архив итоговых сеток в Cloudflare R2 (опционально)
	var archiver services.BracketArchiver
	if cfg.R2.Enabled() {
		uploader, err := storage.NewR2Uploader(appCtx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewBracketArchive(uploader)
		logger.Info("bracket archive enabled", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("bracket archive disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	store := repositories.NewPostgresStore(dbConn)

	// Шина событий: MatchCompleted -> статистика участников
	pubSub := events.NewInProcessPubSub(logger)
	defer func() {
		if err := pubSub.Close(); err != nil {
			logger.Error("failed to close event bus", slog.Any("error", err))
		}
	}()
	statsHandler := services.NewStatsHandler(store, logger)
	if err := events.ConsumeMatchCompleted(appCtx, pubSub, statsHandler.HandleMatchCompleted, logger); err != nil {
		logger.Error("failed to start MatchCompleted consumer", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация сервисов
	bracketService := services.NewBracketService(store, recorder, logger)
	viewService := services.NewBracketViewService(store)
	matchService := services.NewMatchService(store, events.NewPublisher(pubSub), recorder, logger, services.MatchServiceConfig{
		DefaultBestOf: cfg.DefaultBestOf,
		MaxGamePoints: cfg.MaxGamePoints,
	})
	tournamentService := services.NewTournamentService(store, viewService, archiver, logger)
	logger.Info("services initialized")

	tournamentHandler := handlers.NewTournamentHandler(bracketService, viewService, tournamentService, matchService)
	matchHandler := handlers.NewMatchHandler(matchService)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Gatherer:       registry,
	}, tournamentHandler, matchHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			cancelApp()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
