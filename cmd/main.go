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

	"github.com/go-chi/chi/v5"

	"github.com/opencourt/matchday/config"
	"github.com/opencourt/matchday/db"
	"github.com/opencourt/matchday/handlers"
	"github.com/opencourt/matchday/live"
	"github.com/opencourt/matchday/repositories"
	api "github.com/opencourt/matchday/routes"
	"github.com/opencourt/matchday/services"
	"github.com/opencourt/matchday/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Logo uploads are optional; without R2 settings the service runs
	// with uploads disabled.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, logo uploads disabled")
	}

	broadcaster := live.NewBroadcaster(cfg.LiveSendTimeout, logger)

	txRunner := repositories.NewTxRunner(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	poolTeamRepo := repositories.NewPostgresPoolTeamRepository(dbConn)
	phaseRepo := repositories.NewPostgresPhaseRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	logger.Info("repositories initialized")

	standingsService := services.NewStandingsService(
		poolRepo, poolTeamRepo, matchRepo, registrationRepo, tournamentRepo, logger)
	progressionService := services.NewProgressionService(
		txRunner, matchRepo, poolRepo, registrationRepo, tournamentRepo, standingsService, logger)
	liveService := services.NewLiveService(
		broadcaster, matchRepo, tournamentRepo, sportRepo, logger)
	matchService := services.NewMatchService(
		txRunner, matchRepo, progressionService, standingsService, liveService, logger)
	structureService := services.NewStructureService(
		txRunner, phaseRepo, poolRepo, poolTeamRepo, matchRepo, registrationRepo, logger)
	poolService := services.NewPoolService(
		txRunner, poolRepo, poolTeamRepo, phaseRepo, matchRepo, registrationRepo, logger)
	tournamentService := services.NewTournamentService(
		txRunner, tournamentRepo, phaseRepo, registrationRepo, teamRepo, sportRepo, uploader, logger)
	teamService := services.NewTeamService(teamRepo, sportRepo, uploader, logger)
	sportService := services.NewSportService(sportRepo, uploader, logger)
	courtService := services.NewCourtService(courtRepo, tournamentRepo)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewMatchHandler(matchService, progressionService),
		handlers.NewPoolHandler(poolService, standingsService, matchService),
		handlers.NewStructureHandler(structureService),
		handlers.NewTeamHandler(teamService),
		handlers.NewSportHandler(sportService),
		handlers.NewCourtHandler(courtService),
		handlers.NewLiveHandler(liveService, broadcaster, logger),
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout: 10 * time.Second,
		// No global write deadline; the live SSE stream holds its
		// response open indefinitely.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
