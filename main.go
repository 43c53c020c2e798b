package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/hoot-be/internal/api"
	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/config"
	"github.com/isdelr/hoot-be/internal/database"
	"github.com/isdelr/hoot-be/internal/logger"
	"github.com/isdelr/hoot-be/internal/monitoring"
	"github.com/isdelr/hoot-be/internal/services"
	"github.com/isdelr/hoot-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, jwtManager, cfg.SaltRounds)
	hootService := services.NewHootService(db, eventService, hub)
	commentService := services.NewCommentService(db, eventService, hub, cfg.StrictCommentOwnership)

	// Set up and run the event log pruner
	pruner, err := monitoring.NewEventPruner(eventService, cfg.EventPruneSchedule, cfg.EventRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up event pruner")
	}
	pruner.Start()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Hub:            hub,
		Verifier:       jwtManager,
		UserService:    userService,
		HootService:    hootService,
		CommentService: commentService,
		EventService:   eventService,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
