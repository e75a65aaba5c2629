package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/audit"
	"github.com/velihant/financehub-api/internal/config"
	"github.com/velihant/financehub-api/internal/handlers"
	"github.com/velihant/financehub-api/internal/insight"
	"github.com/velihant/financehub-api/internal/middleware"
	"github.com/velihant/financehub-api/internal/migration"
	"github.com/velihant/financehub-api/internal/notification"
	"github.com/velihant/financehub-api/internal/repository"
	"github.com/velihant/financehub-api/internal/routes"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config        *config.Config
	db            *sql.DB
	logger        zerolog.Logger
	notifications notification.Service
	auditor       *audit.Recorder
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Initialize notification and audit services.
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := notification.NewService(notificationRepo, logger)
	auditor := audit.NewRecorder(repository.NewAuditRepository(db), logger)

	// Create the application instance.
	app := &application{
		config:        cfg,
		db:            db,
		logger:        logger,
		notifications: notificationService,
		auditor:       auditor,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	userRepo := repository.NewUserRepository(app.db)
	txnRepo := repository.NewTransactionRepository(app.db)
	reportRepo := repository.NewReportRepository(app.db)
	riskRepo := repository.NewRiskRepository(app.db)
	auditRepo := repository.NewAuditRepository(app.db)
	analyticsRepo := repository.NewAnalyticsRepository(app.db)

	// Push channel for the notification panel.
	streamer := notification.NewStreamer(app.notifications, notification.StreamConfig{
		PollInterval: app.config.Stream.PollInterval,
		MaxLifetime:  app.config.Stream.MaxLifetime,
	}, logger)

	limiter := middleware.NewRateLimiter(app.config.RateLimit.Window, app.config.RateLimit.Max)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, app.config.JWTSecret, logger)
	profileHandler := handlers.NewProfileHandler(userRepo, app.auditor, logger)
	notificationHandler := handlers.NewNotificationHandler(app.notifications, streamer, app.config.Stream.SnapshotLimit, logger)
	txnHandler := handlers.NewTransactionHandler(txnRepo, app.notifications, app.auditor, logger)
	reportHandler := handlers.NewReportHandler(reportRepo, app.notifications, app.auditor, logger)
	riskHandler := handlers.NewRiskHandler(riskRepo, app.notifications, app.auditor, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsRepo, txnRepo, riskRepo, insight.NewEngine(), logger)
	auditHandler := handlers.NewAuditHandler(auditRepo, logger)

	return routes.NewRouter(authHandler, profileHandler, notificationHandler, txnHandler, reportHandler, riskHandler, analyticsHandler, auditHandler, limiter)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
