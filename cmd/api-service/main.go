package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/bid-service/internal/api/handler"
	"github.com/cuongbtq/bid-service/internal/api/notify"
	"github.com/cuongbtq/bid-service/internal/api/router"
	"github.com/cuongbtq/bid-service/internal/api/service"
	"github.com/cuongbtq/bid-service/internal/api/storage"
	"github.com/cuongbtq/bid-service/internal/config"
	"github.com/cuongbtq/bid-service/migrations"
	"github.com/cuongbtq/bid-service/shared/logger"
	"github.com/cuongbtq/bid-service/shared/postgresql"
	"github.com/cuongbtq/bid-service/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		logger.NewDefault().Error("Service exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		logger.NewDefault().Info("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply database migrations on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := postgresql.NewClient(cfg.Database.PostgresConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	if *migrate {
		if err := migrations.Apply(context.Background(), dbClient.GetDB(), appLogger.Logger); err != nil {
			return err
		}
	}

	deps := &handler.Dependencies{
		Logger:      appLogger.Logger,
		ServiceName: cfg.App.Name,
		DB:          dbClient,
	}

	var notifier service.Notifier = notify.NewLogNotifier(appLogger.Logger)
	if cfg.Notification.Enabled {
		// the queue is declared here too so events published before the worker starts are kept
		rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQ.ClientConfig(), appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		notifyLogger := appLogger.WithAttrs(slog.String("component", "notify"))
		notifier = notify.NewBrokerNotifier(rabbitClient, cfg.Notification.RoutingKeyPrefix, notifyLogger.Logger)
		deps.Broker = rabbitClient
	} else {
		appLogger.Warn("Notification delivery disabled, notifications will only be logged")
	}

	store := storage.NewStorage(dbClient)
	svc := service.New(&service.Config{
		Logger:        appLogger.Logger,
		Repository:    store,
		Notifier:      notifier,
		NotifyTimeout: cfg.Notification.PublishTimeout,
	})
	deps.Jobs = svc
	deps.Bids = svc
	deps.Inbox = service.NewInbox(store)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	// let queued notifications reach the broker before its connection closes
	drained := make(chan struct{})
	go func() {
		svc.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		appLogger.Warn("Shutdown timeout exceeded with notifications in flight")
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}
