package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ride-analytics/internal/config"
	"ride-analytics/internal/handlers"
	"ride-analytics/internal/repository"
	"ride-analytics/internal/services"
	"ride-analytics/pkg/database"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("ride-analytics-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting ride analytics API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"data_source": cfg.Data.Source,
	})

	metricsCollector := metrics.NewCollector("ride_analytics")

	analyticsService := services.NewAnalyticsService(logger, metricsCollector)
	reportService := services.NewReportService(logger, metricsCollector)

	var tripService *services.TripService
	var refresh handlers.RefreshFunc

	switch cfg.Data.Source {
	case "database":
		dbConfig := &database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Database,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}

		db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		tripRepo := repository.NewTripRepository(db, logger, metricsCollector)
		tripService = services.NewTripService(tripRepo, logger, metricsCollector)

		refresh = func(ctx context.Context) error {
			trips, err := tripService.LoadDataset(ctx)
			if err != nil {
				return err
			}
			analyticsService.Compute(ctx, trips)
			return nil
		}

	case "csv":
		ingestionService := services.NewIngestionService(nil, logger, metricsCollector)

		refresh = func(ctx context.Context) error {
			trips, _, err := ingestionService.LoadCSV(ctx, cfg.Data.CSVPath)
			if err != nil {
				return err
			}
			analyticsService.Compute(ctx, trips)
			return nil
		}
	}

	// Build the initial snapshot. An unavailable data source is surfaced
	// but not fatal: the API serves empty, well-defined views instead.
	if err := refresh(ctx); err != nil {
		if services.IsDataSourceError(err) {
			logger.Warn(ctx, "[STARTUP] Data source unavailable, serving empty analytics", logging.Fields{
				"error": err.Error(),
			})
		} else {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to build initial snapshot", logging.Fields{}, err)
		}
	}

	analyticsHandler := handlers.NewAnalyticsHandler(
		tripService, analyticsService, reportService, refresh, logger, metricsCollector)

	router := mux.NewRouter()
	analyticsHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
