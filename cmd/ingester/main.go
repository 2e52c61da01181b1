package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"ride-analytics/internal/config"
	"ride-analytics/internal/repository"
	"ride-analytics/internal/services"
	"ride-analytics/pkg/database"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

func main() {
	dataPath := flag.String("data", "", "Path to the trip log CSV (defaults to configured path)")
	batchSize := flag.Int("batch-size", 1000, "Number of trips to persist in each batch")
	store := flag.Bool("store", false, "Persist the cleaned dataset to PostgreSQL")
	reportPath := flag.String("report", "", "Write an Excel analytics report to this path")
	printStats := flag.Bool("stats", false, "Print summary statistics after cleaning")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	csvPath := cfg.Data.CSVPath
	if *dataPath != "" {
		csvPath = *dataPath
	}

	logger := logging.NewStructuredLogger("ride-analytics-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting trip log ingestion", logging.Fields{
		"version":    "1.0.0",
		"data_path":  csvPath,
		"batch_size": *batchSize,
		"store":      *store,
	})

	metricsCollector := metrics.NewCollector("ride_ingester")

	var tripRepo repository.TripRepository
	if *store {
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
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		tripRepo = repository.NewTripRepository(db, logger, metricsCollector)
	}

	ingestionService := services.NewIngestionService(tripRepo, logger, metricsCollector)

	trips, result, err := ingestionService.LoadCSV(ctx, csvPath)
	if err != nil {
		logger.Error(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"data_path": csvPath,
		}, err)
		fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Rows:    %d\n", result.TotalRows)
	fmt.Printf("Cleaned Rows:  %d\n", result.CleanedRows)
	fmt.Printf("Dropped Rows:  %d\n", result.DroppedRows)
	fmt.Printf("Duration:      %v\n", result.Duration)

	if len(result.DroppedByReason) > 0 {
		fmt.Println("\nDropped by reason:")
		reasons := make([]string, 0, len(result.DroppedByReason))
		for reason := range result.DroppedByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Printf("  %-16s %d\n", reason, result.DroppedByReason[reason])
		}
	}

	if *store {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("STORING CLEANED DATASET")
		fmt.Println(strings.Repeat("=", 80))

		if err := ingestionService.PersistDataset(ctx, trips, *batchSize); err != nil {
			logger.Error(ctx, "[PERSIST_ERROR] Failed to store cleaned dataset", logging.Fields{}, err)
			fmt.Fprintf(os.Stderr, "Failed to store cleaned dataset: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Stored %d trips in batches of %d\n", len(trips), *batchSize)
	}

	if *printStats || *reportPath != "" {
		snapshot := services.BuildSnapshot(trips)

		if *printStats {
			fmt.Println("\n" + strings.Repeat("=", 80))
			fmt.Println("SUMMARY STATISTICS")
			fmt.Println(strings.Repeat("=", 80))
			printSummary(snapshot)
		}

		if *reportPath != "" {
			reportService := services.NewReportService(logger, metricsCollector)
			if err := reportService.WriteReport(ctx, snapshot, *reportPath); err != nil {
				logger.Error(ctx, "[REPORT_ERROR] Failed to write report", logging.Fields{
					"path": *reportPath,
				}, err)
				fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("\nAnalytics report written to %s\n", *reportPath)
		}
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"total_rows":       result.TotalRows,
		"cleaned_rows":     result.CleanedRows,
		"dropped_rows":     result.DroppedRows,
		"duration_seconds": result.Duration.Seconds(),
	})
}

func printSummary(snapshot *services.Snapshot) {
	fmt.Printf("Total Rides:      %d\n", snapshot.Summary.TotalRides)
	if snapshot.Summary.AverageFare != nil {
		fmt.Printf("Average Fare:     %.2f\n", *snapshot.Summary.AverageFare)
	}
	if snapshot.Summary.AverageDistanceKm != nil {
		fmt.Printf("Average Distance: %.2f km\n", *snapshot.Summary.AverageDistanceKm)
	}
	if snapshot.Summary.BusiestHour != nil {
		fmt.Printf("Busiest Hour:     %d:00\n", *snapshot.Summary.BusiestHour)
	}
	if snapshot.Summary.BusiestDay != nil {
		fmt.Printf("Busiest Day:      %s\n", *snapshot.Summary.BusiestDay)
	}
	fmt.Printf("Popular Pickups:  %d\n", len(snapshot.PopularLocations))
}
