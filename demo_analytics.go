package main

import (
	"context"
	"fmt"
	"os"

	"ride-analytics/internal/services"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// Demonstrates the load-clean-aggregate pipeline without a database:
// cleans a trip log CSV in memory and prints the analytics views.
func main() {
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("RIDE ANALYTICS - DATA PROCESSING DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	csvPath := "./pune_uber_rides.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	logger := logging.NewStructuredLogger("demo", "1.0.0", logging.WarnLevel)
	metricsCollector := metrics.NewCollector("ride_demo")
	ctx := context.Background()

	ingestionService := services.NewIngestionService(nil, logger, metricsCollector)

	trips, result, err := ingestionService.LoadCSV(ctx, csvPath)
	if err != nil {
		fmt.Printf("Could not load trip log: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rows read:    %d\n", result.TotalRows)
	fmt.Printf("Rows cleaned: %d\n", result.CleanedRows)
	fmt.Printf("Rows dropped: %d\n", result.DroppedRows)
	fmt.Println()

	snapshot := services.BuildSnapshot(trips)

	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Summary Statistics")
	fmt.Println("─────────────────────────────────────────────────────────────")
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
	fmt.Println()

	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Hourly Distribution")
	fmt.Println("─────────────────────────────────────────────────────────────")
	for _, h := range snapshot.Hourly {
		if h.Rides > 0 {
			fmt.Printf("  %02d:00  %d\n", h.Hour, h.Rides)
		}
	}
	fmt.Println()

	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Weekly Distribution")
	fmt.Println("─────────────────────────────────────────────────────────────")
	for _, d := range snapshot.Weekly {
		fmt.Printf("  %-10s %d\n", d.Day, d.Rides)
	}
	fmt.Println()

	if len(snapshot.PopularLocations) > 0 {
		fmt.Println("─────────────────────────────────────────────────────────────")
		fmt.Println("Popular Pickup Locations (more than 10 rides)")
		fmt.Println("─────────────────────────────────────────────────────────────")
		for _, loc := range snapshot.PopularLocations {
			fmt.Printf("  (%.4f, %.4f)  %d rides\n", loc.PickupLat, loc.PickupLon, loc.Rides)
		}
	}
}
