package services

import (
	"context"
	"testing"
	"time"

	"ride-analytics/internal/models"
)

func pickup(day string, hour int) time.Time {
	// Week of 2023-06-12: Monday through Sunday.
	dates := map[string]string{
		"Monday":    "2023-06-12",
		"Tuesday":   "2023-06-13",
		"Wednesday": "2023-06-14",
		"Thursday":  "2023-06-15",
		"Friday":    "2023-06-16",
		"Saturday":  "2023-06-17",
		"Sunday":    "2023-06-18",
	}
	ts, _ := time.Parse("2006-01-02", dates[day])
	return ts.Add(time.Duration(hour) * time.Hour)
}

func TestHourlyDistribution(t *testing.T) {
	trips := []*models.Trip{
		tripAt(pickup("Monday", 8), 18.52, 73.85, 100),
		tripAt(pickup("Monday", 8), 18.52, 73.85, 100),
		tripAt(pickup("Tuesday", 23), 18.52, 73.85, 100),
	}

	hourly := HourlyDistribution(trips)

	if len(hourly) != 24 {
		t.Fatalf("hourly distribution has %d entries, want 24", len(hourly))
	}

	sum := 0
	for i, h := range hourly {
		if h.Hour != i {
			t.Errorf("entry %d has hour %d, want %d", i, h.Hour, i)
		}
		sum += h.Rides
	}
	if sum != len(trips) {
		t.Errorf("hourly counts sum to %d, want %d", sum, len(trips))
	}

	if hourly[8].Rides != 2 {
		t.Errorf("hour 8 rides = %d, want 2", hourly[8].Rides)
	}
	if hourly[23].Rides != 1 {
		t.Errorf("hour 23 rides = %d, want 1", hourly[23].Rides)
	}
}

func TestWeeklyDistribution(t *testing.T) {
	trips := []*models.Trip{
		tripAt(pickup("Wednesday", 9), 18.52, 73.85, 100),
		tripAt(pickup("Wednesday", 17), 18.52, 73.85, 100),
		tripAt(pickup("Sunday", 11), 18.52, 73.85, 100),
	}

	weekly := WeeklyDistribution(trips)

	wantOrder := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if len(weekly) != 7 {
		t.Fatalf("weekly distribution has %d entries, want 7", len(weekly))
	}

	sum := 0
	for i, d := range weekly {
		if d.Day != wantOrder[i] {
			t.Errorf("entry %d is %s, want %s", i, d.Day, wantOrder[i])
		}
		sum += d.Rides
	}
	if sum != len(trips) {
		t.Errorf("weekly counts sum to %d, want %d", sum, len(trips))
	}

	// Days absent from the data report zero, not omitted.
	if weekly[0].Rides != 0 {
		t.Errorf("Monday rides = %d, want 0", weekly[0].Rides)
	}
	if weekly[2].Rides != 2 {
		t.Errorf("Wednesday rides = %d, want 2", weekly[2].Rides)
	}
}

func TestPopularPickupLocations_Threshold(t *testing.T) {
	var trips []*models.Trip

	// 11 rides from one point, exactly 10 from another: only the first
	// clears the count > 10 threshold.
	for i := 0; i < 11; i++ {
		trips = append(trips, tripAt(pickup("Monday", 9), 18.5204, 73.8567, 100))
	}
	for i := 0; i < 10; i++ {
		trips = append(trips, tripAt(pickup("Monday", 9), 18.5310, 73.8446, 100))
	}

	locations := PopularPickupLocations(trips)

	if len(locations) != 1 {
		t.Fatalf("popular locations = %d, want 1", len(locations))
	}
	if locations[0].Rides != 11 {
		t.Errorf("popular location rides = %d, want 11", locations[0].Rides)
	}
	if locations[0].PickupLat != 18.5204 || locations[0].PickupLon != 73.8567 {
		t.Errorf("popular location = (%v, %v), want (18.5204, 73.8567)",
			locations[0].PickupLat, locations[0].PickupLon)
	}

	for _, loc := range locations {
		if loc.Rides <= 10 {
			t.Errorf("location with %d rides should not be reported", loc.Rides)
		}
	}
}

func TestPickupHeatmap(t *testing.T) {
	trips := []*models.Trip{
		tripAt(pickup("Monday", 9), 18.5204, 73.8567, 100),
		tripAt(pickup("Monday", 10), 18.5204, 73.8567, 100),
		// Far away, distinct cell
		tripAt(pickup("Monday", 11), 19.0760, 72.8777, 100),
	}

	cells := PickupHeatmap(trips)

	if len(cells) != 2 {
		t.Fatalf("heatmap cells = %d, want 2", len(cells))
	}

	sum := 0
	for _, cell := range cells {
		sum += cell.Rides
		if cell.Geohash == "" {
			t.Error("heatmap cell has empty geohash")
		}
	}
	if sum != len(trips) {
		t.Errorf("heatmap counts sum to %d, want %d", sum, len(trips))
	}

	// Ordered by ride count descending
	if cells[0].Rides != 2 {
		t.Errorf("first cell rides = %d, want 2", cells[0].Rides)
	}
}

func TestSummarize(t *testing.T) {
	trips := []*models.Trip{
		tripAt(pickup("Wednesday", 9), 18.52, 73.85, 10),
		tripAt(pickup("Wednesday", 9), 18.52, 73.85, 20),
		tripAt(pickup("Sunday", 21), 18.52, 73.85, 30),
	}

	stats := Summarize(trips)

	if stats.TotalRides != 3 {
		t.Errorf("TotalRides = %d, want 3", stats.TotalRides)
	}
	if stats.AverageFare == nil || *stats.AverageFare != 20 {
		t.Errorf("AverageFare = %v, want 20", stats.AverageFare)
	}
	if stats.AverageDistanceKm == nil || *stats.AverageDistanceKm != 1.5 {
		t.Errorf("AverageDistanceKm = %v, want 1.5", stats.AverageDistanceKm)
	}
	if stats.BusiestHour == nil || *stats.BusiestHour != 9 {
		t.Errorf("BusiestHour = %v, want 9", stats.BusiestHour)
	}
	if stats.BusiestDay == nil || *stats.BusiestDay != "Wednesday" {
		t.Errorf("BusiestDay = %v, want Wednesday", stats.BusiestDay)
	}
}

func TestSummarize_TieBreaking(t *testing.T) {
	// Hours 3 and 15 tie; days Tuesday and Friday tie. The smaller hour
	// and the earlier weekday must win.
	trips := []*models.Trip{
		tripAt(pickup("Friday", 15), 18.52, 73.85, 10),
		tripAt(pickup("Tuesday", 3), 18.52, 73.85, 10),
	}

	stats := Summarize(trips)

	if stats.BusiestHour == nil || *stats.BusiestHour != 3 {
		t.Errorf("BusiestHour = %v, want 3 on tie", stats.BusiestHour)
	}
	if stats.BusiestDay == nil || *stats.BusiestDay != "Tuesday" {
		t.Errorf("BusiestDay = %v, want Tuesday on tie", stats.BusiestDay)
	}
}

func TestSummarize_EmptyDataset(t *testing.T) {
	stats := Summarize(nil)

	if stats.TotalRides != 0 {
		t.Errorf("TotalRides = %d, want 0", stats.TotalRides)
	}
	if stats.AverageFare != nil {
		t.Errorf("AverageFare = %v, want nil", stats.AverageFare)
	}
	if stats.AverageDistanceKm != nil {
		t.Errorf("AverageDistanceKm = %v, want nil", stats.AverageDistanceKm)
	}
	if stats.BusiestHour != nil {
		t.Errorf("BusiestHour = %v, want nil", stats.BusiestHour)
	}
	if stats.BusiestDay != nil {
		t.Errorf("BusiestDay = %v, want nil", stats.BusiestDay)
	}
}

func TestBuildSnapshot_Sequences(t *testing.T) {
	trips := []*models.Trip{
		tripAt(pickup("Monday", 9), 18.52, 73.85, 10),
		tripAt(pickup("Tuesday", 10), 18.52, 73.85, 20),
	}

	snapshot := BuildSnapshot(trips)

	if len(snapshot.DurationsMinutes) != 2 {
		t.Errorf("durations sequence length = %d, want 2", len(snapshot.DurationsMinutes))
	}
	if len(snapshot.Fares) != 2 {
		t.Errorf("fares sequence length = %d, want 2", len(snapshot.Fares))
	}
	if snapshot.Fares[0] != 10 || snapshot.Fares[1] != 20 {
		t.Errorf("fares = %v, want dataset order [10 20]", snapshot.Fares)
	}
	if snapshot.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestAnalyticsService_ComputeAndSnapshot(t *testing.T) {
	svc := NewAnalyticsService(testLogger, testMetrics)

	// Starts with a well-defined empty snapshot.
	if svc.Snapshot().Summary.TotalRides != 0 {
		t.Errorf("initial snapshot TotalRides = %d, want 0", svc.Snapshot().Summary.TotalRides)
	}

	trips := []*models.Trip{
		tripAt(pickup("Monday", 9), 18.52, 73.85, 10),
	}

	computed := svc.Compute(context.Background(), trips)
	published := svc.Snapshot()

	if computed != published {
		t.Error("Compute() result should be the published snapshot")
	}
	if published.Summary.TotalRides != 1 {
		t.Errorf("published TotalRides = %d, want 1", published.Summary.TotalRides)
	}
}
