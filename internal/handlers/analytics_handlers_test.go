package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"ride-analytics/internal/models"
	"ride-analytics/internal/services"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

var (
	testLogger  = logging.NewStructuredLogger("test", "test", logging.ErrorLevel)
	testMetrics = metrics.NewCollector("ride_handlers_test")
)

func testTrip(pickup time.Time, fare float64) *models.Trip {
	return &models.Trip{
		PickupTime:      pickup,
		PickupLat:       18.5204,
		PickupLon:       73.8567,
		DropoffLat:      18.5310,
		DropoffLon:      73.8446,
		FareAmount:      fare,
		Hour:            pickup.Hour(),
		Day:             pickup.Weekday().String(),
		Month:           int(pickup.Month()),
		Weekday:         models.MondayWeekday(pickup),
		DistanceKm:      1.8,
		DurationMinutes: 5.4,
	}
}

func newTestRouter(trips []*models.Trip) *mux.Router {
	analytics := services.NewAnalyticsService(testLogger, testMetrics)
	analytics.Compute(context.Background(), trips)
	reports := services.NewReportService(testLogger, testMetrics)

	handler := NewAnalyticsHandler(nil, analytics, reports, nil, testLogger, testMetrics)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetSummary(t *testing.T) {
	pickup := time.Date(2023, 6, 14, 9, 0, 0, 0, time.UTC) // Wednesday
	router := newTestRouter([]*models.Trip{
		testTrip(pickup, 10),
		testTrip(pickup, 30),
	})

	rec := doRequest(t, router, "GET", "/api/analytics/summary")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summary services.SummaryStats
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if summary.TotalRides != 2 {
		t.Errorf("TotalRides = %d, want 2", summary.TotalRides)
	}
	if summary.AverageFare == nil || *summary.AverageFare != 20 {
		t.Errorf("AverageFare = %v, want 20", summary.AverageFare)
	}
	if summary.BusiestDay == nil || *summary.BusiestDay != "Wednesday" {
		t.Errorf("BusiestDay = %v, want Wednesday", summary.BusiestDay)
	}
}

func TestGetSummary_EmptyDataset(t *testing.T) {
	router := newTestRouter(nil)

	rec := doRequest(t, router, "GET", "/api/analytics/summary")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summary services.SummaryStats
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if summary.TotalRides != 0 {
		t.Errorf("TotalRides = %d, want 0", summary.TotalRides)
	}
	if summary.AverageFare != nil {
		t.Errorf("AverageFare = %v, want nil", summary.AverageFare)
	}
}

func TestGetHourlyDistribution(t *testing.T) {
	pickup := time.Date(2023, 6, 14, 9, 0, 0, 0, time.UTC)
	router := newTestRouter([]*models.Trip{testTrip(pickup, 10)})

	rec := doRequest(t, router, "GET", "/api/analytics/hourly")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var hourly []services.HourlyCount
	if err := json.NewDecoder(rec.Body).Decode(&hourly); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(hourly) != 24 {
		t.Errorf("hourly entries = %d, want 24", len(hourly))
	}
	if hourly[9].Rides != 1 {
		t.Errorf("hour 9 rides = %d, want 1", hourly[9].Rides)
	}
}

func TestGetWeeklyDistribution(t *testing.T) {
	router := newTestRouter(nil)

	rec := doRequest(t, router, "GET", "/api/analytics/weekly")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var weekly []services.DailyCount
	if err := json.NewDecoder(rec.Body).Decode(&weekly); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(weekly) != 7 {
		t.Fatalf("weekly entries = %d, want 7", len(weekly))
	}
	if weekly[0].Day != "Monday" || weekly[6].Day != "Sunday" {
		t.Errorf("weekly order = %s..%s, want Monday..Sunday", weekly[0].Day, weekly[6].Day)
	}
}

func TestGetTrips_StorageNotConfigured(t *testing.T) {
	router := newTestRouter(nil)

	rec := doRequest(t, router, "GET", "/api/trips")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when trip storage is not configured", rec.Code)
	}
}

func TestRefresh_NotConfigured(t *testing.T) {
	router := newTestRouter(nil)

	rec := doRequest(t, router, "POST", "/api/analytics/refresh")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when refresh is not configured", rec.Code)
	}
}

func TestExportReport(t *testing.T) {
	pickup := time.Date(2023, 6, 14, 9, 0, 0, 0, time.UTC)
	router := newTestRouter([]*models.Trip{testTrip(pickup, 10)})

	rec := doRequest(t, router, "GET", "/api/analytics/report")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q, want xlsx media type", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("report body is empty")
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(nil)

	rec := doRequest(t, router, "GET", "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", status["status"])
	}
}
