package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ride-analytics/internal/repository"
	"ride-analytics/internal/services"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// RefreshFunc reloads the dataset and recomputes the analytics snapshot.
type RefreshFunc func(ctx context.Context) error

// AnalyticsHandler serves the aggregate views and the cleaned trip list
// to the dashboard presentation layer.
type AnalyticsHandler struct {
	tripService *services.TripService // nil when trip storage is not configured
	analytics   *services.AnalyticsService
	reports     *services.ReportService
	refresh     RefreshFunc
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	tripService *services.TripService,
	analytics *services.AnalyticsService,
	reports *services.ReportService,
	refresh RefreshFunc,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		tripService: tripService,
		analytics:   analytics,
		reports:     reports,
		refresh:     refresh,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// GetTrips handles GET /api/trips
func (h *AnalyticsHandler) GetTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/trips").Observe(time.Since(startTime).Seconds())
	}()

	if h.tripService == nil {
		h.sendError(w, r, "trip storage is not configured", http.StatusServiceUnavailable)
		return
	}

	startStr := r.URL.Query().Get("start_time")
	endStr := r.URL.Query().Get("end_time")
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	page := 1
	limit := 100

	if pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	filter := repository.TripFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if startStr != "" {
		startTime, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			h.sendError(w, r, "invalid start_time format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.StartTime = &startTime
	}

	if endStr != "" {
		endTime, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			h.sendError(w, r, "invalid end_time format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.EndTime = &endTime
	}

	trips, total, err := h.tripService.GetTrips(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_TRIPS_ERROR] Failed to get trips", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/trips")
		h.sendError(w, r, "failed to retrieve trips", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       trips,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/trips", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetTrip handles GET /api/trips/{id}
func (h *AnalyticsHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.tripService == nil {
		h.sendError(w, r, "trip storage is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.sendError(w, r, "invalid trip id", http.StatusBadRequest)
		return
	}

	trip, err := h.tripService.GetTrip(ctx, id)
	if err != nil {
		if _, ok := err.(*repository.NotFoundError); ok {
			h.sendError(w, r, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_TRIP_ERROR] Failed to get trip", logging.Fields{
			"trip_id": id,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/trips/{id}")
		h.sendError(w, r, "failed to retrieve trip", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/trips/{id}", "GET", "200")
	h.sendJSON(w, trip, http.StatusOK)
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/summary", "GET", "200")
	h.sendJSON(w, snapshot.Summary, http.StatusOK)
}

// GetHourlyDistribution handles GET /api/analytics/hourly
func (h *AnalyticsHandler) GetHourlyDistribution(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/hourly", "GET", "200")
	h.sendJSON(w, snapshot.Hourly, http.StatusOK)
}

// GetWeeklyDistribution handles GET /api/analytics/weekly
func (h *AnalyticsHandler) GetWeeklyDistribution(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/weekly", "GET", "200")
	h.sendJSON(w, snapshot.Weekly, http.StatusOK)
}

// GetPopularLocations handles GET /api/analytics/locations
func (h *AnalyticsHandler) GetPopularLocations(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/locations", "GET", "200")
	h.sendJSON(w, snapshot.PopularLocations, http.StatusOK)
}

// GetHeatmap handles GET /api/analytics/heatmap
func (h *AnalyticsHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/heatmap", "GET", "200")
	h.sendJSON(w, snapshot.Heatmap, http.StatusOK)
}

// GetDurations handles GET /api/analytics/durations
func (h *AnalyticsHandler) GetDurations(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/durations", "GET", "200")
	h.sendJSON(w, snapshot.DurationsMinutes, http.StatusOK)
}

// GetFares handles GET /api/analytics/fares
func (h *AnalyticsHandler) GetFares(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/fares", "GET", "200")
	h.sendJSON(w, snapshot.Fares, http.StatusOK)
}

// ExportReport handles GET /api/analytics/report
func (h *AnalyticsHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workbook, err := h.reports.BuildWorkbook(h.analytics.Snapshot())
	if err != nil {
		h.logger.Error(ctx, "[API_REPORT_ERROR] Failed to build report", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/analytics/report")
		h.sendError(w, r, "failed to build report", http.StatusInternalServerError)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ride-analytics-report.xlsx"`)

	if err := workbook.Write(w); err != nil {
		h.logger.Error(ctx, "[API_REPORT_ERROR] Failed to stream report", logging.Fields{}, err)
		return
	}

	h.metrics.RecordAPIRequest("/api/analytics/report", "GET", "200")
}

// RefreshAnalytics handles POST /api/analytics/refresh
func (h *AnalyticsHandler) RefreshAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.refresh == nil {
		h.sendError(w, r, "refresh is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.refresh(ctx); err != nil {
		h.logger.Error(ctx, "[API_REFRESH_ERROR] Failed to refresh analytics", logging.Fields{}, err)
		h.metrics.RecordAPIError("refresh_error", "/api/analytics/refresh")
		h.sendError(w, r, "failed to refresh analytics", http.StatusInternalServerError)
		return
	}

	snapshot := h.analytics.Snapshot()
	h.metrics.RecordAPIRequest("/api/analytics/refresh", "POST", "200")
	h.sendJSON(w, map[string]interface{}{
		"status":       "refreshed",
		"total_rides":  snapshot.Summary.TotalRides,
		"generated_at": snapshot.GeneratedAt,
	}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *AnalyticsHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AnalyticsHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all API routes
func (h *AnalyticsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/trips", h.GetTrips).Methods("GET")
	router.HandleFunc("/api/trips/{id:[0-9]+}", h.GetTrip).Methods("GET")
	router.HandleFunc("/api/analytics/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/api/analytics/hourly", h.GetHourlyDistribution).Methods("GET")
	router.HandleFunc("/api/analytics/weekly", h.GetWeeklyDistribution).Methods("GET")
	router.HandleFunc("/api/analytics/locations", h.GetPopularLocations).Methods("GET")
	router.HandleFunc("/api/analytics/heatmap", h.GetHeatmap).Methods("GET")
	router.HandleFunc("/api/analytics/durations", h.GetDurations).Methods("GET")
	router.HandleFunc("/api/analytics/fares", h.GetFares).Methods("GET")
	router.HandleFunc("/api/analytics/report", h.ExportReport).Methods("GET")
	router.HandleFunc("/api/analytics/refresh", h.RefreshAnalytics).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", SwaggerUI).Methods("GET")
}
