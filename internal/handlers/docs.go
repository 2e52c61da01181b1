package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Ride Analytics API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Ride Analytics API",
			"description": "Descriptive analytics over a ride-hailing trip log: hourly and weekly distributions, popular pickup locations, fare and duration sequences, and summary statistics for dashboard rendering",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/trips": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List cleaned trips",
					"description": "Retrieve cleaned, enriched trip records with pickup-time filtering and pagination",
					"parameters": []map[string]interface{}{
						{
							"name":        "start_time",
							"in":          "query",
							"description": "Filter by pickup date from (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "end_time",
							"in":          "query",
							"description": "Filter by pickup date to (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default 1)",
							"required":    false,
							"schema":      map[string]string{"type": "integer"},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Records per page (default 100, max 1000)",
							"required":    false,
							"schema":      map[string]string{"type": "integer"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Paginated trip list",
						},
					},
				},
			},
			"/api/trips/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get a single trip by ID",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "integer"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Trip record"},
						"404": map[string]interface{}{"description": "Trip not found"},
					},
				},
			},
			"/api/analytics/summary": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Summary statistics",
					"description": "Total rides, mean fare, mean distance, busiest hour, busiest day",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Summary statistics"},
					},
				},
			},
			"/api/analytics/hourly": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Hourly ride distribution",
					"description": "Ride counts per hour of day, all 24 hours, zero-filled",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Hourly distribution"},
					},
				},
			},
			"/api/analytics/weekly": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Weekly ride distribution",
					"description": "Ride counts per day name, Monday through Sunday, zero-filled",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Weekly distribution"},
					},
				},
			},
			"/api/analytics/locations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Popular pickup locations",
					"description": "Exact pickup coordinates with more than 10 rides",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Popular locations"},
					},
				},
			},
			"/api/analytics/heatmap": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Pickup heatmap cells",
					"description": "Geohash-bucketed pickup counts with cell centers for map heat layers",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Heatmap cells"},
					},
				},
			},
			"/api/analytics/durations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Trip duration sequence",
					"description": "Raw estimated durations in minutes for histogram binning",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Duration sequence"},
					},
				},
			},
			"/api/analytics/fares": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Fare sequence",
					"description": "Raw fare amounts for histogram binning",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Fare sequence"},
					},
				},
			},
			"/api/analytics/report": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Export analytics report",
					"description": "Download the aggregate views as an Excel workbook",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "XLSX workbook"},
					},
				},
			},
			"/api/analytics/refresh": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Refresh analytics",
					"description": "Reload the dataset and recompute the analytics snapshot",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Refresh result"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service health"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
