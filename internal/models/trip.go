package models

import (
	"strconv"
	"strings"
	"time"

	"ride-analytics/internal/geo"
)

// tripTimeLayouts are the accepted pickup timestamp formats. All are
// time-zone naive and parsed as UTC wall-clock time.
var tripTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Trip represents a single cleaned ride event with its derived fields.
// Derived fields are computed once during conversion and never mutated.
type Trip struct {
	ID              int64     `json:"id,omitempty" db:"id"`
	PickupTime      time.Time `json:"pickup_datetime" db:"pickup_datetime"`
	PickupLat       float64   `json:"pickup_lat" db:"pickup_lat"`
	PickupLon       float64   `json:"pickup_lon" db:"pickup_lon"`
	DropoffLat      float64   `json:"dropoff_lat" db:"dropoff_lat"`
	DropoffLon      float64   `json:"dropoff_lon" db:"dropoff_lon"`
	FareAmount      float64   `json:"fare_amount" db:"fare_amount"`
	Hour            int       `json:"hour" db:"hour"`
	Day             string    `json:"day" db:"day"`
	Month           int       `json:"month" db:"month"`
	Weekday         int       `json:"weekday" db:"weekday"`
	DistanceKm      float64   `json:"distance_km" db:"distance_km"`
	DurationMinutes float64   `json:"duration_minutes" db:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at,omitempty" db:"created_at"`
}

// RawTripRecord represents one row of the input trip log, untyped,
// exactly as read from the data source.
type RawTripRecord struct {
	PickupDatetime string
	PickupLat      string
	PickupLon      string
	DropoffLat     string
	DropoffLon     string
	FareAmount     string
}

// ToTrip converts a RawTripRecord into a cleaned Trip with derived fields.
// Rows that fail any step return a *ValidationError naming the offending
// field; callers drop such rows rather than aborting the run.
func (r *RawTripRecord) ToTrip() (*Trip, error) {
	pickupTime, err := parsePickupTime(r.PickupDatetime)
	if err != nil {
		return nil, &ValidationError{
			Field:   "pickup_datetime",
			Value:   r.PickupDatetime,
			Message: "unparseable pickup timestamp",
		}
	}

	pickupLat, err := parseCoordinate("pickup_lat", r.PickupLat)
	if err != nil {
		return nil, err
	}
	pickupLon, err := parseCoordinate("pickup_lon", r.PickupLon)
	if err != nil {
		return nil, err
	}
	dropoffLat, err := parseCoordinate("dropoff_lat", r.DropoffLat)
	if err != nil {
		return nil, err
	}
	dropoffLon, err := parseCoordinate("dropoff_lon", r.DropoffLon)
	if err != nil {
		return nil, err
	}

	if !geo.IsValidLatLon(pickupLat, pickupLon) {
		return nil, &ValidationError{
			Field:   "pickup_lat",
			Value:   r.PickupLat + "," + r.PickupLon,
			Message: "pickup coordinates out of range",
		}
	}
	if !geo.IsValidLatLon(dropoffLat, dropoffLon) {
		return nil, &ValidationError{
			Field:   "dropoff_lat",
			Value:   r.DropoffLat + "," + r.DropoffLon,
			Message: "dropoff coordinates out of range",
		}
	}

	fare, err := strconv.ParseFloat(strings.TrimSpace(r.FareAmount), 64)
	if err != nil {
		return nil, &ValidationError{
			Field:   "fare_amount",
			Value:   r.FareAmount,
			Message: "non-numeric fare amount",
		}
	}

	distanceKm := geo.HaversineKm(pickupLat, pickupLon, dropoffLat, dropoffLon)

	return &Trip{
		PickupTime:      pickupTime,
		PickupLat:       pickupLat,
		PickupLon:       pickupLon,
		DropoffLat:      dropoffLat,
		DropoffLon:      dropoffLon,
		FareAmount:      fare,
		Hour:            pickupTime.Hour(),
		Day:             pickupTime.Weekday().String(),
		Month:           int(pickupTime.Month()),
		Weekday:         MondayWeekday(pickupTime),
		DistanceKm:      distanceKm,
		DurationMinutes: geo.EstimateDurationMinutes(distanceKm),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// MondayWeekday returns the weekday index of t with Monday as 0 and
// Sunday as 6.
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func parsePickupTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	var lastErr error
	for _, layout := range tripTimeLayouts {
		ts, err := time.Parse(layout, trimmed)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseCoordinate(field, value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, &ValidationError{
			Field:   field,
			Value:   value,
			Message: "missing coordinate",
		}
	}

	coord, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &ValidationError{
			Field:   field,
			Value:   value,
			Message: "non-numeric coordinate",
		}
	}

	return coord, nil
}

// ValidationError represents a permanent per-row data validation failure.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent.
func (e *ValidationError) IsTransient() bool {
	return false
}

// DropReason classifies a row-conversion error for drop accounting.
// Unknown errors fall back to "bad_row".
func DropReason(err error) string {
	ve, ok := err.(*ValidationError)
	if !ok {
		return "bad_row"
	}

	switch ve.Field {
	case "pickup_datetime":
		return "bad_timestamp"
	case "pickup_lat", "pickup_lon", "dropoff_lat", "dropoff_lon":
		return "bad_coordinates"
	case "fare_amount":
		return "bad_fare"
	default:
		return "bad_row"
	}
}
