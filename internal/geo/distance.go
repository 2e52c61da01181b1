package geo

import "math"

// earthRadiusKm is the Earth's volumetric mean radius in kilometers,
// the value commonly used for spherical great-circle approximations.
const earthRadiusKm = 6371.0

// averageSpeedKmh is the assumed average city traffic speed used to
// estimate trip durations from distances.
const averageSpeedKmh = 20.0

// HaversineKm calculates the great-circle distance in kilometers between
// two coordinates given in decimal degrees.
//
// Callers are expected to pass valid coordinates; use IsValidLatLon before
// calling when the inputs come from untrusted data.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// EstimateDurationMinutes returns the estimated travel time in minutes for
// a given distance in kilometers, assuming an average speed of 20 km/h.
func EstimateDurationMinutes(distanceKm float64) float64 {
	return distanceKm / averageSpeedKmh * 60
}

// IsValidLatLon reports whether the given latitude and longitude fall
// within the valid geographic coordinate bounds: latitude between -90 and
// 90 degrees, longitude between -180 and 180 degrees.
func IsValidLatLon(lat, lon float64) bool {
	if lat < -90 || lat > 90 {
		return false
	}
	if lon < -180 || lon > 180 {
		return false
	}
	return true
}
