// Package geo holds the user's location lookup state and distance helpers.
package geo

import (
	"fmt"
	"math"
)

const (
	// KmPerMile converts statute miles to kilometers.
	KmPerMile = 1.60934

	earthRadiusMiles = 3958.8
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is within latitude and longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lng)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%g, %g", c.Lat, c.Lng)
}

// MilesToKm converts a radius in miles to kilometers rounded to meters.
func MilesToKm(miles float64) float64 {
	return math.Round(miles*KmPerMile*1000) / 1000
}

// DistanceMiles returns the great-circle distance between a and b.
func DistanceMiles(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Lat))*math.Cos(degreesToRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
