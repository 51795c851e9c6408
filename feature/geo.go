package feature

import "math"

// EarthRadiusKm is the sphere radius used for great circle distances
const EarthRadiusKm = 6371.0

// Coordinate is a latitude and longitude pair in degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DefaultReference is New Delhi
var DefaultReference = Coordinate{Latitude: 28.6139, Longitude: 77.2090}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

// Haversine returns the great circle distance in kilometers between two coordinates
func Haversine(a, b Coordinate) float64 {
	lat1, lat2 := degToRad(a.Latitude), degToRad(b.Latitude)
	dLat := lat2 - lat1
	dLon := degToRad(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
