package geo

import "math"

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// PointOf returns nil unless both coordinates are set.
func PointOf(lat, lng *float64) *Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &Point{Lat: *lat, Lng: *lng}
}

// DistanceMeters is the great-circle (haversine) distance between a and b.
func DistanceMeters(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
