package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by DistanceMeters.
const EarthRadiusMeters = 6371e3

// DistanceMeters returns the great-circle distance in meters between two
// points given in decimal degrees (haversine formula). Out-of-range input is
// not validated.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Within reports whether the point lies inside the circle around the center.
// A point exactly on the boundary is inside.
func Within(lat, lon, centerLat, centerLon, radiusMeters float64) (bool, float64) {
	d := DistanceMeters(lat, lon, centerLat, centerLon)
	return d <= radiusMeters, d
}
