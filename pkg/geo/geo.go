// Package geo holds the geofence predicates used by check-in gates and
// presence monitoring. All functions are pure.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Vertex is a polygon corner in decimal degrees.
type Vertex struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// CircleContains reports whether the point lies within radiusMeters of the center.
func CircleContains(pointLat, pointLon, centerLat, centerLon, radiusMeters float64) bool {
	if radiusMeters < 0 || math.IsNaN(radiusMeters) {
		return false
	}
	return HaversineMeters(pointLat, pointLon, centerLat, centerLon) <= radiusMeters
}

// PolygonContains runs an even-odd ray cast over the ring. The ring may be
// closed (first vertex repeated last) or open; both are handled.
//
// Points exactly on the boundary follow the half-open crossing rule: the
// southern and western sides of an edge count as inside, the northern and
// eastern sides as outside. Rings with fewer than three distinct vertices
// contain nothing.
func PolygonContains(pointLat, pointLon float64, ring []Vertex) bool {
	if distinctVertices(ring) < 3 {
		return false
	}

	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi.Lat > pointLat) == (vj.Lat > pointLat) {
			continue
		}
		crossLon := vi.Lon + (pointLat-vi.Lat)*(vj.Lon-vi.Lon)/(vj.Lat-vi.Lat)
		if pointLon < crossLon {
			inside = !inside
		}
	}
	return inside
}

// IsClosedRing reports whether the ring repeats its first vertex at the end.
func IsClosedRing(ring []Vertex) bool {
	return len(ring) >= 4 && ring[0] == ring[len(ring)-1]
}

func distinctVertices(ring []Vertex) int {
	seen := make(map[Vertex]struct{}, len(ring))
	for _, v := range ring {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
