package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// destination walks distance meters from (lat, lon) along bearing (radians).
func destination(lat, lon, bearing, distance float64) (float64, float64) {
	delta := distance / EarthRadiusMeters
	phi1 := toRadians(lat)
	lambda1 := toRadians(lon)
	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(bearing))
	lambda2 := lambda1 + math.Atan2(math.Sin(bearing)*math.Sin(delta)*math.Cos(phi1), math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))
	return phi2 * 180 / math.Pi, lambda2 * 180 / math.Pi
}

func TestHaversineKnownDistance(t *testing.T) {
	// one degree of latitude on the mean sphere
	d := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111194.9, d, 1.0)
	assert.InDelta(t, 0, HaversineMeters(14.6, 121.0, 14.6, 121.0), 1e-9)
}

func TestCircleContainsCenter(t *testing.T) {
	assert.True(t, CircleContains(14.5995, 120.9842, 14.5995, 120.9842, 0))
	assert.True(t, CircleContains(14.5995, 120.9842, 14.5995, 120.9842, 50))
}

func TestCircleContainsRejectsOutsidePoints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		clat := rng.Float64()*140 - 70
		clon := rng.Float64()*340 - 170
		radius := 10 + rng.Float64()*5000
		bearing := rng.Float64() * 2 * math.Pi
		dist := radius * (1.01 + rng.Float64()*3)

		lat, lon := destination(clat, clon, bearing, dist)
		require.Falsef(t, CircleContains(lat, lon, clat, clon, radius), "point %d at %.2fm should be outside radius %.2f", i, dist, radius)
	}
}

func TestCircleContainsAcceptsInsidePoints(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		clat := rng.Float64()*140 - 70
		clon := rng.Float64()*340 - 170
		radius := 10 + rng.Float64()*5000
		bearing := rng.Float64() * 2 * math.Pi
		dist := radius * rng.Float64() * 0.99

		lat, lon := destination(clat, clon, bearing, dist)
		require.True(t, CircleContains(lat, lon, clat, clon, radius))
	}
}

func TestCircleContainsNegativeRadius(t *testing.T) {
	assert.False(t, CircleContains(0, 0, 0, 0, -1))
}

func square() []Vertex {
	return []Vertex{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
}

func TestPolygonContainsSquare(t *testing.T) {
	ring := square()
	assert.True(t, PolygonContains(0.5, 0.5, ring))
	assert.False(t, PolygonContains(1.5, 0.5, ring))
	assert.False(t, PolygonContains(0.5, -0.1, ring))
	assert.False(t, PolygonContains(-0.5, -0.5, ring))
}

func TestPolygonContainsOpenRing(t *testing.T) {
	open := []Vertex{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	assert.True(t, PolygonContains(0.25, 0.75, open))
	assert.False(t, IsClosedRing(open))
	assert.True(t, IsClosedRing(square()))
}

func TestPolygonContainsBoundaryConvention(t *testing.T) {
	ring := square()
	// south and west edges are inside, north and east edges are outside
	assert.True(t, PolygonContains(0, 0.5, ring))
	assert.True(t, PolygonContains(0.5, 0, ring))
	assert.False(t, PolygonContains(1, 0.5, ring))
	assert.False(t, PolygonContains(0.5, 1, ring))

	for _, v := range ring {
		first := PolygonContains(v.Lat, v.Lon, ring)
		assert.Equal(t, first, PolygonContains(v.Lat, v.Lon, ring))
	}
}

func TestPolygonContainsConcave(t *testing.T) {
	// U shape opening north
	ring := []Vertex{{0, 0}, {0, 3}, {3, 3}, {3, 2}, {1, 2}, {1, 1}, {3, 1}, {3, 0}, {0, 0}}
	assert.True(t, PolygonContains(0.5, 1.5, ring))
	assert.True(t, PolygonContains(2, 0.5, ring))
	assert.False(t, PolygonContains(2, 1.5, ring))
}

func TestPolygonContainsDegenerate(t *testing.T) {
	assert.False(t, PolygonContains(0, 0, nil))
	assert.False(t, PolygonContains(0, 0, []Vertex{{0, 0}, {1, 1}, {0, 0}}))
	assert.False(t, PolygonContains(0.5, 0.5, []Vertex{{0, 0}, {1, 1}, {1, 1}, {0, 0}}))
}

// insideConvex is a sign-of-cross-product reference for counter-clockwise
// convex rings. ok is false when the point is too close to an edge to judge.
func insideConvex(lat, lon float64, ring []Vertex) (inside bool, ok bool) {
	n := len(ring) - 1
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[i+1]
		cross := (b.Lon-a.Lon)*(lat-a.Lat) - (b.Lat-a.Lat)*(lon-a.Lon)
		if math.Abs(cross) < 1e-9 {
			return false, false
		}
		if cross < 0 {
			return false, true
		}
	}
	return true, true
}

func randomConvexRing(rng *rand.Rand) []Vertex {
	k := 3 + rng.Intn(8)
	cLat := rng.Float64()*20 - 10
	cLon := rng.Float64()*20 - 10
	radius := 0.001 + rng.Float64()*0.05
	ring := make([]Vertex, 0, k+1)
	for i := 0; i < k; i++ {
		// regular polygon with random rotation is always convex
		angle := 2*math.Pi*float64(i)/float64(k) + 0.3
		ring = append(ring, Vertex{
			Lat: cLat + radius*math.Sin(angle),
			Lon: cLon + radius*math.Cos(angle),
		})
	}
	return append(ring, ring[0])
}

func TestPolygonContainsAgreesWithConvexReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	checked := 0
	for p := 0; p < 200; p++ {
		ring := randomConvexRing(rng)
		minLat, maxLat, minLon, maxLon := bounds(ring)
		for i := 0; i < 100; i++ {
			lat := minLat - 0.01 + rng.Float64()*(maxLat-minLat+0.02)
			lon := minLon - 0.01 + rng.Float64()*(maxLon-minLon+0.02)
			want, ok := insideConvex(lat, lon, ring)
			if !ok {
				continue
			}
			checked++
			require.Equalf(t, want, PolygonContains(lat, lon, ring), "polygon %d point (%f,%f)", p, lat, lon)
		}
	}
	assert.Greater(t, checked, 10000)
}

func bounds(ring []Vertex) (minLat, maxLat, minLon, maxLon float64) {
	minLat, maxLat = ring[0].Lat, ring[0].Lat
	minLon, maxLon = ring[0].Lon, ring[0].Lon
	for _, v := range ring[1:] {
		minLat = math.Min(minLat, v.Lat)
		maxLat = math.Max(maxLat, v.Lat)
		minLon = math.Min(minLon, v.Lon)
		maxLon = math.Max(maxLon, v.Lon)
	}
	return
}
