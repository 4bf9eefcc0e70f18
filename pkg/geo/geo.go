// Package geo computes great-circle distances between coordinates.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Lat))*math.Cos(degreesToRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, h)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Ranked pairs an item index with its distance from an origin.
type Ranked struct {
	Index      int
	DistanceKm float64
}

// RankByDistance orders points by distance from origin, nearest first. Points
// farther than radiusKm are dropped unless radiusKm is zero or negative. The
// sort is stable so equidistant points keep their input order.
func RankByDistance(origin Point, points []Point, radiusKm float64) []Ranked {
	ranked := make([]Ranked, 0, len(points))
	for i, p := range points {
		d := Distance(origin, p)
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		ranked = append(ranked, Ranked{Index: i, DistanceKm: d})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
