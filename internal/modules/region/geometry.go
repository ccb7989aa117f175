// README: Pure geometric helpers for region containment and ordering.
package region

import (
	"fmt"
	"math"

	"transferquote/internal/types"
)

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 2 * math.Pi * earthRadiusMeters / 360
)

// haversineMeters returns the great-circle distance between two points.
func haversineMeters(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// HaversineKm is exported for the trip distance estimator.
func HaversineKm(a, b types.Point) float64 {
	return haversineMeters(a, b) / 1000
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// pointInRing is the even-odd ray casting test. A closing vertex equal to the
// first one is harmless: the zero-length edge never straddles the ray.
func pointInRing(p types.Point, ring []types.Point) bool {
	in := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			in = !in
		}
		j = i
	}
	return in
}

func (c Circle) validate() error {
	if !c.Center.Valid() {
		return fmt.Errorf("%w: circle center out of range", ErrInvalidGeometry)
	}
	if !(c.RadiusMeters > 0) || math.IsInf(c.RadiusMeters, 0) {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidGeometry, c.RadiusMeters)
	}
	return nil
}

func (g Polygon) validate() error {
	if len(g.Rings) == 0 {
		return fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}
	distinct := make(map[types.Point]struct{}, len(g.Rings[0]))
	for _, ring := range g.Rings {
		for _, p := range ring {
			if !p.Valid() {
				return fmt.Errorf("%w: vertex (%v, %v) out of range", ErrInvalidGeometry, p.Lng, p.Lat)
			}
		}
	}
	for _, p := range g.Rings[0] {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("%w: outer ring needs at least 3 distinct vertices", ErrInvalidGeometry)
	}
	return nil
}

func (c Circle) areaM2() float64 {
	return math.Pi * c.RadiusMeters * c.RadiusMeters
}

// areaM2 projects the outer ring equirectangularly around its mean latitude.
func (g Polygon) areaM2() float64 {
	if len(g.Rings) == 0 || len(g.Rings[0]) < 3 {
		return 0
	}
	ring := g.Rings[0]
	var lat0 float64
	for _, p := range ring {
		lat0 += p.Lat
	}
	lat0 /= float64(len(ring))
	kx := metersPerDegree * math.Cos(degreesToRadians(lat0))

	var sum float64
	j := len(ring) - 1
	for i := range ring {
		sum += (ring[j].Lng*kx)*(ring[i].Lat*metersPerDegree) - (ring[i].Lng*kx)*(ring[j].Lat*metersPerDegree)
		j = i
	}
	return math.Abs(sum) / 2
}
