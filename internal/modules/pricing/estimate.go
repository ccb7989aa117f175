// README: Straight-line trip estimate used when the caller supplies no distance or duration.
package pricing

import (
	"math"

	"transferquote/internal/modules/region"
	"transferquote/internal/types"
)

type TripEstimator struct {
	RoadFactor  float64
	AvgSpeedKmh float64
}

func (e TripEstimator) withDefaults() TripEstimator {
	if e.RoadFactor <= 0 {
		e.RoadFactor = 1.3
	}
	if e.AvgSpeedKmh <= 0 {
		e.AvgSpeedKmh = 40
	}
	return e
}

// Estimate returns km (haversine times the road factor) and whole minutes at the average speed.
func (e TripEstimator) Estimate(from, to types.Point) (distanceKm, durationMinutes float64) {
	e = e.withDefaults()
	distanceKm = types.Round2(region.HaversineKm(from, to) * e.RoadFactor)
	durationMinutes = math.Ceil(distanceKm / e.AvgSpeedKmh * 60)
	return distanceKm, durationMinutes
}
