// README: Base price rows: distance/time fare formula per (region, vehicle class).
package baseprice

import (
	"errors"
	"fmt"
	"math"
	"time"

	"transferquote/internal/types"
)

var (
	ErrNotFound = errors.New("base price not found")
	ErrInvalid  = errors.New("invalid base price")
)

type BasePrice struct {
	ID             types.ID
	RegionID       types.ID
	VehicleClass   types.VehicleClass
	BaseFare       float64
	PricePerKm     float64
	PricePerMinute float64
	MinimumFare    float64
	Currency       string
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	Active         bool
}

// ValidAt treats missing bounds as open; ValidUntil is exclusive.
func (b BasePrice) ValidAt(t time.Time) bool {
	if b.ValidFrom != nil && t.Before(*b.ValidFrom) {
		return false
	}
	if b.ValidUntil != nil && !t.Before(*b.ValidUntil) {
		return false
	}
	return true
}

func (b BasePrice) Validate() error {
	if !b.VehicleClass.IsValid() {
		return fmt.Errorf("%w %s: unknown vehicle class %q", ErrInvalid, b.ID, b.VehicleClass)
	}
	for name, v := range map[string]float64{
		"baseFare":       b.BaseFare,
		"pricePerKm":     b.PricePerKm,
		"pricePerMinute": b.PricePerMinute,
		"minimumFare":    b.MinimumFare,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w %s: %s must be a non-negative number", ErrInvalid, b.ID, name)
		}
	}
	if len(b.Currency) != 3 {
		return fmt.Errorf("%w %s: currency must be an ISO 4217 code", ErrInvalid, b.ID)
	}
	if b.ValidFrom != nil && b.ValidUntil != nil && !b.ValidFrom.Before(*b.ValidUntil) {
		return fmt.Errorf("%w %s: validity window is empty", ErrInvalid, b.ID)
	}
	return nil
}

// Fare is the itemised result of the distance/time formula.
type Fare struct {
	BaseFare       float64
	DistanceCharge float64
	TimeCharge     float64
	MinimumFare    float64
	MinimumApplied bool
	Total          float64
	Currency       string
}

// Compute applies base + perKm*km + perMin*min, floored at the minimum fare.
// Distance and time charges are rounded before summing.
func Compute(b BasePrice, distanceKm, durationMinutes float64) Fare {
	f := Fare{
		BaseFare:       b.BaseFare,
		DistanceCharge: types.Round2(b.PricePerKm * distanceKm),
		TimeCharge:     types.Round2(b.PricePerMinute * durationMinutes),
		MinimumFare:    b.MinimumFare,
		Currency:       b.Currency,
	}
	total := f.BaseFare + f.DistanceCharge + f.TimeCharge
	if total < b.MinimumFare {
		total = b.MinimumFare
		f.MinimumApplied = true
	}
	f.Total = types.Round2(total)
	return f
}
