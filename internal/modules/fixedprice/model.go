// README: Fixed route prices overriding distance-based pricing for an (origin, destination, class) triple.
package fixedprice

import (
	"errors"
	"fmt"
	"math"
	"time"

	"transferquote/internal/types"
)

var (
	ErrNotFound = errors.New("fixed price not found")
	ErrInvalid  = errors.New("invalid fixed price")
)

type FixedPrice struct {
	ID                              types.ID
	OriginRegionID                  types.ID
	DestinationRegionID             types.ID
	VehicleClass                    types.VehicleClass
	Price                           float64
	Currency                        string
	EstimatedDistanceKm             float64
	EstimatedDurationMinutes        float64
	IncludedWaitingMinutes          int
	AdditionalWaitingPricePerMinute float64
	Priority                        int
	Active                          bool
	CreatedAt                       time.Time
}

func (f FixedPrice) Validate() error {
	if !f.VehicleClass.IsValid() {
		return fmt.Errorf("%w %s: unknown vehicle class %q", ErrInvalid, f.ID, f.VehicleClass)
	}
	if f.OriginRegionID == "" || f.DestinationRegionID == "" {
		return fmt.Errorf("%w %s: origin and destination regions are required", ErrInvalid, f.ID)
	}
	if f.Price < 0 || math.IsNaN(f.Price) || math.IsInf(f.Price, 0) {
		return fmt.Errorf("%w %s: price must be a non-negative number", ErrInvalid, f.ID)
	}
	if f.IncludedWaitingMinutes < 0 || f.AdditionalWaitingPricePerMinute < 0 {
		return fmt.Errorf("%w %s: waiting terms must be non-negative", ErrInvalid, f.ID)
	}
	if len(f.Currency) != 3 {
		return fmt.Errorf("%w %s: currency must be an ISO 4217 code", ErrInvalid, f.ID)
	}
	return nil
}

// outranks orders candidates for one triple: priority desc, newest first, then id.
func (f FixedPrice) outranks(o FixedPrice) bool {
	if f.Priority != o.Priority {
		return f.Priority > o.Priority
	}
	if !f.CreatedAt.Equal(o.CreatedAt) {
		return f.CreatedAt.After(o.CreatedAt)
	}
	return f.ID < o.ID
}
