// README: Pricing request and breakdown types for the price calculator.
package pricing

import (
	"errors"
	"time"

	"transferquote/internal/modules/surcharge"
	"transferquote/internal/types"
)

var (
	ErrInvalidRequest   = errors.New("invalid pricing request")
	ErrNoPrice          = errors.New("no price for vehicle class")
	// ErrCurrencyMismatch marks a catalog row priced in a currency other than the quote currency.
	ErrCurrencyMismatch = errors.New("price currency does not match quote currency")
)

type Source string

const (
	SourceFixed   Source = "fixed"
	SourceBase    Source = "base"
	SourceDefault Source = "default"
)

type ExtraRequest struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// Request prices one vehicle class. Explicit region ids win over coordinates when
// they name an active region.
type Request struct {
	Origin              types.Point
	Destination         types.Point
	OriginRegionID      types.ID
	DestinationRegionID types.ID
	VehicleClass        types.VehicleClass
	DistanceKm          float64
	DurationMinutes     float64
	// BookingTime is the instant the ride is booked for; time windows and
	// validity periods are checked against it.
	BookingTime         time.Time
	MinutesUntilPickup  float64
	Extras              []ExtraRequest
}

type ExtraLine struct {
	Code      string  `json:"code"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

type Breakdown struct {
	VehicleClass                    types.VehicleClass  `json:"vehicleClass"`
	Source                          Source              `json:"source"`
	IsFixedPrice                    bool                `json:"isFixedPrice"`
	PriceID                         types.ID            `json:"priceId,omitempty"`
	OriginRegionID                  types.ID            `json:"originRegionId,omitempty"`
	DestinationRegionID             types.ID            `json:"destinationRegionId,omitempty"`
	BaseFare                        float64             `json:"baseFare"`
	DistanceCharge                  float64             `json:"distanceCharge"`
	TimeCharge                      float64             `json:"timeCharge"`
	MinimumFareApplied              bool                `json:"minimumFareApplied"`
	Subtotal                        float64             `json:"subtotal"`
	Extras                          []ExtraLine         `json:"extras,omitempty"`
	ExtrasTotal                     float64             `json:"extrasTotal"`
	Surcharges                      []surcharge.Applied `json:"surcharges,omitempty"`
	SurchargeTotal                  float64             `json:"surchargeTotal"`
	Total                           float64             `json:"total"`
	Currency                        string              `json:"currency"`
	IncludedWaitingMinutes          int                 `json:"includedWaitingMinutes"`
	AdditionalWaitingPricePerMinute float64             `json:"additionalWaitingPricePerMinute"`
	EstimatedDistanceKm             float64             `json:"estimatedDistanceKm"`
	EstimatedDurationMinutes        float64             `json:"estimatedDurationMinutes"`
}
