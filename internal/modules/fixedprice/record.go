// README: External record shape for fixed prices.
package fixedprice

import (
	"time"

	"transferquote/internal/types"
)

type Record struct {
	ID                     string    `json:"id" yaml:"id"`
	OriginRegionID         string    `json:"originRegionId" yaml:"originRegionId"`
	DestinationRegionID    string    `json:"destinationRegionId" yaml:"destinationRegionId"`
	VehicleClass           string    `json:"vehicleClass" yaml:"vehicleClass"`
	FixedPrice             float64   `json:"fixedPrice" yaml:"fixedPrice"`
	Currency               string    `json:"currency" yaml:"currency"`
	EstimatedDistance      float64   `json:"estimatedDistance" yaml:"estimatedDistance"`
	EstimatedDuration      float64   `json:"estimatedDuration" yaml:"estimatedDuration"`
	IncludedWaitingTime    int       `json:"includedWaitingTime" yaml:"includedWaitingTime"`
	AdditionalWaitingPrice float64   `json:"additionalWaitingPrice" yaml:"additionalWaitingPrice"`
	Priority               int       `json:"priority" yaml:"priority"`
	IsActive               bool      `json:"isActive" yaml:"isActive"`
	CreatedAt              time.Time `json:"createdAt" yaml:"createdAt"`
}

func (r Record) ToFixedPrice() (FixedPrice, error) {
	f := FixedPrice{
		ID:                              types.ID(r.ID),
		OriginRegionID:                  types.ID(r.OriginRegionID),
		DestinationRegionID:             types.ID(r.DestinationRegionID),
		VehicleClass:                    types.VehicleClass(r.VehicleClass),
		Price:                           r.FixedPrice,
		Currency:                        r.Currency,
		EstimatedDistanceKm:             r.EstimatedDistance,
		EstimatedDurationMinutes:        r.EstimatedDuration,
		IncludedWaitingMinutes:          r.IncludedWaitingTime,
		AdditionalWaitingPricePerMinute: r.AdditionalWaitingPrice,
		Priority:                        r.Priority,
		Active:                          r.IsActive,
		CreatedAt:                       r.CreatedAt,
	}
	return f, f.Validate()
}
