// README: External record shape for base prices.
package baseprice

import (
	"time"

	"transferquote/internal/types"
)

type Record struct {
	ID             string     `json:"id" yaml:"id"`
	RegionID       string     `json:"regionId" yaml:"regionId"`
	VehicleClass   string     `json:"vehicleClass" yaml:"vehicleClass"`
	BaseFare       float64    `json:"baseFare" yaml:"baseFare"`
	PricePerKm     float64    `json:"pricePerKm" yaml:"pricePerKm"`
	PricePerMinute float64    `json:"pricePerMinute" yaml:"pricePerMinute"`
	MinimumFare    float64    `json:"minimumFare" yaml:"minimumFare"`
	Currency       string     `json:"currency" yaml:"currency"`
	ValidFrom      *time.Time `json:"validFrom,omitempty" yaml:"validFrom,omitempty"`
	ValidUntil     *time.Time `json:"validUntil,omitempty" yaml:"validUntil,omitempty"`
	IsActive       bool       `json:"isActive" yaml:"isActive"`
}

func (r Record) ToBasePrice() (BasePrice, error) {
	b := BasePrice{
		ID:             types.ID(r.ID),
		RegionID:       types.ID(r.RegionID),
		VehicleClass:   types.VehicleClass(r.VehicleClass),
		BaseFare:       r.BaseFare,
		PricePerKm:     r.PricePerKm,
		PricePerMinute: r.PricePerMinute,
		MinimumFare:    r.MinimumFare,
		Currency:       r.Currency,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		Active:         r.IsActive,
	}
	return b, b.Validate()
}
