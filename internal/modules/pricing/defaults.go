// README: Flat per-class rates used when no region-specific base price applies.
package pricing

import (
	"transferquote/internal/modules/baseprice"
	"transferquote/internal/types"
)

type DefaultRate struct {
	BaseFare                        float64
	PricePerKm                      float64
	PricePerMinute                  float64
	MinimumFare                     float64
	IncludedWaitingMinutes          int
	AdditionalWaitingPricePerMinute float64
}

// DefaultRates applies outside configured coverage and also provides the waiting
// terms for distance-based prices, which carry none of their own.
var DefaultRates = map[types.VehicleClass]DefaultRate{
	types.ClassEconomy: {BaseFare: 20, PricePerKm: 1.8, PricePerMinute: 0.4, MinimumFare: 40, IncludedWaitingMinutes: 15, AdditionalWaitingPricePerMinute: 0.5},
	types.ClassComfort: {BaseFare: 25, PricePerKm: 2.2, PricePerMinute: 0.5, MinimumFare: 50, IncludedWaitingMinutes: 15, AdditionalWaitingPricePerMinute: 0.6},
	types.ClassPremium: {BaseFare: 35, PricePerKm: 2.8, PricePerMinute: 0.6, MinimumFare: 70, IncludedWaitingMinutes: 30, AdditionalWaitingPricePerMinute: 0.8},
	types.ClassVan:     {BaseFare: 40, PricePerKm: 3.0, PricePerMinute: 0.6, MinimumFare: 80, IncludedWaitingMinutes: 30, AdditionalWaitingPricePerMinute: 0.8},
	types.ClassLuxury:  {BaseFare: 60, PricePerKm: 4.5, PricePerMinute: 1.0, MinimumFare: 120, IncludedWaitingMinutes: 45, AdditionalWaitingPricePerMinute: 1.5},
}

func (d DefaultRate) basePrice(class types.VehicleClass, currency string) baseprice.BasePrice {
	return baseprice.BasePrice{
		ID:             types.ID("default-" + string(class)),
		VehicleClass:   class,
		BaseFare:       d.BaseFare,
		PricePerKm:     d.PricePerKm,
		PricePerMinute: d.PricePerMinute,
		MinimumFare:    d.MinimumFare,
		Currency:       currency,
		Active:         true,
	}
}
