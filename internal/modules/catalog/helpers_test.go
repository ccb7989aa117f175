package catalog

import (
	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
)

type regionRecord = region.Record

func circleRecord(id string, radius float64) region.Record {
	return region.Record{
		ID:       id,
		Name:     id,
		Shape:    "circle",
		Geometry: region.GeometryRecord{Center: []float64{55.3644, 25.2528}, RadiusMeters: radius},
		IsActive: true,
	}
}

func basePriceRecord(id, class string) baseprice.Record {
	return baseprice.Record{ID: id, RegionID: "ok", VehicleClass: class, BaseFare: 20, Currency: "AED", IsActive: true}
}

func surchargeRecord(id string, timeLeft *int) surcharge.Record {
	return surcharge.Record{
		ID: id, RegionID: "ok", Name: id, Type: "time_left", Application: "fixed_amount",
		Value: 10, TimeLeftMinutes: timeLeft, IsActive: true,
	}
}
