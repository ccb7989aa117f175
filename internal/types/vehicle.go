// README: Vehicle class enum with display names and capacities.
package types

import "fmt"

type VehicleClass string

const (
	ClassEconomy VehicleClass = "economy"
	ClassComfort VehicleClass = "comfort"
	ClassPremium VehicleClass = "premium"
	ClassVan     VehicleClass = "van"
	ClassLuxury  VehicleClass = "luxury"
)

// AllVehicleClasses is the display order for quote options.
var AllVehicleClasses = []VehicleClass{ClassEconomy, ClassComfort, ClassPremium, ClassVan, ClassLuxury}

type Capacity struct {
	Pax  int
	Bags int
}

var capacities = map[VehicleClass]Capacity{
	ClassEconomy: {Pax: 3, Bags: 2},
	ClassComfort: {Pax: 4, Bags: 3},
	ClassPremium: {Pax: 4, Bags: 3},
	ClassVan:     {Pax: 7, Bags: 7},
	ClassLuxury:  {Pax: 3, Bags: 3},
}

var displayNames = map[VehicleClass]string{
	ClassEconomy: "Economy Sedan",
	ClassComfort: "Comfort Sedan",
	ClassPremium: "Premium Sedan",
	ClassVan:     "Minivan",
	ClassLuxury:  "Luxury Car",
}

func ParseVehicleClass(s string) (VehicleClass, error) {
	c := VehicleClass(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown vehicle class %q", s)
	}
	return c, nil
}

func (c VehicleClass) IsValid() bool {
	_, ok := capacities[c]
	return ok
}

func (c VehicleClass) DisplayName() string {
	if n, ok := displayNames[c]; ok {
		return n
	}
	return string(c)
}

func (c VehicleClass) Capacity() Capacity {
	return capacities[c]
}

// Fits reports whether the class can carry the requested passengers and bags.
func (c VehicleClass) Fits(pax, bags int) bool {
	cp, ok := capacities[c]
	if !ok {
		return false
	}
	return cp.Pax >= pax && cp.Bags >= bags
}
