// README: Fixed price table; the best-ranked active row per triple wins.
package fixedprice

import (
	"fmt"
	"sort"

	"transferquote/internal/types"
)

type pair struct {
	origin      types.ID
	destination types.ID
}

// Table is immutable after NewTable. Rows per route are kept in rank order.
type Table struct {
	routes map[pair][]FixedPrice
}

func NewTable(rows []FixedPrice) *Table {
	t := &Table{routes: make(map[pair][]FixedPrice)}
	for _, f := range rows {
		if !f.Active {
			continue
		}
		p := pair{origin: f.OriginRegionID, destination: f.DestinationRegionID}
		t.routes[p] = append(t.routes[p], f)
	}
	for _, list := range t.routes {
		sort.SliceStable(list, func(i, j int) bool { return list[i].outranks(list[j]) })
	}
	return t
}

// Lookup picks the highest priority active row for the exact triple, newest on ties.
func (t *Table) Lookup(origin, destination types.ID, class types.VehicleClass) (FixedPrice, error) {
	if t != nil {
		for _, f := range t.routes[pair{origin: origin, destination: destination}] {
			if f.VehicleClass == class {
				return f, nil
			}
		}
	}
	return FixedPrice{}, fmt.Errorf("%w: %s -> %s class %s", ErrNotFound, origin, destination, class)
}

// ListByRegions returns all active rows for the route across vehicle classes,
// grouped by class in display order and ranked within each class.
func (t *Table) ListByRegions(origin, destination types.ID) []FixedPrice {
	if t == nil {
		return nil
	}
	src := t.routes[pair{origin: origin, destination: destination}]
	out := make([]FixedPrice, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return classRank(out[i].VehicleClass) < classRank(out[j].VehicleClass)
	})
	return out
}

func classRank(c types.VehicleClass) int {
	for i, v := range types.AllVehicleClasses {
		if v == c {
			return i
		}
	}
	return len(types.AllVehicleClasses)
}
