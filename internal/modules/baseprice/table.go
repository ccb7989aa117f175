// README: Base price table keyed by (region, vehicle class).
package baseprice

import (
	"fmt"
	"sort"
	"time"

	"transferquote/internal/types"
)

type key struct {
	region types.ID
	class  types.VehicleClass
}

// Table is immutable after NewTable.
type Table struct {
	rows map[key][]BasePrice
}

func NewTable(rows []BasePrice) *Table {
	t := &Table{rows: make(map[key][]BasePrice)}
	for _, b := range rows {
		if !b.Active {
			continue
		}
		k := key{region: b.RegionID, class: b.VehicleClass}
		t.rows[k] = append(t.rows[k], b)
	}
	// Overlaps are a data-entry error; the latest window start wins so the answer stays stable.
	for _, list := range t.rows {
		sort.SliceStable(list, func(i, j int) bool {
			fi, fj := startOf(list[i]), startOf(list[j])
			if !fi.Equal(fj) {
				return fi.After(fj)
			}
			return list[i].ID < list[j].ID
		})
	}
	return t
}

// Lookup returns the active row for the pair whose validity window contains at.
func (t *Table) Lookup(regionID types.ID, class types.VehicleClass, at time.Time) (BasePrice, error) {
	if t != nil {
		for _, b := range t.rows[key{region: regionID, class: class}] {
			if b.ValidAt(at) {
				return b, nil
			}
		}
	}
	return BasePrice{}, fmt.Errorf("%w: region %s class %s", ErrNotFound, regionID, class)
}

func startOf(b BasePrice) time.Time {
	if b.ValidFrom == nil {
		return time.Time{}
	}
	return *b.ValidFrom
}
