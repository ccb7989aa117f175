// README: Region-independent price list for booking extras.
package pricing

import (
	"fmt"
	"sort"

	"transferquote/internal/types"
)

// DefaultExtras is used when no extras price list is configured.
var DefaultExtras = map[string]float64{
	"child_seat":     25,
	"booster_seat":   20,
	"meet_and_greet": 50,
	"extra_luggage":  15,
}

type ExtrasTable struct {
	prices map[string]float64
}

func NewExtrasTable(prices map[string]float64) *ExtrasTable {
	if len(prices) == 0 {
		prices = DefaultExtras
	}
	cp := make(map[string]float64, len(prices))
	for k, v := range prices {
		cp[k] = v
	}
	return &ExtrasTable{prices: cp}
}

func (t *ExtrasTable) Known(code string) bool {
	_, ok := t.prices[code]
	return ok
}

func (t *ExtrasTable) Codes() []string {
	out := make([]string, 0, len(t.prices))
	for k := range t.prices {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Price itemises the requested extras. A zero quantity counts as one.
func (t *ExtrasTable) Price(extras []ExtraRequest) ([]ExtraLine, float64, error) {
	var lines []ExtraLine
	var total float64
	for _, e := range extras {
		unit, ok := t.prices[e.Code]
		if !ok {
			return nil, 0, fmt.Errorf("%w: unknown extra %q", ErrInvalidRequest, e.Code)
		}
		qty := e.Quantity
		if qty < 0 {
			return nil, 0, fmt.Errorf("%w: negative quantity for extra %q", ErrInvalidRequest, e.Code)
		}
		if qty == 0 {
			qty = 1
		}
		amount := types.Round2(unit * float64(qty))
		lines = append(lines, ExtraLine{Code: e.Code, Quantity: qty, UnitPrice: unit, Amount: amount})
		total += amount
	}
	return lines, types.Round2(total), nil
}
