// README: Surcharge evaluator; every active matching rule of a region applies, none suppress others.
package surcharge

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"transferquote/internal/types"
)

// Evaluator is immutable after NewEvaluator. All time-of-day and weekday checks
// run in one configured location.
type Evaluator struct {
	loc      *time.Location
	byRegion map[types.ID][]Surcharge
	rejected []error
}

// NewEvaluator indexes the active rows by region. Rows that fail Validate are
// left out and reported by Err.
func NewEvaluator(rows []Surcharge, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	e := &Evaluator{loc: loc, byRegion: make(map[types.ID][]Surcharge)}
	for _, s := range rows {
		if !s.Active {
			continue
		}
		if err := s.Validate(); err != nil {
			e.rejected = append(e.rejected, err)
			continue
		}
		e.byRegion[s.RegionID] = append(e.byRegion[s.RegionID], s)
	}
	for _, list := range e.byRegion {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Priority != list[j].Priority {
				return list[i].Priority < list[j].Priority
			}
			return list[i].ID < list[j].ID
		})
	}
	return e
}

func (e *Evaluator) Location() *time.Location {
	if e == nil {
		return time.UTC
	}
	return e.loc
}

// Err joins the validation errors of the rows NewEvaluator dropped.
func (e *Evaluator) Err() error {
	if e == nil {
		return nil
	}
	return errors.Join(e.rejected...)
}

// Applicable evaluates the region's surcharges against one booking. Percentage
// amounts are taken from in.Subtotal, so they never compound.
func (e *Evaluator) Applicable(in Input) (Result, error) {
	if in.MinutesUntilPickup < 0 || math.IsNaN(in.MinutesUntilPickup) {
		return Result{}, fmt.Errorf("%w: minutes until pickup must be non-negative, got %v", ErrInvalidRequest, in.MinutesUntilPickup)
	}
	var res Result
	if e == nil {
		return res, nil
	}

	c := matchContext{
		at:                 in.BookingTime,
		local:              in.BookingTime.In(e.loc),
		minutesUntilPickup: in.MinutesUntilPickup,
	}
	var total float64
	for _, s := range e.byRegion[in.RegionID] {
		ok, reason := s.Rule.match(c)
		if !ok {
			continue
		}
		a := Applied{
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Rule.Type(),
			Application: s.Application,
			Value:       s.Value,
			Currency:    in.Currency,
			Reason:      reason,
			Priority:    s.Priority,
		}
		switch s.Application {
		case ApplicationPercentage:
			a.Amount = types.Round2(in.Subtotal * s.Value / 100)
		case ApplicationFixedAmount:
			if s.Currency != in.Currency {
				res.Skipped = append(res.Skipped, Skipped{
					ID:     s.ID,
					Name:   s.Name,
					Reason: fmt.Sprintf("currency %s does not match quote currency %s", s.Currency, in.Currency),
				})
				continue
			}
			a.Amount = types.Round2(s.Value)
		}
		total += a.Amount
		res.Applied = append(res.Applied, a)
	}
	res.Total = types.Round2(total)
	return res, nil
}
