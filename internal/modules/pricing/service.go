// README: Price calculator; resolves regions, walks fixed -> base -> default, then adds extras and surcharges.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"transferquote/internal/logger"
	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
	"transferquote/internal/observability"
	"transferquote/internal/types"
)

type Options struct {
	Currency string
	Defaults map[types.VehicleClass]DefaultRate
	Extras   *ExtrasTable
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
}

// Calculator holds no mutable state; Calculate is safe for concurrent use.
type Calculator struct {
	currency string
	defaults map[types.VehicleClass]DefaultRate
	extras   *ExtrasTable
	log      zerolog.Logger
	metrics  *observability.Metrics
}

func NewCalculator(opts Options) *Calculator {
	if opts.Currency == "" {
		opts.Currency = "AED"
	}
	if opts.Defaults == nil {
		opts.Defaults = DefaultRates
	}
	if opts.Extras == nil {
		opts.Extras = NewExtrasTable(nil)
	}
	return &Calculator{
		currency: opts.Currency,
		defaults: opts.Defaults,
		extras:   opts.Extras,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

func (c *Calculator) Currency() string     { return c.currency }
func (c *Calculator) Extras() *ExtrasTable { return c.extras }

func (r Request) validate() error {
	if !r.VehicleClass.IsValid() {
		return fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidRequest, r.VehicleClass)
	}
	for name, v := range map[string]float64{
		"distanceKm":         r.DistanceKm,
		"durationMinutes":    r.DurationMinutes,
		"minutesUntilPickup": r.MinutesUntilPickup,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidRequest, name)
		}
	}
	if r.BookingTime.IsZero() {
		return fmt.Errorf("%w: booking time is required", ErrInvalidRequest)
	}
	return nil
}

// Calculate prices one vehicle class against snap. Lookup misses fall through the
// fixed -> base -> default chain; ErrNoPrice is returned only when the default
// table has no rate for the class.
func (c *Calculator) Calculate(ctx context.Context, snap *Snapshot, req Request) (Breakdown, error) {
	if err := req.validate(); err != nil {
		return Breakdown{}, err
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	log := logger.FromContext(ctx, &c.log)

	origin, originOK := resolveRegion(snap.Regions, req.OriginRegionID, req.Origin)
	dest, destOK := resolveRegion(snap.Regions, req.DestinationRegionID, req.Destination)

	b := Breakdown{
		VehicleClass:             req.VehicleClass,
		OriginRegionID:           origin,
		DestinationRegionID:      dest,
		EstimatedDistanceKm:      req.DistanceKm,
		EstimatedDurationMinutes: req.DurationMinutes,
	}

	priced := false
	if originOK && destOK {
		fp, err := snap.FixedPrices.Lookup(origin, dest, req.VehicleClass)
		switch {
		case err == nil:
			c.applyFixed(&b, fp)
			priced = true
		case !errors.Is(err, fixedprice.ErrNotFound):
			return Breakdown{}, err
		}
	}
	if !priced && originOK {
		bp, err := snap.BasePrices.Lookup(origin, req.VehicleClass, req.BookingTime)
		switch {
		case err == nil:
			c.applyBase(&b, bp, SourceBase, req)
			priced = true
		case !errors.Is(err, baseprice.ErrNotFound):
			return Breakdown{}, err
		}
	}
	if !priced {
		rate, ok := c.defaults[req.VehicleClass]
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: %s", ErrNoPrice, req.VehicleClass)
		}
		c.applyBase(&b, rate.basePrice(req.VehicleClass, c.currency), SourceDefault, req)
	}

	if b.Currency != c.currency {
		log.Error().
			Str("price_id", string(b.PriceID)).
			Str("price_currency", b.Currency).
			Str("quote_currency", c.currency).
			Msg("price row currency mismatch")
		return Breakdown{}, fmt.Errorf("%w: %s is priced in %s, quotes are in %s", ErrCurrencyMismatch, b.PriceID, b.Currency, c.currency)
	}

	lines, extrasTotal, err := c.extras.Price(req.Extras)
	if err != nil {
		return Breakdown{}, err
	}
	b.Extras = lines
	b.ExtrasTotal = extrasTotal

	// Surcharges are an origin-side concept; an unresolved origin has none.
	if originOK {
		res, err := snap.Surcharges.Applicable(surcharge.Input{
			RegionID:           origin,
			BookingTime:        req.BookingTime,
			MinutesUntilPickup: req.MinutesUntilPickup,
			Subtotal:           b.Subtotal,
			Currency:           c.currency,
		})
		if err != nil {
			return Breakdown{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		for _, s := range res.Skipped {
			log.Warn().
				Str("surcharge_id", string(s.ID)).
				Str("surcharge", s.Name).
				Str("region_id", string(origin)).
				Msg("surcharge skipped: " + s.Reason)
			c.metrics.SurchargeSkipped(string(s.ID))
		}
		for _, a := range res.Applied {
			c.metrics.SurchargeApplied(string(a.Type))
		}
		b.Surcharges = res.Applied
		b.SurchargeTotal = res.Total
	}

	b.Total = types.Round2(b.Subtotal + b.ExtrasTotal + b.SurchargeTotal)
	c.metrics.Priced(string(b.Source))
	log.Debug().
		Str("vehicle_class", string(b.VehicleClass)).
		Str("source", string(b.Source)).
		Str("origin_region", string(origin)).
		Str("destination_region", string(dest)).
		Float64("total", b.Total).
		Msg("priced")
	return b, nil
}

func (c *Calculator) applyFixed(b *Breakdown, fp fixedprice.FixedPrice) {
	b.Source = SourceFixed
	b.IsFixedPrice = true
	b.PriceID = fp.ID
	b.BaseFare = types.Round2(fp.Price)
	b.Subtotal = b.BaseFare
	b.Currency = fp.Currency
	b.IncludedWaitingMinutes = fp.IncludedWaitingMinutes
	b.AdditionalWaitingPricePerMinute = fp.AdditionalWaitingPricePerMinute
	b.EstimatedDistanceKm = fp.EstimatedDistanceKm
	b.EstimatedDurationMinutes = fp.EstimatedDurationMinutes
}

func (c *Calculator) applyBase(b *Breakdown, bp baseprice.BasePrice, src Source, req Request) {
	fare := baseprice.Compute(bp, req.DistanceKm, req.DurationMinutes)
	b.Source = src
	b.PriceID = bp.ID
	b.BaseFare = fare.BaseFare
	b.DistanceCharge = fare.DistanceCharge
	b.TimeCharge = fare.TimeCharge
	b.MinimumFareApplied = fare.MinimumApplied
	b.Subtotal = fare.Total
	b.Currency = fare.Currency
	if d, ok := c.defaults[req.VehicleClass]; ok {
		b.IncludedWaitingMinutes = d.IncludedWaitingMinutes
		b.AdditionalWaitingPricePerMinute = d.AdditionalWaitingPricePerMinute
	}
}

// resolveRegion prefers an explicit id naming an active region, then the first
// region containing p.
func resolveRegion(idx *region.Index, id types.ID, p types.Point) (types.ID, bool) {
	if id != "" {
		if r, err := idx.FindByID(id); err == nil {
			return r.ID, true
		}
	}
	if r, ok := idx.First(p); ok {
		return r.ID, true
	}
	return "", false
}
