// README: Catalog service builds immutable pricing snapshots and swaps them in atomically.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/pricing"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
	"transferquote/internal/observability"
	"transferquote/internal/types"
)

var ErrCurrency = errors.New("catalog currency mismatch")

type BuildOptions struct {
	Location        *time.Location
	RegionCacheSize int
	// Currency is the quote currency; when set, price rows in any other currency are dropped.
	Currency        string
	Now             func() time.Time
}

func (o BuildOptions) checkCurrency(kind string, id types.ID, currency string) error {
	if o.Currency == "" || currency == o.Currency {
		return nil
	}
	return fmt.Errorf("%w: %s %s is priced in %s, quotes are in %s", ErrCurrency, kind, id, currency, o.Currency)
}

// Build converts a document into a snapshot. Invalid records are dropped and
// reported together in the returned error; the snapshot is usable either way.
func Build(doc Document, opts BuildOptions) (*pricing.Snapshot, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	var errs []error

	regions := make([]region.Region, 0, len(doc.Regions))
	for _, rec := range doc.Regions {
		r, err := rec.ToRegion()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		regions = append(regions, r)
	}
	var idxOpts []region.Option
	if opts.RegionCacheSize > 0 {
		idxOpts = append(idxOpts, region.WithCache(opts.RegionCacheSize))
	}
	idx, err := region.NewIndex(regions, idxOpts...)
	if err != nil {
		return nil, fmt.Errorf("build region index: %w", err)
	}

	bases := make([]baseprice.BasePrice, 0, len(doc.BasePrices))
	for _, rec := range doc.BasePrices {
		b, err := rec.ToBasePrice()
		if err == nil {
			err = opts.checkCurrency("base price", b.ID, b.Currency)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bases = append(bases, b)
	}

	fixed := make([]fixedprice.FixedPrice, 0, len(doc.FixedPrices))
	for _, rec := range doc.FixedPrices {
		f, err := rec.ToFixedPrice()
		if err == nil {
			err = opts.checkCurrency("fixed price", f.ID, f.Currency)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fixed = append(fixed, f)
	}

	surcharges := make([]surcharge.Surcharge, 0, len(doc.Surcharges))
	for _, rec := range doc.Surcharges {
		s, err := rec.ToSurcharge()
		if err == nil && s.Application == surcharge.ApplicationFixedAmount {
			err = opts.checkCurrency("surcharge", s.ID, s.Currency)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		surcharges = append(surcharges, s)
	}

	snap := &pricing.Snapshot{
		Regions:     idx,
		BasePrices:  baseprice.NewTable(bases),
		FixedPrices: fixedprice.NewTable(fixed),
		Surcharges:  surcharge.NewEvaluator(surcharges, opts.Location),
		LoadedAt:    opts.Now(),
	}
	errs = append(errs, snap.Surcharges.Err())
	return snap, errors.Join(errs...)
}

type Service struct {
	source   Source
	opts     BuildOptions
	interval time.Duration
	log      zerolog.Logger
	metrics  *observability.Metrics
	current  atomic.Pointer[pricing.Snapshot]
}

func NewService(source Source, opts BuildOptions, interval time.Duration, log zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{source: source, opts: opts, interval: interval, log: log, metrics: metrics}
}

// Current returns the latest published snapshot, or nil before the first successful load.
func (s *Service) Current() *pricing.Snapshot {
	return s.current.Load()
}

// Reload publishes a fresh snapshot. When the source fails the previous snapshot stays live.
func (s *Service) Reload(ctx context.Context) error {
	doc, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.CatalogReload(false)
		return fmt.Errorf("load catalog: %w", err)
	}
	snap, buildErr := Build(doc, s.opts)
	if snap == nil {
		s.metrics.CatalogReload(false)
		return buildErr
	}
	if buildErr != nil {
		s.log.Warn().Err(buildErr).Msg("catalog contains invalid records; they were skipped")
	}
	s.current.Store(snap)
	s.metrics.CatalogReload(true)
	s.log.Info().
		Int("regions", snap.Regions.Len()).
		Int("base_prices", len(doc.BasePrices)).
		Int("fixed_prices", len(doc.FixedPrices)).
		Int("surcharges", len(doc.Surcharges)).
		Msg("catalog loaded")
	return nil
}

// RunRefresher reloads on every tick until ctx is done.
func (s *Service) RunRefresher(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(ctx); err != nil {
				s.log.Error().Err(err).Msg("catalog refresh failed; keeping previous snapshot")
			}
		}
	}
}
