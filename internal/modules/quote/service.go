// README: Quote service issues priced multi-class quotes and consumes them exactly once.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"transferquote/internal/logger"
	"transferquote/internal/modules/events"
	"transferquote/internal/modules/pricing"
	"transferquote/internal/observability"
	"transferquote/internal/types"
)

type Options struct {
	Store      Store
	Calculator *pricing.Calculator
	Snapshots  pricing.SnapshotProvider
	Estimator  pricing.TripEstimator
	Publisher  events.Publisher
	TTL        time.Duration
	Now        func() time.Time
	Logger     zerolog.Logger
	Metrics    *observability.Metrics
}

type Service struct {
	store     Store
	calc      *pricing.Calculator
	snapshots pricing.SnapshotProvider
	estimator pricing.TripEstimator
	publisher events.Publisher
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger
	metrics   *observability.Metrics
}

func NewService(opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Snapshots == nil {
		opts.Snapshots = pricing.StaticSnapshot{}
	}
	if opts.Calculator == nil {
		opts.Calculator = pricing.NewCalculator(pricing.Options{Logger: opts.Logger, Metrics: opts.Metrics})
	}
	return &Service{
		store:     opts.Store,
		calc:      opts.Calculator,
		snapshots: opts.Snapshots,
		estimator: opts.Estimator,
		publisher: opts.Publisher,
		ttl:       opts.TTL,
		now:       opts.Now,
		log:       opts.Logger,
		metrics:   opts.Metrics,
	}
}

type CreateCommand struct {
	Origin              types.Point
	Destination         types.Point
	OriginRegionID      types.ID
	DestinationRegionID types.ID
	PickupAt            time.Time
	Pax                 int
	Bags                int
	Extras              []pricing.ExtraRequest
	PreferredClass      types.VehicleClass
	// Caller supplied route metrics; nil means estimate from coordinates.
	DistanceKm      *float64
	DurationMinutes *float64
}

type ConsumeCommand struct {
	QuoteID      types.ID
	VehicleClass types.VehicleClass
}

func (s *Service) validate(cmd CreateCommand, now time.Time) error {
	switch {
	case cmd.PickupAt.IsZero():
		return fmt.Errorf("%w: pickupAt is required", ErrBadRequest)
	case !cmd.PickupAt.After(now):
		return fmt.Errorf("%w: pickupAt must be in the future", ErrBadRequest)
	case cmd.Pax < 1:
		return fmt.Errorf("%w: pax must be at least 1", ErrBadRequest)
	case cmd.Bags < 0:
		return fmt.Errorf("%w: bags must not be negative", ErrBadRequest)
	case !cmd.Origin.Valid() || !cmd.Destination.Valid():
		return fmt.Errorf("%w: origin and destination must be valid coordinates", ErrBadRequest)
	case cmd.PreferredClass != "" && !cmd.PreferredClass.IsValid():
		return fmt.Errorf("%w: unknown vehicle class %q", ErrBadRequest, cmd.PreferredClass)
	}
	for _, m := range []*float64{cmd.DistanceKm, cmd.DurationMinutes} {
		if m != nil && (*m < 0 || math.IsNaN(*m) || math.IsInf(*m, 0)) {
			return fmt.Errorf("%w: distance and duration must be non-negative numbers", ErrBadRequest)
		}
	}
	for _, e := range cmd.Extras {
		if !s.calc.Extras().Known(e.Code) {
			return fmt.Errorf("%w: unknown extra %q", ErrBadRequest, e.Code)
		}
		if e.Quantity < 0 {
			return fmt.Errorf("%w: extra %q quantity must not be negative", ErrBadRequest, e.Code)
		}
	}
	return nil
}

// eligibleClasses returns classes that fit the party, preferred class first.
func eligibleClasses(pax, bags int, preferred types.VehicleClass) []types.VehicleClass {
	out := make([]types.VehicleClass, 0, len(types.AllVehicleClasses))
	for _, c := range types.AllVehicleClasses {
		if c.Fits(pax, bags) {
			out = append(out, c)
		}
	}
	if preferred != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i] == preferred && out[j] != preferred
		})
	}
	return out
}

// Create prices every eligible vehicle class, persists the quote and returns it.
// Classes without any price are left out; if none remain ErrNoPricingAvailable is returned.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Quote, error) {
	now := s.now()
	if err := s.validate(cmd, now); err != nil {
		return nil, err
	}

	distanceKm, durationMin := s.estimator.Estimate(cmd.Origin, cmd.Destination)
	if cmd.DistanceKm != nil {
		distanceKm = *cmd.DistanceKm
	}
	if cmd.DurationMinutes != nil {
		durationMin = *cmd.DurationMinutes
	}

	classes := eligibleClasses(cmd.Pax, cmd.Bags, cmd.PreferredClass)
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no vehicle class fits %d passengers and %d bags", ErrNoPricingAvailable, cmd.Pax, cmd.Bags)
	}

	id := types.ID(uuid.NewString())
	ctx = logger.WithQuoteID(ctx, string(id))
	log := logger.FromContext(ctx, &s.log)
	snap := s.snapshots.Current()

	results := make([]*pricing.Breakdown, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	for i, class := range classes {
		g.Go(func() error {
			b, err := s.calc.Calculate(gctx, snap, pricing.Request{
				Origin:              cmd.Origin,
				Destination:         cmd.Destination,
				OriginRegionID:      cmd.OriginRegionID,
				DestinationRegionID: cmd.DestinationRegionID,
				VehicleClass:        class,
				DistanceKm:          distanceKm,
				DurationMinutes:     durationMin,
				BookingTime:         cmd.PickupAt,
				MinutesUntilPickup:  cmd.PickupAt.Sub(now).Minutes(),
				Extras:              cmd.Extras,
			})
			switch {
			case err == nil:
				results[i] = &b
				return nil
			case errors.Is(err, pricing.ErrNoPrice):
				return nil
			case errors.Is(err, pricing.ErrCurrencyMismatch):
				// Misconfigured row; the other classes can still be quoted.
				log.Warn().Err(err).Str("vehicle_class", string(class)).Msg("vehicle class left out of quote")
				return nil
			case errors.Is(err, pricing.ErrInvalidRequest):
				return fmt.Errorf("%w: %w", ErrBadRequest, err)
			default:
				return fmt.Errorf("price %s: %w", class, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	q := &Quote{
		ID:                       id,
		PickupAt:                 cmd.PickupAt,
		Pax:                      cmd.Pax,
		Bags:                     cmd.Bags,
		Extras:                   cmd.Extras,
		Origin:                   cmd.Origin,
		Destination:              cmd.Destination,
		EstimatedDistanceKm:      distanceKm,
		EstimatedDurationMinutes: durationMin,
		CreatedAt:                now,
		ExpiresAt:                now.Add(s.ttl),
	}
	for i, b := range results {
		if b == nil {
			continue
		}
		capacity := classes[i].Capacity()
		q.Options = append(q.Options, Option{
			VehicleClass: classes[i],
			Name:         classes[i].DisplayName(),
			PaxCapacity:  capacity.Pax,
			BagCapacity:  capacity.Bags,
			Pricing:      *b,
		})
	}
	if len(q.Options) == 0 {
		return nil, ErrNoPricingAvailable
	}

	if err := s.store.Create(ctx, q); err != nil {
		return nil, err
	}
	s.metrics.QuoteIssued(len(q.Options))
	log.Info().Int("options", len(q.Options)).Time("expires_at", q.ExpiresAt).Msg("quote issued")

	first := q.Options[0].Pricing
	s.publisher.Publish(ctx, events.Event{
		Type:       events.TypeQuoteIssued,
		QuoteID:    string(q.ID),
		Options:    len(q.Options),
		Total:      first.Total,
		Currency:   first.Currency,
		ExpiresAt:  q.ExpiresAt,
		OccurredAt: now,
	})
	return q, nil
}

// Get returns the quote, or ErrExpired once expiresAt has passed.
func (s *Service) Get(ctx context.Context, id types.ID) (*Quote, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.ExpiredAt(s.now()) {
		return nil, ErrExpired
	}
	return q, nil
}

// Consume marks the quote used for one of its offered classes. Under concurrent calls
// exactly one succeeds; the rest see ErrAlreadyUsed.
func (s *Service) Consume(ctx context.Context, cmd ConsumeCommand) (*Quote, error) {
	if cmd.QuoteID == "" || !cmd.VehicleClass.IsValid() {
		return nil, ErrBadRequest
	}
	ctx = logger.WithQuoteID(ctx, string(cmd.QuoteID))
	log := logger.FromContext(ctx, &s.log)
	now := s.now()

	q, err := s.store.Get(ctx, cmd.QuoteID)
	if err != nil {
		s.consumeOutcome(err)
		return nil, err
	}
	if q.ExpiredAt(now) {
		s.consumeOutcome(ErrExpired)
		return nil, ErrExpired
	}
	opt, ok := q.Option(cmd.VehicleClass)
	if !ok {
		s.consumeOutcome(ErrBadRequest)
		return nil, fmt.Errorf("%w: vehicle class %q was not offered", ErrBadRequest, cmd.VehicleClass)
	}
	if err := s.store.MarkUsed(ctx, cmd.QuoteID, cmd.VehicleClass, now); err != nil {
		s.consumeOutcome(err)
		return nil, err
	}
	s.consumeOutcome(nil)

	usedAt := now
	q.IsUsed = true
	q.UsedAt = &usedAt
	q.SelectedClass = cmd.VehicleClass
	log.Info().Str("vehicle_class", string(cmd.VehicleClass)).Msg("quote consumed")

	s.publisher.Publish(ctx, events.Event{
		Type:         events.TypeQuoteConsumed,
		QuoteID:      string(q.ID),
		VehicleClass: string(cmd.VehicleClass),
		Total:        opt.Pricing.Total,
		Currency:     opt.Pricing.Currency,
		ExpiresAt:    q.ExpiresAt,
		OccurredAt:   now,
	})
	return q, nil
}

func (s *Service) consumeOutcome(err error) {
	switch {
	case err == nil:
		s.metrics.QuoteConsumed("ok")
	case errors.Is(err, ErrNotFound):
		s.metrics.QuoteConsumed("not_found")
	case errors.Is(err, ErrExpired):
		s.metrics.QuoteConsumed("expired")
	case errors.Is(err, ErrAlreadyUsed):
		s.metrics.QuoteConsumed("already_used")
	case errors.Is(err, ErrBadRequest):
		s.metrics.QuoteConsumed("bad_request")
	default:
		s.metrics.QuoteConsumed("error")
	}
}
