// README: Quote service tests (issue, expiry, single-use consumption).
package quote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/events"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/pricing"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
	"transferquote/internal/types"
)

var (
	gst     = time.FixedZone("GST", 4*60*60)
	airport = types.Point{Lat: 25.2528, Lng: 55.3644}
	marina  = types.Point{Lat: 25.08, Lng: 55.14}
	t0      = time.Date(2026, 3, 10, 12, 0, 0, 0, gst)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(typ events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func testSnapshot(t *testing.T) *pricing.Snapshot {
	t.Helper()
	idx, err := region.NewIndex([]region.Region{
		{ID: "dxb", Name: "DXB Airport", Active: true, Geometry: region.Circle{Center: airport, RadiusMeters: 3000}},
		{ID: "marina", Name: "Marina", Active: true, Geometry: region.Polygon{Rings: [][]types.Point{{
			{Lng: 55.10, Lat: 25.05}, {Lng: 55.18, Lat: 25.05}, {Lng: 55.18, Lat: 25.11}, {Lng: 55.10, Lat: 25.11}, {Lng: 55.10, Lat: 25.05},
		}}}},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return &pricing.Snapshot{
		Regions: idx,
		BasePrices: baseprice.NewTable([]baseprice.BasePrice{{
			ID: "bp-dxb-economy", RegionID: "dxb", VehicleClass: types.ClassEconomy,
			BaseFare: 25, PricePerKm: 2, PricePerMinute: 0.5, MinimumFare: 15, Currency: "AED", Active: true,
		}}),
		FixedPrices: fixedprice.NewTable([]fixedprice.FixedPrice{{
			ID: "fp-dxb-marina-van", OriginRegionID: "dxb", DestinationRegionID: "marina", VehicleClass: types.ClassVan,
			Price: 160, Currency: "AED", Active: true, CreatedAt: t0.Add(-24 * time.Hour),
		}}),
		Surcharges: surcharge.NewEvaluator(nil, gst),
	}
}

type fixture struct {
	svc   *Service
	store *MemoryStore
	clock *testClock
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(testSnapshot(t))
}

func newFixtureWith(snap *pricing.Snapshot) *fixture {
	f := &fixture{store: NewMemoryStore(), clock: &testClock{now: t0}, pub: &recordingPublisher{}}
	f.svc = NewService(Options{
		Store:     f.store,
		Snapshots: pricing.StaticSnapshot{Snapshot: snap},
		Publisher: f.pub,
		Now:       f.clock.Now,
	})
	return f
}

func ptr(v float64) *float64 { return &v }

func airportRun() CreateCommand {
	return CreateCommand{
		Origin:          airport,
		Destination:     marina,
		PickupAt:        t0.Add(6 * time.Hour),
		Pax:             2,
		Bags:            2,
		DistanceKm:      ptr(20),
		DurationMinutes: ptr(30),
	}
}

func TestCreate_IssuesOneHourQuote(t *testing.T) {
	f := newFixture(t)
	q, err := f.svc.Create(context.Background(), airportRun())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == "" {
		t.Fatalf("expected quote id")
	}
	if !q.ExpiresAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("expected expiresAt %v, got %v", t0.Add(time.Hour), q.ExpiresAt)
	}
	if q.IsUsed {
		t.Fatalf("new quote must not be used")
	}
	// pax 2 / bags 2 fits every class.
	if len(q.Options) != len(types.AllVehicleClasses) {
		t.Fatalf("expected %d options, got %d", len(types.AllVehicleClasses), len(q.Options))
	}

	eco, ok := q.Option(types.ClassEconomy)
	if !ok {
		t.Fatalf("missing economy option")
	}
	if eco.Pricing.Source != pricing.SourceBase || eco.Pricing.Total != 80 {
		t.Fatalf("expected base-priced economy at 80, got %s %.2f", eco.Pricing.Source, eco.Pricing.Total)
	}
	van, _ := q.Option(types.ClassVan)
	if !van.Pricing.IsFixedPrice || van.Pricing.Total != 160 {
		t.Fatalf("expected fixed-price van at 160, got fixed=%v %.2f", van.Pricing.IsFixedPrice, van.Pricing.Total)
	}
	lux, _ := q.Option(types.ClassLuxury)
	if lux.Pricing.Source != pricing.SourceDefault {
		t.Fatalf("expected luxury from default table, got %s", lux.Pricing.Source)
	}
	if f.pub.count(events.TypeQuoteIssued) != 1 {
		t.Fatalf("expected one issued event")
	}

	stored, err := f.svc.Get(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Options) != len(q.Options) {
		t.Fatalf("stored quote lost options")
	}
}

func TestCreate_EligibilityAndPreferredClass(t *testing.T) {
	f := newFixture(t)
	cmd := airportRun()
	cmd.Pax = 5
	cmd.Bags = 1
	q, err := f.svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(q.Options) != 1 || q.Options[0].VehicleClass != types.ClassVan {
		t.Fatalf("expected only van for 5 pax, got %+v", q.Options)
	}

	cmd = airportRun()
	cmd.PreferredClass = types.ClassPremium
	q, err = f.svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Options[0].VehicleClass != types.ClassPremium {
		t.Fatalf("expected preferred class first, got %s", q.Options[0].VehicleClass)
	}
	if q.Options[1].VehicleClass != types.ClassEconomy {
		t.Fatalf("expected display order after preferred class, got %s", q.Options[1].VehicleClass)
	}
}

func TestCreate_EstimatesMissingRoute(t *testing.T) {
	f := newFixture(t)
	cmd := airportRun()
	cmd.DistanceKm = nil
	cmd.DurationMinutes = nil
	q, err := f.svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	km, min := pricing.TripEstimator{}.Estimate(airport, marina)
	if q.EstimatedDistanceKm != km || q.EstimatedDurationMinutes != min {
		t.Fatalf("expected estimate %.2f km / %.0f min, got %.2f / %.0f", km, min, q.EstimatedDistanceKm, q.EstimatedDurationMinutes)
	}
}

func TestCreate_SurchargesFollowPickupTime(t *testing.T) {
	snap := testSnapshot(t)
	snap.Surcharges = surcharge.NewEvaluator([]surcharge.Surcharge{{
		ID: "s-night", RegionID: "dxb", Name: "Night surcharge", Active: true,
		Rule:        surcharge.RecurringWindow{Start: 22 * 60, End: 6 * 60, Days: surcharge.AllDays},
		Application: surcharge.ApplicationPercentage, Value: 25,
	}}, gst)
	f := newFixtureWith(snap)

	tests := []struct {
		name      string
		pickup    time.Time
		wantTotal float64
		wantNight bool
	}{
		// Issued at 12:00, outside the window; the ride itself is at night.
		{"23:00 pickup", t0.Add(11 * time.Hour), 100, true},
		{"18:00 pickup", t0.Add(6 * time.Hour), 80, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := airportRun()
			cmd.PickupAt = tt.pickup
			q, err := f.svc.Create(context.Background(), cmd)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			eco, ok := q.Option(types.ClassEconomy)
			if !ok {
				t.Fatalf("missing economy option")
			}
			if eco.Pricing.Total != tt.wantTotal {
				t.Fatalf("expected economy total %.2f, got %.2f", tt.wantTotal, eco.Pricing.Total)
			}
			if got := len(eco.Pricing.Surcharges) == 1; got != tt.wantNight {
				t.Fatalf("expected night surcharge applied=%v, got %+v", tt.wantNight, eco.Pricing.Surcharges)
			}
		})
	}
}

func TestCreate_SkipsClassPricedInOtherCurrency(t *testing.T) {
	snap := testSnapshot(t)
	snap.BasePrices = baseprice.NewTable([]baseprice.BasePrice{{
		ID: "bp-dxb-economy-usd", RegionID: "dxb", VehicleClass: types.ClassEconomy,
		BaseFare: 25, PricePerKm: 2, PricePerMinute: 0.5, Currency: "USD", Active: true,
	}})
	f := newFixtureWith(snap)

	cmd := airportRun()
	cmd.Extras = []pricing.ExtraRequest{{Code: "child_seat", Quantity: 1}}
	q, err := f.svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := q.Option(types.ClassEconomy); ok {
		t.Fatalf("economy priced in USD must not be quoted")
	}
	if len(q.Options) != len(types.AllVehicleClasses)-1 {
		t.Fatalf("expected %d options, got %d", len(types.AllVehicleClasses)-1, len(q.Options))
	}
	for _, o := range q.Options {
		if o.Pricing.Currency != "AED" {
			t.Fatalf("%s: expected AED, got %s", o.VehicleClass, o.Pricing.Currency)
		}
	}
}

func TestCreate_InvalidRequests(t *testing.T) {
	f := newFixture(t)
	mutate := map[string]func(*CreateCommand){
		"past pickup":     func(c *CreateCommand) { c.PickupAt = t0.Add(-time.Minute) },
		"missing pickup":  func(c *CreateCommand) { c.PickupAt = time.Time{} },
		"zero pax":        func(c *CreateCommand) { c.Pax = 0 },
		"negative bags":   func(c *CreateCommand) { c.Bags = -1 },
		"unknown extra":   func(c *CreateCommand) { c.Extras = []pricing.ExtraRequest{{Code: "jetpack", Quantity: 1}} },
		"bad class":       func(c *CreateCommand) { c.PreferredClass = "limo" },
		"bad coordinates": func(c *CreateCommand) { c.Origin = types.Point{Lat: 91, Lng: 0} },
		"negative km":     func(c *CreateCommand) { c.DistanceKm = ptr(-1) },
	}
	for name, fn := range mutate {
		cmd := airportRun()
		fn(&cmd)
		if _, err := f.svc.Create(context.Background(), cmd); !errors.Is(err, ErrBadRequest) {
			t.Fatalf("%s: expected ErrBadRequest, got %v", name, err)
		}
	}
}

func TestCreate_NoPricingAvailable(t *testing.T) {
	svc := NewService(Options{
		Store:      NewMemoryStore(),
		Calculator: pricing.NewCalculator(pricing.Options{Defaults: map[types.VehicleClass]pricing.DefaultRate{}}),
		Now:        func() time.Time { return t0 },
	})
	cmd := airportRun()
	cmd.Origin = types.Point{Lat: 10, Lng: 10}
	if _, err := svc.Create(context.Background(), cmd); !errors.Is(err, ErrNoPricingAvailable) {
		t.Fatalf("expected ErrNoPricingAvailable, got %v", err)
	}

	cmd = airportRun()
	cmd.Pax = 9
	if _, err := svc.Create(context.Background(), cmd); !errors.Is(err, ErrNoPricingAvailable) {
		t.Fatalf("expected ErrNoPricingAvailable for oversized party, got %v", err)
	}
}

func TestConsume_OnceOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, airportRun())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	used, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassEconomy})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !used.IsUsed || used.SelectedClass != types.ClassEconomy || used.UsedAt == nil {
		t.Fatalf("expected consumed quote, got %+v", used)
	}
	if _, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassEconomy}); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
	got, err := f.svc.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsUsed || got.SelectedClass != types.ClassEconomy {
		t.Fatalf("stored quote not marked used: %+v", got)
	}
	if f.pub.count(events.TypeQuoteConsumed) != 1 {
		t.Fatalf("expected one consumed event")
	}
}

func TestConsume_ConcurrentExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, airportRun())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 32
	var wg sync.WaitGroup
	var success atomic.Int32
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassComfort})
			if err == nil {
				success.Add(1)
				return
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	if success.Load() != 1 {
		t.Fatalf("expected exactly one success, got %d", success.Load())
	}
	for err := range errs {
		if !errors.Is(err, ErrAlreadyUsed) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestConsume_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, airportRun())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.clock.Advance(61 * time.Minute)
	if _, err := f.svc.Get(ctx, q.ID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired on get, got %v", err)
	}
	if _, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassEconomy}); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired on consume, got %v", err)
	}
}

func TestConsume_AtExactExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, airportRun())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.clock.Advance(time.Hour)
	if _, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassEconomy}); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at expiresAt, got %v", err)
	}
}

func TestConsume_InvalidRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: "missing", VehicleClass: types.ClassEconomy}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Consume(ctx, ConsumeCommand{VehicleClass: types.ClassEconomy}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for empty id, got %v", err)
	}

	cmd := airportRun()
	cmd.Pax = 6
	q, err := f.svc.Create(ctx, cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassEconomy}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for class not offered, got %v", err)
	}
	// A rejected class must not burn the quote.
	if _, err := f.svc.Consume(ctx, ConsumeCommand{QuoteID: q.ID, VehicleClass: types.ClassVan}); err != nil {
		t.Fatalf("consume offered class: %v", err)
	}
}
