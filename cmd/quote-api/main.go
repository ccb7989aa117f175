// README: Entry point; loads config, wires catalog, pricing and quote services, starts the HTTP server and catalog refresher.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"transferquote/internal/config"
	httptransport "transferquote/internal/http"
	"transferquote/internal/infra"
	"transferquote/internal/logger"
	"transferquote/internal/modules/catalog"
	"transferquote/internal/modules/events"
	"transferquote/internal/modules/pricing"
	"transferquote/internal/modules/quote"
	"transferquote/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.Build(logger.Config{Level: "info", Component: "quote-api"}, os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Build(logger.Config{Level: cfg.Log.Level, Console: cfg.Log.Console, Component: "quote-api"}, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("quote-api stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	var dbPool *pgxpool.Pool
	if cfg.Catalog.Source == config.CatalogPostgres || cfg.Quote.Store == config.StorePostgres {
		dbPool, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer dbPool.Close()
	}

	var source catalog.Source
	switch cfg.Catalog.Source {
	case config.CatalogPostgres:
		source = catalog.NewPostgresSource(dbPool)
	default:
		source = catalog.FileSource{Path: cfg.Catalog.File}
	}
	catalogSvc := catalog.NewService(source, catalog.BuildOptions{Location: loc, RegionCacheSize: 4096, Currency: cfg.Pricing.Currency},
		cfg.Catalog.Refresh, log.With().Str("module", "catalog").Logger(), metrics)
	if err := catalogSvc.Reload(ctx); err != nil {
		return err
	}

	var store quote.Store
	switch cfg.Quote.Store {
	case config.StorePostgres:
		store = quote.NewPostgresStore(dbPool)
	case config.StoreRedis:
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = quote.NewRedisStore(rdb, cfg.Quote.RetainFor)
	default:
		store = quote.NewMemoryStore()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.With().Str("module", "events").Logger())
	}
	defer publisher.Close()

	var extras *pricing.ExtrasTable
	if len(cfg.Pricing.Extras) > 0 {
		extras = pricing.NewExtrasTable(cfg.Pricing.Extras)
	}
	pricingLog := log.With().Str("module", "pricing").Logger()
	calc := pricing.NewCalculator(pricing.Options{
		Currency: cfg.Pricing.Currency,
		Extras:   extras,
		Logger:   pricingLog,
		Metrics:  metrics,
	})

	quoteSvc := quote.NewService(quote.Options{
		Store:      store,
		Calculator: calc,
		Snapshots:  catalogSvc,
		Estimator:  pricing.TripEstimator{RoadFactor: cfg.Pricing.RoadFactor, AvgSpeedKmh: cfg.Pricing.AvgSpeedKmh},
		Publisher:  publisher,
		TTL:        cfg.Quote.TTL,
		Logger:     log.With().Str("module", "quote").Logger(),
		Metrics:    metrics,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.RouterDeps{
		Quotes:    quoteSvc,
		Snapshots: catalogSvc,
		Metrics:   metrics,
		Logger:    log.With().Str("module", "http").Logger(),
	})

	go catalogSvc.RunRefresher(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Str("quote_store", cfg.Quote.Store).Str("catalog", cfg.Catalog.Source).Msg("quote-api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("quote-api shut down")
	return nil
}
