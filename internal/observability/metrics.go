// README: Prometheus registry and the service's counters; all recorders are nil-safe.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	quotesIssued      prometheus.Counter
	quoteOptions      prometheus.Histogram
	quoteConsumes     *prometheus.CounterVec
	pricingBranches   *prometheus.CounterVec
	surchargesApplied *prometheus.CounterVec
	surchargesSkipped *prometheus.CounterVec
	catalogReloads    *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		quotesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotes_issued_total",
			Help: "Quotes created and persisted.",
		}),
		quoteOptions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quote_vehicle_options",
			Help:    "Number of priced vehicle classes per issued quote.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		quoteConsumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_consume_total",
			Help: "Quote consume attempts by outcome.",
		}, []string{"outcome"}),
		pricingBranches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_calculations_total",
			Help: "Price calculations by pricing source (fixed, base, default).",
		}, []string{"source"}),
		surchargesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surcharges_applied_total",
			Help: "Surcharges applied to priced options, by rule type.",
		}, []string{"type"}),
		surchargesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surcharges_skipped_total",
			Help: "Matching surcharges that were not applied because of a configuration error.",
		}, []string{"surcharge_id"}),
		catalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Pricing catalog reload attempts by result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.quotesIssued, m.quoteOptions, m.quoteConsumes, m.pricingBranches,
		m.surchargesApplied, m.surchargesSkipped, m.catalogReloads, m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) QuoteIssued(options int) {
	if m == nil {
		return
	}
	m.quotesIssued.Inc()
	m.quoteOptions.Observe(float64(options))
}

func (m *Metrics) QuoteConsumed(outcome string) {
	if m == nil {
		return
	}
	m.quoteConsumes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Priced(source string) {
	if m == nil {
		return
	}
	m.pricingBranches.WithLabelValues(source).Inc()
}

func (m *Metrics) SurchargeApplied(ruleType string) {
	if m == nil {
		return
	}
	m.surchargesApplied.WithLabelValues(ruleType).Inc()
}

func (m *Metrics) SurchargeSkipped(id string) {
	if m == nil {
		return
	}
	m.surchargesSkipped.WithLabelValues(id).Inc()
}

func (m *Metrics) CatalogReload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.catalogReloads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
