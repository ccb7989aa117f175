package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordAndExpose(t *testing.T) {
	m := NewMetrics()
	m.QuoteIssued(3)
	m.QuoteConsumed("ok")
	m.QuoteConsumed("already_used")
	m.Priced("fixed")
	m.SurchargeApplied("datetime")
	m.CatalogReload(true)
	m.ObserveHTTP(http.MethodPost, "/api/quotes", 201, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.quotesIssued); got != 1 {
		t.Errorf("quotes_issued_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.quoteConsumes.WithLabelValues("already_used")); got != 1 {
		t.Errorf("quote_consume_total{already_used} = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"quotes_issued_total", "pricing_calculations_total", "http_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.QuoteIssued(1)
	m.QuoteConsumed("ok")
	m.Priced("base")
	m.SurchargeSkipped("s-1")
	m.CatalogReload(false)
	m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
}
