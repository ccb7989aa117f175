// README: Handler tests for quote issue/get/consume status mapping.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"transferquote/internal/http/handlers"
	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/pricing"
	"transferquote/internal/modules/quote"
	"transferquote/internal/modules/region"
	"transferquote/internal/types"
)

var (
	gst     = time.FixedZone("GST", 4*60*60)
	t0      = time.Date(2026, 3, 10, 12, 0, 0, 0, gst)
	airport = types.Point{Lat: 25.2528, Lng: 55.3644}
	marina  = types.Point{Lat: 25.08, Lng: 55.14}
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testSnapshot(t *testing.T) *pricing.Snapshot {
	t.Helper()
	idx, err := region.NewIndex([]region.Region{
		{ID: "dxb", Name: "DXB Airport", Tags: []string{"airport"}, Active: true, Geometry: region.Circle{Center: airport, RadiusMeters: 3000}},
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
			ID: "fp-dxb-marina-economy", OriginRegionID: "dxb", DestinationRegionID: "marina", VehicleClass: types.ClassEconomy,
			Price: 75, Currency: "AED", Priority: 1, Active: true, CreatedAt: t0.Add(-time.Hour),
		}}),
	}
}

// buildTestRouter wires a minimal Gin engine with in-memory quote storage.
func buildTestRouter(t *testing.T) (*gin.Engine, *clock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clk := &clock{now: t0}
	snaps := pricing.StaticSnapshot{Snapshot: testSnapshot(t)}
	svc := quote.NewService(quote.Options{
		Store:     quote.NewMemoryStore(),
		Snapshots: snaps,
		Now:       clk.Now,
	})
	r := gin.New()
	qh := handlers.NewQuoteHandler(svc)
	r.POST("/api/quotes", qh.Create)
	r.GET("/api/quotes/:id", qh.Get)
	r.POST("/api/quotes/:id/consume", qh.Consume)
	ch := handlers.NewCatalogHandler(snaps)
	r.GET("/api/regions/containing", ch.RegionsContaining)
	r.GET("/api/fixed-prices", ch.FixedPrices)
	return r, clk
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func quoteBody() map[string]any {
	return map[string]any{
		"origin":          map[string]float64{"lat": airport.Lat, "lon": airport.Lng},
		"destination":     map[string]float64{"lat": marina.Lat, "lon": marina.Lng},
		"pickupAt":        t0.Add(6 * time.Hour).Format(time.RFC3339),
		"pax":             2,
		"bags":            1,
		"distanceKm":      20,
		"durationMinutes": 30,
	}
}

type quoteResp struct {
	QuoteID        string `json:"quoteId"`
	VehicleClasses []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		PaxCapacity int    `json:"paxCapacity"`
		Pricing     struct {
			BaseFare       float64  `json:"baseFare"`
			DistanceCharge *float64 `json:"distanceCharge"`
			TimeCharge     *float64 `json:"timeCharge"`
			Total          float64  `json:"total"`
			Currency       string   `json:"currency"`
		} `json:"pricing"`
		AppliedSurcharges   []map[string]any `json:"appliedSurcharges"`
		IsFixedPrice        bool             `json:"isFixedPrice"`
		IncludedWaitingTime int              `json:"includedWaitingTime"`
	} `json:"vehicleClasses"`
	Policy struct {
		ValidForMinutes int  `json:"validForMinutes"`
		SingleUse       bool `json:"singleUse"`
	} `json:"policy"`
	EstimatedDistance float64   `json:"estimatedDistance"`
	EstimatedDuration float64   `json:"estimatedDuration"`
	CreatedAt         time.Time `json:"createdAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

func decodeQuote(t *testing.T, w *httptest.ResponseRecorder) quoteResp {
	t.Helper()
	var q quoteResp
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	return q
}

func createQuote(t *testing.T, r *gin.Engine) quoteResp {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/quotes", quoteBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeQuote(t, w)
}

func TestCreateQuote_FixedRoute(t *testing.T) {
	r, _ := buildTestRouter(t)
	q := createQuote(t, r)
	if q.QuoteID == "" {
		t.Fatalf("expected quoteId")
	}
	if !q.ExpiresAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("expected expiresAt %v, got %v", t0.Add(time.Hour), q.ExpiresAt)
	}
	if q.Policy.ValidForMinutes != 60 || !q.Policy.SingleUse {
		t.Errorf("unexpected policy %+v", q.Policy)
	}
	if q.EstimatedDistance != 20 || q.EstimatedDuration != 30 {
		t.Errorf("expected 20 km / 30 min, got %v / %v", q.EstimatedDistance, q.EstimatedDuration)
	}
	if len(q.VehicleClasses) == 0 || q.VehicleClasses[0].ID != "economy" {
		t.Fatalf("expected economy first, got %+v", q.VehicleClasses)
	}

	eco := q.VehicleClasses[0]
	if !eco.IsFixedPrice || eco.Pricing.Total != 75 || eco.Pricing.Currency != "AED" {
		t.Errorf("expected fixed economy at 75 AED, got fixed=%v total=%.2f %s", eco.IsFixedPrice, eco.Pricing.Total, eco.Pricing.Currency)
	}
	if eco.Pricing.DistanceCharge != nil || eco.Pricing.TimeCharge != nil {
		t.Errorf("fixed price must not carry distance/time charges: %+v", eco.Pricing)
	}
	if eco.AppliedSurcharges == nil || len(eco.AppliedSurcharges) != 0 {
		t.Errorf("expected an empty appliedSurcharges list, got %v", eco.AppliedSurcharges)
	}
	if eco.PaxCapacity == 0 || eco.Name == "" {
		t.Errorf("missing vehicle details: %+v", eco)
	}

	comfort := q.VehicleClasses[1]
	if comfort.IsFixedPrice || comfort.Pricing.DistanceCharge == nil || comfort.Pricing.TimeCharge == nil {
		t.Errorf("distance-priced class should itemise distance and time, got %+v", comfort.Pricing)
	}

	w := doRequest(r, http.MethodGet, "/api/quotes/"+q.QuoteID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if got := decodeQuote(t, w); got.QuoteID != q.QuoteID || len(got.VehicleClasses) != len(q.VehicleClasses) {
		t.Errorf("get returned a different quote: %+v", got)
	}
}

func TestQuote_UnknownVehicleClass(t *testing.T) {
	r, _ := buildTestRouter(t)

	body := quoteBody()
	body["preferredVehicleClass"] = "rickshaw"
	if w := doRequest(r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusBadRequest {
		t.Errorf("unknown preferred class: expected 400, got %d", w.Code)
	}

	body["preferredVehicleClass"] = "van"
	w := doRequest(r, http.MethodPost, "/api/quotes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	q := decodeQuote(t, w)
	if q.VehicleClasses[0].ID != "van" {
		t.Errorf("expected preferred van first, got %s", q.VehicleClasses[0].ID)
	}

	path := "/api/quotes/" + q.QuoteID + "/consume"
	if w := doRequest(r, http.MethodPost, path, map[string]any{"vehicleClass": "Economy"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown consume class: expected 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, path, map[string]any{"vehicleClass": "economy"}); w.Code != http.StatusOK {
		t.Errorf("quote must stay usable after a rejected class, got %d", w.Code)
	}
}

func TestCreateQuote_BadRequests(t *testing.T) {
	r, _ := buildTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/quotes", "not an object")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json: expected 400, got %d", w.Code)
	}

	body := quoteBody()
	body["pickupAt"] = t0.Add(-time.Hour).Format(time.RFC3339)
	if w := doRequest(r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusBadRequest {
		t.Errorf("past pickup: expected 400, got %d", w.Code)
	}

	body = quoteBody()
	delete(body, "destination")
	if w := doRequest(r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusBadRequest {
		t.Errorf("missing destination: expected 400, got %d", w.Code)
	}

	body = quoteBody()
	body["pax"] = 12
	if w := doRequest(r, http.MethodPost, "/api/quotes", body); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("no class fits: expected 422, got %d", w.Code)
	}
}

func TestConsumeQuote_StatusMapping(t *testing.T) {
	r, clk := buildTestRouter(t)
	q := createQuote(t, r)
	path := "/api/quotes/" + q.QuoteID + "/consume"

	w := doRequest(r, http.MethodPost, path, map[string]any{"vehicleClass": "economy"})
	if w.Code != http.StatusOK {
		t.Fatalf("first consume: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var used struct {
		QuoteID      string `json:"quoteId"`
		VehicleClass string `json:"vehicleClass"`
		Pricing      struct {
			Total float64 `json:"total"`
		} `json:"pricing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &used); err != nil {
		t.Fatalf("decode consume: %v", err)
	}
	if used.QuoteID != q.QuoteID || used.VehicleClass != "economy" || used.Pricing.Total != 75 {
		t.Errorf("unexpected consume response %+v", used)
	}
	if w := doRequest(r, http.MethodPost, path, map[string]any{"vehicleClass": "economy"}); w.Code != http.StatusConflict {
		t.Errorf("second consume: expected 409, got %d", w.Code)
	}

	other := createQuote(t, r)
	if w := doRequest(r, http.MethodPost, "/api/quotes/"+other.QuoteID+"/consume", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing class: expected 400, got %d", w.Code)
	}
	clk.advance(61 * time.Minute)
	if w := doRequest(r, http.MethodPost, "/api/quotes/"+other.QuoteID+"/consume", map[string]any{"vehicleClass": "economy"}); w.Code != http.StatusGone {
		t.Errorf("expired consume: expected 410, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/quotes/"+other.QuoteID, nil); w.Code != http.StatusGone {
		t.Errorf("expired get: expected 410, got %d", w.Code)
	}
}

func TestGetQuote_NotFoundAndInvalidID(t *testing.T) {
	r, _ := buildTestRouter(t)
	if w := doRequest(r, http.MethodGet, "/api/quotes/8f14e45f-ceea-467a-9a36-dedd4bea2543", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/quotes/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRegionsContaining(t *testing.T) {
	r, _ := buildTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/regions/containing?lat=25.2528&lon=55.3644", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Regions []struct {
			ID    string `json:"id"`
			Shape string `json:"shape"`
		} `json:"regions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Regions) != 1 || resp.Regions[0].ID != "dxb" || resp.Regions[0].Shape != "circle" {
		t.Errorf("unexpected regions: %+v", resp.Regions)
	}
	if w := doRequest(r, http.MethodGet, "/api/regions/containing?lat=abc&lon=1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFixedPrices(t *testing.T) {
	r, _ := buildTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/fixed-prices?origin=dxb&destination=marina", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		FixedPrices []struct {
			VehicleClass string  `json:"vehicleClass"`
			Price        float64 `json:"fixedPrice"`
		} `json:"fixedPrices"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.FixedPrices) != 1 || resp.FixedPrices[0].Price != 75 {
		t.Errorf("unexpected fixed prices: %+v", resp.FixedPrices)
	}
	if w := doRequest(r, http.MethodGet, "/api/fixed-prices?origin=dxb", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
