// README: Quote handlers for issue/get/consume.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transferquote/internal/modules/pricing"
	"transferquote/internal/modules/quote"
	"transferquote/internal/types"
)

type QuoteHandler struct {
	quotes *quote.Service
}

func NewQuoteHandler(svc *quote.Service) *QuoteHandler {
	return &QuoteHandler{quotes: svc}
}

type createQuoteReq struct {
	Origin              *types.Point           `json:"origin"`
	Destination         *types.Point           `json:"destination"`
	OriginRegionID      string                 `json:"originRegionId"`
	DestinationRegionID string                 `json:"destinationRegionId"`
	PickupAt            time.Time              `json:"pickupAt"`
	Pax                 int                    `json:"pax"`
	Bags                int                    `json:"bags"`
	Extras              []pricing.ExtraRequest `json:"extras"`
	VehicleClass        string                 `json:"preferredVehicleClass"`
	DistanceKm          *float64               `json:"distanceKm"`
	DurationMinutes     *float64               `json:"durationMinutes"`
}

type consumeQuoteReq struct {
	VehicleClass string `json:"vehicleClass"`
}

type quoteResp struct {
	QuoteID           types.ID           `json:"quoteId"`
	VehicleClasses    []vehicleOptResp   `json:"vehicleClasses"`
	Policy            quotePolicyResp    `json:"policy"`
	EstimatedDistance float64            `json:"estimatedDistance"`
	EstimatedDuration float64            `json:"estimatedDuration"`
	CreatedAt         time.Time          `json:"createdAt"`
	ExpiresAt         time.Time          `json:"expiresAt"`
	UsedAt            *time.Time         `json:"usedAt,omitempty"`
	SelectedClass     types.VehicleClass `json:"selectedVehicleClass,omitempty"`
}

// quotePolicyResp tells clients how long the quote holds and that it books once.
type quotePolicyResp struct {
	ValidForMinutes int  `json:"validForMinutes"`
	SingleUse       bool `json:"singleUse"`
}

type vehicleOptResp struct {
	ID                     types.VehicleClass `json:"id"`
	Name                   string             `json:"name"`
	PaxCapacity            int                `json:"paxCapacity"`
	BagCapacity            int                `json:"bagCapacity"`
	Pricing                pricingResp        `json:"pricing"`
	AppliedSurcharges      []surchargeResp    `json:"appliedSurcharges"`
	IsFixedPrice           bool               `json:"isFixedPrice"`
	IncludedWaitingTime    int                `json:"includedWaitingTime"`
	AdditionalWaitingPrice float64            `json:"additionalWaitingPrice"`
}

// Distance and time charges are omitted for fixed prices.
type pricingResp struct {
	BaseFare       float64             `json:"baseFare"`
	DistanceCharge *float64            `json:"distanceCharge,omitempty"`
	TimeCharge     *float64            `json:"timeCharge,omitempty"`
	Extras         []pricing.ExtraLine `json:"extras,omitempty"`
	Surcharges     *float64            `json:"surcharges,omitempty"`
	Total          float64             `json:"total"`
	Currency       string              `json:"currency"`
}

type surchargeResp struct {
	Name        string  `json:"name"`
	Application string  `json:"application"`
	Value       float64 `json:"value"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
}

func newPricingResp(b pricing.Breakdown) pricingResp {
	out := pricingResp{BaseFare: b.BaseFare, Extras: b.Extras, Total: b.Total, Currency: b.Currency}
	if !b.IsFixedPrice {
		distance, minutes := b.DistanceCharge, b.TimeCharge
		out.DistanceCharge = &distance
		out.TimeCharge = &minutes
	}
	if len(b.Surcharges) > 0 {
		total := b.SurchargeTotal
		out.Surcharges = &total
	}
	return out
}

func newVehicleOptResp(o quote.Option) vehicleOptResp {
	applied := make([]surchargeResp, 0, len(o.Pricing.Surcharges))
	for _, s := range o.Pricing.Surcharges {
		applied = append(applied, surchargeResp{
			Name:        s.Name,
			Application: string(s.Application),
			Value:       s.Value,
			Amount:      s.Amount,
			Reason:      s.Reason,
		})
	}
	return vehicleOptResp{
		ID:                     o.VehicleClass,
		Name:                   o.Name,
		PaxCapacity:            o.PaxCapacity,
		BagCapacity:            o.BagCapacity,
		Pricing:                newPricingResp(o.Pricing),
		AppliedSurcharges:      applied,
		IsFixedPrice:           o.Pricing.IsFixedPrice,
		IncludedWaitingTime:    o.Pricing.IncludedWaitingMinutes,
		AdditionalWaitingPrice: o.Pricing.AdditionalWaitingPricePerMinute,
	}
}

func newQuoteResp(q *quote.Quote) quoteResp {
	opts := make([]vehicleOptResp, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, newVehicleOptResp(o))
	}
	return quoteResp{
		QuoteID:        q.ID,
		VehicleClasses: opts,
		Policy: quotePolicyResp{
			ValidForMinutes: int(q.ExpiresAt.Sub(q.CreatedAt) / time.Minute),
			SingleUse:       true,
		},
		EstimatedDistance: q.EstimatedDistanceKm,
		EstimatedDuration: q.EstimatedDurationMinutes,
		CreatedAt:         q.CreatedAt,
		ExpiresAt:         q.ExpiresAt,
		UsedAt:            q.UsedAt,
		SelectedClass:     q.SelectedClass,
	}
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req createQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Origin == nil || req.Destination == nil {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	var preferred types.VehicleClass
	if req.VehicleClass != "" {
		class, err := types.ParseVehicleClass(req.VehicleClass)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		preferred = class
	}
	q, err := h.quotes.Create(c.Request.Context(), quote.CreateCommand{
		Origin:              *req.Origin,
		Destination:         *req.Destination,
		OriginRegionID:      types.ID(req.OriginRegionID),
		DestinationRegionID: types.ID(req.DestinationRegionID),
		PickupAt:            req.PickupAt,
		Pax:                 req.Pax,
		Bags:                req.Bags,
		Extras:              req.Extras,
		PreferredClass:      preferred,
		DistanceKm:          req.DistanceKm,
		DurationMinutes:     req.DurationMinutes,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, newQuoteResp(q))
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	q, err := h.quotes.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newQuoteResp(q))
}

func (h *QuoteHandler) Consume(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	var req consumeQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil || req.VehicleClass == "" {
		writeError(c, http.StatusBadRequest, "vehicleClass is required")
		return
	}
	class, err := types.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	q, err := h.quotes.Consume(c.Request.Context(), quote.ConsumeCommand{
		QuoteID:      types.ID(id),
		VehicleClass: class,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	opt, _ := q.Option(q.SelectedClass)
	writeJSON(c, http.StatusOK, map[string]any{
		"quoteId":           q.ID,
		"vehicleClass":      q.SelectedClass,
		"usedAt":            q.UsedAt,
		"pricing":           newPricingResp(opt.Pricing),
		"appliedSurcharges": newVehicleOptResp(opt).AppliedSurcharges,
	})
}
