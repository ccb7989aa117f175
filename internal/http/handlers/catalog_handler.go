// README: Read-only catalog handlers (region lookup, fixed route prices).
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"transferquote/internal/modules/pricing"
	"transferquote/internal/types"
)

type CatalogHandler struct {
	snapshots pricing.SnapshotProvider
}

func NewCatalogHandler(snapshots pricing.SnapshotProvider) *CatalogHandler {
	return &CatalogHandler{snapshots: snapshots}
}

type regionResp struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Shape string   `json:"shape"`
}

type fixedPriceResp struct {
	ID                              types.ID           `json:"id"`
	VehicleClass                    types.VehicleClass `json:"vehicleClass"`
	Price                           float64            `json:"fixedPrice"`
	Currency                        string             `json:"currency"`
	EstimatedDistanceKm             float64            `json:"estimatedDistance"`
	EstimatedDurationMinutes        float64            `json:"estimatedDuration"`
	IncludedWaitingMinutes          int                `json:"includedWaitingTime"`
	AdditionalWaitingPricePerMinute float64            `json:"additionalWaitingPrice"`
	Priority                        int                `json:"priority"`
}

// RegionsContaining lists active regions covering ?lat=&lon=, smallest first.
func (h *CatalogHandler) RegionsContaining(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	p := types.Point{Lat: lat, Lng: lon}
	if errLat != nil || errLon != nil || !p.Valid() {
		writeError(c, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}
	out := []regionResp{}
	if snap := h.snapshots.Current(); snap != nil {
		for _, r := range snap.Regions.FindContaining(p) {
			out = append(out, regionResp{ID: r.ID, Name: r.Name, Tags: r.Tags, Shape: string(r.Geometry.Shape())})
		}
	}
	writeJSON(c, http.StatusOK, map[string]any{"regions": out})
}

// FixedPrices lists the active fixed prices for ?origin=&destination= region ids.
func (h *CatalogHandler) FixedPrices(c *gin.Context) {
	origin, dest := c.Query("origin"), c.Query("destination")
	if origin == "" || dest == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	out := []fixedPriceResp{}
	if snap := h.snapshots.Current(); snap != nil {
		for _, fp := range snap.FixedPrices.ListByRegions(types.ID(origin), types.ID(dest)) {
			out = append(out, fixedPriceResp{
				ID:                              fp.ID,
				VehicleClass:                    fp.VehicleClass,
				Price:                           fp.Price,
				Currency:                        fp.Currency,
				EstimatedDistanceKm:             fp.EstimatedDistanceKm,
				EstimatedDurationMinutes:        fp.EstimatedDurationMinutes,
				IncludedWaitingMinutes:          fp.IncludedWaitingMinutes,
				AdditionalWaitingPricePerMinute: fp.AdditionalWaitingPricePerMinute,
				Priority:                        fp.Priority,
			})
		}
	}
	writeJSON(c, http.StatusOK, map[string]any{"origin": origin, "destination": dest, "fixedPrices": out})
}
