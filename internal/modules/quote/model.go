// README: Quote aggregate: a priced, time-limited, single-use offer across vehicle classes.
package quote

import (
	"encoding/json"
	"errors"
	"time"

	"transferquote/internal/modules/pricing"
	"transferquote/internal/types"
)

var (
	ErrNotFound           = errors.New("quote not found")
	ErrExpired            = errors.New("quote expired")
	ErrAlreadyUsed        = errors.New("quote already used")
	ErrNoPricingAvailable = errors.New("no pricing available for the requested route")
	ErrBadRequest         = errors.New("bad request")
)

const DefaultTTL = time.Hour

type Option struct {
	VehicleClass types.VehicleClass `json:"vehicleClass"`
	Name         string             `json:"name"`
	PaxCapacity  int                `json:"paxCapacity"`
	BagCapacity  int                `json:"bagCapacity"`
	Pricing      pricing.Breakdown  `json:"pricing"`
}

type Quote struct {
	ID                       types.ID               `json:"id"`
	PickupAt                 time.Time              `json:"pickupAt"`
	Pax                      int                    `json:"pax"`
	Bags                     int                    `json:"bags"`
	Extras                   []pricing.ExtraRequest `json:"extras,omitempty"`
	Origin                   types.Point            `json:"origin"`
	Destination              types.Point            `json:"destination"`
	Options                  []Option               `json:"options"`
	EstimatedDistanceKm      float64                `json:"estimatedDistanceKm"`
	EstimatedDurationMinutes float64                `json:"estimatedDurationMinutes"`
	CreatedAt                time.Time              `json:"createdAt"`
	ExpiresAt                time.Time              `json:"expiresAt"`
	IsUsed                   bool                   `json:"isUsed"`
	UsedAt                   *time.Time             `json:"usedAt,omitempty"`
	SelectedClass            types.VehicleClass     `json:"selectedClass,omitempty"`
}

// ExpiredAt reports whether the quote is unusable at now; expiresAt itself is already expired.
func (q *Quote) ExpiredAt(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

func (q *Quote) Option(class types.VehicleClass) (Option, bool) {
	for _, o := range q.Options {
		if o.VehicleClass == class {
			return o, true
		}
	}
	return Option{}, false
}

// encodePayload stores the immutable part of a quote; usage is kept in dedicated fields.
func encodePayload(q *Quote) ([]byte, error) {
	cp := *q
	cp.IsUsed = false
	cp.UsedAt = nil
	cp.SelectedClass = ""
	return json.Marshal(cp)
}

func decodePayload(b []byte) (*Quote, error) {
	var q Quote
	if err := json.Unmarshal(b, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
