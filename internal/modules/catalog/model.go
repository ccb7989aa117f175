// README: Catalog document: the four configuration record sets the pricing engine reads.
package catalog

import (
	"context"

	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
)

type Document struct {
	Regions     []region.Record     `json:"regions" yaml:"regions"`
	BasePrices  []baseprice.Record  `json:"basePrices" yaml:"basePrices"`
	FixedPrices []fixedprice.Record `json:"fixedPrices" yaml:"fixedPrices"`
	Surcharges  []surcharge.Record  `json:"surcharges" yaml:"surcharges"`
}

// Source loads the full configuration document.
type Source interface {
	Load(ctx context.Context) (Document, error)
}
