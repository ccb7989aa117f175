// README: Read-only pricing configuration handed to the calculator per call.
package pricing

import (
	"time"

	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
)

// Snapshot must not be mutated once published; any nil table behaves as empty.
type Snapshot struct {
	Regions     *region.Index
	BasePrices  *baseprice.Table
	FixedPrices *fixedprice.Table
	Surcharges  *surcharge.Evaluator
	LoadedAt    time.Time
}

type SnapshotProvider interface {
	Current() *Snapshot
}

// StaticSnapshot serves one fixed snapshot, mostly for tests and file-backed setups.
type StaticSnapshot struct {
	Snapshot *Snapshot
}

func (s StaticSnapshot) Current() *Snapshot { return s.Snapshot }
