// README: Region index answering "which active regions contain this point".
package region

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"transferquote/internal/types"
)

// Index is immutable after NewIndex and safe for concurrent use.
type Index struct {
	regions []Region
	byID    map[types.ID]int
	cache   *lru.Cache[uint64, cachedHit]
}

type cachedHit struct {
	point   types.Point
	matches []int
}

type Option func(*indexOptions)

type indexOptions struct {
	cacheSize int
}

// WithCache memoises FindContaining for up to n distinct points.
func WithCache(n int) Option {
	return func(o *indexOptions) { o.cacheSize = n }
}

// NewIndex keeps active regions only, ordered smallest area first with ties by id.
// Inactive regions are dropped silently; invalid geometry fails the build.
func NewIndex(regions []Region, opts ...Option) (*Index, error) {
	var o indexOptions
	for _, fn := range opts {
		fn(&o)
	}

	active := make([]Region, 0, len(regions))
	seen := make(map[types.ID]struct{}, len(regions))
	for _, r := range regions {
		if !r.Active {
			continue
		}
		if r.Geometry == nil {
			return nil, fmt.Errorf("region %s: %w: missing geometry", r.ID, ErrInvalidGeometry)
		}
		if err := r.Geometry.validate(); err != nil {
			return nil, fmt.Errorf("region %s: %w", r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("region %s: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
		active = append(active, r)
	}

	sort.SliceStable(active, func(i, j int) bool {
		ai, aj := active[i].Geometry.areaM2(), active[j].Geometry.areaM2()
		if ai != aj {
			return ai < aj
		}
		return active[i].ID < active[j].ID
	})

	idx := &Index{regions: active, byID: make(map[types.ID]int, len(active))}
	for i, r := range active {
		idx.byID[r.ID] = i
	}
	if o.cacheSize > 0 {
		c, err := lru.New[uint64, cachedHit](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("region cache: %w", err)
		}
		idx.cache = c
	}
	return idx, nil
}

// FindContaining returns every active region containing p in selection order.
func (x *Index) FindContaining(p types.Point) []Region {
	if x == nil {
		return nil
	}
	var key uint64
	if x.cache != nil {
		key = pointKey(p)
		if hit, ok := x.cache.Get(key); ok && hit.point == p {
			return x.pick(hit.matches)
		}
	}

	var matches []int
	for i, r := range x.regions {
		if r.Geometry.Contains(p) {
			matches = append(matches, i)
		}
	}
	if x.cache != nil {
		x.cache.Add(key, cachedHit{point: p, matches: matches})
	}
	return x.pick(matches)
}

// First is FindContaining limited to the preferred region.
func (x *Index) First(p types.Point) (Region, bool) {
	found := x.FindContaining(p)
	if len(found) == 0 {
		return Region{}, false
	}
	return found[0], true
}

func (x *Index) FindByID(id types.ID) (Region, error) {
	if x != nil {
		if i, ok := x.byID[id]; ok {
			return x.regions[i], nil
		}
	}
	return Region{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.regions)
}

func (x *Index) pick(matches []int) []Region {
	out := make([]Region, 0, len(matches))
	for _, i := range matches {
		out = append(out, x.regions[i])
	}
	return out
}

// pointKey hashes the exact float bits so a cached answer is never shared by two points.
func pointKey(p types.Point) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.Lng))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Lat))
	return xxhash.Sum64(buf[:])
}
