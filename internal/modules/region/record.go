// README: External record shape for regions (catalog file and database rows).
package region

import (
	"fmt"

	"transferquote/internal/types"
)

type Record struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Tags     []string       `json:"tags" yaml:"tags"`
	Shape    string         `json:"shape" yaml:"shape"`
	Geometry GeometryRecord `json:"geometry" yaml:"geometry"`
	IsActive bool           `json:"isActive" yaml:"isActive"`
}

// GeometryRecord holds either a circle (center + radiusMeters) or GeoJSON polygon coordinates.
// Positions are [lon, lat].
type GeometryRecord struct {
	Center       []float64     `json:"center,omitempty" yaml:"center,omitempty"`
	RadiusMeters float64       `json:"radiusMeters,omitempty" yaml:"radiusMeters,omitempty"`
	Coordinates  [][][]float64 `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

func (r Record) ToRegion() (Region, error) {
	if r.ID == "" {
		return Region{}, fmt.Errorf("%w: missing id", ErrInvalidGeometry)
	}
	var g Geometry
	switch Shape(r.Shape) {
	case ShapeCircle:
		center, err := position(r.Geometry.Center)
		if err != nil {
			return Region{}, fmt.Errorf("region %s: %w", r.ID, err)
		}
		g = Circle{Center: center, RadiusMeters: r.Geometry.RadiusMeters}
	case ShapePolygon:
		rings := make([][]types.Point, 0, len(r.Geometry.Coordinates))
		for _, raw := range r.Geometry.Coordinates {
			ring := make([]types.Point, 0, len(raw))
			for _, pos := range raw {
				p, err := position(pos)
				if err != nil {
					return Region{}, fmt.Errorf("region %s: %w", r.ID, err)
				}
				ring = append(ring, p)
			}
			rings = append(rings, ring)
		}
		g = Polygon{Rings: rings}
	default:
		return Region{}, fmt.Errorf("region %s: %w: unknown shape %q", r.ID, ErrInvalidGeometry, r.Shape)
	}
	if err := g.validate(); err != nil {
		return Region{}, fmt.Errorf("region %s: %w", r.ID, err)
	}
	return Region{
		ID:       types.ID(r.ID),
		Name:     r.Name,
		Tags:     r.Tags,
		Geometry: g,
		Active:   r.IsActive,
	}, nil
}

func position(v []float64) (types.Point, error) {
	if len(v) < 2 {
		return types.Point{}, fmt.Errorf("%w: position needs [lon, lat]", ErrInvalidGeometry)
	}
	return types.Point{Lng: v[0], Lat: v[1]}, nil
}
