// README: Price region aggregate; geometry is a closed set of shapes (circle or polygon).
package region

import (
	"errors"

	"transferquote/internal/types"
)

var (
	ErrNotFound        = errors.New("region not found")
	ErrInvalidGeometry = errors.New("invalid region geometry")
)

type Shape string

const (
	ShapeCircle  Shape = "circle"
	ShapePolygon Shape = "polygon"
)

type Region struct {
	ID       types.ID
	Name     string
	Tags     []string
	Geometry Geometry
	Active   bool
}

// Geometry is implemented only by Circle and Polygon.
type Geometry interface {
	Shape() Shape
	Contains(p types.Point) bool
	validate() error
	areaM2() float64
}

type Circle struct {
	Center       types.Point
	RadiusMeters float64
}

// Polygon rings follow GeoJSON: the first ring is the outer boundary, the rest are holes.
// Containment only considers the outer ring.
type Polygon struct {
	Rings [][]types.Point
}

func (Circle) Shape() Shape  { return ShapeCircle }
func (Polygon) Shape() Shape { return ShapePolygon }

// Contains uses the great-circle distance; a point exactly on the radius is inside.
func (c Circle) Contains(p types.Point) bool {
	return haversineMeters(c.Center, p) <= c.RadiusMeters
}

// Contains treats (lng, lat) as planar coordinates, which is accurate enough at city scale.
func (g Polygon) Contains(p types.Point) bool {
	if len(g.Rings) == 0 {
		return false
	}
	return pointInRing(p, g.Rings[0])
}
