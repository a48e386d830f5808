package grid

import "github.com/matzehuels/gridstudio/pkg/transform"

// DefaultScale is the zoom factor of a freshly assigned image: the image
// exactly contain-fits its cell.
const DefaultScale = 1.0

// Cell is one grid position holding an optional image and its pan/zoom.
//
// ID always equals the cell's row-major position. Scale is relative to the
// contain-fit size, not an absolute pixel scale. OffsetX and OffsetY are
// in on-screen pixels, calibrated against the visual cell size.
type Cell struct {
	ID      int     `json:"id" yaml:"id" bson:"id"`
	Source  string  `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	Scale   float64 `json:"scale" yaml:"scale" bson:"scale"`
	OffsetX float64 `json:"offset_x" yaml:"offset_x" bson:"offset_x"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y" bson:"offset_y"`
}

// EmptyCell returns a cell with no image and default placement.
func EmptyCell(id int) Cell {
	return Cell{ID: id, Scale: DefaultScale}
}

// NewCell returns a cell showing src with default placement.
func NewCell(id int, src string) Cell {
	return Cell{ID: id, Source: src, Scale: DefaultScale}
}

// Empty reports whether no image is assigned.
func (c Cell) Empty() bool {
	return c.Source == ""
}

// Screen returns the live preview transform for the cell.
func (c Cell) Screen() transform.Affine {
	return transform.Screen(c.OffsetX, c.OffsetY, c.Scale)
}
