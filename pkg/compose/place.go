package compose

import (
	"image"
	"math"

	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/transform"
)

// ExportCellSize is the side length of every cell box in the export.
const ExportCellSize = 400

// CanvasSize returns the side length of the square export canvas.
func CanvasSize(dimension, gap int) int {
	return dimension*ExportCellSize + (dimension-1)*gap + 2*gap
}

// Box returns the clip rectangle of cell index in an n×n grid.
func Box(index, dimension, gap int) image.Rectangle {
	col, row := index%dimension, index/dimension
	x := gap + col*(ExportCellSize+gap)
	y := gap + row*(ExportCellSize+gap)
	return image.Rect(x, y, x+ExportCellSize, y+ExportCellSize)
}

// Placement holds the numbers used to draw one cell.
type Placement struct {
	Box image.Rectangle

	// CenterX and CenterY are the box center on the canvas; the cell's
	// transform pivots there.
	CenterX, CenterY float64

	BaseScale   float64
	RenderRatio float64
	TranslateX  float64
	TranslateY  float64
	FinalScale  float64

	// Matrix maps source image pixels onto the canvas.
	Matrix transform.Affine
}

// Place computes how cell is drawn into box for an image with bounds src.
// visualCellSize is the on-screen cell size the offsets were chosen in.
func Place(cell grid.Cell, src image.Rectangle, box image.Rectangle, visualCellSize int) Placement {
	w, h := float64(src.Dx()), float64(src.Dy())
	p := Placement{
		Box:         box,
		CenterX:     float64(box.Min.X) + float64(box.Dx())/2,
		CenterY:     float64(box.Min.Y) + float64(box.Dy())/2,
		BaseScale:   math.Min(ExportCellSize/w, ExportCellSize/h),
		RenderRatio: float64(ExportCellSize) / float64(visualCellSize),
	}

	export := transform.Export(cell.OffsetX, cell.OffsetY, cell.Scale, p.BaseScale, p.RenderRatio)
	p.TranslateX, p.TranslateY = export.Translation()
	p.FinalScale = export.ScaleFactor()

	imageCenter := transform.Translate(-(float64(src.Min.X) + w/2), -(float64(src.Min.Y) + h/2))
	p.Matrix = transform.Translate(p.CenterX, p.CenterY).Mul(export).Mul(imageCenter)
	return p
}

// Drawable reports whether the placement produces any pixels. A zero or
// non-finite scale collapses the image. A negative scale is drawable and
// flips the image through its center.
func (p Placement) Drawable() bool {
	return p.FinalScale != 0 && !math.IsNaN(p.FinalScale) && !math.IsInf(p.FinalScale, 0) && p.Matrix.Invertible() &&
		!math.IsNaN(p.TranslateX) && !math.IsNaN(p.TranslateY) &&
		!math.IsInf(p.TranslateX, 0) && !math.IsInf(p.TranslateY, 0)
}
