package grid

import "math"

// Viewport is the class of screen the pan controls were calibrated on.
type Viewport int

const (
	// ViewportDesktop is any viewport wider than NarrowBreakpoint.
	ViewportDesktop Viewport = iota
	// ViewportNarrow is a phone-sized viewport.
	ViewportNarrow
)

const (
	// NarrowBreakpoint is the widest viewport, in CSS pixels, treated as narrow.
	NarrowBreakpoint = 600

	// BaselineDimension is the largest grid that uses the fixed baseline
	// cell sizes.
	BaselineDimension = 3

	// BaselineDesktopCellSize and BaselineNarrowCellSize are the on-screen
	// cell sizes for grids up to BaselineDimension.
	BaselineDesktopCellSize = 150
	BaselineNarrowCellSize  = 90

	// DesktopAvailableWidth and NarrowAvailableWidth are the horizontal
	// budgets larger grids are squeezed into.
	DesktopAvailableWidth = 550
	NarrowAvailableWidth  = 320
)

// String returns the viewport class name.
func (v Viewport) String() string {
	if v == ViewportNarrow {
		return "narrow"
	}
	return "desktop"
}

// ViewportForWidth classifies a live viewport width.
func ViewportForWidth(width int) Viewport {
	if width <= NarrowBreakpoint {
		return ViewportNarrow
	}
	return ViewportDesktop
}

// Geometry is the on-screen layout derived from the grid configuration.
type Geometry struct {
	Dimension       int `json:"dimension"`
	Gap             int `json:"gap"`
	DesktopCellSize int `json:"desktop_cell_size"`
	NarrowCellSize  int `json:"narrow_cell_size"`
}

// NewGeometry computes the on-screen layout for an N×N grid with the
// given gap.
func NewGeometry(dimension, gap int) Geometry {
	return Geometry{
		Dimension:       dimension,
		Gap:             gap,
		DesktopCellSize: VisualCellSize(dimension, gap, ViewportDesktop),
		NarrowCellSize:  VisualCellSize(dimension, gap, ViewportNarrow),
	}
}

// CellSize returns the on-screen cell size for a viewport class.
func (g Geometry) CellSize(v Viewport) int {
	if v == ViewportNarrow {
		return g.NarrowCellSize
	}
	return g.DesktopCellSize
}

// VisualCellSize returns the on-screen cell size in pixels.
//
// Grids up to BaselineDimension use fixed sizes. Larger grids split the
// viewport's available width between N cells and N-1 gaps:
//
//	floor((available - gap*(N-1)) / N)
//
// The result is never below 1 pixel, so it is always a valid divisor.
func VisualCellSize(dimension, gap int, v Viewport) int {
	if dimension <= BaselineDimension {
		if v == ViewportNarrow {
			return BaselineNarrowCellSize
		}
		return BaselineDesktopCellSize
	}

	available := DesktopAvailableWidth
	if v == ViewportNarrow {
		available = NarrowAvailableWidth
	}
	size := math.Floor(float64(available-gap*(dimension-1)) / float64(dimension))
	return max(int(size), 1)
}
