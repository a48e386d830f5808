// Package grid holds the editing state of an image grid.
//
// # Overview
//
// A grid is N×N equal square cells separated by a uniform gap. Each [Cell]
// optionally carries an image source plus a zoom factor and a pan offset.
// Cells live in a [Store] in row-major order, and a cell's ID is always its
// position in that order.
//
// A [Session] owns the store, the grid [Config] and the active-cell
// selection:
//
//	s, _ := grid.NewSession(grid.DefaultConfig())
//	s.SelectCell(4)
//	s.SelectImage("https://example.com/cat.jpg")
//	preview, _ := s.UpdateTransform(1.5, 20, 0)
//	geom, _ := s.Resize(4)
//
// # Coordinate Spaces
//
// Pan offsets are captured in on-screen pixels. How large a cell is on
// screen depends on the grid size, the gap and the viewport class; see
// [VisualCellSize]. The export compositor uses that size to convert pans
// into export pixels.
//
// # Resizing
//
// [Session.Resize] keeps every cell whose index exists in both the old and
// new grid and starts the rest empty. Because cells are stored row-major,
// growing a 3×3 grid to 4×4 moves cell 3 from the second row to the end of
// the first.
package grid
