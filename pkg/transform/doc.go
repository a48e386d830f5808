// Package transform provides the 2D affine math shared by the on-screen
// preview and the export compositor.
//
// # Overview
//
// A cell's placement is three numbers: a pan offset in screen pixels and a
// zoom factor. [Screen] turns them into the cheap preview transform a UI
// applies to the image element while the user drags sliders:
//
//	a := transform.Screen(cell.OffsetX, cell.OffsetY, cell.Scale)
//	style := a.CSS() // "translate(12px, -4px) scale(1.5)"
//
// The export compositor builds its own, larger chain from the same
// primitives ([Translate], [Scale], [Affine.Mul]) so both stages agree on
// composition order.
package transform
