// Package compose flattens a grid of cells into a single raster at a fixed
// export resolution.
//
// Every cell is rendered into a 400×400 box regardless of how large it was
// on screen. The on-screen pan offsets are scaled by the ratio between the
// export box and the on-screen cell ([Placement.RenderRatio]), and the
// zoom is applied on top of a contain-fit base scale computed from the
// image's native pixel size, so the export looks like the preview at a
// higher resolution.
//
// Canvas layout for an n×n grid with gap g:
//
//	total = n·400 + (n−1)·g + 2·g
//
// The outer border equals the gap. The canvas is filled with the background
// color first; each box is then clipped and drawn independently, in
// row-major order.
//
// Image loads run concurrently through an [imagesource.Loader]. A failed
// load is logged and recorded in the [Report], and the box stays
// background-colored; it never fails the whole render. Drawing happens only
// after every load has finished, so the output does not depend on load
// completion order.
package compose
