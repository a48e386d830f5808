package transform

// Export converts a cell's screen placement into the fixed-resolution
// export frame. Offsets were chosen against a cell of visualCellSize
// pixels, so they are multiplied by renderRatio (exportCellSize /
// visualCellSize); the zoom is multiplied by baseScale, the contain-fit
// scale of the native image. The pivot is the image center, as with
// [Screen].
func Export(offsetX, offsetY, scale, baseScale, renderRatio float64) Affine {
	return Translate(offsetX*renderRatio, offsetY*renderRatio).Mul(Scale(baseScale * scale))
}
