package transform

// Screen returns the live preview transform for a cell:
// translate(offsetX, offsetY) followed by scale(scale), both about the
// image's own center. It performs no clipping and no aspect correction;
// the on-screen cell container already constrains overflow.
//
// Screen is pure: the same inputs always produce the same transform.
func Screen(offsetX, offsetY, scale float64) Affine {
	return Translate(offsetX, offsetY).Mul(Scale(scale))
}
