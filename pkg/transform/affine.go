package transform

import (
	"math"
	"strconv"

	"golang.org/x/image/math/f64"
)

// Affine is a 2D affine transform stored in row-major order:
//
//	x' = A[0]*x + A[1]*y + A[2]
//	y' = A[3]*x + A[4]*y + A[5]
//
// It has the same layout as [f64.Aff3], so it can be handed directly to
// the transformers in golang.org/x/image/draw.
type Affine f64.Aff3

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

// Translate returns a transform that moves points by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{1, 0, tx, 0, 1, ty}
}

// Scale returns a uniform scale about the origin.
func Scale(s float64) Affine {
	return Affine{s, 0, 0, 0, s, 0}
}

// Mul returns a∘b: the transform that applies b first, then a. Chaining
// Mul calls reads like a sequence of canvas operations, so
// Translate(x, y).Mul(Scale(s)) translates the frame, then scales it.
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Apply maps the point (x, y).
func (a Affine) Apply(x, y float64) (float64, float64) {
	return a[0]*x + a[1]*y + a[2], a[3]*x + a[4]*y + a[5]
}

// Aff3 returns the transform as an [f64.Aff3].
func (a Affine) Aff3() f64.Aff3 {
	return f64.Aff3(a)
}

// Translation returns the translation component.
func (a Affine) Translation() (float64, float64) {
	return a[2], a[5]
}

// ScaleFactor returns the horizontal scale component. For the uniform
// scale-and-translate transforms built in this module it is the zoom.
func (a Affine) ScaleFactor() float64 {
	return a[0]
}

// Invertible reports whether the transform has a finite, non-zero
// determinant.
func (a Affine) Invertible() bool {
	det := a[0]*a[4] - a[1]*a[3]
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// AboutCenter re-expresses a transform defined around an image's center
// in the image's own top-left pixel coordinates.
func (a Affine) AboutCenter(width, height float64) Affine {
	cx, cy := width/2, height/2
	return Translate(cx, cy).Mul(a).Mul(Translate(-cx, -cy))
}

// CSS renders a uniform translate-and-scale transform as a CSS transform
// value. CSS transforms pivot on the element center by default, which
// matches the frame [Screen] works in.
func (a Affine) CSS() string {
	tx, ty := a.Translation()
	return "translate(" + formatFloat(tx) + "px, " + formatFloat(ty) + "px) scale(" + formatFloat(a.ScaleFactor()) + ")"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
