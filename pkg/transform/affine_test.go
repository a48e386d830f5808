package transform

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMulOrder(t *testing.T) {
	// Translate then scale: the point is scaled first, then moved.
	m := Translate(10, 20).Mul(Scale(2))
	x, y := m.Apply(1, 1)
	if !approx(x, 12) || !approx(y, 22) {
		t.Errorf("Translate.Mul(Scale).Apply(1,1) = (%v, %v), want (12, 22)", x, y)
	}

	// Scale then translate: the translation is scaled too.
	m = Scale(2).Mul(Translate(10, 20))
	x, y = m.Apply(1, 1)
	if !approx(x, 22) || !approx(y, 42) {
		t.Errorf("Scale.Mul(Translate).Apply(1,1) = (%v, %v), want (22, 42)", x, y)
	}
}

func TestIdentity(t *testing.T) {
	m := Translate(3, 4).Mul(Scale(5))
	if got := Identity().Mul(m); got != m {
		t.Errorf("Identity().Mul(m) = %v, want %v", got, m)
	}
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m.Mul(Identity()) = %v, want %v", got, m)
	}
}

func TestScreen(t *testing.T) {
	tests := []struct {
		name           string
		x, y, scale    float64
		wantTX, wantTY float64
	}{
		{"defaults", 0, 0, 1, 0, 0},
		{"pan only", 25, -10, 1, 25, -10},
		{"zoom only", 0, 0, 2.5, 0, 0},
		{"pan and zoom", 50, 0, 2, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Screen(tt.x, tt.y, tt.scale)
			tx, ty := a.Translation()
			if !approx(tx, tt.wantTX) || !approx(ty, tt.wantTY) {
				t.Errorf("translation = (%v, %v), want (%v, %v)", tx, ty, tt.wantTX, tt.wantTY)
			}
			if !approx(a.ScaleFactor(), tt.scale) {
				t.Errorf("scale = %v, want %v", a.ScaleFactor(), tt.scale)
			}
			if b := Screen(tt.x, tt.y, tt.scale); a != b {
				t.Errorf("Screen is not idempotent: %v != %v", a, b)
			}
		})
	}
}

func TestAboutCenter(t *testing.T) {
	a := Screen(30, 40, 2).AboutCenter(100, 50)

	// The image center moves by exactly the pan offset.
	x, y := a.Apply(50, 25)
	if !approx(x, 80) || !approx(y, 65) {
		t.Errorf("center maps to (%v, %v), want (80, 65)", x, y)
	}

	// The top-left corner moves away from the center by the zoom.
	x, y = a.Apply(0, 0)
	if !approx(x, -20) || !approx(y, 15) {
		t.Errorf("origin maps to (%v, %v), want (-20, 15)", x, y)
	}
}

func TestCSS(t *testing.T) {
	tests := []struct {
		a    Affine
		want string
	}{
		{Screen(0, 0, 1), "translate(0px, 0px) scale(1)"},
		{Screen(12, -4, 1.5), "translate(12px, -4px) scale(1.5)"},
		{Screen(0.25, 3, 0.1), "translate(0.25px, 3px) scale(0.1)"},
	}
	for _, tt := range tests {
		if got := tt.a.CSS(); got != tt.want {
			t.Errorf("CSS() = %q, want %q", got, tt.want)
		}
	}
}

func TestInvertible(t *testing.T) {
	if !Scale(2).Invertible() {
		t.Error("Scale(2) should be invertible")
	}
	if Scale(0).Invertible() {
		t.Error("Scale(0) should not be invertible")
	}
	if Scale(math.Inf(1)).Invertible() {
		t.Error("Scale(+Inf) should not be invertible")
	}
}

func TestExport(t *testing.T) {
	a := Export(50, 0, 2, 1, 400.0/150.0)
	tx, ty := a.Translation()
	if math.Abs(tx-133.333333) > 1e-4 || ty != 0 {
		t.Errorf("translation = (%v, %v), want (133.33, 0)", tx, ty)
	}
	if a.ScaleFactor() != 2 {
		t.Errorf("scale = %v, want 2", a.ScaleFactor())
	}

	// An unmoved, unzoomed cell maps the image center onto the origin.
	id := Export(0, 0, 1, 0.5, 4)
	if x, y := id.Apply(0, 0); x != 0 || y != 0 {
		t.Errorf("Apply(0,0) = (%v, %v)", x, y)
	}
	if x, _ := id.Apply(100, 0); x != 50 {
		t.Errorf("Apply(100,0).x = %v, want 50", x)
	}
}
