package grid

import "testing"

func TestVisualCellSize(t *testing.T) {
	tests := []struct {
		name      string
		dimension int
		gap       int
		viewport  Viewport
		want      int
	}{
		{"1x1 desktop baseline", 1, 20, ViewportDesktop, 150},
		{"3x3 desktop baseline", 3, 20, ViewportDesktop, 150},
		{"3x3 narrow baseline", 3, 20, ViewportNarrow, 90},
		{"3x3 baseline ignores gap", 3, 200, ViewportDesktop, 150},
		{"4x4 desktop", 4, 20, ViewportDesktop, 122},      // (550-60)/4 = 122.5
		{"4x4 narrow", 4, 20, ViewportNarrow, 65},         // (320-60)/4 = 65
		{"6x6 desktop no gap", 6, 0, ViewportDesktop, 91}, // 550/6 = 91.67
		{"huge gap floors at 1", 8, 100, ViewportNarrow, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisualCellSize(tt.dimension, tt.gap, tt.viewport); got != tt.want {
				t.Errorf("VisualCellSize(%d, %d, %v) = %d, want %d", tt.dimension, tt.gap, tt.viewport, got, tt.want)
			}
		})
	}
}

func TestViewportForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  Viewport
	}{
		{320, ViewportNarrow},
		{600, ViewportNarrow},
		{601, ViewportDesktop},
		{1920, ViewportDesktop},
	}
	for _, tt := range tests {
		if got := ViewportForWidth(tt.width); got != tt.want {
			t.Errorf("ViewportForWidth(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestGeometryCellSize(t *testing.T) {
	g := NewGeometry(3, 20)
	if g.CellSize(ViewportDesktop) != 150 || g.CellSize(ViewportNarrow) != 90 {
		t.Errorf("CellSize() = %d/%d, want 150/90", g.CellSize(ViewportDesktop), g.CellSize(ViewportNarrow))
	}
}
