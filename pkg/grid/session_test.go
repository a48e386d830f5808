package grid

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/gridstudio/pkg/errors"
)

func newTestSession(t *testing.T, dimension int) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dimension = dimension
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	return s
}

// populate gives every cell a distinct source and placement.
func populate(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < s.Store().Count(); i++ {
		c := Cell{
			Source:  fmt.Sprintf("img-%d.png", i),
			Scale:   1 + float64(i)/10,
			OffsetX: float64(i),
			OffsetY: -float64(i),
		}
		if err := s.Store().Set(i, c); err != nil {
			t.Fatalf("Set(%d) error: %v", i, err)
		}
	}
}

func TestResizeCellCountAndIDs(t *testing.T) {
	for _, from := range []int{1, 3, 5} {
		for _, to := range []int{1, 2, 3, 4, 7, 17} {
			t.Run(fmt.Sprintf("%d_to_%d", from, to), func(t *testing.T) {
				s := newTestSession(t, from)
				if _, err := s.Resize(to); err != nil {
					t.Fatalf("Resize(%d) error: %v", to, err)
				}
				if s.Dimension() != to {
					t.Errorf("Dimension() = %d, want %d", s.Dimension(), to)
				}
				cells := s.Cells()
				if len(cells) != to*to {
					t.Fatalf("len(cells) = %d, want %d", len(cells), to*to)
				}
				for i, c := range cells {
					if c.ID != i {
						t.Errorf("cell %d has ID %d", i, c.ID)
					}
				}
			})
		}
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	tests := []struct{ from, to int }{
		{3, 4}, // grow
		{4, 2}, // shrink
		{3, 3}, // same size
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_to_%d", tt.from, tt.to), func(t *testing.T) {
			s := newTestSession(t, tt.from)
			populate(t, s)
			before := s.Cells()

			if _, err := s.Resize(tt.to); err != nil {
				t.Fatalf("Resize() error: %v", err)
			}

			for i, c := range s.Cells() {
				if i < len(before) {
					want := before[i]
					want.ID = i
					if c != want {
						t.Errorf("cell %d = %+v, want %+v", i, c, want)
					}
					continue
				}
				if c != EmptyCell(i) {
					t.Errorf("new cell %d = %+v, want empty", i, c)
				}
			}
		})
	}
}

func TestResizeInvalidDimension(t *testing.T) {
	s := newTestSession(t, 3)
	populate(t, s)
	before := s.Cells()

	for _, n := range []int{0, -1, -17} {
		if _, err := s.Resize(n); !errors.Is(err, errors.ErrCodeInvalidDimension) {
			t.Errorf("Resize(%d) error = %v, want INVALID_DIMENSION", n, err)
		}
	}

	if s.Dimension() != 3 {
		t.Errorf("Dimension() = %d after failed resize, want 3", s.Dimension())
	}
	after := s.Cells()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("cell %d changed after failed resize", i)
		}
	}
}

func TestResizeSelection(t *testing.T) {
	t.Run("shrink past active clears it", func(t *testing.T) {
		s := newTestSession(t, 3)
		if _, err := s.SelectCell(8); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Resize(2); err != nil {
			t.Fatal(err)
		}
		if _, ok := s.Active(); ok {
			t.Error("active selection should be cleared")
		}
	})

	t.Run("shrink keeping active", func(t *testing.T) {
		s := newTestSession(t, 3)
		if _, err := s.SelectCell(3); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Resize(2); err != nil {
			t.Fatal(err)
		}
		if i, ok := s.Active(); !ok || i != 3 {
			t.Errorf("Active() = %d, %v; want 3, true", i, ok)
		}
	})

	t.Run("grow never clears", func(t *testing.T) {
		s := newTestSession(t, 2)
		if _, err := s.SelectCell(3); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Resize(5); err != nil {
			t.Fatal(err)
		}
		if i, ok := s.Active(); !ok || i != 3 {
			t.Errorf("Active() = %d, %v; want 3, true", i, ok)
		}
	})
}

func TestResizeGeometry(t *testing.T) {
	s := newTestSession(t, 3)
	geom, err := s.Resize(5)
	if err != nil {
		t.Fatal(err)
	}
	// floor((550 - 20*4) / 5) = 94, floor((320 - 20*4) / 5) = 48
	if geom.DesktopCellSize != 94 || geom.NarrowCellSize != 48 {
		t.Errorf("geometry = %+v, want desktop 94 narrow 48", geom)
	}
}

func TestSelectImageResetsPlacement(t *testing.T) {
	s := newTestSession(t, 3)
	if _, err := s.SelectCell(4); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectImage("https://example.com/a.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateTransform(2.5, 40, -12); err != nil {
		t.Fatal(err)
	}

	c, err := s.SelectImage("https://example.com/b.jpg")
	if err != nil {
		t.Fatal(err)
	}
	want := Cell{ID: 4, Source: "https://example.com/b.jpg", Scale: 1}
	if c != want {
		t.Errorf("SelectImage() = %+v, want %+v", c, want)
	}
	if stored, _ := s.Cell(4); stored != want {
		t.Errorf("stored cell = %+v, want %+v", stored, want)
	}
}

func TestSelectImageErrors(t *testing.T) {
	s := newTestSession(t, 3)
	if _, err := s.SelectImage("a.png"); !errors.Is(err, errors.ErrCodeNoActiveCell) {
		t.Errorf("SelectImage() without selection error = %v, want NO_ACTIVE_CELL", err)
	}

	if _, err := s.SelectCell(0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectImage(""); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("SelectImage(\"\") error = %v, want INVALID_SOURCE", err)
	}
}

func TestSelectCellOutOfRange(t *testing.T) {
	s := newTestSession(t, 2)
	if _, err := s.SelectCell(4); !errors.Is(err, errors.ErrCodeIndexOutOfRange) {
		t.Errorf("SelectCell(4) error = %v, want INDEX_OUT_OF_RANGE", err)
	}
	if _, ok := s.Active(); ok {
		t.Error("failed selection should not set an active cell")
	}
}

func TestUpdateTransform(t *testing.T) {
	s := newTestSession(t, 3)
	if _, err := s.UpdateTransform(1, 0, 0); !errors.Is(err, errors.ErrCodeNoActiveCell) {
		t.Errorf("UpdateTransform() without selection error = %v, want NO_ACTIVE_CELL", err)
	}

	if _, err := s.SelectCell(1); err != nil {
		t.Fatal(err)
	}
	a, err := s.UpdateTransform(2, 50, -10)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.CSS(); got != "translate(50px, -10px) scale(2)" {
		t.Errorf("preview = %q", got)
	}
	c, _ := s.Cell(1)
	if c.Scale != 2 || c.OffsetX != 50 || c.OffsetY != -10 {
		t.Errorf("cell = %+v, transform not stored", c)
	}

	if _, err := s.UpdateTransform(math.NaN(), 0, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("UpdateTransform(NaN) error = %v, want INVALID_INPUT", err)
	}
}

func TestSetGapAndBackground(t *testing.T) {
	s := newTestSession(t, 4)

	geom, err := s.SetGap(10)
	if err != nil {
		t.Fatal(err)
	}
	// floor((550 - 10*3) / 4) = 130
	if geom.DesktopCellSize != 130 {
		t.Errorf("DesktopCellSize = %d, want 130", geom.DesktopCellSize)
	}
	if _, err := s.SetGap(-1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetGap(-1) error = %v, want INVALID_INPUT", err)
	}

	if err := s.SetBackground("#000"); err != nil {
		t.Errorf("SetBackground(#000) error: %v", err)
	}
	if err := s.SetBackground("not-a-color"); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("SetBackground(bad) error = %v, want INVALID_COLOR", err)
	}
	if s.Config().Background != "#000" {
		t.Errorf("Background = %q, want #000", s.Config().Background)
	}
}
