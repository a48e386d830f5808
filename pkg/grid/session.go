package grid

import (
	"math"

	"github.com/matzehuels/gridstudio/pkg/errors"
	"github.com/matzehuels/gridstudio/pkg/transform"
)

// noActive marks an empty selection.
const noActive = -1

// Session is the editing state of one grid: its configuration, its cells
// and the active cell. The host application owns it and passes it (or a
// [Snapshot] of it) to the renderer.
//
// Mutating methods return the view-relevant values that changed so callers
// can refresh the display without re-deriving them.
//
// Session is not safe for concurrent use.
type Session struct {
	config Config
	store  *Store
	active int
}

// NewSession creates a session with cfg and an empty N×N grid.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		config: cfg,
		store:  NewStore(cfg.Dimension * cfg.Dimension),
		active: noActive,
	}, nil
}

// Config returns the current configuration.
func (s *Session) Config() Config { return s.config }

// Dimension returns N for the N×N grid.
func (s *Session) Dimension() int { return s.config.Dimension }

// Store exposes the cell store.
func (s *Session) Store() *Store { return s.store }

// Cells returns a copy of all cells in row-major order.
func (s *Session) Cells() []Cell { return s.store.Cells() }

// Cell returns the cell at index.
func (s *Session) Cell(index int) (Cell, error) { return s.store.Get(index) }

// Geometry returns the on-screen layout for the current configuration.
func (s *Session) Geometry() Geometry {
	return NewGeometry(s.config.Dimension, s.config.Gap)
}

// Resize changes the grid to newDimension×newDimension.
//
// Cells whose index exists in both grids keep their image and placement;
// new indices start empty. Every cell's ID is reassigned to its new
// position. If the active cell no longer exists the selection is cleared.
// On error the grid is unchanged.
func (s *Session) Resize(newDimension int) (Geometry, error) {
	if err := ValidateDimension(newDimension); err != nil {
		return Geometry{}, err
	}

	old := s.store.cells
	total := newDimension * newDimension
	cells := make([]Cell, total)
	for i := range cells {
		if i < len(old) {
			c := old[i]
			c.ID = i
			cells[i] = c
		} else {
			cells[i] = EmptyCell(i)
		}
	}

	s.config.Dimension = newDimension
	s.store.replace(cells)
	if s.active >= total {
		s.active = noActive
	}
	return s.Geometry(), nil
}

// SetGap changes the gap. Larger grids size their cells from the gap, so
// the new geometry is returned.
func (s *Session) SetGap(gap int) (Geometry, error) {
	if err := ValidateGap(gap); err != nil {
		return Geometry{}, err
	}
	s.config.Gap = gap
	return s.Geometry(), nil
}

// SetBackground changes the background color.
func (s *Session) SetBackground(css string) error {
	if _, err := ParseColor(css); err != nil {
		return err
	}
	s.config.Background = css
	return nil
}

// SelectCell makes index the active cell and returns it so an editor can
// be populated from its current values.
func (s *Session) SelectCell(index int) (Cell, error) {
	c, err := s.store.Get(index)
	if err != nil {
		return Cell{}, err
	}
	s.active = index
	return c, nil
}

// ClearSelection leaves no cell active.
func (s *Session) ClearSelection() {
	s.active = noActive
}

// Active returns the active cell index, if any.
func (s *Session) Active() (int, bool) {
	if s.active == noActive {
		return 0, false
	}
	return s.active, true
}

// SelectImage assigns src to the active cell. The previous placement is
// discarded: scale resets to 1 and offsets to zero.
func (s *Session) SelectImage(src string) (Cell, error) {
	if s.active == noActive {
		return Cell{}, errors.New(errors.ErrCodeNoActiveCell, "no cell is selected")
	}
	if err := errors.ValidateSource(src); err != nil {
		return Cell{}, err
	}
	c := NewCell(s.active, src)
	if err := s.store.Set(s.active, c); err != nil {
		return Cell{}, err
	}
	return c, nil
}

// UpdateTransform sets the active cell's zoom and pan and returns the new
// preview transform. Values are not clamped, but they must be finite.
func (s *Session) UpdateTransform(scale, offsetX, offsetY float64) (transform.Affine, error) {
	if s.active == noActive {
		return transform.Affine{}, errors.New(errors.ErrCodeNoActiveCell, "no cell is selected")
	}
	for _, v := range []float64{scale, offsetX, offsetY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return transform.Affine{}, errors.New(errors.ErrCodeInvalidInput, "transform values must be finite")
		}
	}

	c, err := s.store.Get(s.active)
	if err != nil {
		return transform.Affine{}, err
	}
	c.Scale, c.OffsetX, c.OffsetY = scale, offsetX, offsetY
	if err := s.store.Set(s.active, c); err != nil {
		return transform.Affine{}, err
	}
	return c.Screen(), nil
}

// ClearCell removes the image at index and resets its placement.
func (s *Session) ClearCell(index int) error {
	return s.store.Set(index, EmptyCell(index))
}
