package grid

import (
	"github.com/matzehuels/gridstudio/pkg/errors"
)

// Store holds the ordered, row-major collection of cells.
//
// Scale and offset values are accepted as given. Keeping them within a
// sensible range is the caller's job.
//
// Store is not safe for concurrent use; it has a single owner that mutates
// it synchronously.
type Store struct {
	cells []Cell
}

// NewStore creates a store with count empty cells.
func NewStore(count int) *Store {
	cells := make([]Cell, count)
	for i := range cells {
		cells[i] = EmptyCell(i)
	}
	return &Store{cells: cells}
}

// Count returns the number of cells.
func (s *Store) Count() int {
	return len(s.cells)
}

// Get returns the cell at index.
func (s *Store) Get(index int) (Cell, error) {
	if err := s.checkIndex(index); err != nil {
		return Cell{}, err
	}
	return s.cells[index], nil
}

// Set overwrites the cell at index. The stored ID is always index,
// whatever c.ID says.
func (s *Store) Set(index int, c Cell) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	c.ID = index
	s.cells[index] = c
	return nil
}

// Cells returns a copy of all cells in row-major order.
func (s *Store) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// replace swaps the backing collection in one step.
func (s *Store) replace(cells []Cell) {
	s.cells = cells
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.cells) {
		return errors.New(errors.ErrCodeIndexOutOfRange, "cell index %d out of range [0, %d)", index, len(s.cells))
	}
	return nil
}
