package grid

import (
	"testing"

	"github.com/matzehuels/gridstudio/pkg/errors"
)

func TestNewStore(t *testing.T) {
	s := NewStore(9)
	if s.Count() != 9 {
		t.Fatalf("Count() = %d, want 9", s.Count())
	}
	for i, c := range s.Cells() {
		if c.ID != i {
			t.Errorf("cell %d has ID %d", i, c.ID)
		}
		if !c.Empty() || c.Scale != 1 || c.OffsetX != 0 || c.OffsetY != 0 {
			t.Errorf("cell %d not at defaults: %+v", i, c)
		}
	}
}

func TestStoreGetSet(t *testing.T) {
	s := NewStore(4)

	// Set forces the ID to the index.
	if err := s.Set(2, Cell{ID: 99, Source: "a.png", Scale: 3, OffsetX: -5}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	c, err := s.Get(2)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if c.ID != 2 {
		t.Errorf("ID = %d, want 2", c.ID)
	}
	if c.Source != "a.png" || c.Scale != 3 || c.OffsetX != -5 {
		t.Errorf("Get() = %+v, values not stored as given", c)
	}

	// Values are not clamped.
	if err := s.Set(0, Cell{Scale: -100, OffsetX: 1e9}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	c, _ = s.Get(0)
	if c.Scale != -100 || c.OffsetX != 1e9 {
		t.Errorf("values were altered: %+v", c)
	}
}

func TestStoreOutOfRange(t *testing.T) {
	s := NewStore(4)
	for _, idx := range []int{-1, 4, 100} {
		if err := s.Set(idx, EmptyCell(idx)); !errors.Is(err, errors.ErrCodeIndexOutOfRange) {
			t.Errorf("Set(%d) error = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
		if _, err := s.Get(idx); !errors.Is(err, errors.ErrCodeIndexOutOfRange) {
			t.Errorf("Get(%d) error = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
	}
}

func TestStoreCellsIsCopy(t *testing.T) {
	s := NewStore(1)
	cells := s.Cells()
	cells[0].Source = "mutated.png"
	if c, _ := s.Get(0); c.Source != "" {
		t.Error("mutating Cells() result changed the store")
	}
}
