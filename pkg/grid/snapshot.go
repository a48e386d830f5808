package grid

import (
	"github.com/matzehuels/gridstudio/pkg/errors"
)

// Snapshot is a detached, serializable copy of a session. The renderer
// works from a snapshot so nothing it reads can change mid-render.
type Snapshot struct {
	Config `bson:",inline" yaml:",inline"`
	Active *int   `json:"active,omitempty" yaml:"active,omitempty" bson:"active,omitempty"`
	Cells  []Cell `json:"cells" yaml:"cells" bson:"cells"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Config: s.config,
		Cells:  s.store.Cells(),
	}
	if i, ok := s.Active(); ok {
		snap.Active = &i
	}
	return snap
}

// Restore rebuilds a session from a snapshot. The cell count must match
// the dimension; cell IDs are reassigned from their positions.
func Restore(snap Snapshot) (*Session, error) {
	s, err := NewSession(snap.Config)
	if err != nil {
		return nil, err
	}
	if len(snap.Cells) != s.store.Count() {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"snapshot has %d cells, want %d for a %dx%d grid", len(snap.Cells), s.store.Count(), snap.Dimension, snap.Dimension)
	}
	for i, c := range snap.Cells {
		if err := s.store.Set(i, c); err != nil {
			return nil, err
		}
	}
	if snap.Active != nil {
		if _, err := s.SelectCell(*snap.Active); err != nil {
			return nil, err
		}
	}
	return s, nil
}
