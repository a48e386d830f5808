// Package project reads and writes grid projects as YAML.
//
// A project file describes one grid. Cells are sparse: only populated
// cells are listed, by row-major index, and everything else starts empty.
//
//	dimension: 2
//	gap: 12
//	background: "#1e1e2e"
//	viewport_width: 1280
//	cells:
//	  - index: 0
//	    source: https://images.example.com/cat.jpg
//	    scale: 1.4
//	    offset_x: -12
//	  - index: 3
//	    source: photos/dog.png
//
// Relative local sources are resolved against the directory of the
// project file by [Load].
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gridstudio/pkg/errors"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
)

// DefaultFilename is the project file `init` writes.
const DefaultFilename = "grid.yaml"

// Project is the on-disk form of a grid.
type Project struct {
	Dimension  int    `yaml:"dimension"`
	Gap        *int   `yaml:"gap,omitempty"`
	Background string `yaml:"background,omitempty"`

	// ViewportWidth is the width of the window the offsets were authored
	// in. Zero means the caller's default.
	ViewportWidth int `yaml:"viewport_width,omitempty"`

	Active *int   `yaml:"active,omitempty"`
	Cells  []Cell `yaml:"cells,omitempty"`
}

// Cell is one populated cell.
type Cell struct {
	Index   int      `yaml:"index"`
	Source  string   `yaml:"source"`
	Scale   *float64 `yaml:"scale,omitempty"`
	OffsetX float64  `yaml:"offset_x,omitempty"`
	OffsetY float64  `yaml:"offset_y,omitempty"`
}

// Starter returns the project `init` writes: an empty default grid.
func Starter() *Project {
	cfg := grid.DefaultConfig()
	gap := cfg.Gap
	return &Project{
		Dimension:  cfg.Dimension,
		Gap:        &gap,
		Background: cfg.Background,
	}
}

// Parse decodes a project. Unknown fields are rejected so typos do not
// silently fall back to defaults.
func Parse(data []byte) (*Project, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p Project
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "parse project")
	}
	return &p, nil
}

// Load reads and parses the project at path and resolves relative local
// sources against its directory.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: load %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}
	p.ResolvePaths(filepath.Dir(path))
	return p, nil
}

// ResolvePaths makes relative local sources relative to baseDir.
func (p *Project) ResolvePaths(baseDir string) {
	for i, c := range p.Cells {
		if imagesource.Classify(c.Source) == imagesource.KindLocal && !filepath.IsAbs(c.Source) {
			p.Cells[i].Source = filepath.Join(baseDir, c.Source)
		}
	}
}

// Marshal encodes the project as YAML.
func (p *Project) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the project to path.
func (p *Project) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("project: save %s: %w", path, err)
	}
	return nil
}

// Config returns the grid configuration with defaults for omitted fields.
func (p *Project) Config() grid.Config {
	cfg := grid.DefaultConfig()
	if p.Dimension != 0 {
		cfg.Dimension = p.Dimension
	}
	if p.Gap != nil {
		cfg.Gap = *p.Gap
	}
	if p.Background != "" {
		cfg.Background = p.Background
	}
	return cfg
}

// Session builds a new session from the project.
func (p *Project) Session() (*grid.Session, error) {
	s, err := grid.NewSession(p.Config())
	if err != nil {
		return nil, err
	}
	if err := p.populate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply replaces the contents of s with the project: the grid is resized,
// settings are applied and every cell is reset before the listed cells are
// written. On error s may be partially updated.
func (p *Project) Apply(s *grid.Session) error {
	cfg := p.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := s.Resize(cfg.Dimension); err != nil {
		return err
	}
	if _, err := s.SetGap(cfg.Gap); err != nil {
		return err
	}
	if err := s.SetBackground(cfg.Background); err != nil {
		return err
	}
	for i := 0; i < s.Store().Count(); i++ {
		if err := s.ClearCell(i); err != nil {
			return err
		}
	}
	s.ClearSelection()
	return p.populate(s)
}

func (p *Project) populate(s *grid.Session) error {
	seen := make(map[int]bool, len(p.Cells))
	for _, c := range p.Cells {
		if seen[c.Index] {
			return errors.New(errors.ErrCodeInvalidProject, "cell %d listed twice", c.Index)
		}
		seen[c.Index] = true
		if err := errors.ValidateSource(c.Source); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProject, err, "cell %d", c.Index)
		}
		cell := grid.NewCell(c.Index, c.Source)
		if c.Scale != nil {
			cell.Scale = *c.Scale
		}
		cell.OffsetX, cell.OffsetY = c.OffsetX, c.OffsetY
		if err := s.Store().Set(c.Index, cell); err != nil {
			return err
		}
	}
	if p.Active != nil {
		if _, err := s.SelectCell(*p.Active); err != nil {
			return err
		}
	}
	return nil
}

// FromSession captures a session as a project. Empty cells are omitted.
func FromSession(s *grid.Session, viewportWidth int) *Project {
	cfg := s.Config()
	gap := cfg.Gap
	p := &Project{
		Dimension:     cfg.Dimension,
		Gap:           &gap,
		Background:    cfg.Background,
		ViewportWidth: viewportWidth,
	}
	if i, ok := s.Active(); ok {
		p.Active = &i
	}
	for _, c := range s.Cells() {
		if c.Empty() {
			continue
		}
		pc := Cell{Index: c.ID, Source: c.Source, OffsetX: c.OffsetX, OffsetY: c.OffsetY}
		if c.Scale != grid.DefaultScale {
			scale := c.Scale
			pc.Scale = &scale
		}
		p.Cells = append(p.Cells, pc)
	}
	return p
}
