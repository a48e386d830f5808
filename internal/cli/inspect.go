package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridstudio/pkg/compose"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
	"github.com/matzehuels/gridstudio/pkg/project"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [project]",
		Short: "Show a project's grid, geometry and export size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultFilename
			if len(args) == 1 {
				path = args[0]
			}
			p, err := project.Load(path)
			if err != nil {
				return err
			}
			sess, err := p.Session()
			if err != nil {
				return err
			}
			printInspect(path, sess)
			return nil
		},
	}
}

func printInspect(path string, sess *grid.Session) {
	cfg := sess.Config()
	geo := sess.Geometry()
	size := compose.CanvasSize(cfg.Dimension, cfg.Gap)

	fmt.Println(StyleTitle.Render(path))
	printKeyValue("Grid", fmt.Sprintf("%d×%d", cfg.Dimension, cfg.Dimension))
	printKeyValue("Gap", fmt.Sprintf("%dpx", cfg.Gap))
	printKeyValue("Background", cfg.Background)
	printKeyValue("Cell (desktop)", fmt.Sprintf("%dpx", geo.DesktopCellSize))
	printKeyValue("Cell (narrow)", fmt.Sprintf("%dpx", geo.NarrowCellSize))
	printKeyValue("Export", fmt.Sprintf("%d×%d px", size, size))

	active := -1
	if i, ok := sess.Active(); ok {
		active = i
	}
	fmt.Println(gridTable(cfg.Dimension, cellLabels(sess.Cells()), active))
}

// cellLabels returns a short label per cell: the image's base name and
// any non-default placement.
func cellLabels(cells []grid.Cell) []string {
	labels := make([]string, len(cells))
	for i, c := range cells {
		if c.Empty() {
			labels[i] = "·"
			continue
		}
		label := sourceLabel(c.Source)
		if c.Scale != grid.DefaultScale {
			label += fmt.Sprintf(" ×%g", c.Scale)
		}
		if c.OffsetX != 0 || c.OffsetY != 0 {
			label += fmt.Sprintf(" (%g,%g)", c.OffsetX, c.OffsetY)
		}
		labels[i] = label
	}
	return labels
}

func sourceLabel(src string) string {
	const maxLen = 20
	if imagesource.Classify(src) == imagesource.KindData {
		return "data:"
	}
	label := filepath.Base(src)
	if r := []rune(label); len(r) > maxLen {
		label = string(r[:maxLen-1]) + "…"
	}
	return label
}
