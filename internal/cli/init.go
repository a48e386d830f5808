package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/project"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var (
		dimension int
		gap       int
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init [project]",
		Short: "Write a starter grid project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultFilename
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(path, dimension, gap, force)
		},
	}

	cmd.Flags().IntVarP(&dimension, "dimension", "n", grid.DefaultDimension, "grid size (N for an N×N grid)")
	cmd.Flags().IntVar(&gap, "gap", grid.DefaultGap, "gap between and around cells in pixels")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func runInit(path string, dimension, gap int, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	p := project.Starter()
	p.Dimension = dimension
	p.Gap = &gap
	if err := p.Config().Validate(); err != nil {
		return err
	}
	if err := p.Save(path); err != nil {
		return err
	}

	printSuccess("Created %s", path)
	printDetail("%d×%d grid, %dpx gap", dimension, dimension, gap)
	printNextStep("Add cells, then export", "gridstudio export "+path)
	return nil
}
