package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridstudio/internal/config"
	"github.com/matzehuels/gridstudio/pkg/compose"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
	"github.com/matzehuels/gridstudio/pkg/pipeline"
	"github.com/matzehuels/gridstudio/pkg/project"
)

// stdoutPath selects standard output for --output.
const stdoutPath = "-"

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output        string // output file path; empty derives a timestamped name
	viewport      int    // viewport width the offsets were authored in
	interpolation string // resampling kernel
	noProxy       bool   // fetch remote images directly
	noCache       bool   // disable the image and export cache
	refresh       bool   // ignore cached entries but store fresh ones
	watch         bool   // re-export when the project or a local image changes
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [project]",
		Short: "Render a grid project to PNG",
		Long: `Render a grid project to a fixed-resolution PNG.

Every cell is drawn at 400×400 pixels with the project's gap around and
between cells. Pan offsets are scaled from the on-screen cell size of the
viewport they were authored in (--viewport, default 1280).

Images that fail to load leave their cell showing the background; the
export still succeeds and lists the failures.`,
		Example: `  gridstudio export
  gridstudio export grid.yaml -o poster.png
  gridstudio export grid.yaml --viewport 390 --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultFilename
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := compose.ParseInterpolation(opts.interpolation); opts.interpolation != "" && err != nil {
				return err
			}
			return c.runExport(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file ("-" for stdout, default grid-studio-<millis>.png)`)
	cmd.Flags().IntVar(&opts.viewport, "viewport", 0, "viewport width in CSS pixels the grid was edited in")
	cmd.Flags().StringVar(&opts.interpolation, "interpolation", "", "resampling: nearest, approxbilinear, bilinear, catmullrom")
	cmd.Flags().BoolVar(&opts.noProxy, "no-proxy", false, "fetch remote images directly instead of through the image proxy")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached images and exports")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-export when the project or a local image changes")

	return cmd
}

// runExport exports once and, with --watch, again after every change.
func (c *CLI) runExport(ctx context.Context, path string, opts exportOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.output == "" {
		opts.output = pipeline.ExportFilename(time.Now())
	}
	if opts.watch && opts.output == stdoutPath {
		return fmt.Errorf("--watch cannot write to stdout")
	}

	p, err := c.exportOnce(ctx, runner, cfg, path, opts)
	if !opts.watch {
		return err
	}
	if err != nil {
		printError("%v", err)
	}

	targets := []string{path}
	if p != nil {
		targets = append(targets, localSources(p)...)
	}
	fw, err := newFileWatcher(c.Logger, targets...)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer fw.Close()

	printInfo("Watching %s for changes (Ctrl+C to stop)", path)
	return fw.Run(ctx, watchDebounce, func(changed string) {
		c.Logger.Debug("re-exporting", "trigger", changed)
		if _, err := c.exportOnce(ctx, runner, cfg, path, opts); err != nil {
			printError("%v", err)
		}
	})
}

// exportOnce loads the project, renders it and writes the PNG. The loaded
// project is returned even when rendering fails so watch mode can track
// its images.
func (c *CLI) exportOnce(ctx context.Context, runner *pipeline.Runner, cfg config.Config, path string, opts exportOpts) (*project.Project, error) {
	prog := newProgress(c.Logger)

	p, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	sess, err := p.Session()
	if err != nil {
		return p, err
	}

	pipeOpts := exportOptions(cfg, p, opts)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d×%d grid...", p.Config().Dimension, p.Config().Dimension))
	spinner.Start()
	result, err := runner.Export(ctx, sess.Snapshot(), pipeOpts)
	if err != nil {
		spinner.Stop()
		return p, err
	}

	spinner.Update(fmt.Sprintf("Writing %s...", opts.output))
	err = writeOutput(opts.output, result.PNG)
	spinner.Stop()
	if err != nil {
		return p, err
	}
	if opts.output == stdoutPath {
		return p, nil
	}

	printSuccess("Exported %s", opts.output)
	printStats(exportStats{
		width:  result.Width,
		height: result.Height,
		drawn:  result.Stats.Drawn,
		failed: result.Stats.Failed,
		cached: result.CacheInfo.RenderHit,
	})
	if result.Report != nil {
		for _, f := range result.Report.Failed {
			printWarning("cell %d: %s", f.Index, f.Message())
		}
	}
	prog.done("Export complete")
	return p, nil
}

// exportOptions layers the project and flags over the configured render
// settings. Flags win over the project, which wins over the config file.
func exportOptions(cfg config.Config, p *project.Project, opts exportOpts) pipeline.Options {
	o := cfg.PipelineOptions()
	if p.ViewportWidth > 0 {
		o.ViewportWidth = p.ViewportWidth
	}
	if opts.viewport > 0 {
		o.ViewportWidth = opts.viewport
	}
	if opts.interpolation != "" {
		o.Interpolation = opts.interpolation
	}
	if opts.noProxy {
		o.Proxy = ""
		o.DisableProxy = true
	}
	o.Refresh = opts.refresh
	return o
}

// localSources lists the project's local image files.
func localSources(p *project.Project) []string {
	var paths []string
	for _, c := range p.Cells {
		if imagesource.Classify(c.Source) == imagesource.KindLocal {
			paths = append(paths, c.Source)
		}
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if path == stdoutPath {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
