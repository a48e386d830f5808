package compose

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridstudio/pkg/errors"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
	"github.com/matzehuels/gridstudio/pkg/observability"
)

// DefaultConcurrency bounds simultaneous image loads.
const DefaultConcurrency = 8

// Options configures a Compositor.
type Options struct {
	// Loader resolves cell sources. Defaults to an imagesource.Client with
	// the default proxy.
	Loader imagesource.Loader

	// Concurrency bounds parallel loads. Defaults to DefaultConcurrency.
	Concurrency int

	// Interpolator resamples images. Defaults to draw.CatmullRom.
	Interpolator draw.Interpolator

	Logger *log.Logger
}

// Compositor renders grids. It holds no per-render state and is safe for
// concurrent use.
type Compositor struct {
	loader      imagesource.Loader
	concurrency int
	interp      draw.Interpolator
	logger      *log.Logger
}

// New creates a compositor from opts.
func New(opts Options) *Compositor {
	c := &Compositor{
		loader:      opts.Loader,
		concurrency: opts.Concurrency,
		interp:      opts.Interpolator,
		logger:      opts.Logger,
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.loader == nil {
		c.loader = imagesource.NewClient(imagesource.Options{
			Proxy:  imagesource.NewProxy(imagesource.DefaultProxyTemplate),
			Logger: c.logger,
		})
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	if c.interp == nil {
		c.interp = draw.CatmullRom
	}
	return c
}

// Report describes what a render did per cell.
type Report struct {
	Dimension  int
	CanvasSize int
	Drawn      []int
	Empty      []int
	Skipped    []int
	Failed     []CellFailure
	Duration   time.Duration
}

// CellFailure records a cell whose image could not be loaded.
type CellFailure struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Err    error  `json:"-"`
}

// Message returns the failure text for reports and API responses.
func (f CellFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return errors.UserMessage(f.Err)
}

// loaded is the outcome of one cell's load.
type loaded struct {
	img image.Image
	err error
}

// Render composites cells into a new canvas. cells must be the row-major
// contents of a cfg.Dimension² grid, and visualCellSize the on-screen cell
// size the offsets were authored against.
//
// Per-cell load failures are recovered and listed in the report. Render
// returns an error only for invalid arguments or a cancelled context.
func (c *Compositor) Render(ctx context.Context, cells []grid.Cell, cfg grid.Config, visualCellSize int) (*image.RGBA, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	n := cfg.Dimension
	if len(cells) != n*n {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "got %d cells for a %dx%d grid", len(cells), n, n)
	}
	if visualCellSize < 1 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "visual cell size must be >= 1, got %d", visualCellSize)
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	size := CanvasSize(n, cfg.Gap)
	ctx, span := observability.Tracer().Start(ctx, "compose.Render")
	span.SetAttributes(
		attribute.Int("grid.dimension", n),
		attribute.Int("canvas.size", size),
		attribute.Int("visual_cell_size", visualCellSize),
	)
	defer span.End()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, n, size)

	results := c.loadAll(ctx, cells)
	if err := ctx.Err(); err != nil {
		hooks.OnRenderComplete(ctx, n, 0, time.Since(start), err)
		return nil, nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	report := &Report{Dimension: n, CanvasSize: size}
	for i, cell := range cells {
		r := results[i]
		switch {
		case cell.Empty():
			report.Empty = append(report.Empty, i)
			continue
		case r.err != nil:
			c.logger.Warn("image load failed", "cell", i, "err", r.err)
			report.Failed = append(report.Failed, CellFailure{Index: i, Source: cell.Source, Err: r.err})
			continue
		}

		p := Place(cell, r.img.Bounds(), Box(i, n, cfg.Gap), visualCellSize)
		if !p.Drawable() {
			c.logger.Debug("cell not drawable", "cell", i, "scale", p.FinalScale)
			report.Skipped = append(report.Skipped, i)
			continue
		}
		dst := canvas.SubImage(p.Box).(*image.RGBA)
		c.interp.Transform(dst, p.Matrix.Aff3(), r.img, r.img.Bounds(), draw.Over, nil)
		report.Drawn = append(report.Drawn, i)
	}

	report.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("cells.drawn", len(report.Drawn)), attribute.Int("cells.failed", len(report.Failed)))
	hooks.OnRenderComplete(ctx, n, len(report.Failed), report.Duration, nil)
	return canvas, report, nil
}

// loadAll fetches every populated cell concurrently and waits for all of
// them. Goroutines always return nil so one failure never cancels the rest.
func (c *Compositor) loadAll(ctx context.Context, cells []grid.Cell) []loaded {
	results := make([]loaded, len(cells))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	hooks := observability.Render()
	for i, cell := range cells {
		if cell.Empty() {
			continue
		}
		g.Go(func() error {
			hooks.OnLoadStart(ctx, i, cell.Source)
			start := time.Now()
			img, err := c.loader.Load(ctx, cell.Source)
			if err == nil && img == nil {
				err = errors.New(errors.ErrCodeImageLoad, "loader returned no image")
			}
			if err != nil && !errors.Is(err, errors.ErrCodeImageLoad) {
				err = errors.Wrap(errors.ErrCodeImageLoad, err, "load cell %d", i)
			}
			hooks.OnLoadComplete(ctx, i, cell.Source, time.Since(start), err)
			results[i] = loaded{img: img, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
