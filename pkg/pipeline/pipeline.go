// Package pipeline runs the export pipeline shared by the CLI and the API.
//
// An export takes a grid snapshot, works out the on-screen cell size the
// offsets were authored against, composites the grid and encodes the
// result as PNG:
//
//	snapshot → visual cell size → compose.Render → compose.EncodePNG
//
// The [Runner] caches encoded exports keyed by the snapshot hash and every
// setting that changes the output bytes, and shares its cache with the
// image loader so source images are fetched once.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Export(ctx, session.Snapshot(), pipeline.Options{
//	    ViewportWidth: 1280,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(pipeline.ExportFilename(time.Now()), result.PNG, 0644)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridstudio/pkg/cache"
	"github.com/matzehuels/gridstudio/pkg/compose"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultViewportWidth is a desktop-class window, so exports match what
	// a desktop user saw unless the caller says otherwise.
	DefaultViewportWidth = 1280

	// DefaultFormat is the export format.
	DefaultFormat = compose.FormatPNG
)

// ExportFilename returns the download name for an export made at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("grid-studio-%d.png", t.UnixMilli())
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one export. It supports JSON for API requests.
type Options struct {
	// ViewportWidth is the width of the window the grid was edited in.
	// It selects the desktop or narrow visual cell size.
	ViewportWidth int `json:"viewport_width,omitempty"`

	// Interpolation names the resampling kernel (see compose.Interpolations).
	Interpolation string `json:"interpolation,omitempty"`

	// Proxy is the image proxy URL template. Empty means the default
	// template unless DisableProxy is set.
	Proxy        string `json:"proxy,omitempty"`
	DisableProxy bool   `json:"disable_proxy,omitempty"`

	// Concurrency bounds parallel image loads.
	Concurrency int `json:"concurrency,omitempty"`

	// LoadTimeout bounds each remote fetch; MaxImageBytes caps each
	// encoded source image and MaxImagePixels its decoded size.
	LoadTimeout    time.Duration `json:"load_timeout,omitempty"`
	MaxImageBytes  int64         `json:"max_image_bytes,omitempty"`
	MaxImagePixels int64         `json:"max_image_pixels,omitempty"`

	// Refresh bypasses cache reads for both exports and source images.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of an export.
type Result struct {
	// PNG holds the encoded export.
	PNG []byte

	// Width and Height are the export dimensions in pixels.
	Width, Height int

	// SnapshotHash identifies the rendered grid content.
	SnapshotHash string

	// VisualCellSize is the on-screen cell size offsets were scaled from.
	VisualCellSize int

	// Report describes per-cell outcomes. Nil on a cache hit.
	Report *compose.Report

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains export statistics.
type Stats struct {
	Cells      int
	Drawn      int
	Failed     int
	RenderTime time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache use for an export.
type CacheInfo struct {
	RenderHit bool // Whether the PNG came from the cache
	Stored    bool // Whether the PNG was written to the cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero fields with defaults.
func (o *Options) SetDefaults() {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.Interpolation == "" {
		o.Interpolation = compose.DefaultInterpolation
	}
	if o.Proxy == "" && !o.DisableProxy {
		o.Proxy = imagesource.DefaultProxyTemplate
	}
	if o.DisableProxy {
		o.Proxy = ""
	}
	if o.Concurrency <= 0 {
		o.Concurrency = compose.DefaultConcurrency
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = imagesource.DefaultTimeout
	}
	if o.MaxImageBytes <= 0 {
		o.MaxImageBytes = imagesource.DefaultMaxBytes
	}
	if o.MaxImagePixels <= 0 {
		o.MaxImagePixels = imagesource.DefaultMaxPixels
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate applies defaults and checks the remaining fields.
func (o *Options) Validate() error {
	o.SetDefaults()
	_, err := compose.ParseInterpolation(o.Interpolation)
	return err
}

// Viewport returns the viewport class of ViewportWidth.
func (o *Options) Viewport() grid.Viewport {
	return grid.ViewportForWidth(o.ViewportWidth)
}

// ArtifactKeyOpts returns cache key options for an export.
func (o *Options) ArtifactKeyOpts(visualCellSize int) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:         DefaultFormat,
		VisualCellSize: visualCellSize,
		Interpolation:  o.Interpolation,
		Proxy:          o.Proxy,
	}
}
