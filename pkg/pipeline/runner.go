package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridstudio/pkg/cache"
	"github.com/matzehuels/gridstudio/pkg/compose"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
	"github.com/matzehuels/gridstudio/pkg/observability"
)

// Runner encapsulates export execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner keeps no per-export state. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Loader overrides the image loader. When nil, each export builds an
	// imagesource.Client that shares Cache and Keyer.
	Loader imagesource.Loader
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// renderInput is the part of a snapshot that affects export pixels.
// The active selection is UI state and is left out of the hash.
type renderInput struct {
	Config grid.Config       `json:"config"`
	Cells  []grid.Cell       `json:"cells"`
	Files  map[string]string `json:"files,omitempty"`
}

// HashSnapshot returns the content hash used in export cache keys.
// Local image files are hashed by content, so editing one changes the key.
func HashSnapshot(snap grid.Snapshot) (string, error) {
	return cache.HashJSON(renderInput{
		Config: snap.Config,
		Cells:  snap.Cells,
		Files:  localFingerprints(snap.Cells),
	})
}

// localFingerprints maps each local image path to the hash of its bytes.
// Unreadable files map to "". Their cells fail to load, so the export is
// never cached under that key.
func localFingerprints(cells []grid.Cell) map[string]string {
	var files map[string]string
	for _, c := range cells {
		if imagesource.Classify(c.Source) != imagesource.KindLocal {
			continue
		}
		if _, seen := files[c.Source]; seen {
			continue
		}
		if files == nil {
			files = make(map[string]string)
		}
		data, err := os.ReadFile(c.Source)
		if err != nil {
			files[c.Source] = ""
			continue
		}
		files[c.Source] = cache.Hash(data)
	}
	return files
}

// Export renders snap to PNG, consulting the artifact cache first.
// Exports with failed cells are returned but not cached, so a transient
// fetch failure does not stick.
func (r *Runner) Export(ctx context.Context, snap grid.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := snap.Config.Validate(); err != nil {
		return nil, err
	}

	visual := grid.VisualCellSize(snap.Config.Dimension, snap.Config.Gap, opts.Viewport())
	hash, err := HashSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("hash snapshot: %w", err)
	}
	key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(visual))

	result := &Result{
		SnapshotHash:   hash,
		VisualCellSize: visual,
		Stats:          Stats{Cells: len(snap.Cells)},
	}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "artifact")
				result.PNG = data
				result.Width, result.Height = cfg.Width, cfg.Height
				result.CacheInfo.RenderHit = true
				r.Logger.Debug("export cache hit", "hash", hash[:12])
				return result, nil
			}
			_ = r.Cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	comp, err := r.compositor(opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	img, report, err := comp.Render(ctx, snap.Cells, snap.Config, visual)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Report = report
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.Drawn = len(report.Drawn)
	result.Stats.Failed = len(report.Failed)

	encodeStart := time.Now()
	data, err := compose.EncodePNGBytes(img)
	if err != nil {
		return nil, err
	}
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.PNG = data
	result.Width, result.Height = img.Bounds().Dx(), img.Bounds().Dy()

	r.Logger.Info("rendered export",
		"size", fmt.Sprintf("%dx%d", result.Width, result.Height),
		"drawn", result.Stats.Drawn,
		"failed", result.Stats.Failed,
		"duration", result.Stats.RenderTime+result.Stats.EncodeTime)

	if len(report.Failed) == 0 {
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("export cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			result.CacheInfo.Stored = true
		}
	}
	return result, nil
}

func (r *Runner) compositor(opts Options) (*compose.Compositor, error) {
	interp, err := compose.ParseInterpolation(opts.Interpolation)
	if err != nil {
		return nil, err
	}
	loader := r.Loader
	if loader == nil {
		loader = imagesource.NewClient(imagesource.Options{
			HTTPClient: &http.Client{Timeout: opts.LoadTimeout},
			Cache:      r.Cache,
			Keyer:      r.Keyer,
			Proxy:      imagesource.NewProxy(opts.Proxy),
			MaxBytes:   opts.MaxImageBytes,
			MaxPixels:  opts.MaxImagePixels,
			Logger:     opts.Logger,
			Refresh:    opts.Refresh,
		})
	}
	return compose.New(compose.Options{
		Loader:       loader,
		Concurrency:  opts.Concurrency,
		Interpolator: interp,
		Logger:       opts.Logger,
	}), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
