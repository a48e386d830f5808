package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridstudio/pkg/cache"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
)

func TestExportFilename(t *testing.T) {
	got := ExportFilename(time.UnixMilli(1700000000123))
	if got != "grid-studio-1700000000123.png" {
		t.Errorf("ExportFilename() = %q", got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.ViewportWidth != DefaultViewportWidth {
		t.Errorf("ViewportWidth = %d", o.ViewportWidth)
	}
	if o.Proxy != imagesource.DefaultProxyTemplate {
		t.Errorf("Proxy = %q", o.Proxy)
	}
	if o.Interpolation != "catmullrom" {
		t.Errorf("Interpolation = %q", o.Interpolation)
	}
	if o.Viewport() != grid.ViewportDesktop {
		t.Errorf("Viewport() = %v", o.Viewport())
	}

	o = Options{Proxy: "http://p/?u={url}", DisableProxy: true, ViewportWidth: 400}
	o.SetDefaults()
	if o.Proxy != "" {
		t.Errorf("DisableProxy should clear the template, got %q", o.Proxy)
	}
	if o.Viewport() != grid.ViewportNarrow {
		t.Errorf("Viewport() = %v, want narrow", o.Viewport())
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		interp  string
		wantErr bool
	}{
		{"", false},
		{"bilinear", false},
		{"nearest", false},
		{"lanczos", true},
	}
	for _, tt := range tests {
		o := Options{Interpolation: tt.interp}
		if err := o.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.interp, err, tt.wantErr)
		}
	}
}

// countingLoader serves a solid image for every source except "bad".
type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Load(_ context.Context, src string) (image.Image, error) {
	l.calls.Add(1)
	if src == "bad" {
		return nil, fmt.Errorf("unreachable")
	}
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{A: 255})
	return img, nil
}

func newRunner(t *testing.T) (*Runner, *countingLoader) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	loader := &countingLoader{}
	r := NewRunner(fc, nil, log.New(io.Discard))
	r.Loader = loader
	return r, loader
}

func snapshot(t *testing.T, sources ...string) grid.Snapshot {
	t.Helper()
	s, err := grid.NewSession(grid.Config{Dimension: 2, Gap: 10, Background: "#fff"})
	if err != nil {
		t.Fatal(err)
	}
	for i, src := range sources {
		if _, err := s.SelectCell(i); err != nil {
			t.Fatal(err)
		}
		if _, err := s.SelectImage(src); err != nil {
			t.Fatal(err)
		}
	}
	return s.Snapshot()
}

func TestExportRendersAndCaches(t *testing.T) {
	r, loader := newRunner(t)
	snap := snapshot(t, "a.png", "b.png")
	ctx := context.Background()

	first, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if first.Width != 830 || first.Height != 830 {
		t.Errorf("size = %dx%d, want 830x830", first.Width, first.Height)
	}
	if first.CacheInfo.RenderHit || !first.CacheInfo.Stored {
		t.Errorf("first export CacheInfo = %+v", first.CacheInfo)
	}
	if first.Stats.Drawn != 2 || first.Stats.Cells != 4 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if loader.calls.Load() != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls.Load())
	}

	second, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second export should hit the cache")
	}
	if string(second.PNG) != string(first.PNG) {
		t.Error("cached PNG differs")
	}
	if second.Width != 830 {
		t.Errorf("cached width = %d", second.Width)
	}
	if loader.calls.Load() != 2 {
		t.Errorf("cache hit should not load images, calls = %d", loader.calls.Load())
	}

	third, err := r.Export(ctx, snap, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit || loader.calls.Load() != 4 {
		t.Errorf("refresh should re-render; hit=%v calls=%d", third.CacheInfo.RenderHit, loader.calls.Load())
	}
}

func TestExportViewportSelectsVisualSize(t *testing.T) {
	r, _ := newRunner(t)
	snap := snapshot(t, "a.png")
	ctx := context.Background()

	desktop, err := r.Export(ctx, snap, Options{ViewportWidth: 1440})
	if err != nil {
		t.Fatal(err)
	}
	narrow, err := r.Export(ctx, snap, Options{ViewportWidth: 375})
	if err != nil {
		t.Fatal(err)
	}
	if desktop.VisualCellSize != 150 || narrow.VisualCellSize != 90 {
		t.Errorf("visual sizes = %d, %d; want 150, 90", desktop.VisualCellSize, narrow.VisualCellSize)
	}
	if narrow.CacheInfo.RenderHit {
		t.Error("a different viewport must not reuse the cached export")
	}
}

func TestExportWithFailedCellIsNotCached(t *testing.T) {
	r, _ := newRunner(t)
	snap := snapshot(t, "a.png", "bad")
	ctx := context.Background()

	res, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatalf("Export() should tolerate a failed cell: %v", err)
	}
	if res.Stats.Failed != 1 || res.Report.Failed[0].Index != 1 {
		t.Errorf("Failed = %+v", res.Report.Failed)
	}
	if res.CacheInfo.Stored {
		t.Error("partial export should not be cached")
	}
	again, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheInfo.RenderHit {
		t.Error("partial export was served from cache")
	}
}

func TestExportRejectsInvalidSnapshot(t *testing.T) {
	r, _ := newRunner(t)
	snap := snapshot(t)
	snap.Dimension = 0
	if _, err := r.Export(context.Background(), snap, Options{}); err == nil {
		t.Error("Export() should reject an invalid config")
	}
}

func TestHashSnapshotIgnoresSelection(t *testing.T) {
	snap := snapshot(t, "a.png")
	h1, err := HashSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	active := 3
	snap.Active = &active
	h2, _ := HashSnapshot(snap)
	if h1 != h2 {
		t.Error("selection changed the snapshot hash")
	}
	snap.Cells[0].Scale = 2
	h3, _ := HashSnapshot(snap)
	if h1 == h3 {
		t.Error("cell change did not change the snapshot hash")
	}
}

func writeSolidPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	for y := range 400 {
		for x := range 400 {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func centerPixel(t *testing.T, data []byte) color.RGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	return color.RGBAModel.Convert(img.At(b.Dx()/2, b.Dy()/2)).(color.RGBA)
}

func TestExportSeesLocalFileEdits(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, log.New(io.Discard))
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "a.png")
	writeSolidPNG(t, path, color.NRGBA{R: 255, A: 255})

	s, err := grid.NewSession(grid.Config{Dimension: 1, Gap: 10, Background: "#fff"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectCell(0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectImage(path); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	first, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := centerPixel(t, first.PNG); got.R < 250 || got.B > 5 {
		t.Fatalf("first export center = %v, want red", got)
	}

	writeSolidPNG(t, path, color.NRGBA{B: 255, A: 255})
	second, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.RenderHit {
		t.Error("edited local image was served from the export cache")
	}
	if got := centerPixel(t, second.PNG); got.B < 250 || got.R > 5 {
		t.Errorf("second export center = %v, want blue", got)
	}

	third, err := r.Export(ctx, snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.RenderHit {
		t.Error("unchanged local image should hit the export cache")
	}
}

func TestHashSnapshotTracksLocalContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cell.png")
	if err := os.WriteFile(path, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}
	snap := snapshot(t, path, path)
	h1, err := HashSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}
	h2, _ := HashSnapshot(snap)
	if h1 == h2 {
		t.Error("changing a local file did not change the snapshot hash")
	}

	remote := snapshot(t, "https://example.com/a.png")
	if files := localFingerprints(remote.Cells); files != nil {
		t.Errorf("remote sources fingerprinted: %v", files)
	}
}
