package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/gridstudio/pkg/cache"
	"github.com/matzehuels/gridstudio/pkg/errors"
	"github.com/matzehuels/gridstudio/pkg/observability"
)

const (
	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBytes caps the encoded size of any single image.
	DefaultMaxBytes int64 = 20 << 20

	// DefaultMaxPixels caps the decoded size of any single image. Small
	// files can declare huge rasters, so the header is checked before
	// decoding.
	DefaultMaxPixels int64 = 40_000_000

	userAgent = "gridstudio/1.0 (+https://github.com/matzehuels/gridstudio)"
)

// Loader turns an image source into a decoded image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, src string) (image.Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// Options configures a Client. Zero values take the package defaults.
type Options struct {
	HTTPClient *http.Client
	Cache      cache.Cache
	Keyer      cache.Keyer
	Proxy      Proxy
	MaxBytes   int64
	MaxPixels  int64
	Logger     *log.Logger

	// Refresh skips cache reads but still writes fresh bytes back.
	Refresh bool
}

// Client is the default Loader.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	proxy     Proxy
	maxBytes  int64
	maxPixels int64
	logger    *log.Logger
	refresh   bool
}

// NewClient creates a loader from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:      opts.HTTPClient,
		cache:     opts.Cache,
		keyer:     opts.Keyer,
		proxy:     opts.Proxy,
		maxBytes:  opts.MaxBytes,
		maxPixels: opts.MaxPixels,
		logger:    opts.Logger,
		refresh:   opts.Refresh,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.maxBytes <= 0 {
		c.maxBytes = DefaultMaxBytes
	}
	if c.maxPixels <= 0 {
		c.maxPixels = DefaultMaxPixels
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Proxy returns the proxy the client rewrites remote sources through.
func (c *Client) Proxy() Proxy {
	return c.proxy
}

// Load resolves src and decodes it. Every failure carries
// errors.ErrCodeImageLoad.
func (c *Client) Load(ctx context.Context, src string) (image.Image, error) {
	kind := Classify(src)
	ctx, span := observability.Tracer().Start(ctx, "imagesource.Load")
	span.SetAttributes(attribute.String("source.kind", kind.String()))
	defer span.End()

	img, err := c.load(ctx, kind, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	b := img.Bounds()
	span.SetAttributes(attribute.Int("image.width", b.Dx()), attribute.Int("image.height", b.Dy()))
	return img, nil
}

func (c *Client) load(ctx context.Context, kind Kind, src string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	switch kind {
	case KindEmpty:
		return nil, errors.New(errors.ErrCodeImageLoad, "empty image source")
	case KindData:
		data, err = decodeDataURI(src)
	case KindRemote:
		data, err = c.fetchCached(ctx, src)
	case KindLocal:
		data, err = c.readFile(src)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "load %s image", kind)
	}
	return DecodeLimited(data, c.maxPixels)
}

// Decode decodes encoded image bytes, applying EXIF orientation. Images
// above DefaultMaxPixels are rejected.
func Decode(data []byte) (image.Image, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited is Decode with an explicit pixel limit. The limit is
// checked against the image header, so an oversized raster is never
// allocated.
func DecodeLimited(data []byte, maxPixels int64) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "decode image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New(errors.ErrCodeImageLoad, "image has no pixels")
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return nil, errors.New(errors.ErrCodeImageLoad, "image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "decode image")
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New(errors.ErrCodeImageLoad, "image has no pixels")
	}
	return img, nil
}

func (c *Client) fetchCached(ctx context.Context, src string) ([]byte, error) {
	key := c.keyer.ImageKey(src)
	if !c.refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "image")
			return data, nil
		} else if err != nil {
			c.logger.Debug("image cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "image")
	}

	data, err := c.fetch(ctx, c.proxy.Rewrite(src))
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, data, cache.TTLImage); err != nil {
		c.logger.Debug("image cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", host, resp.StatusCode)
	}
	return readLimited(resp.Body, c.maxBytes)
}

func (c *Client) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, c.maxBytes)
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("image exceeds %d bytes", max)
	}
	return data, nil
}

// decodeDataURI extracts the payload of data:[<mediatype>][;base64],<data>.
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimSpace(src), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders omit padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("unescape payload: %w", err)
	}
	return []byte(s), nil
}

var _ Loader = (*Client)(nil)
