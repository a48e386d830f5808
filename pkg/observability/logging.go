package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level entries
// to a charmbracelet logger. Load failures are logged at warn level since
// they leave a hole in the export.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to l. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnRenderStart(_ context.Context, dimension, canvasSize int) {
	h.logger.Debug("render start", "dimension", dimension, "canvas", canvasSize)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, dimension, failed int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("render failed", "dimension", dimension, "err", err)
		return
	}
	h.logger.Debug("render complete", "dimension", dimension, "failed", failed, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnLoadStart(_ context.Context, index int, source string) {
	h.logger.Debug("load start", "cell", index, "source", shorten(source))
}

func (h *LogHooks) OnLoadComplete(_ context.Context, index int, source string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("image load failed", "cell", index, "source", shorten(source), "err", err)
		return
	}
	h.logger.Debug("load complete", "cell", index, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

// shorten keeps data URIs out of log lines.
func shorten(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var (
	_ RenderHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)
