package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gridstudio/pkg/grid"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Grid != grid.DefaultConfig() {
		t.Errorf("Grid = %+v", cfg.Grid)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("an explicit missing file should fail")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[grid]
dimension = 4
gap = 0
background = "navy"

[render]
viewport_width = 390
proxy = ""
load_timeout = "3s"
max_image_pixels = 1000000

[server]
max_dimension = 24

[cache]
backend = "redis"
redis_addr = "cache:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Grid != (grid.Config{Dimension: 4, Gap: 0, Background: "navy"}) {
		t.Errorf("Grid = %+v", cfg.Grid)
	}
	if cfg.Render.LoadTimeout != 3*time.Second {
		t.Errorf("LoadTimeout = %v", cfg.Render.LoadTimeout)
	}
	if cfg.Render.Interpolation != "catmullrom" {
		t.Errorf("unset key lost its default: %q", cfg.Render.Interpolation)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}

	if cfg.Server.MaxDimension != 24 {
		t.Errorf("MaxDimension = %d", cfg.Server.MaxDimension)
	}

	opts := cfg.PipelineOptions()
	if !opts.DisableProxy || opts.ViewportWidth != 390 || opts.MaxImagePixels != 1000000 {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"unknown key", "[grid]\ndimensions = 3\n", "unknown keys"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "cache backend"},
		{"bad store", "[store]\nbackend = \"sqlite\"\n", "store backend"},
		{"bad interpolation", "[render]\ninterpolation = \"lanczos\"\n", "interpolation"},
		{"bad dimension", "[grid]\ndimension = 0\n", "INVALID_DIMENSION"},
		{"bad toml", "[grid\n", "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("encoded defaults do not load: %v\n%s", err, buf.String())
	}
	if cfg != Default() {
		t.Errorf("round trip changed config:\n%+v\n%+v", cfg, Default())
	}
}
