// Package config loads gridstudio settings from a TOML file.
//
// Every setting has a default, and the file is optional. Keys map
// one-to-one onto the structs below:
//
//	[grid]
//	dimension = 3
//	gap = 20
//	background = "#ffffff"
//
//	[render]
//	viewport_width = 1280
//	concurrency = 8
//	interpolation = "catmullrom"
//	proxy = "https://wsrv.nl/?url={url}&output=png"  # "" disables
//	load_timeout = "15s"
//	max_image_bytes = 20971520
//
//	[cache]
//	backend = "file"  # file | redis | none
//
//	[store]
//	backend = "file"  # memory | file | mongo
//
//	[server]
//	addr = ":8080"
//
//	[telemetry]
//	otlp_endpoint = ""
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridstudio/pkg/compose"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
	"github.com/matzehuels/gridstudio/pkg/pipeline"
)

const appName = "gridstudio"

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete settings tree.
type Config struct {
	Grid      grid.Config `toml:"grid"`
	Render    Render      `toml:"render"`
	Cache     Cache       `toml:"cache"`
	Store     Store       `toml:"store"`
	Server    Server      `toml:"server"`
	Telemetry Telemetry   `toml:"telemetry"`
}

// Render holds export settings.
type Render struct {
	ViewportWidth  int           `toml:"viewport_width"`
	Concurrency    int           `toml:"concurrency"`
	Interpolation  string        `toml:"interpolation"`
	Proxy          string        `toml:"proxy"`
	LoadTimeout    time.Duration `toml:"load_timeout"`
	MaxImageBytes  int64         `toml:"max_image_bytes"`
	MaxImagePixels int64         `toml:"max_image_pixels"`
}

// Cache selects the image and export cache.
type Cache struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// Store selects where the API keeps sessions.
type Store struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	MaxDimension int           `toml:"max_dimension"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Telemetry configures tracing export.
type Telemetry struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
	Insecure     bool   `toml:"insecure"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grid: grid.DefaultConfig(),
		Render: Render{
			ViewportWidth:  pipeline.DefaultViewportWidth,
			Concurrency:    compose.DefaultConcurrency,
			Interpolation:  compose.DefaultInterpolation,
			Proxy:          imagesource.DefaultProxyTemplate,
			LoadTimeout:    imagesource.DefaultTimeout,
			MaxImageBytes:  imagesource.DefaultMaxBytes,
			MaxImagePixels: imagesource.DefaultMaxPixels,
		},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			Prefix:    appName + ":",
		},
		Store: Store{
			Backend:    BackendFile,
			MongoURI:   "mongodb://localhost:27017",
			Database:   appName,
			Collection: "sessions",
		},
		Server: Server{
			Addr:         ":8080",
			MaxBodyBytes: 32 << 20,
			MaxDimension: 16,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Telemetry: Telemetry{
			ServiceName: appName,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gridstudio/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. An empty path means DefaultPath, and
// a missing default file is not an error. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if _, err := compose.ParseInterpolation(c.Render.Interpolation); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendMongo:
	default:
		return fmt.Errorf("unknown store backend %q (must be one of: memory, file, mongo)", c.Store.Backend)
	}
	if c.Render.Concurrency < 0 {
		return fmt.Errorf("render.concurrency must be >= 0")
	}
	return nil
}

// PipelineOptions converts the render settings to export options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		ViewportWidth:  c.Render.ViewportWidth,
		Interpolation:  c.Render.Interpolation,
		Proxy:          c.Render.Proxy,
		DisableProxy:   c.Render.Proxy == "",
		Concurrency:    c.Render.Concurrency,
		LoadTimeout:    c.Render.LoadTimeout,
		MaxImageBytes:  c.Render.MaxImageBytes,
		MaxImagePixels: c.Render.MaxImagePixels,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
