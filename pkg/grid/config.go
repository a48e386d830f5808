package grid

import (
	"image/color"
	"math"

	"github.com/mazznoer/csscolorparser"

	"github.com/matzehuels/gridstudio/pkg/errors"
)

const (
	// DefaultDimension is the grid size of a new session.
	DefaultDimension = 3

	// DefaultGap is the inter-cell gap (and outer border) in pixels.
	DefaultGap = 20

	// DefaultBackground is the canvas color behind and between cells.
	DefaultBackground = "#ffffff"
)

// Config is the session-wide grid configuration.
type Config struct {
	Dimension  int    `json:"dimension" yaml:"dimension" toml:"dimension"`
	Gap        int    `json:"gap" yaml:"gap" toml:"gap"`
	Background string `json:"background" yaml:"background" toml:"background"`
}

// DefaultConfig returns the configuration of a new session.
func DefaultConfig() Config {
	return Config{
		Dimension:  DefaultDimension,
		Gap:        DefaultGap,
		Background: DefaultBackground,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := ValidateDimension(c.Dimension); err != nil {
		return err
	}
	if err := ValidateGap(c.Gap); err != nil {
		return err
	}
	_, err := ParseColor(c.Background)
	return err
}

// BackgroundColor parses the background as a color.
func (c Config) BackgroundColor() (color.NRGBA, error) {
	return ParseColor(c.Background)
}

// ValidateDimension checks that n is a usable grid size. Any positive
// size is valid; callers facing untrusted input apply their own limit.
func ValidateDimension(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidDimension, "dimension must be positive, got %d", n)
	}
	return nil
}

// DimensionFromFloat converts a decoded number into a grid size, rejecting
// fractional and non-finite values.
func DimensionFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errors.New(errors.ErrCodeInvalidDimension, "dimension must be an integer, got %v", f)
	}
	if f < 1 {
		return 0, errors.New(errors.ErrCodeInvalidDimension, "dimension must be positive, got %v", f)
	}
	if f > math.MaxInt32 {
		return 0, errors.New(errors.ErrCodeInvalidDimension, "dimension %v is not representable", f)
	}
	return int(f), nil
}

// ValidateGap checks that the gap is non-negative.
func ValidateGap(gap int) error {
	if gap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gap must be non-negative, got %d", gap)
	}
	return nil
}

// ParseColor parses a CSS color such as "#fff", "#336699" or "rebeccapurple".
func ParseColor(s string) (color.NRGBA, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid color %q", s)
	}
	return color.NRGBA{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(c.A),
	}, nil
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
