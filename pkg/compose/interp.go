package compose

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultInterpolation is the resampling kernel used unless configured.
const DefaultInterpolation = "catmullrom"

var interpolators = map[string]draw.Interpolator{
	"nearest":        draw.NearestNeighbor,
	"approxbilinear": draw.ApproxBiLinear,
	"bilinear":       draw.BiLinear,
	"catmullrom":     draw.CatmullRom,
}

// ParseInterpolation returns the interpolator called name.
// An empty name selects [DefaultInterpolation].
func ParseInterpolation(name string) (draw.Interpolator, error) {
	if name == "" {
		name = DefaultInterpolation
	}
	if i, ok := interpolators[strings.ToLower(name)]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("unknown interpolation %q (must be one of: %s)", name, strings.Join(Interpolations(), ", "))
}

// Interpolations lists the accepted interpolation names.
func Interpolations() []string {
	names := make([]string, 0, len(interpolators))
	for n := range interpolators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
