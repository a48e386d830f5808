package compose

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/matzehuels/gridstudio/pkg/errors"
)

// FormatPNG is the only export format.
const FormatPNG = "png"

// EncodePNG writes img as PNG. Failures carry
// errors.ErrCodeRenderEncoding.
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return errors.New(errors.ErrCodeRenderEncoding, "no raster to encode")
	}
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeRenderEncoding, err, "encode png")
	}
	return nil
}

// EncodePNGBytes encodes img in memory. On failure no partial bytes are
// returned.
func EncodePNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
