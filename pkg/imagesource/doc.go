// Package imagesource resolves cell image sources into decoded images.
//
// A source is one of three kinds (see [Classify]):
//
//   - inline data URIs (data:image/png;base64,...), decoded in memory
//   - remote http(s) URLs, rewritten through a [Proxy] and fetched once
//   - local file paths, read from disk
//
// Remote bytes are cached through a [cache.Cache] keyed by the original
// source, so repeated exports of the same grid do not refetch. Fetches are
// never retried: a failure is reported to the caller, which treats the cell
// as empty for that render.
//
// Decoding goes through disintegration/imaging with EXIF auto-orientation,
// and registers the webp, bmp and tiff decoders from golang.org/x/image in
// addition to the standard library's png, jpeg and gif.
package imagesource
