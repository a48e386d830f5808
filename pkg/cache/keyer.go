package cache

// Keyer builds cache keys. Implementations must be deterministic: the
// same inputs always yield the same key.
type Keyer interface {
	// ImageKey identifies the raw bytes behind an image source.
	ImageKey(source string) string

	// ArtifactKey identifies an encoded export of a grid snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render settings that change an export's bytes.
type ArtifactKeyOpts struct {
	Format         string `json:"format"`
	VisualCellSize int    `json:"visual_cell_size"`
	Interpolation  string `json:"interpolation"`
	Proxy          string `json:"proxy"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ImageKey hashes the source so data URIs do not become huge keys.
func (DefaultKeyer) ImageKey(source string) string {
	return "image:" + Hash([]byte(source))
}

// ArtifactKey combines the snapshot hash with the render settings.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}
