package cache

import "strings"

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies a rendered output of the graph with the given
	// content hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string

	// MatrixKey identifies an occurrence matrix over the first topx graphs
	// of a store version, so any write to the store changes the key.
	MatrixKey(storeVersion string, topx int) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Renderer  string  `json:"renderer"` // "view" or "nodelink"
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Selection string  `json:"selection,omitempty"`
	Color     string  `json:"color,omitempty"`
	Animated  bool    `json:"animated,omitempty"`
	Scale     float64 `json:"scale,omitempty"`

	Interactive bool `json:"interactive,omitempty"`
	Detailed    bool `json:"detailed,omitempty"`

	// ID is the surface id, written into SVG output.
	ID string `json:"id,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

// MatrixKey implements Keyer.
func (DefaultKeyer) MatrixKey(storeVersion string, topx int) string {
	return hashKey("matrix", storeVersion, topx)
}

// KeyType returns the prefix of a key built by a Keyer, such as "artifact".
// Scoped prefixes are skipped.
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
