package cache

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	RankDir  string `json:"rankdir,omitempty"`
	FontSize int    `json:"fontsize,omitempty"`
	Focus    string `json:"focus,omitempty"`
	Depth    int    `json:"depth,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for one rendered format of a schema.
	ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates unprefixed keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the schema hash together with the render options.
func (DefaultKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", schemaHash, opts)
}

