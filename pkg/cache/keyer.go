package cache

import (
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// Keyer derives cache keys.
type Keyer interface {
	// RoutedKey identifies the routed document for a diagram and tunables.
	RoutedKey(diagramHash string, opts route.Options) string
	// ArtifactKey identifies a rendered output of a routed document.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists everything besides the diagram that changes a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format     string        `json:"format"`
	Scale      float64       `json:"scale,omitempty"`
	EdgeLabels bool          `json:"edge_labels,omitempty"`
	NoLabels   bool          `json:"no_labels,omitempty"`
	Engine     string        `json:"engine,omitempty"`
	Routing    route.Options `json:"routing"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RoutedKey implements Keyer.
func (DefaultKeyer) RoutedKey(diagramHash string, opts route.Options) string {
	return hashKey("routed", diagramHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", diagramHash, opts)
}
