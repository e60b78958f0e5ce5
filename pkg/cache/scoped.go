package cache

import "github.com/awscfgdiagram/orthoroute/pkg/route"

// ScopedKeyer prefixes every key from an inner Keyer. The CLI scopes keys
// by build version so an upgraded router never reads routes cached by an
// older one; a shared backend can scope by tenant the same way.
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer scopes inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) RoutedKey(diagramHash string, opts route.Options) string {
	return k.Prefix + k.Inner.RoutedKey(diagramHash, opts)
}

func (k ScopedKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(diagramHash, opts)
}
