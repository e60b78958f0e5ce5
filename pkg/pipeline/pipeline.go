// Package pipeline runs the load → route → render flow shared by the CLI
// and the HTTP server.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	d, _ := diagram.ReadDiagramFile("prod.json")
//	result, err := runner.Execute(ctx, d, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// Routed documents and rendered artifacts are cached under a hash of the
// diagram plus every option that affects them; see [cache.Keyer].
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/cache"
	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// DefaultScale is the PNG pixel ratio.
const DefaultScale = 2.0

// Options controls one pipeline run.
type Options struct {
	// Routing holds the router tunables. Zero numeric fields take defaults.
	Routing route.Options `json:"routing"`

	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	EdgeLabels bool     `json:"edge_labels,omitempty"`
	NoLabels   bool     `json:"no_labels,omitempty"`
	// Engine draws svg and pdf output; see render.Engines.
	Engine string `json:"engine,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result is the outcome of a run.
type Result struct {
	Routed      *diagram.Routed
	DiagramHash string
	Artifacts   map[string][]byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	Nodes      int
	Edges      int
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	RoutedHit bool
	RenderHit bool
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, render.Formats...)
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	o.Routing.SetDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Engine == "" {
		o.Engine = render.EngineNative
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks the options.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.Routing.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "routing options")
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	}
	if !slices.Contains(render.Engines, o.Engine) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown engine %q (want one of %s)", o.Engine, strings.Join(render.Engines, ", "))
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		EdgeLabels: o.EdgeLabels,
		NoLabels:   o.NoLabels,
		Routing:    o.Routing,
	}
	switch format {
	case render.FormatPNG:
		k.Scale = o.Scale
	case render.FormatSVG, render.FormatPDF:
		if o.Engine != render.EngineNative {
			k.Engine = o.Engine
		}
	}
	return k
}
