package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/cache"
	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/observability"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// Runner executes the pipeline with caching. It keeps no per-run state, so
// one Runner may serve concurrent calls.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ArtifactTTL bounds rendered artifacts; zero uses [cache.TTLArtifact].
	ArtifactTTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses [cache.DefaultKeyer]; a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute routes d and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	hash, err := DiagramHash(d)
	if err != nil {
		return nil, err
	}
	result := &Result{DiagramHash: hash, Artifacts: map[string][]byte{}}
	result.Stats.Nodes = len(d.Nodes)
	result.Stats.Edges = len(d.Edges)

	start := time.Now()
	rd, hit, err := r.route(ctx, d, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Routed = rd
	result.Stats.RouteTime = time.Since(start)
	result.CacheInfo.RoutedHit = hit
	opts.Logger.Info("routed connectors",
		"diagram", d.Meta.Title,
		"edges", rd.Stats.Routed,
		"crossings", rd.Stats.Crossings,
		"cached", hit,
		"duration", result.Stats.RouteTime)

	start = time.Now()
	artifacts, hit, err := r.render(ctx, rd, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Route runs one routing pass with caching.
func (r *Runner) Route(ctx context.Context, d *diagram.Diagram, opts Options) (*diagram.Routed, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	hash, err := DiagramHash(d)
	if err != nil {
		return nil, err
	}
	rd, _, err := r.route(ctx, d, hash, opts)
	return rd, err
}

func (r *Runner) route(ctx context.Context, d *diagram.Diagram, hash string, opts Options) (*diagram.Routed, bool, error) {
	key := r.Keyer.RoutedKey(hash, opts.Routing)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if rd, err := diagram.ReadRouted(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "routed")
				return rd, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "routed")
	}

	observability.Pipeline().OnRouteStart(ctx, d.Meta.Title, len(d.Edges))
	start := time.Now()
	rd := diagram.Route(d.Clone(), route.New(opts.Routing, opts.Logger))
	observability.Pipeline().OnRouteComplete(ctx, d.Meta.Title, rd.Stats, time.Since(start))
	for _, id := range rd.Dangling {
		opts.Logger.Warn("edge references a missing node", "edge", id)
	}

	var buf bytes.Buffer
	if err := diagram.WriteRouted(rd, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLRouted); err == nil {
			observability.Cache().OnCacheSet(ctx, "routed", buf.Len())
		}
	}
	return rd, false, nil
}

func (r *Runner) render(ctx context.Context, rd *diagram.Routed, hash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		observability.Pipeline().OnRenderStart(ctx, rd.Diagram.Meta.Title, format)
		start := time.Now()
		data, err := RenderFormat(ctx, rd, format, opts)
		observability.Pipeline().OnRenderComplete(ctx, rd.Diagram.Meta.Title, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), data, r.artifactTTL()); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// DiagramHash hashes the canonical JSON form of d.
func DiagramHash(d *diagram.Diagram) (string, error) {
	data, err := diagram.MarshalDiagram(d)
	if err != nil {
		return "", fmt.Errorf("hash diagram: %w", err)
	}
	return cache.Hash(data), nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return cache.TTLArtifact
}
