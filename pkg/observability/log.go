package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// LogHooks reports pipeline, cache and HTTP events to a logger at debug
// level. `orthoroute serve --verbose` registers it.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnRouteStart(_ context.Context, id string, edges int) {
	h.Logger.Debug("route start", "diagram", id, "edges", edges)
}

func (h *LogHooks) OnRouteComplete(_ context.Context, id string, s route.Stats, d time.Duration) {
	h.Logger.Debug("route done", "diagram", id, "routed", s.Routed, "empty", s.Empty,
		"hits", s.Hits, "crossings", s.Crossings, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, id, format string) {
	h.Logger.Debug("render start", "diagram", id, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, id, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "diagram", id, "format", format, "err", err)
		return
	}
	h.Logger.Debug("render done", "diagram", id, "format", format, "bytes", size, "took", d)
}

func (h *LogHooks) OnPassSuperseded(_ context.Context, session string, gen uint64) {
	h.Logger.Debug("pass superseded", "session", session, "generation", gen)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(context.Context, string, string) {}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("request", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
