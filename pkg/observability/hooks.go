// Package observability lets the binary attach instrumentation to the
// pipeline, the cache and the HTTP server without those packages knowing
// about any backend.
//
// Libraries report events through [Pipeline], [Cache] and [HTTP]; all three
// are no-ops until the binary registers something else:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	defer observability.Reset()
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// PipelineHooks receives routing, rendering and editing events.
type PipelineHooks interface {
	OnRouteStart(ctx context.Context, diagramID string, edgeCount int)
	OnRouteComplete(ctx context.Context, diagramID string, stats route.Stats, duration time.Duration)
	OnRenderStart(ctx context.Context, diagramID, format string)
	OnRenderComplete(ctx context.Context, diagramID, format string, size int, duration time.Duration, err error)
	// OnPassSuperseded reports an editing pass dropped because a newer
	// edit began before it committed.
	OnPassSuperseded(ctx context.Context, sessionID string, generation uint64)
}

// CacheHooks receives cache lookups and writes. keyType is "routed" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives API requests. route is the matched pattern once the
// response is written.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRouteStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, string, route.Stats, time.Duration) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, string)                       {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnPassSuperseded(context.Context, string, uint64) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds one registered hook set, falling back to noop.
type slot[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{cur: noop, noop: noop} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// set ignores a nil h.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.noop
	s.mu.Unlock()
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks, SetCacheHooks and SetHTTPHooks replace the registered
// hooks. A nil argument leaves them unchanged.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }
func SetCacheHooks(h CacheHooks)       { cacheSlot.set(h) }
func SetHTTPHooks(h HTTPHooks)         { httpSlot.set(h) }

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
