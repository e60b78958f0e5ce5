package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

func TestRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T before registration", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T before registration", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T before registration", HTTP())
	}

	h := NewLogHooks(nil)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	if Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Error("registered hooks not returned")
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(h) {
		t.Error("SetPipelineHooks(nil) replaced the registered hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T after Reset", Cache())
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	defer Reset()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			SetCacheHooks(NoopCacheHooks{})
			Reset()
		}
	}()
	for range 100 {
		Cache().OnCacheHit(context.Background(), "routed")
	}
	<-done
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnRouteComplete(ctx, "prod", route.Stats{Routed: 3, Crossings: 1}, time.Millisecond)
	h.OnRenderComplete(ctx, "prod", "png", 0, 0, errors.New("rsvg missing"))
	h.OnPassSuperseded(ctx, "s1", 7)
	h.OnCacheMiss(ctx, "artifact")
	h.OnResponse(ctx, "POST", "POST /api/route", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"route done", "routed=3",
		"render failed", "rsvg missing",
		"generation=7",
		"cache miss", "kind=artifact",
		"status=200",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
