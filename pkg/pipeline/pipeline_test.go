package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/cache"
	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
)

const threeTier = "../diagram/testdata/three-tier.json"

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func loadThreeTier(t *testing.T) *diagram.Diagram {
	t.Helper()
	d, err := diagram.ReadDiagramFile(threeTier)
	if err != nil {
		t.Fatalf("ReadDiagramFile() error: %v", err)
	}
	return d
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"txt", false},
		{"jpeg", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestOptions_Defaults(t *testing.T) {
	var opts Options
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if !slices.Equal(opts.Formats, []string{"svg"}) || opts.Scale != DefaultScale {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Routing.PortGap == 0 {
		t.Error("routing defaults not applied")
	}
	if k := opts.ArtifactKeyOpts("svg"); k.Scale != 0 {
		t.Errorf("svg key should ignore scale, got %g", k.Scale)
	}
	if k := opts.ArtifactKeyOpts("png"); k.Scale != DefaultScale {
		t.Errorf("png key scale = %g", k.Scale)
	}
}

func TestRunner_ExecuteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, quietLogger())
	opts := Options{Formats: []string{"svg", "dot", "json"}}

	first, err := r.Execute(ctx, loadThreeTier(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.RoutedHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if len(first.Routed.Routes) != 3 {
		t.Errorf("routes = %d, want 3", len(first.Routed.Routes))
	}
	for _, f := range opts.Formats {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}

	second, err := r.Execute(ctx, loadThreeTier(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.RoutedHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if first.DiagramHash != second.DiagramHash {
		t.Error("hash changed between identical runs")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, loadThreeTier(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if third.CacheInfo.RoutedHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run hit the cache: %+v", third.CacheInfo)
	}
}

func TestRunner_RoutingOptionsChangeKey(t *testing.T) {
	ctx := context.Background()
	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, quietLogger())

	if _, err := r.Execute(ctx, loadThreeTier(t), Options{}); err != nil {
		t.Fatal(err)
	}
	opts := Options{}
	opts.Routing.StemLen = 30
	res, err := r.Execute(ctx, loadThreeTier(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RoutedHit {
		t.Error("changed stem length reused a cached route")
	}
}

func TestRunner_GraphvizEngine(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	ctx := context.Background()
	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, quietLogger())

	native, err := r.Execute(ctx, loadThreeTier(t), Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("Execute(native) error: %v", err)
	}
	gv, err := r.Execute(ctx, loadThreeTier(t), Options{Formats: []string{"svg"}, Engine: render.EngineGraphviz})
	if err != nil {
		t.Fatalf("Execute(graphviz) error: %v", err)
	}
	if gv.CacheInfo.RenderHit {
		t.Error("graphviz run reused the native svg from the cache")
	}
	svg := gv.Artifacts["svg"]
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Fatalf("graphviz output is not svg: %.80s", svg)
	}
	if bytes.Equal(svg, native.Artifacts["svg"]) {
		t.Error("graphviz and native engines produced the same bytes")
	}
}

func TestOptions_Engine(t *testing.T) {
	opts := Options{Engine: "cairo"}
	if err := opts.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Validate(engine cairo) = %v, want INVALID_INPUT", err)
	}

	opts = Options{Engine: render.EngineGraphviz}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if k := opts.ArtifactKeyOpts("svg"); k.Engine != render.EngineGraphviz {
		t.Errorf("svg key engine = %q", k.Engine)
	}
	if k := opts.ArtifactKeyOpts("png"); k.Engine != "" {
		t.Errorf("png key should ignore the engine, got %q", k.Engine)
	}
	var native Options
	_ = native.Validate()
	if native.Engine != render.EngineNative || native.ArtifactKeyOpts("svg").Engine != "" {
		t.Errorf("native defaults = %q, key %+v", native.Engine, native.ArtifactKeyOpts("svg"))
	}
}

func TestRunner_Errors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	_, err := r.Execute(ctx, loadThreeTier(t), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}

	d := loadThreeTier(t)
	d.Nodes["web"] = diagram.Node{ID: "web", ParentID: "ghost"}
	_, err = r.Execute(ctx, d, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("bad diagram error = %v", err)
	}
}

func TestRunner_RouteDoesNotMutateInput(t *testing.T) {
	d := loadThreeTier(t)
	before, _ := DiagramHash(d)
	rd, err := NewRunner(nil, nil, quietLogger()).Route(context.Background(), d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rd.Diagram == d {
		t.Error("routed document shares the input diagram")
	}
	after, _ := DiagramHash(d)
	if before != after {
		t.Error("Route() modified its input")
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.yaml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := ExpandPaths([]string{dir, filepath.Join(dir, "b.json")})
	if err != nil {
		t.Fatalf("ExpandPaths() error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.json")}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandPaths() = %v, want %v", got, want)
	}

	if _, err := ExpandPaths([]string{filepath.Join(dir, "missing.json")}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing path error = %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	bad := loadThreeTier(t)
	bad.Nodes["db"] = diagram.Node{ID: "db", ParentID: "db"}
	jobs := []Job{
		{Path: "ok-1", Diagram: loadThreeTier(t)},
		{Path: "bad", Diagram: bad},
		{Path: "ok-2", Diagram: loadThreeTier(t)},
	}

	results, err := NewRunner(nil, nil, quietLogger()).RunBatch(context.Background(), jobs, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatalf("RunBatch() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, res := range results {
		if res.Path != jobs[i].Path {
			t.Errorf("results[%d] = %s, want %s", i, res.Path, jobs[i].Path)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("good jobs failed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("cyclic job should fail")
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, quietLogger()).RunBatch(ctx, []Job{{Path: "x", Diagram: loadThreeTier(t)}}, Options{})
	if err == nil {
		t.Error("RunBatch() on a cancelled context should fail")
	}
}
