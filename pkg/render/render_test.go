package render

import (
	"bytes"
	"context"
	"image/png"
	"slices"
	"strings"
	"testing"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// sample is two icons inside a VPC joined by one straight connector.
func sample(t *testing.T) *diagram.Routed {
	t.Helper()
	d := diagram.New("sample")
	d.Nodes["vpc"] = diagram.Node{ID: "vpc", Type: diagram.TypeVPC, Label: "vpc",
		Position: diagram.Position{X: -20, Y: -40}, Size: diagram.Size{Width: 280, Height: 100}}
	d.Nodes["a"] = diagram.Node{ID: "a", Type: "ec2", Label: "web", ParentID: "vpc",
		Size: diagram.Size{Width: 40, Height: 40}}
	d.Nodes["b"] = diagram.Node{ID: "b", Type: "rds", Label: "db", ParentID: "vpc",
		Position: diagram.Position{X: 200}, Size: diagram.Size{Width: 40, Height: 40}}
	d.Edges["e1"] = diagram.Edge{ID: "e1", Type: diagram.EdgeConnection, SourceNodeID: "a", TargetNodeID: "b", Label: "tcp/5432"}
	r := diagram.Route(d, route.New(route.DefaultOptions(), nil))
	want := []geom.Point{{X: 40, Y: 20}, {X: 60, Y: 20}, {X: 180, Y: 20}, {X: 200, Y: 20}}
	if got := r.Routes["e1"].Waypoints; !slices.Equal(got, want) {
		t.Fatalf("route = %v, want %v", got, want)
	}
	return r
}

func TestArrowHead(t *testing.T) {
	tests := []struct {
		name      string
		prev, tip geom.Point
		want      [3]geom.Point
	}{
		{"right", geom.Pt(0, 0), geom.Pt(20, 0), [3]geom.Point{{X: 20, Y: 0}, {X: 12, Y: -4}, {X: 12, Y: 4}}},
		{"down", geom.Pt(0, 0), geom.Pt(0, 20), [3]geom.Point{{X: 0, Y: 20}, {X: 4, Y: 12}, {X: -4, Y: 12}}},
		{"degenerate", geom.Pt(5, 5), geom.Pt(5, 5), [3]geom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := arrowHead(tt.prev, tt.tip, 8); got != tt.want {
				t.Errorf("arrowHead() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabelAnchor(t *testing.T) {
	path := []geom.Point{{X: 0, Y: 0}, {X: 0, Y: -20}, {X: 100, Y: -20}, {X: 100, Y: 120}, {X: 120, Y: 120}}
	if got := labelAnchor(path); got != geom.Pt(100, 50) {
		t.Errorf("labelAnchor() = %v, want (100,50)", got)
	}
}

func TestDrawOrder(t *testing.T) {
	r := sample(t)
	if got := drawOrder(r.Diagram); !slices.Equal(got, []string{"vpc", "a", "b"}) {
		t.Errorf("drawOrder() = %v", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sample(t), WithEdgeLabels()))

	checks := []string{
		`width="328" height="162"`,
		`<polyline id="edge-e1"`,
		`points="84.0,84.0 104.0,84.0 224.0,84.0 244.0,84.0"`,
		`<polygon points="244.0,84.0 236.0,80.0 236.0,88.0"`,
		`>tcp/5432</text>`,
		`id="node-vpc" class="container"`,
	}
	for _, want := range checks {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	// Icons are drawn after the connector.
	if strings.Index(svg, `id="node-a"`) < strings.Index(svg, `id="edge-e1"`) {
		t.Error("icon drawn before connector")
	}
	if strings.Contains(svg, "<script") {
		t.Error("interaction script emitted without WithInteraction")
	}
}

func TestRenderSVG_Options(t *testing.T) {
	svg := string(RenderSVG(sample(t), WithoutLabels(), WithInteraction(), WithSelected("a")))
	if strings.Contains(svg, ">web</text>") {
		t.Error("label drawn with WithoutLabels")
	}
	if !strings.Contains(svg, "<script") {
		t.Error("WithInteraction did not add the script")
	}
	if !strings.Contains(svg, `stroke-width="3.0"`) {
		t.Error("selected icon not emphasised")
	}
}

func TestRenderSVG_EscapesLabels(t *testing.T) {
	r := sample(t)
	n := r.Diagram.Nodes["a"]
	n.Label = `<web & "api">`
	r.Diagram.Nodes["a"] = n
	svg := string(RenderSVG(r))
	if strings.Contains(svg, `<web &`) {
		t.Error("label not escaped")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(sample(t), WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 328 || b.Dy() != 162 {
		t.Errorf("size = %dx%d, want 328x162", b.Dx(), b.Dy())
	}
	if _, err := RenderPNG(sample(t), WithScale(0)); err == nil {
		t.Error("RenderPNG(scale 0) succeeded")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(t))
	checks := []string{
		`"a" [label="web", pos="64.0,78.0!"`,
		`width=0.556`,
		`"a" -> "b" [id="e1", pos="e,244.0,78.0 84.0,78.0`,
		`label="tcp/5432"`,
	}
	for _, want := range checks {
		if !strings.Contains(dot, want) {
			t.Errorf("dot missing %q\n%s", want, dot)
		}
	}
}

func TestSplinePos(t *testing.T) {
	wp := []geom.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 40}}
	id := func(p geom.Point) geom.Point { return p }
	got := splinePos(wp, id)
	want := "e,20.0,40.0 0.0,0.0 0.0,0.0 20.0,0.0 20.0,0.0 20.0,0.0 20.0,32.0 20.0,32.0"
	if got != want {
		t.Errorf("splinePos() = %q, want %q", got, want)
	}
	if n := len(strings.Fields(got)) - 1; (n-1)%3 != 0 {
		t.Errorf("%d control points is not 3k+1", n)
	}
}

func TestRenderDOTSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderDOTSVG(t.Context(), ToDOT(sample(t)))
	if err != nil {
		t.Fatalf("RenderDOTSVG: %v", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(svg), []byte("<")) || !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("not an svg document: %.80s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
}

func TestRenderASCII(t *testing.T) {
	c := RenderASCII(sample(t))
	lines := c.Lines()
	if len(lines) != 10 {
		t.Fatalf("rows = %d, want 10\n%s", len(lines), c)
	}
	row := lines[4]
	if !strings.Contains(row, "|web |") {
		t.Errorf("source icon missing in %q", row)
	}
	if !strings.Contains(row, "->|db") {
		t.Errorf("arrow into target missing in %q", row)
	}
	if !strings.Contains(lines[1], " vpc ") {
		t.Errorf("container label missing in %q", lines[1])
	}

	marked := RenderASCII(sample(t), WithMarked("b")).Lines()
	if !strings.Contains(marked[3], "######") {
		t.Errorf("marked border missing in %q", marked[3])
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(-1, 0, 'x')
	c.Set(9, 9, 'x')
	c.Text(1, 1, "abcdef")
	if got := c.String(); got != "\n abc\n" {
		t.Errorf("String() = %q", got)
	}
	if c.At(2, 1) != 'b' || c.At(10, 10) != ' ' {
		t.Error("At() returned the wrong rune")
	}
}

func TestToPDF_MissingConverter(t *testing.T) {
	old := rsvgBinary
	rsvgBinary = "orthoroute-no-such-converter"
	defer func() { rsvgBinary = old }()

	_, err := ToPDF(context.Background(), RenderSVG(sample(t)))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("ToPDF() = %v, want UNSUPPORTED", err)
	}
	if !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("error %q does not name librsvg", err)
	}
}
