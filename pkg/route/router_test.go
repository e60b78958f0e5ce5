package route

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

func icon(id string, x, y, w, h float64) Node {
	return Node{ID: id, Rect: geom.Rect{X: x, Y: y, W: w, H: h}}
}

func searchOnly() Options {
	opts := DefaultOptions()
	opts.CenterPorts = false
	opts.AlignElbows = false
	return opts
}

func TestRoute_StraightLine(t *testing.T) {
	nodes := []Node{icon("A", 0, 0, 40, 40), icon("B", 200, 0, 40, 40)}
	res := New(DefaultOptions(), nil).Route(nodes, []Edge{{ID: "e", Source: "A", Target: "B"}})

	e := res.Edges[0]
	if e.SrcSide != geom.Right || e.DstSide != geom.Left {
		t.Errorf("sides = %s->%s, want right->left", e.SrcSide, e.DstSide)
	}
	if e.Bends() != 0 {
		t.Errorf("Bends() = %d, want 0", e.Bends())
	}
	for _, p := range e.Waypoints {
		if p.Y != 20 {
			t.Errorf("waypoint %s is off y=20", p)
		}
	}
	if !e.Waypoints[0].Eq(geom.Pt(40, 20)) || !e.Waypoints[len(e.Waypoints)-1].Eq(geom.Pt(200, 20)) {
		t.Errorf("waypoints = %v", e.Waypoints)
	}
	if res.Stats.Hits != 0 {
		t.Errorf("Stats.Hits = %d, want 0", res.Stats.Hits)
	}
}

func TestRoute_AroundObstacle(t *testing.T) {
	nodes := []Node{
		icon("A", 0, 0, 40, 40),
		icon("B", 200, 0, 40, 40),
		icon("C", 90, -10, 40, 60),
	}
	p := NewPass(DefaultOptions())
	res := New(DefaultOptions(), nil).RoutePass(p, nodes, []Edge{{ID: "e", Source: "A", Target: "B"}})

	e := res.Edges[0]
	if got := p.hits(e.Waypoints, "A", "B"); got != 0 {
		t.Errorf("hits = %d, want 0", got)
	}
	if e.Bends() < 1 {
		t.Errorf("Bends() = %d, want >= 1", e.Bends())
	}
	// Leaving and entering through the top is the first of the shortest
	// two-bend detours.
	if e.SrcSide != geom.Top || e.DstSide != geom.Top {
		t.Errorf("sides = %s->%s, want top->top", e.SrcSide, e.DstSide)
	}
	if e.Waypoints[2].Y != -20 {
		t.Errorf("detour runs at y=%g, want -20", e.Waypoints[2].Y)
	}
}

func TestRoute_SharedSidePorts(t *testing.T) {
	nodes := []Node{
		icon("N", 300, 0, 40, 200),
		// Blockers just outside N's top and bottom stems.
		icon("T", 300, -60, 40, 40),
		icon("U", 300, 220, 40, 40),
		icon("S1", 0, 80, 40, 40),
		icon("S2", 0, -120, 40, 40),
		icon("S3", 0, 260, 40, 40),
	}
	edges := []Edge{
		{ID: "e2", Source: "S2", Target: "N"},
		{ID: "e3", Source: "S3", Target: "N"},
		{ID: "e1", Source: "S1", Target: "N"},
	}
	res := New(searchOnly(), nil).Route(nodes, edges)

	var offs []float64
	for _, e := range res.Edges {
		if e.DstSide != geom.Left {
			t.Fatalf("%s enters N through %s, want left", e.EdgeID, e.DstSide)
		}
		offs = append(offs, e.DstOffset)
	}
	if res.Edges[2].DstOffset != 0 {
		t.Errorf("shortest edge offset = %g, want 0", res.Edges[2].DstOffset)
	}
	slices.Sort(offs)
	for i := 0; i+1 < len(offs); i++ {
		if offs[i+1]-offs[i] < DefaultPortGap {
			t.Errorf("offsets %v closer than %g", offs, DefaultPortGap)
		}
	}
	if v := CheckPorts(res.Edges, searchOnly()); len(v) != 0 {
		t.Errorf("CheckPorts() = %v", v)
	}
}

func TestRoute_MinimisesHitsFirst(t *testing.T) {
	nodes := []Node{
		icon("A", 0, 0, 40, 40),
		icon("B", 300, 0, 40, 40),
		// A ring of blockers whose margins cover every stem point of A.
		icon("top", -40, -40, 120, 15),
		icon("bottom", -40, 65, 120, 15),
		icon("left", -40, -40, 15, 120),
		icon("right", 65, -40, 15, 120),
	}
	opts := DefaultOptions()
	p := NewPass(opts)
	res := New(opts, nil).RoutePass(p, nodes, []Edge{{ID: "e", Source: "A", Target: "B"}})
	chosen := res.Edges[0]
	if chosen.Empty() {
		t.Fatal("edge was not routed")
	}

	others, own := p.obstacles("A", "B")
	var best Score
	found := false
	for _, ss := range geom.Sides {
		for _, ds := range geom.Sides {
			sp := geom.SidePoint(p.rects["A"], ss, 0)
			dp := geom.SidePoint(p.rects["B"], ds, 0)
			for _, c := range Generate(sp, ss, dp, ds, others, own, opts) {
				if !geom.Orthogonal(c.Path) || geom.HasReversal(c.Path) {
					continue
				}
				if c.Hits == 0 {
					t.Fatalf("candidate %v avoids every blocker", c.Path)
				}
				sc := Score{Hits: c.Hits, Bends: geom.Bends(c.Path), Length: geom.Length(c.Path)}
				if !found || sc.Less(best) {
					best, found = sc, true
				}
			}
		}
	}

	got := Score{Hits: p.hits(chosen.Waypoints, "A", "B"), Bends: chosen.Bends(), Length: chosen.Length()}
	if got.Hits != best.Hits {
		t.Errorf("chosen hits = %d, want minimum %d", got.Hits, best.Hits)
	}
	if best.Less(got) {
		t.Errorf("chosen score %+v is worse than %+v", got, best)
	}
}

func TestRoute_Deterministic(t *testing.T) {
	nodes, edges := sampleDiagram()
	r := New(DefaultOptions(), nil)
	first := r.Route(nodes, edges)
	for i := 0; i < 5; i++ {
		if got := r.Route(nodes, edges); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from the first run", i+1)
		}
	}
}

func TestRoute_Invariants(t *testing.T) {
	nodes, edges := sampleDiagram()
	opts := DefaultOptions()
	res := New(opts, nil).Route(nodes, edges)

	rects := make(map[string]geom.Rect)
	for _, n := range nodes {
		rects[n.ID] = n.Rect
	}
	for _, e := range res.Edges {
		if e.Empty() {
			t.Errorf("%s was not routed", e.EdgeID)
			continue
		}
		for _, v := range Validate(e, rects, opts) {
			t.Errorf("%s", v)
		}
	}
	for _, v := range CheckPorts(res.Edges, opts) {
		t.Errorf("%s", v)
	}
	if res.Stats.Routed != len(edges) {
		t.Errorf("Stats.Routed = %d, want %d", res.Stats.Routed, len(edges))
	}
}

// intoN routes one edge from every source into a 40x40 node N, whose sides
// hold three spaced ports each.
func intoN(opts Options, sources []Node) ([]RoutedEdge, map[geom.Side]int) {
	nodes := append([]Node{icon("N", 400, 400, 40, 40)}, sources...)
	edges := make([]Edge, len(sources))
	for i, s := range sources {
		edges[i] = Edge{ID: "e-" + s.ID, Source: s.ID, Target: "N"}
	}
	res := New(opts, nil).Route(nodes, edges)
	perSide := make(map[geom.Side]int)
	for _, e := range res.Edges {
		if !e.Empty() {
			perSide[e.DstSide]++
		}
	}
	return res.Edges, perSide
}

func TestRoute_FullSideSpills(t *testing.T) {
	var sources []Node
	for i := range 5 {
		sources = append(sources, icon(fmt.Sprintf("S%d", i), 0, 280+float64(i)*60, 40, 40))
	}
	for name, opts := range map[string]Options{"search only": searchOnly(), "default": DefaultOptions()} {
		t.Run(name, func(t *testing.T) {
			edges, perSide := intoN(opts, sources)
			for _, e := range edges {
				if e.Empty() {
					t.Errorf("%s was not routed", e.EdgeID)
				}
			}
			if v := CheckPorts(edges, opts); len(v) != 0 {
				t.Errorf("CheckPorts() = %v, sides used %v", v, perSide)
			}
			if len(perSide) < 2 {
				t.Errorf("all connectors share one side: %v", perSide)
			}
		})
	}
}

func TestRoute_CrowdsOnlyWhenEverySideIsFull(t *testing.T) {
	var sources []Node
	for i := range 13 {
		a := 2 * math.Pi * float64(i) / 13
		sources = append(sources, icon(fmt.Sprintf("R%02d", i), 400+400*math.Cos(a), 400+400*math.Sin(a), 40, 40))
	}
	edges, perSide := intoN(searchOnly(), sources)
	for _, e := range edges {
		if e.Empty() {
			t.Errorf("%s was not routed", e.EdgeID)
		}
	}
	for _, side := range geom.Sides {
		if perSide[side] < 3 {
			t.Errorf("side %s holds %d connectors, want all sides full before crowding: %v", side, perSide[side], perSide)
		}
	}
	if v := CheckPorts(edges, searchOnly()); len(v) == 0 {
		t.Error("CheckPorts() found no crowded side with 13 connectors on a 40px icon")
	}
}

func TestRoute_ObstacleAvoidance(t *testing.T) {
	nodes, edges := sampleDiagram()
	p := NewPass(DefaultOptions())
	res := New(DefaultOptions(), nil).RoutePass(p, nodes, edges)
	for _, e := range res.Edges {
		if h := p.hits(e.Waypoints, e.SourceNodeID, e.TargetNodeID); h != 0 {
			t.Errorf("%s has %d hits in an open layout", e.EdgeID, h)
		}
	}
}

func TestRoute_DanglingEdge(t *testing.T) {
	nodes := []Node{icon("A", 0, 0, 40, 40), icon("B", 200, 0, 40, 40)}
	edges := []Edge{
		{ID: "bad", Source: "A", Target: "ghost"},
		{ID: "good", Source: "A", Target: "B"},
	}
	res := New(DefaultOptions(), nil).Route(nodes, edges)

	if !res.Edges[0].Empty() {
		t.Errorf("dangling edge has waypoints %v", res.Edges[0].Waypoints)
	}
	if res.Edges[0].EdgeID != "bad" {
		t.Errorf("Edges[0].EdgeID = %q, want bad", res.Edges[0].EdgeID)
	}
	if res.Edges[1].Empty() {
		t.Error("valid edge was not routed")
	}
	if !slices.Equal(res.Dangling, []string{"bad"}) {
		t.Errorf("Dangling = %v, want [bad]", res.Dangling)
	}
	if res.Stats.Empty != 1 || res.Stats.Routed != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestRoute_SelfLoop(t *testing.T) {
	nodes := []Node{icon("A", 0, 0, 60, 60)}
	opts := DefaultOptions()
	res := New(opts, nil).Route(nodes, []Edge{{ID: "loop", Source: "A", Target: "A"}})
	e := res.Edges[0]
	if e.Empty() {
		t.Fatal("self-loop was not routed")
	}
	if v := Validate(e, map[string]geom.Rect{"A": nodes[0].Rect}, opts); len(v) != 0 {
		t.Errorf("Validate() = %v", v)
	}
}

func TestRoute_ContainersAreNotObstacles(t *testing.T) {
	nodes := []Node{
		{ID: "vpc", Container: true, Rect: geom.Rect{X: -50, Y: -50, W: 400, H: 200}},
		icon("A", 0, 0, 40, 40),
		icon("B", 200, 0, 40, 40),
	}
	res := New(DefaultOptions(), nil).Route(nodes, []Edge{{ID: "e", Source: "A", Target: "B"}})
	if res.Edges[0].Bends() != 0 {
		t.Errorf("Bends() = %d, want a straight route through the container", res.Edges[0].Bends())
	}
}

func TestRoute_EdgeToContainer(t *testing.T) {
	nodes := []Node{
		{ID: "subnet", Container: true, Rect: geom.Rect{X: 100, Y: 0, W: 200, H: 100}},
		icon("A", 0, 30, 40, 40),
	}
	opts := DefaultOptions()
	res := New(opts, nil).Route(nodes, []Edge{{ID: "e", Source: "A", Target: "subnet"}})
	e := res.Edges[0]
	if e.Empty() {
		t.Fatal("edge to container was not routed")
	}
	rects := map[string]geom.Rect{"subnet": nodes[0].Rect, "A": nodes[1].Rect}
	if v := Validate(e, rects, opts); len(v) != 0 {
		t.Errorf("Validate() = %v", v)
	}
}

func TestRoute_ShortestFirst(t *testing.T) {
	// Both edges want N's left midpoint; the nearer source gets it.
	nodes := []Node{
		icon("N", 300, 0, 40, 120),
		icon("far", -200, 40, 40, 40),
		icon("near", 100, 40, 40, 40),
	}
	edges := []Edge{
		{ID: "far", Source: "far", Target: "N"},
		{ID: "near", Source: "near", Target: "N"},
	}
	res := New(searchOnly(), nil).Route(nodes, edges)
	near := res.Edges[1]
	if near.DstSide != geom.Left || near.DstOffset != 0 || near.Bends() != 0 {
		t.Errorf("near edge = %s offset %g bends %d, want straight into left midpoint",
			near.DstSide, near.DstOffset, near.Bends())
	}
}

func TestScoreLess(t *testing.T) {
	tests := []struct {
		a, b Score
		want bool
	}{
		{Score{Hits: 0, Bends: 5}, Score{Hits: 1, Bends: 0}, true},
		{Score{Bends: 1, Crossings: 3}, Score{Bends: 2}, true},
		{Score{Crossings: 0, Length: 500}, Score{Crossings: 1, Length: 10}, true},
		{Score{Length: 10}, Score{Length: 10}, false},
		{Score{Length: 11}, Score{Length: 10}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%+v.Less(%+v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPathCrossings(t *testing.T) {
	a := []geom.Point{geom.Pt(0, 50), geom.Pt(20, 50), geom.Pt(100, 50), geom.Pt(120, 50)}
	b := []geom.Point{geom.Pt(60, 0), geom.Pt(60, 20), geom.Pt(60, 80), geom.Pt(60, 100)}
	if got := pathCrossings(a, b); got != 1 {
		t.Errorf("pathCrossings(cross) = %d, want 1", got)
	}
	// Passing through a corner of the other path counts once.
	c := []geom.Point{geom.Pt(20, 0), geom.Pt(20, 20), geom.Pt(20, 80), geom.Pt(20, 100)}
	if got := pathCrossings(a, c); got != 1 {
		t.Errorf("pathCrossings(corner) = %d, want 1", got)
	}
	d := []geom.Point{geom.Pt(40, 30), geom.Pt(40, 50), geom.Pt(80, 50), geom.Pt(80, 30)}
	if got := pathCrossings(a, d); got < 1 {
		t.Errorf("pathCrossings(overlap) = %d, want >= 1", got)
	}
	if got := pathCrossings(a, []geom.Point{geom.Pt(0, 200), geom.Pt(50, 200)}); got != 0 {
		t.Errorf("pathCrossings(disjoint) = %d, want 0", got)
	}
}

// sampleDiagram is a small three-tier layout with room between every icon.
func sampleDiagram() ([]Node, []Edge) {
	nodes := []Node{
		{ID: "vpc", Container: true, Rect: geom.Rect{X: -40, Y: -40, W: 640, H: 480}},
		icon("alb", 260, 0, 48, 48),
		icon("web1", 100, 160, 48, 48),
		icon("web2", 260, 160, 48, 48),
		icon("web3", 420, 160, 48, 48),
		icon("db", 260, 340, 48, 48),
		icon("cache", 480, 340, 48, 48),
	}
	edges := []Edge{
		{ID: "e1", Source: "alb", Target: "web1"},
		{ID: "e2", Source: "alb", Target: "web2"},
		{ID: "e3", Source: "alb", Target: "web3"},
		{ID: "e4", Source: "web1", Target: "db"},
		{ID: "e5", Source: "web2", Target: "db"},
		{ID: "e6", Source: "web3", Target: "db"},
		{ID: "e7", Source: "web3", Target: "cache"},
	}
	return nodes, edges
}
