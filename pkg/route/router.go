package route

import (
	"math"
	"slices"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// Pass is the routing context of one pass: the port tracker, the paths
// committed so far (used to count crossings) and the node geometry. A Pass
// is created per pass and thrown away afterwards; nothing in it is valid for
// a different snapshot of the diagram.
type Pass struct {
	Options Options
	Ports   *PortTracker

	committed [][]geom.Point
	rects     map[string]geom.Rect
	leaf      map[string]bool
	icons     []IconRect
}

// NewPass creates an empty routing context.
func NewPass(opts Options) *Pass {
	return &Pass{
		Options: opts,
		Ports:   NewPortTracker(opts.PortGap, opts.SideInset),
		rects:   make(map[string]geom.Rect),
		leaf:    make(map[string]bool),
	}
}

// Committed returns the number of paths committed in this pass.
func (p *Pass) Committed() int { return len(p.committed) }

func (p *Pass) load(nodes []Node) {
	for _, n := range nodes {
		if _, dup := p.rects[n.ID]; dup {
			continue
		}
		p.rects[n.ID] = n.Rect
		if icon, ok := NodeIconRect(n); ok {
			p.leaf[n.ID] = true
			p.icons = append(p.icons, icon)
		}
	}
}

// obstacles returns the icons an edge between a and b must avoid, and the
// leaf endpoint icons it must not tunnel through.
func (p *Pass) obstacles(a, b string) (others, own []geom.Rect) {
	for _, ic := range p.icons {
		if ic.NodeID == a || ic.NodeID == b {
			continue
		}
		others = append(others, ic.Rect)
	}
	if p.leaf[a] {
		own = append(own, p.rects[a])
	}
	if p.leaf[b] && b != a {
		own = append(own, p.rects[b])
	}
	return others, own
}

// hits scores a finished path of the edge between a and b.
func (p *Pass) hits(path []geom.Point, a, b string) int {
	others, own := p.obstacles(a, b)
	expanded := make([]geom.Rect, len(others))
	for i, r := range others {
		expanded[i] = r.Expand(p.Options.ObstacleMargin)
	}
	return countHits(path, expanded, own)
}

// crossings counts crossings between path and every committed path.
func (p *Pass) crossings(path []geom.Point) int {
	n := 0
	for _, other := range p.committed {
		n += pathCrossings(path, other)
	}
	return n
}

// pathCrossings counts the distinct points where a and b meet at a right
// angle plus every stretch where they run on top of each other.
func pathCrossings(a, b []geom.Point) int {
	var points []geom.Point
	overlaps := 0
	for i := 0; i+1 < len(a); i++ {
		sa := geom.Seg(a[i], a[i+1])
		for j := 0; j+1 < len(b); j++ {
			sb := geom.Seg(b[j], b[j+1])
			if sa.Overlaps(sb) {
				overlaps++
				continue
			}
			if pt, ok := sa.Intersection(sb); ok && !slices.ContainsFunc(points, pt.Eq) {
				points = append(points, pt)
			}
		}
	}
	return len(points) + overlaps
}

// Result is the outcome of one routing pass. Edges has one entry per input
// edge, in input order.
type Result struct {
	Edges    []RoutedEdge `json:"edges" msgpack:"edges"`
	Dangling []string     `json:"dangling,omitempty" msgpack:"dangling,omitempty"`
	Stats    Stats        `json:"stats" msgpack:"stats"`
}

// Stats summarises a pass.
type Stats struct {
	Edges          int `json:"edges" msgpack:"edges"`
	Routed         int `json:"routed" msgpack:"routed"`
	Empty          int `json:"empty" msgpack:"empty"`
	Candidates     int `json:"candidates" msgpack:"candidates"`
	Hits           int `json:"hits" msgpack:"hits"`
	Bends          int `json:"bends" msgpack:"bends"`
	Crossings      int `json:"crossings" msgpack:"crossings"`
	CenteredGroups int `json:"centeredGroups" msgpack:"centeredGroups"`
	AlignedGroups  int `json:"alignedGroups" msgpack:"alignedGroups"`
}

// Router routes all edges of a diagram snapshot.
//
// Router holds configuration only; every call to Route builds a fresh
// [Pass], so a Router may be shared between goroutines.
type Router struct {
	Options Options
	Logger  *log.Logger
}

// New creates a router with the given options and logger. A nil logger
// discards debug output via log.Default().
func New(opts Options, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{Options: opts, Logger: logger}
}

func (r *Router) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// Route runs one complete pass over nodes and edges.
func (r *Router) Route(nodes []Node, edges []Edge) Result {
	return r.RoutePass(NewPass(r.Options), nodes, edges)
}

// RoutePass routes edges using the given context and runs the enabled
// post-processing passes on the result.
//
// Edges are routed one at a time in ascending centre-to-centre distance
// (ties keep input order). For each edge all 16 side combinations, every
// proposed port offset pair and every generated shape are scored; the best
// [Score] is committed before the next edge is considered. Edges that
// reference unknown nodes get an empty route and are listed in
// Result.Dangling.
func (r *Router) RoutePass(p *Pass, nodes []Node, edges []Edge) Result {
	p.load(nodes)
	res := Result{Edges: make([]RoutedEdge, len(edges))}
	res.Stats.Edges = len(edges)

	order := make([]int, 0, len(edges))
	dist := make([]float64, len(edges))
	for i, e := range edges {
		res.Edges[i] = RoutedEdge{EdgeID: e.ID, SourceNodeID: e.Source, TargetNodeID: e.Target}
		a, okA := p.rects[e.Source]
		b, okB := p.rects[e.Target]
		if !okA || !okB {
			res.Dangling = append(res.Dangling, e.ID)
			r.logger().Warn("edge references unknown node", "edge", e.ID, "source", e.Source, "target", e.Target)
			continue
		}
		dist[i] = geom.Distance(a.Center(), b.Center())
		order = append(order, i)
	}
	sort.SliceStable(order, func(x, y int) bool { return dist[order[x]] < dist[order[y]] })

	for _, i := range order {
		routed, score, n, ok := r.routeEdge(p, edges[i])
		res.Stats.Candidates += n
		if !ok {
			r.logger().Warn("no candidate survived", "edge", edges[i].ID)
			continue
		}
		res.Edges[i] = routed
		res.Stats.Hits += score.Hits
		r.logger().Debug("routed edge",
			"edge", routed.EdgeID,
			"src", routed.SrcSide,
			"dst", routed.DstSide,
			"hits", score.Hits,
			"bends", score.Bends,
			"crossings", score.Crossings)
	}

	if p.Options.CenterPorts {
		res.Stats.CenteredGroups = CenterPorts(p, res.Edges)
	}
	if p.Options.AlignElbows {
		res.Stats.AlignedGroups = AlignElbows(p, res.Edges)
	}
	r.logger().Debug("post-processed",
		"centered", res.Stats.CenteredGroups,
		"aligned", res.Stats.AlignedGroups)

	for i, e := range res.Edges {
		if e.Empty() {
			res.Stats.Empty++
			continue
		}
		res.Stats.Routed++
		res.Stats.Bends += e.Bends()
		for _, o := range res.Edges[i+1:] {
			res.Stats.Crossings += pathCrossings(e.Waypoints, o.Waypoints)
		}
	}
	return res
}

// routeEdge searches every side pair, offset pair and shape for e and
// commits the winner to p. It returns the number of candidates scored.
//
// Crowded sides, whose only proposal is the tracker's fallback, are left out
// of the first search. They are searched only when no candidate on a spaced
// side survives, so a port lands closer than PortGap to a neighbour only
// when every usable side of an endpoint is full.
func (r *Router) routeEdge(p *Pass, e Edge) (RoutedEdge, Score, int, bool) {
	srcRect, dstRect := p.rects[e.Source], p.rects[e.Target]
	others, own := p.obstacles(e.Source, e.Target)
	selfLoop := e.Source == e.Target

	type proposal struct {
		offs    []float64
		crowded bool
	}
	var srcProps, dstProps [4]proposal
	for i, s := range geom.Sides {
		srcProps[i].offs, srcProps[i].crowded = p.Ports.Propose(e.Source, s, srcRect)
		dstProps[i].offs, dstProps[i].crowded = p.Ports.Propose(e.Target, s, dstRect)
	}

	var (
		best      Score
		bestPath  []geom.Point
		bestSides [2]geom.Side
		bestOffs  [2]float64
		found     bool
		scored    int
	)
	for _, allowCrowded := range []bool{false, true} {
		for si, ss := range geom.Sides {
			if srcProps[si].crowded && !allowCrowded {
				continue
			}
			for di, ds := range geom.Sides {
				if dstProps[di].crowded && !allowCrowded {
					continue
				}
				for _, so := range srcProps[si].offs {
					for _, do := range dstProps[di].offs {
						if selfLoop && ss == ds && math.Abs(so-do) < p.Options.PortGap-geom.Eps {
							continue
						}
						sp := geom.SidePoint(srcRect, ss, so)
						dp := geom.SidePoint(dstRect, ds, do)
						for _, c := range Generate(sp, ss, dp, ds, others, own, p.Options) {
							if !geom.Orthogonal(c.Path) || geom.HasReversal(c.Path) {
								continue
							}
							scored++
							sc := Score{
								Hits:      c.Hits,
								Bends:     geom.Bends(c.Path),
								Crossings: p.crossings(c.Path),
								Length:    geom.Length(c.Path),
							}
							if !found || sc.Less(best) {
								best, bestPath, found = sc, c.Path, true
								bestSides = [2]geom.Side{ss, ds}
								bestOffs = [2]float64{so, do}
							}
						}
					}
				}
			}
		}
		if found {
			break
		}
		r.logger().Debug("searching crowded sides", "edge", e.ID)
	}
	if !found {
		return RoutedEdge{}, Score{}, scored, false
	}

	p.Ports.Commit(e.Source, bestSides[0], bestOffs[0])
	p.Ports.Commit(e.Target, bestSides[1], bestOffs[1])
	p.committed = append(p.committed, bestPath)

	return RoutedEdge{
		EdgeID:       e.ID,
		Waypoints:    geom.Clone(bestPath),
		SrcSide:      bestSides[0],
		DstSide:      bestSides[1],
		SrcOffset:    bestOffs[0],
		DstOffset:    bestOffs[1],
		SourceNodeID: e.Source,
		TargetNodeID: e.Target,
	}, best, scored, true
}
