package render

import (
	"cmp"
	"slices"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// Output formats.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatPDF   = "pdf"
	FormatDOT   = "dot"
	FormatJSON  = "json"
	FormatASCII = "txt"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON, FormatASCII}

// SVG engines. The native engine draws with [RenderSVG]; the graphviz
// engine lays the same routes out as DOT and renders them with
// [RenderDOTSVG]. PDF output converts whichever SVG the engine produced.
const (
	EngineNative   = "native"
	EngineGraphviz = "graphviz"
)

// Engines lists every SVG engine.
var Engines = []string{EngineNative, EngineGraphviz}

const (
	defaultPadding   = 24.0
	defaultArrowSize = 8.0
	labelGap         = 14.0
)

// frame maps diagram coordinates to output coordinates: everything is
// shifted so the routed bounds start at (padding, padding).
type frame struct {
	dx, dy float64
	w, h   float64
}

func newFrame(r *diagram.Routed, padding float64) frame {
	b := r.Bounds()
	// Room for labels drawn under the lowest icons.
	b.H += labelGap
	return frame{
		dx: padding - b.X,
		dy: padding - b.Y,
		w:  b.W + 2*padding,
		h:  b.H + 2*padding,
	}
}

func (f frame) pt(p geom.Point) geom.Point { return geom.Pt(p.X+f.dx, p.Y+f.dy) }

func (f frame) rect(r geom.Rect) geom.Rect {
	return geom.Rect{X: r.X + f.dx, Y: r.Y + f.dy, W: r.W, H: r.H}
}

// arrowHead returns the tip and the two base corners of an arrowhead laid
// along the segment prev→tip.
func arrowHead(prev, tip geom.Point, size float64) [3]geom.Point {
	dx, dy := geom.Seg(prev, tip).Dir()
	if dx == 0 && dy == 0 {
		return [3]geom.Point{tip, tip, tip}
	}
	base := geom.Pt(tip.X-dx*size, tip.Y-dy*size)
	half := size / 2
	return [3]geom.Point{
		tip,
		geom.Pt(base.X+dy*half, base.Y-dx*half),
		geom.Pt(base.X-dy*half, base.Y+dx*half),
	}
}

// labelAnchor returns the midpoint of the longest travel segment.
func labelAnchor(pts []geom.Point) geom.Point {
	segs := geom.Segments(pts)
	if len(segs) == 0 {
		return geom.Point{}
	}
	lo, hi := 0, len(segs)
	if len(segs) > 2 {
		lo, hi = 1, len(segs)-1
	}
	best := segs[lo]
	for _, s := range segs[lo:hi] {
		if s.Len() > best.Len()+geom.Eps {
			best = s
		}
	}
	return geom.Pt((best.A.X+best.B.X)/2, (best.A.Y+best.B.Y)/2)
}

// drawOrder returns node IDs with containers first, outermost to innermost,
// followed by icons; ties are broken by ID.
func drawOrder(d *diagram.Diagram) []string {
	ids := d.NodeIDs()
	depth := make(map[string]int, len(ids))
	for _, id := range ids {
		n := 0
		for cur := d.Nodes[id].ParentID; cur != "" && n <= len(ids); cur = d.Nodes[cur].ParentID {
			n++
		}
		depth[id] = n
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		na, nb := d.Nodes[a], d.Nodes[b]
		if ca, cb := na.IsContainer(), nb.IsContainer(); ca != cb {
			if ca {
				return -1
			}
			return 1
		}
		return cmp.Compare(depth[a], depth[b])
	})
	return ids
}

// routedEdges returns the non-empty routes in edge ID order together with
// their diagram edges.
func routedEdges(r *diagram.Routed) ([]route.RoutedEdge, []diagram.Edge) {
	var routes []route.RoutedEdge
	var edges []diagram.Edge
	for _, e := range r.Ordered() {
		if e.Empty() {
			continue
		}
		routes = append(routes, e)
		edges = append(edges, r.Diagram.Edges[e.EdgeID])
	}
	return routes, edges
}

// =============================================================================
// Palette
// =============================================================================

type style struct {
	stroke string
	fill   string
	dashed bool
}

func containerStyle(t string) style {
	switch t {
	case diagram.TypeAWSCloud:
		return style{stroke: "#232F3E", fill: "none"}
	case diagram.TypeVPC:
		return style{stroke: "#8C4FFF", fill: "none"}
	case diagram.TypeAZ:
		return style{stroke: "#007ACC", fill: "none", dashed: true}
	default:
		return style{stroke: "#7AA116", fill: "#F2F8EA"}
	}
}

func iconStyle(t string) style {
	switch t {
	case "rds", "dynamodb", "elasticache", "redshift", "s3":
		return style{stroke: "#3B48CC", fill: "#FFFFFF"}
	case "alb", "igw", "nat-gateway", "cloudfront", "route53", "api-gateway", "vpc-endpoint", "vpc-peering":
		return style{stroke: "#8C4FFF", fill: "#FFFFFF"}
	case "waf", "acm", "kms":
		return style{stroke: "#DD344C", fill: "#FFFFFF"}
	default:
		return style{stroke: "#ED7100", fill: "#FFFFFF"}
	}
}

func edgeStyle(t string) style {
	switch t {
	case diagram.EdgeDataFlow:
		return style{stroke: "#147EBA", dashed: true}
	case diagram.EdgeUserDefined:
		return style{stroke: "#7D8998"}
	default:
		return style{stroke: "#545B64"}
	}
}
