package route

import (
	"fmt"
	"math"
	"slices"

	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// Rule names reported in a [Violation].
const (
	RuleOrthogonal = "orthogonal"
	RuleReversal   = "reversal"
	RuleStem       = "stem"
	RulePort       = "port"
	RulePortGap    = "port-gap"
)

// Violation describes one broken route invariant.
type Violation struct {
	EdgeID string `json:"edgeId,omitempty"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	if v.EdgeID == "" {
		return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", v.EdgeID, v.Rule, v.Detail)
}

// Validate checks the per-route invariants of e: axis-aligned segments, no
// reversals, and stems of at least opts.StemLen leaving the chosen sides of
// the endpoint rectangles perpendicularly. rects maps node IDs to their
// geometry; endpoints missing from it are not checked for port placement.
// Empty routes have nothing to check.
func Validate(e RoutedEdge, rects map[string]geom.Rect, opts Options) []Violation {
	pts := e.Waypoints
	if len(pts) == 0 {
		return nil
	}
	var out []Violation
	add := func(rule, format string, args ...any) {
		out = append(out, Violation{EdgeID: e.EdgeID, Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	if len(pts) < 3 {
		add(RuleStem, "route has %d points", len(pts))
		return out
	}
	for i := 0; i+1 < len(pts); i++ {
		if !geom.Seg(pts[i], pts[i+1]).AxisAligned() {
			add(RuleOrthogonal, "segment %d %s-%s", i, pts[i], pts[i+1])
		}
	}
	if geom.HasReversal(pts) {
		add(RuleReversal, "route doubles back on itself")
	}
	if !stemValid(pts[0], pts[1], e.SrcSide, opts.StemLen) {
		add(RuleStem, "source stem %s-%s does not leave %s by %g", pts[0], pts[1], e.SrcSide, opts.StemLen)
	}
	n := len(pts)
	if !stemValid(pts[n-1], pts[n-2], e.DstSide, opts.StemLen) {
		add(RuleStem, "target stem %s-%s does not leave %s by %g", pts[n-1], pts[n-2], e.DstSide, opts.StemLen)
	}
	if r, ok := rects[e.SourceNodeID]; ok && !onSide(r, e.SrcSide, pts[0]) {
		add(RulePort, "source port %s is not on the %s side", pts[0], e.SrcSide)
	}
	if r, ok := rects[e.TargetNodeID]; ok && !onSide(r, e.DstSide, pts[n-1]) {
		add(RulePort, "target port %s is not on the %s side", pts[n-1], e.DstSide)
	}
	return out
}

// CheckPorts reports node sides where two committed ports are closer than
// opts.PortGap. Such pairs only arise from the port tracker's fallback
// when a side is full.
func CheckPorts(edges []RoutedEdge, opts Options) []Violation {
	keys, groups := groupEndpoints(edges)
	var out []Violation
	for _, k := range keys {
		members := groups[k]
		if len(members) < 2 {
			continue
		}
		offs := make([]float64, len(members))
		for i, m := range members {
			offs[i] = memberOffset(edges[m.edge], m.dst)
		}
		slices.Sort(offs)
		for i := 0; i+1 < len(offs); i++ {
			if gap := offs[i+1] - offs[i]; gap < opts.PortGap-geom.Eps {
				out = append(out, Violation{
					Rule:   RulePortGap,
					Detail: fmt.Sprintf("%s: offsets %g and %g are %g apart", k, offs[i], offs[i+1], gap),
				})
			}
		}
	}
	return out
}

func stemsValid(pts []geom.Point, src, dst geom.Side, stemLen float64) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	return stemValid(pts[0], pts[1], src, stemLen) && stemValid(pts[n-1], pts[n-2], dst, stemLen)
}

// stemValid reports whether port→next leaves side outward by at least
// stemLen.
func stemValid(port, next geom.Point, side geom.Side, stemLen float64) bool {
	dx, dy := geom.Seg(port, next).Dir()
	nx, ny := side.Normal()
	return dx == nx && dy == ny && geom.Manhattan(port, next) >= stemLen-geom.Eps
}

// onSide reports whether p lies on side s of r.
func onSide(r geom.Rect, s geom.Side, p geom.Point) bool {
	mid := r.SideMid(s)
	n, t := s.NormalAxis(), s.Tangent()
	if math.Abs(p.Coord(n)-mid.Coord(n)) > geom.Eps {
		return false
	}
	half := r.SideLength(s) / 2
	return math.Abs(p.Coord(t)-mid.Coord(t)) <= half+geom.Eps
}
