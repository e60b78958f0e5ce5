package route

import (
	"math"
	"slices"
	"sort"

	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// endpoint is one end of a routed edge, addressed by index into the result.
type endpoint struct {
	edge int
	dst  bool
}

// groupEndpoints buckets the ends of every non-empty route by node side.
// Keys are returned in deterministic order and members in edge order.
func groupEndpoints(edges []RoutedEdge) ([]PortKey, map[PortKey][]endpoint) {
	groups := make(map[PortKey][]endpoint)
	for i, e := range edges {
		if e.Empty() {
			continue
		}
		src := PortKey{e.SourceNodeID, e.SrcSide}
		dst := PortKey{e.TargetNodeID, e.DstSide}
		groups[src] = append(groups[src], endpoint{edge: i})
		groups[dst] = append(groups[dst], endpoint{edge: i, dst: true})
	}
	keys := make([]PortKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, comparePortKeys)
	return keys, groups
}

// CenterPorts re-centres every group of two or more connectors sharing a node
// side on the side midpoint. Groups containing a straight connector are left
// alone because that connector's port is what makes it straight. A shift is
// applied only if it exceeds Options.MinShift and the shifted routes stay
// valid without gaining hits or crossings. It returns the number of groups
// moved.
func CenterPorts(p *Pass, edges []RoutedEdge) int {
	keys, groups := groupEndpoints(edges)
	moved := 0
	for _, k := range keys {
		members := groups[k]
		if len(members) < 2 || hasStraight(edges, members) {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, m := range members {
			o := memberOffset(edges[m.edge], m.dst)
			lo, hi = math.Min(lo, o), math.Max(hi, o)
		}
		half := p.Ports.halfSpan(p.rects[k.NodeID], k.Side)
		shift := -(lo + hi) / 2
		if lo+shift < -half {
			shift = -half - lo
		}
		if hi+shift > half {
			shift = half - hi
		}
		if math.Abs(shift) <= p.Options.MinShift {
			continue
		}

		axis := k.Side.Tangent()
		changed := make(map[int][]geom.Point)
		ok := true
		for _, m := range members {
			pts := working(changed, edges, m.edge)
			n := len(pts)
			if m.dst {
				ok = shiftRun(pts, n-1, axis, shift, 2, n-1)
			} else {
				ok = shiftRun(pts, 0, axis, shift, 0, n-3)
			}
			if !ok {
				break
			}
		}
		if !ok || !p.safe(edges, changed) {
			continue
		}
		apply(edges, changed)
		for _, m := range members {
			e := &edges[m.edge]
			if m.dst {
				p.Ports.shift(k.NodeID, k.Side, e.DstOffset, shift)
				e.DstOffset += shift
			} else {
				p.Ports.shift(k.NodeID, k.Side, e.SrcOffset, shift)
				e.SrcOffset += shift
			}
		}
		moved++
	}
	return moved
}

// AlignElbows snaps the elbows of connectors sharing a node side to a uniform
// Options.ElbowPitch around the group's median distance from the side,
// keeping their current order and at least one stem length from the side.
// Groups spread wider than Options.LoosenessThreshold are left alone, as
// are moves that would break a route or add hits or crossings. It returns
// the number of groups moved.
func AlignElbows(p *Pass, edges []RoutedEdge) int {
	keys, groups := groupEndpoints(edges)
	moved := 0
	for _, k := range keys {
		type elbow struct {
			m     endpoint
			idx   int
			coord float64
		}
		axis := k.Side.NormalAxis()
		var elbows []elbow
		for _, m := range groups[k] {
			pts := edges[m.edge].Waypoints
			if idx, ok := elbowIndex(pts, m.dst); ok {
				elbows = append(elbows, elbow{m: m, idx: idx, coord: pts[idx].Coord(axis)})
			}
		}
		if len(elbows) < 2 {
			continue
		}
		sort.SliceStable(elbows, func(i, j int) bool { return elbows[i].coord < elbows[j].coord })
		first, last := elbows[0].coord, elbows[len(elbows)-1].coord
		if last-first > p.Options.LoosenessThreshold {
			continue
		}

		coords := make([]float64, len(elbows))
		for i, e := range elbows {
			coords[i] = e.coord
		}
		targets := uniformAround(median(coords), len(coords), p.Options.ElbowPitch)

		side := p.rects[k.NodeID].SideMid(k.Side).Coord(axis)
		out := k.Side.Outward()
		near := math.Inf(1)
		for _, t := range targets {
			near = math.Min(near, (t-side)*out)
		}
		if near < p.Options.StemLen {
			for i := range targets {
				targets[i] += (p.Options.StemLen - near) * out
			}
		}

		largest := 0.0
		for i := range targets {
			largest = math.Max(largest, math.Abs(targets[i]-coords[i]))
		}
		if largest <= p.Options.MinShift {
			continue
		}

		changed := make(map[int][]geom.Point)
		ok := true
		for i, e := range elbows {
			delta := targets[i] - coords[i]
			if math.Abs(delta) < geom.Eps {
				continue
			}
			pts := working(changed, edges, e.m.edge)
			n := len(pts)
			if e.m.dst {
				ok = shiftRun(pts, e.idx, axis, delta, 2, n-2)
			} else {
				ok = shiftRun(pts, e.idx, axis, delta, 1, n-3)
			}
			if !ok {
				break
			}
		}
		if !ok || !p.safe(edges, changed) {
			continue
		}
		apply(edges, changed)
		moved++
	}
	return moved
}

// elbowIndex finds the first turn after the stem at the given end of pts.
// A turn at the opposite stem does not count: moving it would move the
// other end of the connector.
func elbowIndex(pts []geom.Point, fromDst bool) (int, bool) {
	n := len(pts)
	if n < 3 {
		return 0, false
	}
	if fromDst {
		for i := n - 2; i >= 1; i-- {
			if turnsAt(pts, i) {
				return i, i != 1
			}
		}
		return 0, false
	}
	for i := 1; i <= n-2; i++ {
		if turnsAt(pts, i) {
			return i, i != n-2
		}
	}
	return 0, false
}

func turnsAt(pts []geom.Point, i int) bool {
	ax, ay := geom.Seg(pts[i-1], pts[i]).Dir()
	bx, by := geom.Seg(pts[i], pts[i+1]).Dir()
	return ax != bx || ay != by
}

func hasStraight(edges []RoutedEdge, members []endpoint) bool {
	for _, m := range members {
		if edges[m.edge].Bends() == 0 {
			return true
		}
	}
	return false
}

func memberOffset(e RoutedEdge, dst bool) float64 {
	if dst {
		return e.DstOffset
	}
	return e.SrcOffset
}

// uniformAround spreads n values pitch apart, centred on mid.
func uniformAround(mid float64, n int, pitch float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mid + (float64(i)-float64(n-1)/2)*pitch
	}
	return out
}

// median of an ascending slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// working returns the scratch copy of edge i's waypoints, creating it on
// first use.
func working(changed map[int][]geom.Point, edges []RoutedEdge, i int) []geom.Point {
	if pts, ok := changed[i]; ok {
		return pts
	}
	pts := geom.Clone(edges[i].Waypoints)
	changed[i] = pts
	return pts
}

func apply(edges []RoutedEdge, changed map[int][]geom.Point) {
	for i, pts := range changed {
		edges[i].Waypoints = pts
	}
}

// safe simulates replacing the routes in changed: every changed route must
// still satisfy the route invariants without more hits than before, and the
// total number of crossings must not grow.
func (p *Pass) safe(edges []RoutedEdge, changed map[int][]geom.Point) bool {
	for i, pts := range changed {
		e := edges[i]
		if !geom.Orthogonal(pts) || geom.HasReversal(pts) {
			return false
		}
		if !stemsValid(pts, e.SrcSide, e.DstSide, p.Options.StemLen) {
			return false
		}
		if p.hits(pts, e.SourceNodeID, e.TargetNodeID) > p.hits(e.Waypoints, e.SourceNodeID, e.TargetNodeID) {
			return false
		}
	}
	return totalCrossings(edges, changed) <= totalCrossings(edges, nil)
}

func totalCrossings(edges []RoutedEdge, changed map[int][]geom.Point) int {
	path := func(i int) []geom.Point {
		if pts, ok := changed[i]; ok {
			return pts
		}
		return edges[i].Waypoints
	}
	n := 0
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			n += pathCrossings(path(i), path(j))
		}
	}
	return n
}
