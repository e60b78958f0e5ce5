package route

import (
	"math"
	"slices"
	"sort"

	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// PortKey identifies one side of one node.
type PortKey struct {
	NodeID string
	Side   geom.Side
}

func (k PortKey) String() string { return k.NodeID + "/" + k.Side.String() }

// comparePortKeys orders keys by node ID, then side.
func comparePortKeys(a, b PortKey) int {
	if a.NodeID != b.NodeID {
		if a.NodeID < b.NodeID {
			return -1
		}
		return 1
	}
	return int(a.Side) - int(b.Side)
}

// PortTracker records the tangential offsets already taken on every node side
// during one routing pass. Offsets are measured from the side midpoint,
// positive toward +x (top, bottom) or +y (left, right).
//
// A PortTracker is not safe for concurrent use.
type PortTracker struct {
	gap     float64
	inset   float64
	buckets map[PortKey][]float64
}

// NewPortTracker creates an empty tracker spacing ports gap pixels apart and
// keeping them inset pixels away from the side's ends.
func NewPortTracker(gap, inset float64) *PortTracker {
	return &PortTracker{gap: gap, inset: inset, buckets: make(map[PortKey][]float64)}
}

// Peek proposes offsets for the next connector on (nodeID, side) without
// changing any state. It is Propose without the crowded flag.
func (t *PortTracker) Peek(nodeID string, side geom.Side, icon geom.Rect) []float64 {
	offs, _ := t.Propose(nodeID, side, icon)
	return offs
}

// Propose is Peek that also reports whether the side is full.
//
// An unused side proposes only its midpoint. Otherwise the proposals are one
// gap beyond the outermost offsets while they stay inside the usable span,
// and the midpoint of every gap between neighbours wide enough to keep a full
// gap on both sides. Proposals are ordered nearest-to-centre first so that
// ties fill a side symmetrically. When nothing qualifies the side is
// crowded: a single fallback is returned, the point of the span furthest
// from every taken offset, and crowded is true. Only the fallback may end
// up closer than one gap to a neighbour.
func (t *PortTracker) Propose(nodeID string, side geom.Side, icon geom.Rect) (offsets []float64, crowded bool) {
	offs := t.buckets[PortKey{nodeID, side}]
	if len(offs) == 0 {
		return []float64{0}, false
	}
	half := t.halfSpan(icon, side)

	var out []float64
	if hi := offs[len(offs)-1] + t.gap; hi <= half+geom.Eps {
		out = append(out, hi)
	}
	if lo := offs[0] - t.gap; lo >= -half-geom.Eps {
		out = append(out, lo)
	}
	for i := 0; i+1 < len(offs); i++ {
		if offs[i+1]-offs[i] >= 2*t.gap-geom.Eps {
			out = append(out, (offs[i]+offs[i+1])/2)
		}
	}
	if len(out) == 0 {
		return []float64{fallbackOffset(offs, half)}, true
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i]) < math.Abs(out[j])-geom.Eps
	})
	return out, false
}

// Commit records offset as taken on (nodeID, side).
func (t *PortTracker) Commit(nodeID string, side geom.Side, offset float64) {
	k := PortKey{nodeID, side}
	offs := t.buckets[k]
	i, _ := slices.BinarySearch(offs, offset)
	t.buckets[k] = slices.Insert(offs, i, offset)
}

// Offsets returns a copy of the sorted offsets taken on (nodeID, side).
func (t *PortTracker) Offsets(nodeID string, side geom.Side) []float64 {
	return slices.Clone(t.buckets[PortKey{nodeID, side}])
}

// Len returns the number of connectors committed to (nodeID, side).
func (t *PortTracker) Len(nodeID string, side geom.Side) int {
	return len(t.buckets[PortKey{nodeID, side}])
}

// Keys returns every non-empty side in deterministic order.
func (t *PortTracker) Keys() []PortKey {
	keys := make([]PortKey, 0, len(t.buckets))
	for k, v := range t.buckets {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, comparePortKeys)
	return keys
}

// shift moves the offset old on (nodeID, side) by delta.
func (t *PortTracker) shift(nodeID string, side geom.Side, old, delta float64) {
	k := PortKey{nodeID, side}
	offs := t.buckets[k]
	for i, o := range offs {
		if math.Abs(o-old) < geom.Eps {
			offs[i] = o + delta
			break
		}
	}
	slices.Sort(offs)
}

func (t *PortTracker) halfSpan(icon geom.Rect, side geom.Side) float64 {
	return math.Max(0, icon.SideLength(side)/2-t.inset)
}

// fallbackOffset returns the offset within [-half, half] furthest from its
// nearest taken offset, preferring the one closest to the centre.
func fallbackOffset(offs []float64, half float64) float64 {
	cands := []float64{-half, half}
	for i := 0; i+1 < len(offs); i++ {
		cands = append(cands, (offs[i]+offs[i+1])/2)
	}
	best, bestDist := 0.0, -1.0
	for _, c := range cands {
		if c < -half-geom.Eps || c > half+geom.Eps {
			continue
		}
		d := math.Inf(1)
		for _, o := range offs {
			d = math.Min(d, math.Abs(c-o))
		}
		if d > bestDist+geom.Eps || (math.Abs(d-bestDist) < geom.Eps && math.Abs(c) < math.Abs(best)) {
			best, bestDist = c, d
		}
	}
	return best
}
