package route

import (
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// Generate returns up to five candidate paths from src (leaving through
// srcSide) to dst (entering through dstSide).
//
// Every path is [srcPort, srcStem, ..., dstStem, dstPort]. The shapes are the
// straight line (only when the stems share a coordinate), the two L-shapes
// turning at either corner of the stem-to-stem box, and the two Z-shapes
// through a channel at the stem midpoint. Paths are simplified and
// de-duplicated; no filtering for diagonals or reversals happens here.
//
// obstacles are third-party icons and are expanded by opts.ObstacleMargin.
// own holds the edge's endpoint icons; a travel segment entering their
// interior also counts as a hit.
func Generate(src geom.Point, srcSide geom.Side, dst geom.Point, dstSide geom.Side, obstacles, own []geom.Rect, opts Options) []Candidate {
	s := geom.StemPoint(src, srcSide, opts.StemLen)
	d := geom.StemPoint(dst, dstSide, opts.StemLen)

	travels := make([][]geom.Point, 0, 5)
	if sameCoord(s.X, d.X) || sameCoord(s.Y, d.Y) {
		travels = append(travels, []geom.Point{s, d})
	}
	mx, my := (s.X+d.X)/2, (s.Y+d.Y)/2
	travels = append(travels,
		[]geom.Point{s, geom.Pt(s.X, d.Y), d},
		[]geom.Point{s, geom.Pt(d.X, s.Y), d},
		[]geom.Point{s, geom.Pt(mx, s.Y), geom.Pt(mx, d.Y), d},
		[]geom.Point{s, geom.Pt(s.X, my), geom.Pt(d.X, my), d},
	)

	expanded := make([]geom.Rect, len(obstacles))
	for i, r := range obstacles {
		expanded[i] = r.Expand(opts.ObstacleMargin)
	}

	out := make([]Candidate, 0, len(travels))
	for _, t := range travels {
		raw := make([]geom.Point, 0, len(t)+2)
		raw = append(raw, src)
		raw = append(raw, t...)
		raw = append(raw, dst)
		path := Simplify(raw)
		if containsPath(out, path) {
			continue
		}
		out = append(out, Candidate{Path: path, Hits: countHits(path, expanded, own)})
	}
	return out
}

// Simplify removes consecutive duplicate points and interior points that
// continue in the same direction. The two ports and the two stem points
// (the first two and last two points) are never removed, although
// coincident stems merge into one point. Points where the path doubles
// back are kept so that callers can reject the reversal.
func Simplify(path []geom.Point) []geom.Point {
	type pinned struct {
		p     geom.Point
		fixed bool
	}
	out := make([]pinned, 0, len(path))
	for i, p := range path {
		fixed := i <= 1 || i >= len(path)-2
		if n := len(out); n > 0 && out[n-1].p.Eq(p) {
			out[n-1].fixed = out[n-1].fixed || fixed
			continue
		}
		for n := len(out); n >= 2 && !out[n-1].fixed && continues(out[n-2].p, out[n-1].p, p); n = len(out) {
			out = out[:n-1]
		}
		out = append(out, pinned{p: p, fixed: fixed})
	}
	pts := make([]geom.Point, len(out))
	for i, q := range out {
		pts[i] = q.p
	}
	return pts
}

// continues reports whether a→b→c is one axis-aligned run in one direction.
func continues(a, b, c geom.Point) bool {
	ax, ay := geom.Seg(a, b).Dir()
	bx, by := geom.Seg(b, c).Dir()
	if ax == 0 && ay == 0 {
		return false
	}
	return ax == bx && ay == by
}

// countHits counts travel segments (everything between the two stem points)
// that touch an expanded obstacle, plus one per own icon a travel segment
// tunnels into.
func countHits(path []geom.Point, expanded, own []geom.Rect) int {
	hits := 0
	for i := 1; i+2 < len(path); i++ {
		seg := geom.Seg(path[i], path[i+1])
		for _, r := range expanded {
			if seg.IntersectsRect(r) {
				hits++
				break
			}
		}
		for _, r := range own {
			if seg.EntersInterior(r) {
				hits++
			}
		}
	}
	return hits
}

func containsPath(cs []Candidate, path []geom.Point) bool {
	for _, c := range cs {
		if samePath(c.Path, path) {
			return true
		}
	}
	return false
}

func samePath(a, b []geom.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

func sameCoord(a, b float64) bool {
	d := a - b
	return d < geom.Eps && d > -geom.Eps
}
