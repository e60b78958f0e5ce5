package geom

// Segments splits a polyline into its consecutive segments.
func Segments(pts []Point) []Segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, Segment{A: pts[i], B: pts[i+1]})
	}
	return segs
}

// Orthogonal reports whether every segment of the polyline is axis-aligned.
// A polyline with fewer than two points is trivially orthogonal.
func Orthogonal(pts []Point) bool {
	for i := 0; i+1 < len(pts); i++ {
		if !Seg(pts[i], pts[i+1]).AxisAligned() {
			return false
		}
	}
	return true
}

// HasReversal reports whether three consecutive points are colinear with the
// path doubling back on itself.
func HasReversal(pts []Point) bool {
	for i := 0; i+2 < len(pts); i++ {
		ax, ay := Seg(pts[i], pts[i+1]).Dir()
		bx, by := Seg(pts[i+1], pts[i+2]).Dir()
		if ax*bx+ay*by < 0 {
			return true
		}
	}
	return false
}

// Bends counts direction changes between consecutive segments.
func Bends(pts []Point) int {
	n := 0
	for i := 0; i+2 < len(pts); i++ {
		ax, ay := Seg(pts[i], pts[i+1]).Dir()
		bx, by := Seg(pts[i+1], pts[i+2]).Dir()
		if ax != bx || ay != by {
			n++
		}
	}
	return n
}

// Length returns the Manhattan length of the polyline.
func Length(pts []Point) float64 {
	var total float64
	for i := 0; i+1 < len(pts); i++ {
		total += Manhattan(pts[i], pts[i+1])
	}
	return total
}

// Clone returns an independent copy of pts.
func Clone(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
