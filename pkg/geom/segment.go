package geom

import "math"

// Segment is a straight piece of a polyline from A to B.
type Segment struct {
	A, B Point
}

// Seg is shorthand for Segment{A: a, B: b}.
func Seg(a, b Point) Segment { return Segment{A: a, B: b} }

// Horizontal reports whether the segment has non-zero length along x only.
func (s Segment) Horizontal() bool {
	return math.Abs(s.A.Y-s.B.Y) < Eps && math.Abs(s.A.X-s.B.X) >= Eps
}

// Vertical reports whether the segment has non-zero length along y only.
func (s Segment) Vertical() bool {
	return math.Abs(s.A.X-s.B.X) < Eps && math.Abs(s.A.Y-s.B.Y) >= Eps
}

// AxisAligned reports whether exactly one of Δx and Δy is zero.
func (s Segment) AxisAligned() bool { return s.Horizontal() || s.Vertical() }

// Axis returns the axis the segment runs along. It is only meaningful for
// axis-aligned segments.
func (s Segment) Axis() Axis {
	if s.Horizontal() {
		return AxisX
	}
	return AxisY
}

// Dir returns the unit direction of an axis-aligned segment, or (0, 0) for a
// degenerate or diagonal one.
func (s Segment) Dir() (dx, dy float64) {
	switch {
	case s.Horizontal():
		return math.Copysign(1, s.B.X-s.A.X), 0
	case s.Vertical():
		return 0, math.Copysign(1, s.B.Y-s.A.Y)
	}
	return 0, 0
}

// Len returns the Manhattan length of the segment.
func (s Segment) Len() float64 { return Manhattan(s.A, s.B) }

func (s Segment) minX() float64 { return math.Min(s.A.X, s.B.X) }
func (s Segment) maxX() float64 { return math.Max(s.A.X, s.B.X) }
func (s Segment) minY() float64 { return math.Min(s.A.Y, s.B.Y) }
func (s Segment) maxY() float64 { return math.Max(s.A.Y, s.B.Y) }

// IntersectsRect reports whether an axis-aligned segment touches the closed
// rectangle r. Skimming the boundary counts.
func (s Segment) IntersectsRect(r Rect) bool {
	return s.minX() <= r.Right()+Eps && s.maxX() >= r.Left()-Eps &&
		s.minY() <= r.Bottom()+Eps && s.maxY() >= r.Top()-Eps
}

// EntersInterior reports whether an axis-aligned segment passes through the
// open interior of r.
func (s Segment) EntersInterior(r Rect) bool {
	return s.minX() < r.Right()-Eps && s.maxX() > r.Left()+Eps &&
		s.minY() < r.Bottom()-Eps && s.maxY() > r.Top()+Eps
}

// Crosses reports whether a horizontal and a vertical segment cross at a
// point interior to both.
func (s Segment) Crosses(o Segment) bool {
	h, v := s, o
	if s.Vertical() && o.Horizontal() {
		h, v = o, s
	} else if !(s.Horizontal() && o.Vertical()) {
		return false
	}
	y, x := h.A.Y, v.A.X
	return x > h.minX()+Eps && x < h.maxX()-Eps &&
		y > v.minY()+Eps && y < v.maxY()-Eps
}

// Intersection returns the point where a horizontal and a vertical segment
// meet. Endpoints count, so a segment passing through the corner of a
// polyline meets it.
func (s Segment) Intersection(o Segment) (Point, bool) {
	h, v := s, o
	if s.Vertical() && o.Horizontal() {
		h, v = o, s
	} else if !(s.Horizontal() && o.Vertical()) {
		return Point{}, false
	}
	y, x := h.A.Y, v.A.X
	if x < h.minX()-Eps || x > h.maxX()+Eps || y < v.minY()-Eps || y > v.maxY()+Eps {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// Overlaps reports whether two parallel segments lie on the same line and
// share a stretch of positive length.
func (s Segment) Overlaps(o Segment) bool {
	switch {
	case s.Horizontal() && o.Horizontal():
		if math.Abs(s.A.Y-o.A.Y) >= Eps {
			return false
		}
		return math.Min(s.maxX(), o.maxX())-math.Max(s.minX(), o.minX()) > Eps
	case s.Vertical() && o.Vertical():
		if math.Abs(s.A.X-o.A.X) >= Eps {
			return false
		}
		return math.Min(s.maxY(), o.maxY())-math.Max(s.minY(), o.minY()) > Eps
	}
	return false
}
