// Package geom provides the axis-aligned geometry shared by the router and
// the renderers.
//
// All coordinates are pixels with the origin at the top-left corner and y
// growing downward, matching the diagram editor's canvas.
package geom

import (
	"fmt"
	"math"
)

// Eps is the tolerance used when comparing coordinates.
const Eps = 1e-6

// Point is a pixel-space coordinate.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Eq reports whether p and q coincide within Eps.
func (p Point) Eq(q Point) bool {
	return math.Abs(p.X-q.X) < Eps && math.Abs(p.Y-q.Y) < Eps
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Coord returns the coordinate of p on axis a.
func (p Point) Coord(a Axis) float64 {
	if a == AxisX {
		return p.X
	}
	return p.Y
}

// WithCoord returns p with its coordinate on axis a replaced by v.
func (p Point) WithCoord(a Axis, v float64) Point {
	if a == AxisX {
		p.X = v
	} else {
		p.Y = v
	}
	return p
}

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Manhattan returns the L1 distance between p and q.
func Manhattan(p, q Point) float64 { return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y) }

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Axis identifies a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	W float64 `json:"w" msgpack:"w"`
	H float64 `json:"h" msgpack:"h"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) CX() float64     { return r.X + r.W/2 }
func (r Rect) CY() float64     { return r.Y + r.H/2 }

// Center returns the centre point of r.
func (r Rect) Center() Point { return Point{X: r.CX(), Y: r.CY()} }

// Expand grows r by m on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Contains reports whether p lies inside or on the boundary of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left()-Eps && p.X <= r.Right()+Eps &&
		p.Y >= r.Top()-Eps && p.Y <= r.Bottom()+Eps
}

// ContainsStrict reports whether p lies in the open interior of r.
func (r Rect) ContainsStrict(p Point) bool {
	return p.X > r.Left()+Eps && p.X < r.Right()-Eps &&
		p.Y > r.Top()+Eps && p.Y < r.Bottom()-Eps
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.Left(), o.Left())
	y0 := math.Min(r.Top(), o.Top())
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// SideLength returns the length of the given side of r.
func (r Rect) SideLength(s Side) float64 {
	if s.Tangent() == AxisX {
		return r.W
	}
	return r.H
}

// SideMid returns the midpoint of the given side of r.
func (r Rect) SideMid(s Side) Point {
	switch s {
	case Top:
		return Point{X: r.CX(), Y: r.Top()}
	case Bottom:
		return Point{X: r.CX(), Y: r.Bottom()}
	case Left:
		return Point{X: r.Left(), Y: r.CY()}
	case Right:
		return Point{X: r.Right(), Y: r.CY()}
	}
	return r.Center()
}

// SidePoint returns the point on side s of r that lies offset pixels from the
// side's midpoint along the side's tangent axis.
func SidePoint(r Rect, s Side, offset float64) Point {
	mid := r.SideMid(s)
	t := s.Tangent()
	return mid.WithCoord(t, mid.Coord(t)+offset)
}

// StemPoint projects p outward along the normal of side s by length pixels.
func StemPoint(p Point, s Side, length float64) Point {
	dx, dy := s.Normal()
	return Point{X: p.X + dx*length, Y: p.Y + dy*length}
}

// Bounds returns the bounding rectangle of the given points. It returns the
// zero Rect for an empty slice.
func Bounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	x0, y0, x1, y1 := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		x0, x1 = math.Min(x0, p.X), math.Max(x1, p.X)
		y0, y1 = math.Min(y0, p.Y), math.Max(y1, p.Y)
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
