package render

import (
	"math"
	"strings"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// ASCIIOption configures text rendering.
type ASCIIOption func(*asciiRenderer)

type asciiRenderer struct {
	cellW, cellH float64
	selected     string
}

// WithCellSize sets how many pixels one character cell covers.
func WithCellSize(w, h float64) ASCIIOption {
	return func(r *asciiRenderer) { r.cellW, r.cellH = w, h }
}

// WithMarked draws the border of the given node with '#'.
func WithMarked(id string) ASCIIOption {
	return func(r *asciiRenderer) { r.selected = id }
}

// Canvas is a fixed-size grid of runes.
type Canvas struct {
	W, H  int
	cells [][]rune
}

// NewCanvas returns a blank canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{W: w, H: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(" ", w))
	}
	return c
}

// Set writes r at (x, y); out-of-range writes are ignored.
func (c *Canvas) Set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return
	}
	c.cells[y][x] = r
}

// At returns the rune at (x, y), or a space outside the canvas.
func (c *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return ' '
	}
	return c.cells[y][x]
}

// Text writes s starting at (x, y).
func (c *Canvas) Text(x, y int, s string) {
	for i, r := range []rune(s) {
		c.Set(x+i, y, r)
	}
}

// String returns the canvas rows with trailing spaces trimmed.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Lines returns the canvas rows without trimming.
func (c *Canvas) Lines() []string {
	out := make([]string, len(c.cells))
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

// RenderASCII draws a routed diagram on a character grid: containers with
// dotted borders, icons as boxes, connectors with '-', '|' and '+' and an
// arrowhead pointing into the target.
func RenderASCII(rd *diagram.Routed, opts ...ASCIIOption) *Canvas {
	r := asciiRenderer{cellW: 8, cellH: 16}
	for _, opt := range opts {
		opt(&r)
	}
	f := newFrame(rd, r.cellW)
	c := NewCanvas(int(math.Ceil(f.w/r.cellW))+1, int(math.Ceil(f.h/r.cellH))+1)
	cell := func(p geom.Point) (int, int) {
		q := f.pt(p)
		return int(math.Round(q.X / r.cellW)), int(math.Round(q.Y / r.cellH))
	}

	d := rd.Diagram
	order := drawOrder(d)
	for _, id := range order {
		if n := d.Nodes[id]; n.IsContainer() {
			x0, y0 := cell(geom.Pt(n.Position.X, n.Position.Y))
			x1, y1 := cell(geom.Pt(n.Position.X+n.Size.Width, n.Position.Y+n.Size.Height))
			box(c, x0, y0, x1, y1, '.', '.', ':')
			c.Text(x0+2, y0, " "+n.DisplayLabel()+" ")
		}
	}

	routes, _ := routedEdges(rd)
	for _, e := range routes {
		for _, s := range geom.Segments(e.Waypoints) {
			x0, y0 := cell(s.A)
			x1, y1 := cell(s.B)
			line(c, x0, y0, x1, y1)
		}
	}

	for _, id := range order {
		n := d.Nodes[id]
		if n.IsContainer() {
			continue
		}
		x0, y0 := cell(geom.Pt(n.Position.X, n.Position.Y))
		x1, y1 := cell(geom.Pt(n.Position.X+n.Size.Width, n.Position.Y+n.Size.Height))
		x1, y1 = max(x1, x0+2), max(y1, y0+2)
		corner, hz, vt := '+', '-', '|'
		if n.ID == r.selected {
			corner, hz, vt = '#', '#', '#'
		}
		for y := y0 + 1; y < y1; y++ {
			for x := x0 + 1; x < x1; x++ {
				c.Set(x, y, ' ')
			}
		}
		box(c, x0, y0, x1, y1, corner, hz, vt)
		label := n.DisplayLabel()
		if room := x1 - x0 - 1; room > 0 && len([]rune(label)) > room {
			label = string([]rune(label)[:room])
		}
		c.Text(x0+1, (y0+y1)/2, label)
	}

	for _, e := range routes {
		n := len(e.Waypoints)
		if n < 2 {
			continue
		}
		tx, ty := cell(e.Waypoints[n-1])
		dx, dy := geom.Seg(e.Waypoints[n-2], e.Waypoints[n-1]).Dir()
		head := '>'
		switch {
		case dx < 0:
			head = '<'
		case dy > 0:
			head = 'v'
		case dy < 0:
			head = '^'
		}
		c.Set(tx-int(dx), ty-int(dy), head)
	}
	return c
}

func box(c *Canvas, x0, y0, x1, y1 int, corner, hz, vt rune) {
	for x := x0; x <= x1; x++ {
		c.Set(x, y0, hz)
		c.Set(x, y1, hz)
	}
	for y := y0; y <= y1; y++ {
		c.Set(x0, y, vt)
		c.Set(x1, y, vt)
	}
	c.Set(x0, y0, corner)
	c.Set(x1, y0, corner)
	c.Set(x0, y1, corner)
	c.Set(x1, y1, corner)
}

// line draws an axis-aligned run; crossings and bends become '+'.
func line(c *Canvas, x0, y0, x1, y1 int) {
	mark := func(x, y int, r rune) {
		switch cur := c.At(x, y); {
		case cur == r:
		case cur == '-' || cur == '|' || cur == '+':
			c.Set(x, y, '+')
		default:
			c.Set(x, y, r)
		}
	}
	switch {
	case y0 == y1:
		for x := min(x0, x1); x <= max(x0, x1); x++ {
			mark(x, y0, '-')
		}
	case x0 == x1:
		for y := min(y0, y1); y <= max(y0, y1); y++ {
			mark(x0, y, '|')
		}
	}
}
