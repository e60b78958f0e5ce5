package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale     float64
	padding   float64
	arrowSize float64
	fontSize  float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithFontSize sets the label size in points before scaling.
func WithFontSize(pt float64) PNGOption {
	return func(r *pngRenderer) { r.fontSize = pt }
}

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func gomonoFont() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// RenderPNG rasterizes a routed diagram natively, without librsvg.
// Labels use the Go Mono face.
func RenderPNG(rd *diagram.Routed, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, padding: defaultPadding, arrowSize: defaultArrowSize, fontSize: 10}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", r.scale)
	}

	f := newFrame(rd, r.padding)
	w := int(math.Ceil(f.w * r.scale))
	h := int(math.Ceil(f.h * r.scale))
	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.Scale(r.scale, r.scale)
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := gomonoFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    r.fontSize * r.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	d := rd.Diagram
	order := drawOrder(d)
	for _, id := range order {
		if n := d.Nodes[id]; n.IsContainer() {
			r.drawContainer(dc, f, n)
		}
	}
	routes, edges := routedEdges(rd)
	for i, e := range routes {
		r.drawEdge(dc, f, e.Waypoints, edges[i])
	}
	for _, id := range order {
		if n := d.Nodes[id]; !n.IsContainer() {
			r.drawIcon(dc, f, n)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawString compensates for the face being sized in device pixels while the
// context is scaled.
func (r *pngRenderer) drawString(dc *gg.Context, s string, x, y, ax, ay float64) {
	dc.Push()
	dc.Scale(1/r.scale, 1/r.scale)
	dc.DrawStringAnchored(s, x*r.scale, y*r.scale, ax, ay)
	dc.Pop()
}

func (r *pngRenderer) drawContainer(dc *gg.Context, f frame, n diagram.Node) {
	s := containerStyle(n.Type)
	rc := f.rect(n.Rect())
	if s.fill != "none" {
		dc.SetHexColor(s.fill)
		dc.DrawRoundedRectangle(rc.X, rc.Y, rc.W, rc.H, 4)
		dc.Fill()
	}
	dc.SetHexColor(s.stroke)
	dc.SetLineWidth(1.5)
	if s.dashed {
		dc.SetDash(6, 4)
	}
	dc.DrawRoundedRectangle(rc.X, rc.Y, rc.W, rc.H, 4)
	dc.Stroke()
	dc.SetDash()
	r.drawString(dc, n.DisplayLabel(), rc.X+8, rc.Y+6, 0, 1)
}

func (r *pngRenderer) drawIcon(dc *gg.Context, f frame, n diagram.Node) {
	s := iconStyle(n.Type)
	rc := f.rect(n.Rect())
	dc.SetHexColor(s.fill)
	dc.DrawRoundedRectangle(rc.X, rc.Y, rc.W, rc.H, 6)
	dc.Fill()
	dc.SetHexColor(s.stroke)
	dc.SetLineWidth(1.5)
	dc.DrawRoundedRectangle(rc.X, rc.Y, rc.W, rc.H, 6)
	dc.Stroke()
	r.drawString(dc, strings.ToUpper(n.Type), rc.CX(), rc.CY(), 0.5, 0.5)
	dc.SetHexColor("#232F3E")
	r.drawString(dc, n.DisplayLabel(), rc.CX(), rc.Bottom()+4, 0.5, 1)
}

func (r *pngRenderer) drawEdge(dc *gg.Context, f frame, wp []geom.Point, e diagram.Edge) {
	s := edgeStyle(e.Type)
	dc.SetHexColor(s.stroke)
	dc.SetLineWidth(1.5)
	if s.dashed {
		dc.SetDash(6, 4)
	}
	moved := make([]geom.Point, len(wp))
	for i, p := range wp {
		moved[i] = f.pt(p)
		if i == 0 {
			dc.MoveTo(moved[i].X, moved[i].Y)
		} else {
			dc.LineTo(moved[i].X, moved[i].Y)
		}
	}
	dc.Stroke()
	dc.SetDash()

	if len(moved) >= 2 {
		head := arrowHead(moved[len(moved)-2], moved[len(moved)-1], r.arrowSize)
		dc.MoveTo(head[0].X, head[0].Y)
		dc.LineTo(head[1].X, head[1].Y)
		dc.LineTo(head[2].X, head[2].Y)
		dc.ClosePath()
		dc.Fill()
	}
}
