package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

const edgeInteractionCSS = `
    .edge { transition: stroke-width 0.2s ease; }
    .edge.highlight { stroke-width: 3; }
    .icon.highlight { stroke-width: 3; }`

const edgeInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.edge').forEach(e => e.classList.toggle('highlight',
        e.dataset.source === id || e.dataset.target === id));
    }
    function clearHighlight() {
      document.querySelectorAll('.edge').forEach(e => e.classList.remove('highlight'));
    }
    document.querySelectorAll('.icon').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	padding     float64
	arrowSize   float64
	labels      bool
	edgeLabels  bool
	interactive bool
	selected    string
}

func WithPadding(p float64) SVGOption   { return func(r *svgRenderer) { r.padding = p } }
func WithArrowSize(s float64) SVGOption { return func(r *svgRenderer) { r.arrowSize = s } }
func WithoutLabels() SVGOption          { return func(r *svgRenderer) { r.labels = false } }
func WithEdgeLabels() SVGOption         { return func(r *svgRenderer) { r.edgeLabels = true } }
func WithInteraction() SVGOption        { return func(r *svgRenderer) { r.interactive = true } }

// WithSelected outlines the given node, as the editor does for its selection.
func WithSelected(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// RenderSVG draws containers, icons and routed connectors. Every connector
// ends in an arrowhead laid along its last segment.
func RenderSVG(rd *diagram.Routed, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	f := newFrame(rd, r.padding)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.w, f.h, f.w, f.h)
	buf.WriteString(`  <rect width="100%" height="100%" fill="#FFFFFF"/>` + "\n")

	d := rd.Diagram
	order := drawOrder(d)
	for _, id := range order {
		if n := d.Nodes[id]; n.IsContainer() {
			r.renderContainer(&buf, f, n)
		}
	}
	routes, edges := routedEdges(rd)
	for i, e := range routes {
		r.renderEdge(&buf, f, e.Waypoints, edges[i])
	}
	for _, id := range order {
		if n := d.Nodes[id]; !n.IsContainer() {
			r.renderIcon(&buf, f, n)
		}
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", edgeInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", edgeInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{padding: defaultPadding, arrowSize: defaultArrowSize, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderContainer(buf *bytes.Buffer, f frame, n diagram.Node) {
	s := containerStyle(n.Type)
	rc := f.rect(n.Rect())
	fmt.Fprintf(buf, `  <rect id="node-%s" class="container" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s" stroke-width="1.5"%s/>`+"\n",
		escape(n.ID), rc.X, rc.Y, rc.W, rc.H, s.fill, s.stroke, dash(s, r.selected == n.ID))
	if r.labels {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			rc.X+8, rc.Y+16, s.stroke, escape(n.DisplayLabel()))
	}
}

func (r *svgRenderer) renderIcon(buf *bytes.Buffer, f frame, n diagram.Node) {
	s := iconStyle(n.Type)
	rc := f.rect(n.Rect())
	width := 1.5
	if r.selected == n.ID {
		width = 3
	}
	fmt.Fprintf(buf, `  <rect id="node-%s" class="icon" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		escape(n.ID), rc.X, rc.Y, rc.W, rc.H, s.fill, s.stroke, width)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="10" fill="%s">%s</text>`+"\n",
		rc.CX(), rc.CY(), s.stroke, escape(strings.ToUpper(n.Type)))
	if r.labels {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="11" fill="#232F3E">%s</text>`+"\n",
			rc.CX(), rc.Bottom()+labelGap, escape(n.DisplayLabel()))
	}
}

func (r *svgRenderer) renderEdge(buf *bytes.Buffer, f frame, wp []geom.Point, e diagram.Edge) {
	s := edgeStyle(e.Type)
	pts := make([]string, len(wp))
	moved := make([]geom.Point, len(wp))
	for i, p := range wp {
		moved[i] = f.pt(p)
		pts[i] = fmt.Sprintf("%.1f,%.1f", moved[i].X, moved[i].Y)
	}
	fmt.Fprintf(buf, `  <polyline id="edge-%s" class="edge" data-source="%s" data-target="%s" points="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-linejoin="round"%s/>`+"\n",
		escape(e.ID), escape(e.SourceNodeID), escape(e.TargetNodeID), strings.Join(pts, " "), s.stroke, dash(s, false))

	if len(moved) >= 2 {
		head := arrowHead(moved[len(moved)-2], moved[len(moved)-1], r.arrowSize)
		fmt.Fprintf(buf, `  <polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`+"\n",
			head[0].X, head[0].Y, head[1].X, head[1].Y, head[2].X, head[2].Y, s.stroke)
	}
	if r.edgeLabels && e.Label != "" {
		at := labelAnchor(moved)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="10" fill="%s" paint-order="stroke" stroke="#FFFFFF" stroke-width="3">%s</text>`+"\n",
			at.X, at.Y-4, s.stroke, escape(e.Label))
	}
}

func dash(s style, selected bool) string {
	switch {
	case selected:
		return ` stroke-dasharray="2 2"`
	case s.dashed:
		return ` stroke-dasharray="6 4"`
	}
	return ""
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
