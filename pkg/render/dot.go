package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// pointsPerInch converts pixel sizes to Graphviz node widths.
const pointsPerInch = 72.0

// ToDOT converts a routed diagram to Graphviz DOT with every position
// pinned: nodes carry pos/width/height and edges carry their routed
// waypoints as a piecewise-linear spline, so the nop2 engine draws the
// diagram exactly as routed. Graphviz's y axis points up, so coordinates
// are flipped against the frame height.
//
// Containers are plain rectangles emitted before the icons so they draw
// underneath. Containment edges and unrouted edges are omitted.
func ToDOT(rd *diagram.Routed) string {
	f := newFrame(rd, defaultPadding)
	flip := func(p geom.Point) geom.Point {
		q := f.pt(p)
		return geom.Pt(q.X, f.h-q.Y)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%.1f,%.1f\";\n", f.w, f.h)
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=10, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	d := rd.Diagram
	for _, id := range drawOrder(d) {
		n := d.Nodes[id]
		rc := n.Rect()
		c := flip(rc.Center())
		attrs := []string{
			fmt.Sprintf("label=%q", n.DisplayLabel()),
			fmt.Sprintf("pos=\"%.1f,%.1f!\"", c.X, c.Y),
			fmt.Sprintf("width=%.3f", rc.W/pointsPerInch),
			fmt.Sprintf("height=%.3f", rc.H/pointsPerInch),
		}
		if n.IsContainer() {
			s := containerStyle(n.Type)
			attrs = append(attrs, "labelloc=t", "labeljust=l", fmt.Sprintf("color=%q", s.stroke), "fillcolor=\"transparent\"")
			if s.dashed {
				attrs = append(attrs, "style=\"rounded,dashed\"")
			}
		} else {
			attrs = append(attrs, fmt.Sprintf("color=%q", iconStyle(n.Type).stroke))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	routes, edges := routedEdges(rd)
	for i, e := range routes {
		de := edges[i]
		attrs := []string{
			fmt.Sprintf("id=%q", e.EdgeID),
			fmt.Sprintf("pos=%q", splinePos(e.Waypoints, flip)),
			fmt.Sprintf("color=%q", edgeStyle(de.Type).stroke),
		}
		if de.Label != "" {
			at := flip(labelAnchor(e.Waypoints))
			attrs = append(attrs, fmt.Sprintf("label=%q", de.Label), fmt.Sprintf("lp=\"%.1f,%.1f\"", at.X, at.Y))
		}
		if edgeStyle(de.Type).dashed {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.SourceNodeID, e.TargetNodeID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// splinePos encodes a polyline as a Graphviz B-spline ("e,tip p0 c1 c2 p1 ..."):
// each segment becomes a cubic whose control points sit on its endpoints.
// The spline stops short of the last waypoint so the arrowhead ends there.
func splinePos(wp []geom.Point, flip func(geom.Point) geom.Point) string {
	if len(wp) < 2 {
		return ""
	}
	pts := make([]geom.Point, len(wp))
	copy(pts, wp)
	tip := pts[len(pts)-1]
	prev := pts[len(pts)-2]
	dx, dy := geom.Seg(prev, tip).Dir()
	arrow := min(defaultArrowSize, geom.Distance(prev, tip))
	pts[len(pts)-1] = geom.Pt(tip.X-dx*arrow, tip.Y-dy*arrow)

	var parts []string
	t := flip(tip)
	parts = append(parts, fmt.Sprintf("e,%.1f,%.1f", t.X, t.Y))
	add := func(p geom.Point) {
		q := flip(p)
		parts = append(parts, fmt.Sprintf("%.1f,%.1f", q.X, q.Y))
	}
	add(pts[0])
	for i := 1; i < len(pts); i++ {
		add(pts[i-1])
		add(pts[i])
		add(pts[i])
	}
	return strings.Join(parts, " ")
}

// RenderDOTSVG renders DOT produced by [ToDOT] to SVG using Graphviz's nop2
// engine, which keeps the pinned node positions and edge splines.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP2)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg header with a
// pixel-sized one so the output scales like [RenderSVG].
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
