// Package render draws routed diagrams.
//
// # Overview
//
// Every renderer consumes a [diagram.Routed] document and draws containers
// first, then connectors, then icons, so icons sit on top of the lines that
// end at their borders. Connectors are drawn exactly along their waypoints
// and finish in an arrowhead laid along the last segment.
//
//   - [RenderSVG]: standalone SVG with functional options
//   - [RenderPNG]: native raster output via fogleman/gg and the Go Mono face
//   - [ToPDF]: PDF converted from either engine's SVG by rsvg-convert
//   - [ToDOT] and [RenderDOTSVG]: Graphviz DOT with pinned positions,
//     rendered by the nop2 engine, which backs the pipeline's "graphviz"
//     SVG engine
//   - [RenderASCII]: a character grid used by the terminal editor
//
// # Format Conversion
//
// [ToPDF] converts any SVG using the external rsvg-convert tool (from
// librsvg):
//
//	svg := render.RenderSVG(routed, render.WithEdgeLabels())
//	pdf, err := render.ToPDF(ctx, svg)
//
// # Coordinates
//
// Output coordinates are the diagram's pixel coordinates shifted so the
// routed bounds start at the padding. Graphviz output additionally flips the
// y axis.
package render
