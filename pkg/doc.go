// Package pkg provides the libraries behind orthoroute, an orthogonal
// connector router for AWS configuration diagrams.
//
// # Overview
//
// orthoroute takes a diagram of icons nested in containers (cloud, VPC,
// availability zone, subnet) and computes a path for every connector. Each
// path leaves its source perpendicular to one side, runs as horizontal and
// vertical segments only, and enters its target perpendicular to a side,
// avoiding the other icons where it can.
//
// # Architecture
//
// The typical data flow:
//
//	diagram JSON/YAML
//	         ↓
//	    [diagram] package (document model, validation, router input)
//	         ↓
//	    [route] package (candidates, ports, scoring, post-processing)
//	         ↓
//	    [render] package (SVG, PNG, PDF, DOT, text)
//
// [pipeline] runs that flow with caching and is shared by the CLI and the
// HTTP [server].
//
// # Quick Start
//
//	d, _ := diagram.ReadDiagramFile("prod.json")
//	routed := diagram.Route(d, route.New(route.DefaultOptions(), nil))
//	svg := render.RenderSVG(routed)
//
// # Main Packages
//
// ## Core
//
// [geom] - Points, rectangles, sides and axis-aligned segment predicates.
//
// [route] - The routing engine. A pass is pure computation over a snapshot
// of node rectangles and edges; it performs no I/O and never fails.
//
// [diagram] - The diagram document: nodes with positions and sizes, parent
// containers, typed edges, and the routed document written after a pass.
//
// [render] - Output formats for routed diagrams.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches for routed documents and artifacts.
//
// [store] - Memory, file and MongoDB stores for diagram documents.
//
// [session] - Editing sessions. Every edit starts a new pass generation;
// a pass that finishes after a newer edit began is discarded.
//
// [config] - TOML and YAML settings for the router and the backends.
//
// [server] - The HTTP API, answering JSON or msgpack.
//
// ## Support
//
// [errors] - Coded errors shared by every layer.
//
// [observability] - Hooks for routing, rendering, cache and HTTP events.
//
// [buildinfo] - Version information.
//
// [geom]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/geom
// [route]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/route
// [diagram]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/diagram
// [render]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/server
// [cache]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/cache
// [store]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/store
// [session]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/session
// [config]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/config
// [errors]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/errors
// [observability]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/awscfgdiagram/orthoroute/pkg/buildinfo
package pkg
