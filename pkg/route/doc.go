// Package route computes orthogonal connector routes between diagram icons.
//
// # Overview
//
// Given the bounding boxes of the nodes of a diagram and the edges between
// them, the router produces one polyline per edge that leaves and enters its
// icons perpendicular to a chosen side, consists only of horizontal and
// vertical segments, avoids third-party icons, and keeps connectors sharing
// an icon side apart.
//
// The search is greedy and bounded. Edges are routed shortest first; for
// each edge every combination of source and target side (16 in total), every
// port offset proposed by the [PortTracker], and every shape produced by
// [Generate] is scored. The lexicographically best [Score] (hits, bends,
// crossings, length) wins and is committed before the next edge is routed,
// so later edges see earlier ones as crossing penalties.
//
// # Basic Usage
//
//	r := route.New(route.DefaultOptions(), logger)
//	res := r.Route(
//	    []route.Node{
//	        {ID: "web", Rect: geom.Rect{X: 0, Y: 0, W: 40, H: 40}},
//	        {ID: "db", Rect: geom.Rect{X: 200, Y: 0, W: 40, H: 40}},
//	    },
//	    []route.Edge{{ID: "e1", Source: "web", Target: "db"}},
//	)
//	for _, e := range res.Edges {
//	    fmt.Println(e.EdgeID, e.SrcSide, e.DstSide, e.Waypoints)
//	}
//
// # Routes
//
// A [RoutedEdge] always starts at the source port and ends at the target
// port. The second and the second-to-last points are the stem points,
// [Options.StemLen] away from the icon along the side's outward normal.
// Only the travel portion between the stems is tested against obstacles.
//
// # Passes
//
// Every call to [Router.Route] creates a fresh [Pass] holding the port
// tracker and the already committed paths. Nothing survives a pass: moving a
// single node can change the best route of any edge, so the caller routes
// the whole snapshot again. Callers running passes concurrently must drop
// the result of a superseded pass rather than merge it.
//
// # Post-processing
//
// After all edges are routed, [CenterPorts] re-centres groups of ports that
// drifted to one side of an icon and [AlignElbows] spaces the first turns of
// parallel connectors evenly. Both simulate every move on copies and skip it
// if any route would break, hit an icon, or add crossings.
//
// # Errors
//
// Routing never fails. Edges referencing unknown nodes get an empty route
// and are listed in [Result.Dangling]. Use [Validate] and [CheckPorts] to
// verify the route invariants of a result.
package route
