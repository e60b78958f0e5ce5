// Package diagram provides the editor's document model and its conversion to
// router input.
//
// A [Diagram] is a flat map of nodes and a flat map of edges keyed by ID, in
// the camelCase JSON shape the web editor exchanges:
//
//	{
//	  "meta":  {"title": "prod"},
//	  "nodes": {"web": {"id": "web", "type": "ec2", "label": "web-1",
//	                    "position": {"x": 560, "y": 220},
//	                    "size": {"width": 48, "height": 48},
//	                    "parentId": "subnet-private"}},
//	  "edges": {"e1": {"id": "e1", "type": "connection",
//	                   "sourceNodeId": "alb", "targetNodeId": "web"}}
//	}
//
// # Containers
//
// Nodes of type aws-cloud, vpc, az and subnet are containers: they group
// other nodes, may be the endpoint of an edge, and are never treated as
// obstacles by the router. Every other node type is an icon.
//
// # Routing
//
// [Diagram.RouteInput] converts a document to router input, ordered by ID and
// without containment edges. [Route] runs one pass and returns a [Routed]
// document holding the diagram together with a route per edge:
//
//	d, _ := diagram.ReadDiagramFile("prod.json")
//	routed := diagram.Route(d, route.New(route.DefaultOptions(), logger))
//	diagram.WriteRouted(routed, os.Stdout)
//
// Files ending in .yaml or .yml are read as YAML with the same field names.
package diagram
