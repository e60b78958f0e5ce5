package diagram

import (
	"maps"
	"slices"
	"time"

	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// =============================================================================
// Validation
// =============================================================================

// Validate checks the document's structure. Edges that reference unknown
// nodes are not rejected: the router reports them as dangling.
func (d *Diagram) Validate() error {
	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "node key %q", id)
		}
		if n.ID != id {
			return errors.New(errors.ErrCodeInvalidDiagram, "node %q stored under key %q", n.ID, id)
		}
		if n.Size.Width < 0 || n.Size.Height < 0 {
			return errors.New(errors.ErrCodeInvalidDiagram, "node %s: negative size %gx%g", id, n.Size.Width, n.Size.Height)
		}
		if n.ParentID != "" {
			if _, ok := d.Nodes[n.ParentID]; !ok {
				return errors.New(errors.ErrCodeInvalidDiagram, "node %s: unknown parent %s", id, n.ParentID)
			}
		}
	}
	if id, ok := d.parentCycle(); ok {
		return errors.New(errors.ErrCodeInvalidDiagram, "node %s: parent cycle", id)
	}
	for _, id := range d.EdgeIDs() {
		e := d.Edges[id]
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "edge key %q", id)
		}
		if e.ID != id {
			return errors.New(errors.ErrCodeInvalidDiagram, "edge %q stored under key %q", e.ID, id)
		}
		if e.Type != "" && !IsEdgeType(e.Type) {
			return errors.New(errors.ErrCodeInvalidDiagram, "edge %s: unknown type %q", id, e.Type)
		}
	}
	return nil
}

func (d *Diagram) parentCycle() (string, bool) {
	for _, id := range d.NodeIDs() {
		seen := map[string]bool{}
		for cur := id; cur != ""; cur = d.Nodes[cur].ParentID {
			if seen[cur] {
				return id, true
			}
			seen[cur] = true
		}
	}
	return "", false
}

// =============================================================================
// Router Input
// =============================================================================

// RouteInput converts the document to router input. Nodes and edges are
// ordered by ID so identical documents produce identical passes; containment
// edges are skipped.
func (d *Diagram) RouteInput() ([]route.Node, []route.Edge) {
	nodes := make([]route.Node, 0, len(d.Nodes))
	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		nodes = append(nodes, route.Node{ID: id, Container: n.IsContainer(), Rect: n.Rect()})
	}
	edges := make([]route.Edge, 0, len(d.Edges))
	for _, id := range d.EdgeIDs() {
		e := d.Edges[id]
		if !e.Routable() {
			continue
		}
		edges = append(edges, route.Edge{ID: id, Source: e.SourceNodeID, Target: e.TargetNodeID})
	}
	return nodes, edges
}

// Rects returns every node's rectangle keyed by ID.
func (d *Diagram) Rects() map[string]geom.Rect {
	out := make(map[string]geom.Rect, len(d.Nodes))
	for id, n := range d.Nodes {
		out[id] = n.Rect()
	}
	return out
}

// =============================================================================
// Editing
// =============================================================================

// Move translates a node by (dx, dy). Moving a container carries its
// descendants along. The moved nodes are marked as user-modified.
func (d *Diagram) Move(id string, dx, dy float64) error {
	if _, ok := d.Nodes[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s", id)
	}
	ids := append([]string{id}, d.Descendants(id)...)
	for _, nid := range ids {
		n := d.Nodes[nid]
		n.Position.X += dx
		n.Position.Y += dy
		n.IsUserModified = true
		d.Nodes[nid] = n
	}
	d.Touch()
	return nil
}

// MoveTo places a node's top-left corner at (x, y), carrying descendants.
func (d *Diagram) MoveTo(id string, x, y float64) error {
	n, ok := d.Nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s", id)
	}
	return d.Move(id, x-n.Position.X, y-n.Position.Y)
}

// Touch stamps UpdatedAt (and CreatedAt when unset) with the current time.
func (d *Diagram) Touch() {
	now := time.Now().UTC().Format(time.RFC3339)
	if d.Meta.CreatedAt == "" {
		d.Meta.CreatedAt = now
	}
	d.Meta.UpdatedAt = now
}

// =============================================================================
// Routed Document
// =============================================================================

// Routed is a diagram together with the routes of one pass.
type Routed struct {
	Diagram *Diagram                    `json:"diagram" msgpack:"diagram"`
	Routes  map[string]route.RoutedEdge `json:"routes" msgpack:"routes"`
	// Dangling lists edges that reference unknown nodes.
	Dangling []string    `json:"dangling,omitempty" msgpack:"dangling,omitempty"`
	Stats    route.Stats `json:"stats" msgpack:"stats"`
	// Generation is the editing-session pass that produced the routes;
	// zero outside a session.
	Generation uint64 `json:"generation,omitempty" msgpack:"generation,omitempty"`
}

// Route runs one routing pass over d.
func Route(d *Diagram, r *route.Router) *Routed {
	nodes, edges := d.RouteInput()
	return Attach(d, r.Route(nodes, edges))
}

// Attach pairs a diagram with a pass result.
func Attach(d *Diagram, res route.Result) *Routed {
	out := &Routed{
		Diagram:  d,
		Routes:   make(map[string]route.RoutedEdge, len(res.Edges)),
		Dangling: res.Dangling,
		Stats:    res.Stats,
	}
	for _, e := range res.Edges {
		out.Routes[e.EdgeID] = e
	}
	return out
}

// Ordered returns the routes sorted by edge ID.
func (r *Routed) Ordered() []route.RoutedEdge {
	out := make([]route.RoutedEdge, 0, len(r.Routes))
	for _, id := range slices.Sorted(maps.Keys(r.Routes)) {
		out = append(out, r.Routes[id])
	}
	return out
}

// Violations checks every route against the connector invariants.
func (r *Routed) Violations(opts route.Options) []route.Violation {
	rects := r.Diagram.Rects()
	var out []route.Violation
	routes := r.Ordered()
	for _, e := range routes {
		out = append(out, route.Validate(e, rects, opts)...)
	}
	return append(out, route.CheckPorts(routes, opts)...)
}

// Bounds returns the union of the node rectangles and every waypoint.
func (r *Routed) Bounds() geom.Rect {
	b := r.Diagram.Bounds()
	for _, e := range r.Routes {
		if !e.Empty() {
			b = b.Union(geom.Bounds(e.Waypoints))
		}
	}
	return b
}
