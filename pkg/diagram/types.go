package diagram

import (
	"maps"
	"slices"
	"strings"

	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Container node types. Every other node type is drawn as an icon.
const (
	TypeAWSCloud = "aws-cloud"
	TypeVPC      = "vpc"
	TypeAZ       = "az"
	TypeSubnet   = "subnet"
)

// Edge types.
const (
	EdgeContainment = "containment"
	EdgeConnection  = "connection"
	EdgeDataFlow    = "data-flow"
	EdgeUserDefined = "user-defined"
)

// Element origins.
const (
	SourceAWSConfig  = "aws-config"
	SourceUserManual = "user-manual"
)

// IsContainerType reports whether nodes of type t group other nodes.
func IsContainerType(t string) bool {
	switch t {
	case TypeAWSCloud, TypeVPC, TypeAZ, TypeSubnet:
		return true
	}
	return false
}

// IsEdgeType reports whether t is a known edge type.
func IsEdgeType(t string) bool {
	switch t {
	case EdgeContainment, EdgeConnection, EdgeDataFlow, EdgeUserDefined:
		return true
	}
	return false
}

// =============================================================================
// Diagram - Editor Document
// =============================================================================

// Diagram is the editor's document: a flat map of nodes and a flat map of
// edges keyed by ID. Nesting is expressed through Node.ParentID.
type Diagram struct {
	Meta  Meta            `json:"meta" bson:"meta" yaml:"meta"`
	Nodes map[string]Node `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges map[string]Edge `json:"edges" bson:"edges" yaml:"edges"`
}

// Meta carries document-level metadata.
type Meta struct {
	Title            string `json:"title" bson:"title" yaml:"title"`
	CreatedAt        string `json:"createdAt,omitempty" bson:"created_at,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty" bson:"updated_at,omitempty" yaml:"updatedAt,omitempty"`
	ConfigSnapshotID string `json:"configSnapshotId,omitempty" bson:"config_snapshot_id,omitempty" yaml:"configSnapshotId,omitempty"`
}

// Position is a node's top-left corner in pixels.
type Position struct {
	X float64 `json:"x" bson:"x" yaml:"x"`
	Y float64 `json:"y" bson:"y" yaml:"y"`
}

// Size is a node's extent in pixels.
type Size struct {
	Width  float64 `json:"width" bson:"width" yaml:"width"`
	Height float64 `json:"height" bson:"height" yaml:"height"`
}

// Node is a resource icon or a container.
type Node struct {
	ID             string         `json:"id" bson:"id" yaml:"id"`
	Type           string         `json:"type" bson:"type" yaml:"type"`
	Label          string         `json:"label" bson:"label" yaml:"label"`
	Source         string         `json:"source,omitempty" bson:"source,omitempty" yaml:"source,omitempty"`
	IsUserModified bool           `json:"isUserModified,omitempty" bson:"is_user_modified,omitempty" yaml:"isUserModified,omitempty"`
	Position       Position       `json:"position" bson:"position" yaml:"position"`
	Size           Size           `json:"size" bson:"size" yaml:"size"`
	ParentID       string         `json:"parentId,omitempty" bson:"parent_id,omitempty" yaml:"parentId,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsContainer reports whether the node groups other nodes.
func (n *Node) IsContainer() bool { return IsContainerType(n.Type) }

// Rect returns the node's bounding box.
func (n *Node) Rect() geom.Rect {
	return geom.Rect{X: n.Position.X, Y: n.Position.Y, W: n.Size.Width, H: n.Size.Height}
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a connector between two nodes.
type Edge struct {
	ID             string         `json:"id" bson:"id" yaml:"id"`
	Type           string         `json:"type" bson:"type" yaml:"type"`
	Source         string         `json:"source,omitempty" bson:"source,omitempty" yaml:"source,omitempty"`
	SourceNodeID   string         `json:"sourceNodeId" bson:"source_node_id" yaml:"sourceNodeId"`
	TargetNodeID   string         `json:"targetNodeId" bson:"target_node_id" yaml:"targetNodeId"`
	Label          string         `json:"label,omitempty" bson:"label,omitempty" yaml:"label,omitempty"`
	IsUserModified bool           `json:"isUserModified,omitempty" bson:"is_user_modified,omitempty" yaml:"isUserModified,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Routable reports whether the edge is drawn as a connector. Containment
// edges restate nesting and are not routed.
func (e *Edge) Routable() bool { return e.Type != EdgeContainment }

// =============================================================================
// Accessors
// =============================================================================

// New returns an empty diagram with the given title.
func New(title string) *Diagram {
	return &Diagram{
		Meta:  Meta{Title: title},
		Nodes: map[string]Node{},
		Edges: map[string]Edge{},
	}
}

// NodeIDs returns node IDs sorted ascending.
func (d *Diagram) NodeIDs() []string {
	return slices.Sorted(maps.Keys(d.Nodes))
}

// EdgeIDs returns edge IDs sorted ascending.
func (d *Diagram) EdgeIDs() []string {
	return slices.Sorted(maps.Keys(d.Edges))
}

// Children returns the IDs of nodes whose parent is id, sorted.
func (d *Diagram) Children(id string) []string {
	var out []string
	for _, nid := range d.NodeIDs() {
		if d.Nodes[nid].ParentID == id {
			out = append(out, nid)
		}
	}
	return out
}

// Descendants returns every node nested below id, depth first.
func (d *Diagram) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(p string) {
		for _, c := range d.Children(p) {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// Bounds returns the union of all node rectangles.
func (d *Diagram) Bounds() geom.Rect {
	var r geom.Rect
	first := true
	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		if first {
			r, first = n.Rect(), false
			continue
		}
		r = r.Union(n.Rect())
	}
	return r
}

// Clone returns a deep copy of the node and edge maps. Metadata maps are
// shared.
func (d *Diagram) Clone() *Diagram {
	return &Diagram{
		Meta:  d.Meta,
		Nodes: maps.Clone(d.Nodes),
		Edges: maps.Clone(d.Edges),
	}
}

// Search returns node IDs whose ID, label or type contains q
// (case-insensitive), sorted.
func (d *Diagram) Search(q string) []string {
	q = strings.ToLower(q)
	var out []string
	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		if strings.Contains(strings.ToLower(n.ID), q) ||
			strings.Contains(strings.ToLower(n.Label), q) ||
			strings.Contains(strings.ToLower(n.Type), q) {
			out = append(out, id)
		}
	}
	return out
}
