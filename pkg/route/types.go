package route

import (
	"github.com/awscfgdiagram/orthoroute/pkg/geom"
)

// Node is the router's read-only view of a diagram node.
type Node struct {
	ID string
	// Container marks grouping shapes (cloud, VPC, AZ, subnet). Containers
	// can be connected to but are never obstacles.
	Container bool
	Rect      geom.Rect
}

// Edge is a logical connection between two nodes.
type Edge struct {
	ID     string
	Source string
	Target string
}

// IconRect is the obstacle rectangle of a leaf node.
type IconRect struct {
	NodeID string
	geom.Rect
}

// NodeIconRect returns the obstacle rectangle of n. Containers have none.
func NodeIconRect(n Node) (IconRect, bool) {
	if n.Container {
		return IconRect{}, false
	}
	return IconRect{NodeID: n.ID, Rect: n.Rect}, true
}

// Candidate is one generated path shape with its obstacle hit count.
type Candidate struct {
	Path []geom.Point
	Hits int
}

// RoutedEdge is the committed route of one edge. Waypoints start at the
// source port and end at the target port; an empty slice means the edge
// could not be routed (dangling reference or no surviving candidate).
type RoutedEdge struct {
	EdgeID       string       `json:"edgeId" msgpack:"edgeId"`
	Waypoints    []geom.Point `json:"waypoints" msgpack:"waypoints"`
	SrcSide      geom.Side    `json:"srcSide" msgpack:"srcSide"`
	DstSide      geom.Side    `json:"dstSide" msgpack:"dstSide"`
	SrcOffset    float64      `json:"srcOffset" msgpack:"srcOffset"`
	DstOffset    float64      `json:"dstOffset" msgpack:"dstOffset"`
	SourceNodeID string       `json:"sourceNodeId" msgpack:"sourceNodeId"`
	TargetNodeID string       `json:"targetNodeId" msgpack:"targetNodeId"`
}

// Empty reports whether the edge has no route.
func (e RoutedEdge) Empty() bool { return len(e.Waypoints) == 0 }

// Bends returns the number of direction changes along the route.
func (e RoutedEdge) Bends() int { return geom.Bends(e.Waypoints) }

// Length returns the Manhattan length of the route.
func (e RoutedEdge) Length() float64 { return geom.Length(e.Waypoints) }

// Score is the lexicographic quality of a candidate: obstacle hits first,
// then bends, then crossings with already committed routes, then length.
type Score struct {
	Hits      int
	Bends     int
	Crossings int
	Length    float64
}

// Less reports whether s is strictly better than o.
func (s Score) Less(o Score) bool {
	if s.Hits != o.Hits {
		return s.Hits < o.Hits
	}
	if s.Bends != o.Bends {
		return s.Bends < o.Bends
	}
	if s.Crossings != o.Crossings {
		return s.Crossings < o.Crossings
	}
	return s.Length < o.Length-geom.Eps
}
