// Package model defines the node/way/relation graph that the street graph
// builder and its collaborators populate and the output writer serializes.
package model

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Coordinate is a (lon, lat) pair stored at input precision. Equality is
// exact: two coordinates are the same intern key only if both components are
// bit-identical.
type Coordinate struct {
	Lon, Lat float64
}

// Point converts the coordinate to an orb.Point ([lon, lat]).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// FromPoint builds a Coordinate from an orb.Point.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lon: p[0], Lat: p[1]}
}

// NodeID, WayID and RelID are the three OSM object kinds. All three are
// allocated from a single monotonic counter (interner.Interner.AllocateID),
// so distinct kinds never collide even though each wraps the same
// underlying integer type paulmach/osm uses for its own IDs.
type (
	NodeID = osm.NodeID
	WayID  = osm.WayID
	RelID  = osm.RelationID
)

// Node is a single interned or internal graph vertex. Nodes are immutable
// once constructed: tags are attached at construction time only.
type Node struct {
	ID    NodeID
	Coord Coordinate
	Tags  osm.Tags
}

// Way is an ordered sequence of 2..1000 node references plus tags.
type Way struct {
	ID    WayID
	Nodes []NodeID
	Tags  osm.Tags
}

// MaxWayNodes is the OSM hard limit on the number of node references a way
// may carry; the admin-boundary ring chunker enforces it.
const MaxWayNodes = 1000

// MemberKind enumerates the three relation member kinds.
type MemberKind int

const (
	MemberNode MemberKind = iota
	MemberWay
	MemberRelation
)

// Member is one entry in a Relation's ordered member list.
type Member struct {
	Kind MemberKind
	Ref  int64 // target NodeID/WayID/RelID, depending on Kind
	Role string
}

// Relation is an ordered sequence of typed, role-tagged members plus tags.
type Relation struct {
	ID      RelID
	Members []Member
	Tags    osm.Tags
}

// Validate checks that a way's node count stays within the OSM-legal range.
func (w Way) Validate() error {
	if len(w.Nodes) < 2 || len(w.Nodes) > MaxWayNodes {
		return fmt.Errorf("way %d has %d nodes, want 2..%d", w.ID, len(w.Nodes), MaxWayNodes)
	}
	return nil
}
