// Package interner implements the geometry/ID interner: it allocates
// monotonic OSM object IDs and de-duplicates nodes by coordinate, and by
// coordinate-plus-Z-level.
package interner

import (
	"fmt"

	"github.com/paulmach/osm"

	"comm2osm/internal/model"
)

// zKey is the intern key for a node that sits at a non-zero Z-level.
type zKey struct {
	c model.Coordinate
	z int8
}

// Interner owns the single monotonic ID counter, the two endpoint maps
// that key node interning, and the list of every node created so far. It
// carries no other state and is safe to embed in a larger run context
// shared across a conversion run.
type Interner struct {
	nextID uint64

	// way_end_points: Coordinate -> NodeID, keyed when the effective
	// z-level at that endpoint is 0.
	endpoints map[model.Coordinate]model.NodeID

	// z_lvl_nodes: (Coordinate, z_level != 0) -> NodeID.
	zlvl map[zKey]model.NodeID

	nodes []model.Node
}

// New returns an Interner whose ID counter starts at 1.
func New() *Interner {
	return &Interner{
		nextID:    1,
		endpoints: make(map[model.Coordinate]model.NodeID),
		zlvl:      make(map[zKey]model.NodeID),
	}
}

// AllocateID returns the next free ID and advances the counter. It never
// fails in practice; exhausting a 64-bit counter is not a condition this
// package guards against.
func (in *Interner) AllocateID() uint64 {
	id := in.nextID
	in.nextID++
	return id
}

// Nodes returns every node created so far, in allocation order.
func (in *Interner) Nodes() []model.Node {
	return in.nodes
}

func (in *Interner) newNode(c model.Coordinate) model.Node {
	n := model.Node{ID: model.NodeID(in.AllocateID()), Coord: c}
	in.nodes = append(in.nodes, n)
	return n
}

// GetOrCreateEndpointNode returns the node interned for coord at z-level 0,
// creating it on first use.
func (in *Interner) GetOrCreateEndpointNode(c model.Coordinate) model.NodeID {
	if id, ok := in.endpoints[c]; ok {
		return id
	}
	n := in.newNode(c)
	in.endpoints[c] = n.ID
	return n.ID
}

// GetOrCreateZlvlNode returns the node interned for (coord, z), creating it
// on first use. z must be in -4..5 and non-zero; callers are expected to
// have already validated z against zlevel.Legal.
func (in *Interner) GetOrCreateZlvlNode(c model.Coordinate, z int8) (model.NodeID, error) {
	if z == 0 {
		return 0, fmt.Errorf("interner: GetOrCreateZlvlNode called with z=0, use GetOrCreateEndpointNode")
	}
	k := zKey{c: c, z: z}
	if id, ok := in.zlvl[k]; ok {
		return id, nil
	}
	n := in.newNode(c)
	in.zlvl[k] = n.ID
	return n.ID, nil
}

// CreateInternalNode always allocates a fresh, never-interned node. Used for
// the interior vertices of a single linestring.
func (in *Interner) CreateInternalNode(c model.Coordinate) model.NodeID {
	return in.newNode(c).ID
}

// CreateTaggedNode allocates a fresh node carrying tags, the way
// build_node_with_tag does for address-interpolation endpoints: these
// nodes are never intern targets, since a housenumber tag makes two
// otherwise-identical coordinates distinct features.
func (in *Interner) CreateTaggedNode(c model.Coordinate, tags osm.Tags) model.NodeID {
	n := in.newNode(c)
	n.Tags = tags
	in.nodes[len(in.nodes)-1] = n
	return n.ID
}
