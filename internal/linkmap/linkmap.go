// Package linkmap implements the append-only link-id -> way-ids multimap
// and the way-id -> committed-way index. The street graph builder
// (internal/streetgraph) is the
// sole writer; the turn-restriction assembler (internal/turnrestriction)
// and internal/convert's final commit are its readers. The
// address-interpolation synthesiser (internal/addrinterp) works from the
// street feature's own geometry and does not read this map.
package linkmap

import (
	"fmt"

	"comm2osm/internal/model"
)

// Map holds both indices. Like the interner, it carries no goroutine-safety
// of its own; the street-graph phase runs single-threaded.
type Map struct {
	linkWays map[uint64][]model.WayID
	ways     map[model.WayID]model.Way
	order    []model.WayID
}

// New returns an empty Map.
func New() *Map {
	return &Map{
		linkWays: make(map[uint64][]model.WayID),
		ways:     make(map[model.WayID]model.Way),
	}
}

// Put appends wayID to link_id's way list, in the order called, and commits
// the way's node sequence so later lookups resolve it in O(1). Once a
// link-id's ways have been fully emitted, that link-id's entry is never
// modified again: append-then-read.
func (m *Map) Put(linkID uint64, way model.Way) {
	m.linkWays[linkID] = append(m.linkWays[linkID], way.ID)
	m.ways[way.ID] = way
	m.order = append(m.order, way.ID)
}

// CommittedWays returns every way Put has committed, in commit order --
// the order internal/osmio's buffer expects its way list in.
func (m *Map) CommittedWays() []model.Way {
	out := make([]model.Way, len(m.order))
	for i, id := range m.order {
		out[i] = m.ways[id]
	}
	return out
}

// WaysForLink returns the ordered way-ids synthesized from linkID, in
// emission order (i.e. following the linestring's natural direction), and
// whether any were found.
func (m *Map) WaysForLink(linkID uint64) ([]model.WayID, bool) {
	ids, ok := m.linkWays[linkID]
	return ids, ok
}

// Way returns the committed way for id.
func (m *Map) Way(id model.WayID) (model.Way, bool) {
	w, ok := m.ways[id]
	return w, ok
}

// Endpoints returns the first and last node of the committed way id.
func (m *Map) Endpoints(id model.WayID) (first, last model.NodeID, err error) {
	w, ok := m.ways[id]
	if !ok {
		return 0, 0, fmt.Errorf("linkmap: way %d not committed", id)
	}
	if len(w.Nodes) == 0 {
		return 0, 0, fmt.Errorf("linkmap: way %d has no nodes", id)
	}
	return w.Nodes[0], w.Nodes[len(w.Nodes)-1], nil
}
