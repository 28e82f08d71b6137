// Package streetgraph implements the street graph builder, the hard
// engineering core of the whole conversion. It ingests street linestrings
// together with their per-vertex
// Z-level tables, materializes a topologically correct node/way graph,
// splits each linestring into multiple ways wherever the Z-level changes,
// and preserves link identity across the split via internal/linkmap so
// turn restrictions can still resolve each link to its ways.
package streetgraph

import (
	"fmt"
	"strconv"

	"github.com/paulmach/osm"

	"comm2osm/internal/interner"
	"comm2osm/internal/linkmap"
	"comm2osm/internal/model"
	"comm2osm/internal/source"
	"comm2osm/internal/tags"
	"comm2osm/internal/zlevel"
)

// Builder owns the interner and link-map collaborators and the tag
// translator, and exposes the single entry point for street ingestion.
type Builder struct {
	Interner   *interner.Interner
	LinkMap    *linkmap.Map
	Translator tags.Translator
	Side       tags.SideTables
}

// New returns a Builder wired to the given collaborators.
func New(in *interner.Interner, lm *linkmap.Map, tr tags.Translator, side tags.SideTables) *Builder {
	return &Builder{Interner: in, LinkMap: lm, Translator: tr, Side: side}
}

// IngestError reports a feature-level failure: fatal for the feature,
// logged, processing continues. It is returned, never panics, so the
// caller decides whether to log-and-continue.
type IngestError struct {
	LinkID uint64
	Reason string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("streetgraph: link %d: %s", e.LinkID, e.Reason)
}

// EnumError reports a street feature whose DIR_TRAVEL or FERRY_TYPE field
// holds a value outside its legal set. Fatal for the feature, distinct from
// IngestError so callers can classify it as an unknown-enum failure rather
// than a generic ingestion failure.
type EnumError struct {
	LinkID uint64
	Field  string
	Value  string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("streetgraph: link %d: %s has unrecognized value %q", e.LinkID, e.Field, e.Value)
}

func legalDirTravel(d source.DirTravel) bool {
	switch d {
	case source.DirForward, source.DirTo, source.DirBoth:
		return true
	default:
		return false
	}
}

func legalFerryType(f source.FerryType) bool {
	switch f {
	case source.FerryNone, source.FerryH, source.FerryB, source.FerryR:
		return true
	default:
		return false
	}
}

// Ingest is the entry point for one street feature. zTable is the
// feature's Z-level rows (already legality-checked by
// zlevel.Build); it may be nil when the link has no Z-level entries at all.
func (b *Builder) Ingest(feat source.StreetFeature, zTable zlevel.Table) error {
	if !legalDirTravel(feat.DirTravel) {
		return &EnumError{LinkID: feat.LinkID, Field: "DIR_TRAVEL", Value: string(feat.DirTravel)}
	}
	if !legalFerryType(feat.FerryType) {
		return &EnumError{LinkID: feat.LinkID, Field: "FERRY_TYPE", Value: string(feat.FerryType)}
	}

	verts := feat.Geometry
	n := len(verts)
	if n < 2 {
		return &IngestError{LinkID: feat.LinkID, Reason: "geometry has fewer than 2 vertices"}
	}
	last := n - 1

	if feat.FerryType != source.FerryNone && len(zTable) > 0 {
		zTable = zlevel.RemoveFerryNonEndpointZLevels(zTable, last)
	}

	zFirst, zLast := endpointZLevels(zTable, last)

	firstCoord := model.FromPoint(verts[0])
	lastCoord := model.FromPoint(verts[last])

	firstNode, err := b.endpointNode(firstCoord, zFirst)
	if err != nil {
		return &IngestError{LinkID: feat.LinkID, Reason: err.Error()}
	}
	lastNode, err := b.endpointNode(lastCoord, zLast)
	if err != nil {
		return &IngestError{LinkID: feat.LinkID, Reason: err.Error()}
	}

	// Fresh internal nodes for the interior vertices. Shared across every
	// sub-way cut from this linestring: allocate once, index by vertex
	// position.
	nodeAt := make([]model.NodeID, n)
	nodeAt[0] = firstNode
	nodeAt[last] = lastNode
	for i := 1; i < last; i++ {
		nodeAt[i] = b.Interner.CreateInternalNode(model.FromPoint(verts[i]))
	}

	baseTags, observedLinkID := b.Translator.Translate(feat, b.Side)
	if observedLinkID != feat.LinkID {
		return &IngestError{LinkID: feat.LinkID, Reason: fmt.Sprintf("translator returned link_id %d, want %d", observedLinkID, feat.LinkID)}
	}

	if len(zTable) == 0 {
		way := model.Way{
			ID:    model.WayID(b.Interner.AllocateID()),
			Nodes: append([]model.NodeID(nil), nodeAt...),
			Tags:  baseTags,
		}
		if err := way.Validate(); err != nil {
			return &IngestError{LinkID: feat.LinkID, Reason: err.Error()}
		}
		b.LinkMap.Put(feat.LinkID, way)
		return nil
	}

	subways := zlevel.Split(zTable, last)
	for _, sw := range subways {
		wayTags := append(osm.Tags(nil), baseTags...)
		if sw.Z != 0 {
			wayTags = append(wayTags, osm.Tag{Key: "layer", Value: strconv.Itoa(int(sw.Z))})
		}
		way := model.Way{
			ID:    model.WayID(b.Interner.AllocateID()),
			Nodes: append([]model.NodeID(nil), nodeAt[sw.First:sw.Last+1]...),
			Tags:  wayTags,
		}
		if err := way.Validate(); err != nil {
			return &IngestError{LinkID: feat.LinkID, Reason: err.Error()}
		}
		b.LinkMap.Put(feat.LinkID, way)
	}
	return nil
}

// endpointZLevels resolves the Z-level carried at each endpoint vertex,
// if the Z-level table has an entry for it.
func endpointZLevels(t zlevel.Table, last int) (first, lastZ int8) {
	if len(t) == 0 {
		return 0, 0
	}
	if t[0].VertexIndex == 0 {
		first = t[0].Z
	}
	if t[len(t)-1].VertexIndex == last {
		lastZ = t[len(t)-1].Z
	}
	return first, lastZ
}

// endpointNode resolves an endpoint through the Z-level-aware interner.
func (b *Builder) endpointNode(c model.Coordinate, z int8) (model.NodeID, error) {
	if z == 0 {
		return b.Interner.GetOrCreateEndpointNode(c), nil
	}
	return b.Interner.GetOrCreateZlvlNode(c, z)
}
