// Package osmio buffers the node/way/relation graph a conversion run
// produces and serializes it to an OSM file. XML output is written
// directly with github.com/paulmach/osm's object types plus encoding/xml;
// PBF output is an interface seam only (see Encoder), since writing PBF
// has no library support in this build -- github.com/paulmach/osm/osmpbf
// is a decoder only.
package osmio

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/paulmach/osm"

	"comm2osm/internal/model"
)

// dummyUser, dummyChangeset and dummyTimestamp are the fixed metadata every
// emitted object carries, since NAVTEQ features carry no OSM edit history
// of their own.
const (
	dummyUser      = "import"
	dummyUID       = osm.UserID(1)
	dummyChangeset = osm.ChangesetID(1)
	dummyVersion   = 1
)

var dummyTimestamp = time.Unix(1, 0).UTC()

// Buffer accumulates nodes, ways and relations in commit order -- the order
// internal/convert's pipeline produces them in -- ready for encoding.
type Buffer struct {
	Nodes     osm.Nodes
	Ways      osm.Ways
	Relations osm.Relations
}

// AddNode appends n to the buffer, converting it to an osm.Node with the
// dummy metadata attached.
func (b *Buffer) AddNode(n model.Node) {
	b.Nodes = append(b.Nodes, &osm.Node{
		ID:        n.ID,
		Lat:       n.Coord.Lat,
		Lon:       n.Coord.Lon,
		Version:   dummyVersion,
		Timestamp: dummyTimestamp,
		Changeset: dummyChangeset,
		UserID:    dummyUID,
		User:      dummyUser,
		Tags:      n.Tags,
		Visible:   true,
	})
}

// AddWay appends w to the buffer.
func (b *Buffer) AddWay(w model.Way) {
	nodes := make(osm.WayNodes, len(w.Nodes))
	for i, id := range w.Nodes {
		nodes[i] = osm.WayNode{ID: id}
	}
	b.Ways = append(b.Ways, &osm.Way{
		ID:        w.ID,
		Version:   dummyVersion,
		Timestamp: dummyTimestamp,
		Changeset: dummyChangeset,
		UserID:    dummyUID,
		User:      dummyUser,
		Tags:      w.Tags,
		Nodes:     nodes,
		Visible:   true,
	})
}

// AddRelation appends r to the buffer.
func (b *Buffer) AddRelation(r model.Relation) {
	members := make(osm.Members, len(r.Members))
	for i, m := range r.Members {
		members[i] = osm.Member{
			Type: memberType(m.Kind),
			Ref:  m.Ref,
			Role: m.Role,
		}
	}
	b.Relations = append(b.Relations, &osm.Relation{
		ID:        r.ID,
		Version:   dummyVersion,
		Timestamp: dummyTimestamp,
		Changeset: dummyChangeset,
		UserID:    dummyUID,
		User:      dummyUser,
		Tags:      r.Tags,
		Members:   members,
		Visible:   true,
	})
}

func memberType(k model.MemberKind) osm.Type {
	switch k {
	case model.MemberNode:
		return osm.TypeNode
	case model.MemberWay:
		return osm.TypeWay
	case model.MemberRelation:
		return osm.TypeRelation
	default:
		return ""
	}
}

// WriteXML serializes the buffer as an OSM XML document to w.
func (b *Buffer) WriteXML(w io.Writer) error {
	doc := &osm.OSM{
		Nodes:     b.Nodes,
		Ways:      b.Ways,
		Relations: b.Relations,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("osmio: write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("osmio: encode osm xml: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("osmio: write trailing newline: %w", err)
	}
	return nil
}

// Encoder is implemented by an external PBF writer: a writer that accepts
// an append-only stream of committed objects. This repo supplies the
// buffer that stream is built from and the
// format-selection plumbing in cmd/comm2osm, but not a concrete encoder.
type Encoder interface {
	Encode(w io.Writer, buf *Buffer) error
}

// Format selects the output encoding by the output path's suffix.
type Format int

const (
	FormatXML Format = iota
	FormatPBF
)

// FormatForPath returns the Format implied by path's extension: the output
// file's extension selects the writer.
func FormatForPath(path string) (Format, error) {
	switch ext(path) {
	case ".osm", ".xml", "":
		return FormatXML, nil
	case ".pbf":
		return FormatPBF, nil
	default:
		return 0, fmt.Errorf("osmio: unrecognized output extension %q", ext(path))
	}
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
