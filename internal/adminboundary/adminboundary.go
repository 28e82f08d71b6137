// Package adminboundary turns an administrative-boundary polygon or
// multipolygon feature into an OSM multipolygon relation. Each ring is
// chunked into ways no longer than
// model.MaxWayNodes, with a one-node overlap between consecutive chunks and
// the last chunk ending on the ring's first node, so the chain of chunks
// closes as a whole (a single chunk is itself closed; the chunks of a longer
// ring are not closed individually); exterior rings become "outer" members
// and interior rings become "inner" members.
package adminboundary

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"comm2osm/internal/interner"
	"comm2osm/internal/model"
	"comm2osm/internal/source"
)

// Row carries one MtdArea record; Build consults these by area_id to tag
// the relation.
type Row = source.MtdAreaRow

// adminBoundaryFeatCode is the NAVTEQ feature code identifying an
// administrative-boundary polygon. One revision of the source's admin-tag
// assembler wrote this check as `if (feat_code = 900156)` -- an assignment,
// not a comparison, which evaluates true for any non-zero feat_code and so
// never actually rejected anything. Build performs the comparison this was
// meant to be.
const adminBoundaryFeatCode = 900156

// FeatCodeMismatch is returned by Build when feat carries a FEAT_CODE
// attribute that identifies it as something other than an administrative
// boundary. A feature with no FEAT_CODE attribute at all is not rejected:
// the attribute is optional metadata, not a required column.
type FeatCodeMismatch struct {
	Got int64
}

func (e *FeatCodeMismatch) Error() string {
	return fmt.Sprintf("adminboundary: feat_code %d is not an administrative boundary (want %d)", e.Got, adminBoundaryFeatCode)
}

func featCode(attrs map[string]any) (int64, bool) {
	v, ok := attrs["FEAT_CODE"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Build assembles feat into a multipolygon relation. areaID is the feature's
// AREA_ID attribute; area holds every MtdArea row sharing that id (one per
// language), or nil if the area is unknown. admin2osm converts a NAVTEQ
// admin_lvl string to an OSM admin_level value (the mapping table itself is
// out of scope, same as internal/tags' vocabulary tables).
func Build(in *interner.Interner, feat source.PolygonFeature, areaID uint64, area []Row, admin2osm func(string) string) (model.Relation, error) {
	if code, ok := featCode(feat.Attrs); ok && code != adminBoundaryFeatCode {
		return model.Relation{}, &FeatCodeMismatch{Got: code}
	}

	var polys []orb.Polygon
	switch g := feat.Geometry.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{g}
	case orb.MultiPolygon:
		polys = []orb.Polygon(g)
	default:
		return model.Relation{}, fmt.Errorf("adminboundary: geometry type %T is not supported", feat.Geometry)
	}

	var members []model.Member
	for _, poly := range polys {
		if len(poly) == 0 {
			continue
		}
		outer, err := buildRingWays(in, poly[0])
		if err != nil {
			return model.Relation{}, err
		}
		for _, way := range outer {
			members = append(members, model.Member{Kind: model.MemberWay, Ref: int64(way.ID), Role: "outer"})
		}
		for _, ring := range poly[1:] {
			inner, err := buildRingWays(in, ring)
			if err != nil {
				return model.Relation{}, err
			}
			for _, way := range inner {
				members = append(members, model.Member{Kind: model.MemberWay, Ref: int64(way.ID), Role: "inner"})
			}
		}
	}

	rel := model.Relation{
		ID:      model.RelID(in.AllocateID()),
		Members: members,
		Tags:    buildTags(areaID, area, admin2osm),
	}
	return rel, nil
}

// buildRingWays chunks one closed ring into one or more ways, each holding
// at most model.MaxWayNodes node references. Consecutive chunks share their
// boundary node so the chain remains continuous, and the last chunk ends on
// the ring's first node, which closes the chain; a ring that needs more than
// one chunk yields chunks that are not closed individually.
func buildRingWays(in *interner.Interner, ring orb.Ring) ([]model.Way, error) {
	if len(ring) < 4 || ring[0] != ring[len(ring)-1] {
		return nil, fmt.Errorf("adminboundary: ring is not closed (first point != last point)")
	}

	// The ring's last point duplicates its first; intern nodes for every
	// point except that duplicate, then close the node list back onto the
	// first node, matching create_admin_boundary_way_nodes.
	nodes := make([]model.NodeID, len(ring)-1)
	for i := 0; i < len(ring)-1; i++ {
		nodes[i] = in.GetOrCreateEndpointNode(model.FromPoint(ring[i]))
	}
	nodes = append(nodes, nodes[0])

	const chunk = model.MaxWayNodes
	var ways []model.Way
	for i := 0; i < len(nodes); i += chunk - 1 {
		end := i + chunk
		if end > len(nodes) {
			end = len(nodes)
		}
		way := model.Way{
			ID:    model.WayID(in.AllocateID()),
			Nodes: append([]model.NodeID(nil), nodes[i:end]...),
		}
		if err := way.Validate(); err != nil {
			return nil, fmt.Errorf("adminboundary: %w", err)
		}
		ways = append(ways, way)
		if end == len(nodes) {
			break
		}
	}
	return ways, nil
}

// AdminLevelOutOfRange reports whether area's admin level falls outside the
// 1..7 legal range. Build consults this to skip the navteq_admin_level/
// admin_level tags without failing the feature: the ring geometry is still
// perfectly valid, only the level metadata is bad. Callers that want to log
// the occurrence check this themselves, since this package has no logging
// dependency of its own.
func AdminLevelOutOfRange(area []Row) bool {
	if len(area) == 0 {
		return false
	}
	lvl := area[0].AdminLvl
	return lvl < 1 || lvl > 7
}

func buildTags(areaID uint64, area []Row, admin2osm func(string) string) osm.Tags {
	t := osm.Tags{
		{Key: "type", Value: "multipolygon"},
		{Key: "boundary", Value: "administrative"},
	}
	if len(area) == 0 || AdminLevelOutOfRange(area) {
		return appendNameTags(t, area)
	}
	lvl := area[0].AdminLvl
	navteqLvl := fmt.Sprintf("%d", lvl)
	t = append(t, osm.Tag{Key: "navteq_admin_level", Value: navteqLvl})
	if admin2osm != nil {
		if osmLvl := admin2osm(navteqLvl); osmLvl != "" {
			t = append(t, osm.Tag{Key: "admin_level", Value: osmLvl})
		}
	}
	return appendNameTags(t, area)
}

func appendNameTags(t osm.Tags, area []Row) osm.Tags {
	for _, row := range area {
		if row.LangCode == "" || row.AreaName == "" {
			continue
		}
		t = append(t, osm.Tag{Key: "name:" + langTag(row.LangCode), Value: row.AreaName})
	}
	return t
}

// langTag lowercases a NAVTEQ ISO-639-2 code for the "name:<lang>" tag key.
// The real code-table translation (ISO-639-2 -> the BCP-47 subtag OSM
// convention prefers) is out of scope here, same as internal/tags'
// vocabulary tables; this plain lowercasing is the fallback used without
// that table.
func langTag(code string) string {
	b := []byte(code)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
