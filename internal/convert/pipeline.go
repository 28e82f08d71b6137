// Package convert orchestrates every collaborator into the single
// per-directory conversion pass: ingest streets and their z-levels, building
// each street's address interpolation right after that street
// (single-threaded, since every phase after the first reads the link-map
// and interner the street-graph phase built), then turn restrictions and
// administrative boundaries, each independent of
// the others and safe to run in any order because none of them mutates the
// street graph, only reads it.
package convert

import (
	"comm2osm/internal/addrinterp"
	"comm2osm/internal/adminboundary"
	"comm2osm/internal/source"
	"comm2osm/internal/streetgraph"
	"comm2osm/internal/turnrestriction"
	"comm2osm/internal/zlevel"
)

// DirectoryInput is one convertible directory's already-parsed contents:
// the typed records a shapefile/DBF reader has already produced. Path is
// carried only for error messages.
type DirectoryInput struct {
	Path string

	Streets []source.StreetFeature
	Zlevels []zlevel.Row
	Cdms    []source.CdmsRow
	Rdms    []source.RdmsRow

	MtdArea         []source.MtdAreaRow
	AdminBoundaries []source.PolygonFeature
}

// ConvertDirectory runs every phase for one input directory, accumulating
// nodes and ways into rc's shared interner and link-map and relations into
// rc's internal buffer; call RunContext.Commit once after every directory
// in the run has been converted. It never aborts early except for the
// z-level table's own fatal-for-the-run error: every other failure is
// feature- or manoeuvre-scoped and is collected into the
// returned slice while the rest of the directory keeps processing.
func (rc *RunContext) ConvertDirectory(dir DirectoryInput) []*ConvertError {
	var errs []*ConvertError

	zTables, err := zlevel.Build(dir.Zlevels)
	if err != nil {
		errs = append(errs, newErr(KindOutOfRangeZLevel, dir.Path, 0, "%v", err))
		return errs
	}

	builder := streetgraph.New(rc.In, rc.LinkMap, rc.Translator, rc.Side)
	for _, feat := range dir.Streets {
		if err := builder.Ingest(feat, zTables[feat.LinkID]); err != nil {
			kind := KindGeometryMismatch
			if _, ok := err.(*streetgraph.EnumError); ok {
				kind = KindUnknownEnum
			}
			errs = append(errs, newErr(kind, dir.Path, feat.LinkID, "%v", err))
			continue
		}
		if feat.AddrType == "B" {
			rc.buildAddrInterp(dir.Path, feat, &errs)
		}
	}

	restrictions, restrictionErrs := turnrestriction.Build(dir.Cdms, dir.Rdms, rc.LinkMap, rc.In)
	for _, e := range restrictionErrs {
		errs = append(errs, newErr(KindUnmatchedReference, dir.Path, 0, "%v", e))
	}
	for _, r := range restrictions {
		if r.TopologyFallback {
			errs = append(errs, newErr(KindTopologyFallback, dir.Path, 0, "restriction relation %d: no common via node, emitted with from/to members only", r.Relation.ID))
		}
		rc.relations = append(rc.relations, r.Relation)
	}

	areaRows := groupMtdArea(dir.MtdArea)
	for _, feat := range dir.AdminBoundaries {
		areaID, ok := areaIDFromAttrs(feat.Attrs)
		if !ok {
			errs = append(errs, newErr(KindMissingColumn, dir.Path, 0, "admin boundary feature carries no AREA_ID attribute"))
			continue
		}
		rows := areaRows[areaID]
		if adminboundary.AdminLevelOutOfRange(rows) {
			errs = append(errs, newErr(KindUnknownAdminLevel, dir.Path, 0, "area %d: admin_lvl %d outside 1..7, tag skipped", areaID, rows[0].AdminLvl))
		}
		rel, err := adminboundary.Build(rc.In, feat, areaID, rows, rc.AdminLevelMap)
		if err != nil {
			errs = append(errs, newErr(KindGeometryMismatch, dir.Path, 0, "%v", err))
			continue
		}
		rc.relations = append(rc.relations, rel)
	}

	return errs
}

// buildAddrInterp builds both sides of feat's interpolation way. Each side
// fails independently (addrinterp.Build's own contract); an opted-out side
// (ok=false, err=nil) is silent.
func (rc *RunContext) buildAddrInterp(dir string, feat source.StreetFeature, errs *[]*ConvertError) {
	for _, side := range [...]addrinterp.Side{addrinterp.Left, addrinterp.Right} {
		way, ok, err := addrinterp.Build(rc.In, feat, side)
		if err != nil {
			*errs = append(*errs, newErr(KindGeometryMismatch, dir, feat.LinkID, "%v", err))
			continue
		}
		if ok {
			rc.addrWays = append(rc.addrWays, way)
		}
	}
}

// groupMtdArea buckets MtdArea rows by area_id: a given area typically
// carries one row per language.
func groupMtdArea(rows []source.MtdAreaRow) map[uint64][]source.MtdAreaRow {
	out := make(map[uint64][]source.MtdAreaRow, len(rows))
	for _, r := range rows {
		out[r.AreaID] = append(out[r.AreaID], r)
	}
	return out
}

// areaIDFromAttrs reads the AREA_ID attribute off an admin-boundary
// PolygonFeature, accepting any of the numeric types a DBF reader might
// plausibly decode it to.
func areaIDFromAttrs(attrs map[string]any) (uint64, bool) {
	v, ok := attrs["AREA_ID"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		return uint64(n), true
	case int:
		return uint64(n), true
	case float64:
		return uint64(n), true
	default:
		return 0, false
	}
}
