package convert

import (
	"testing"

	"github.com/paulmach/orb"

	"comm2osm/internal/osmio"
	"comm2osm/internal/source"
	"comm2osm/internal/tags"
	"comm2osm/internal/zlevel"
)

func straightStreet(linkID uint64, addrType string) source.StreetFeature {
	return source.StreetFeature{
		LinkID:    linkID,
		Geometry:  orb.LineString{{0, 0}, {1, 0}, {2, 0}},
		Name:      "Test Street",
		FuncClass: 4,
		AddrType:  addrType,
		DirTravel: source.DirBoth,
		Left:      source.AddrSide{RefAddr: "1", NRefAddr: "9", AddrSch: "O"},
		Right:     source.AddrSide{RefAddr: "2", NRefAddr: "10", AddrSch: "E"},
	}
}

func TestConvertDirectory_IngestsStreetsAndCommitsNodesAndWays(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	dir := DirectoryInput{
		Path:    "t1",
		Streets: []source.StreetFeature{straightStreet(1, "")},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ways, ok := rc.LinkMap.WaysForLink(1)
	if !ok || len(ways) != 1 {
		t.Fatalf("WaysForLink(1) = %v, %v", ways, ok)
	}
	if got := len(rc.In.Nodes()); got != 3 {
		t.Fatalf("interned %d nodes, want 3", got)
	}
}

func TestConvertDirectory_AddrTypeBBuildsInterpolationWays(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	dir := DirectoryInput{
		Path:    "t2",
		Streets: []source.StreetFeature{straightStreet(1, "B")},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(rc.addrWays) != 2 {
		t.Fatalf("got %d interpolation ways, want 2", len(rc.addrWays))
	}
}

func TestConvertDirectory_OutOfRangeZLevelIsFatalForTheRun(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	dir := DirectoryInput{
		Path:    "t3",
		Streets: []source.StreetFeature{straightStreet(1, "")},
		Zlevels: []zlevel.Row{{LinkID: 1, PointNum: 1, Z: 9}},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly 1", len(errs))
	}
	if !errs[0].Fatal() || errs[0].Kind != KindOutOfRangeZLevel {
		t.Errorf("err = %+v, want fatal KindOutOfRangeZLevel", errs[0])
	}
}

func TestConvertDirectory_TurnRestrictionBuildsRelation(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	street1 := straightStreet(1, "")
	street2 := source.StreetFeature{
		LinkID:    2,
		Geometry:  orb.LineString{{2, 0}, {3, 0}},
		FuncClass: 4,
		DirTravel: source.DirBoth,
	}
	dir := DirectoryInput{
		Path:    "t4",
		Streets: []source.StreetFeature{street1, street2},
		Cdms:    []source.CdmsRow{{CondID: 1, LinkID: 1, CondType: source.RestrictedManoeuvre}},
		Rdms: []source.RdmsRow{
			{CondID: 1, LinkID: 1, ManLinkID: 2},
		},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(rc.relations) != 1 {
		t.Fatalf("got %d relations, want 1", len(rc.relations))
	}
	if got := rc.relations[0].Tags.Find("type"); got != "restriction" {
		t.Errorf("relation type = %q, want restriction", got)
	}
}

func TestConvertDirectory_AdminBoundaryMissingAreaIDIsLoggedAndSkipped(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	dir := DirectoryInput{
		Path: "t5",
		AdminBoundaries: []source.PolygonFeature{
			{Geometry: orb.Polygon{ring}, Attrs: map[string]any{}},
		},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 1 || errs[0].Kind != KindMissingColumn {
		t.Fatalf("errs = %v, want exactly one KindMissingColumn", errs)
	}
	if len(rc.relations) != 0 {
		t.Errorf("got %d relations, want 0", len(rc.relations))
	}
}

func TestConvertDirectory_AdminBoundaryBuildsMultipolygonRelation(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	dir := DirectoryInput{
		Path: "t6",
		AdminBoundaries: []source.PolygonFeature{
			{Geometry: orb.Polygon{ring}, Attrs: map[string]any{"AREA_ID": uint64(7), "FEAT_CODE": int64(900156)}},
		},
		MtdArea: []source.MtdAreaRow{{AreaID: 7, AdminLvl: 2, LangCode: "ENG", AreaName: "Testland"}},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(rc.relations) != 1 {
		t.Fatalf("got %d relations, want 1", len(rc.relations))
	}
	if got := rc.relations[0].Tags.Find("name:eng"); got != "Testland" {
		t.Errorf("name:eng = %q, want Testland", got)
	}
}

func TestConvertDirectory_AdminBoundaryWrongFeatCodeIsSkipped(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	dir := DirectoryInput{
		Path: "t7",
		AdminBoundaries: []source.PolygonFeature{
			{Geometry: orb.Polygon{ring}, Attrs: map[string]any{"AREA_ID": uint64(7), "FEAT_CODE": int64(123)}},
		},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 1 || errs[0].Kind != KindGeometryMismatch {
		t.Fatalf("errs = %v, want exactly one KindGeometryMismatch", errs)
	}
}

func TestConvertDirectory_AdminBoundaryOutOfRangeLevelSkipsTagNotRelation(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	dir := DirectoryInput{
		Path: "t9",
		AdminBoundaries: []source.PolygonFeature{
			{Geometry: orb.Polygon{ring}, Attrs: map[string]any{"AREA_ID": uint64(7)}},
		},
		MtdArea: []source.MtdAreaRow{{AreaID: 7, AdminLvl: 9, LangCode: "ENG", AreaName: "Testland"}},
	}
	errs := rc.ConvertDirectory(dir)
	if len(errs) != 1 || errs[0].Kind != KindUnknownAdminLevel {
		t.Fatalf("errs = %v, want exactly one KindUnknownAdminLevel", errs)
	}
	if len(rc.relations) != 1 {
		t.Fatalf("got %d relations, want 1 (relation still emitted, only the tag is skipped)", len(rc.relations))
	}
	if got := rc.relations[0].Tags.Find("navteq_admin_level"); got != "" {
		t.Errorf("navteq_admin_level = %q, want empty", got)
	}
	if got := rc.relations[0].Tags.Find("name:eng"); got != "Testland" {
		t.Errorf("name:eng = %q, want Testland (names still carried even when the level is bad)", got)
	}
}

func TestCommit_DrainsNodesWaysAndRelations(t *testing.T) {
	rc := New(tags.PassThrough{}, tags.SideTables{})
	street1 := straightStreet(1, "")
	street2 := source.StreetFeature{
		LinkID:    2,
		Geometry:  orb.LineString{{2, 0}, {3, 0}},
		FuncClass: 4,
		DirTravel: source.DirBoth,
	}
	dir := DirectoryInput{
		Path:    "t8",
		Streets: []source.StreetFeature{street1, street2},
		Cdms:    []source.CdmsRow{{CondID: 1, LinkID: 1, CondType: source.RestrictedManoeuvre}},
		Rdms:    []source.RdmsRow{{CondID: 1, LinkID: 1, ManLinkID: 2}},
	}
	if errs := rc.ConvertDirectory(dir); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var buf osmio.Buffer
	rc.Commit(&buf)
	if len(buf.Nodes) == 0 {
		t.Error("Commit produced no nodes")
	}
	if len(buf.Ways) == 0 {
		t.Error("Commit produced no ways")
	}
	if len(buf.Relations) != 1 {
		t.Errorf("Commit produced %d relations, want 1", len(buf.Relations))
	}
}
