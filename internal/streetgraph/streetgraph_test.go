package streetgraph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"comm2osm/internal/interner"
	"comm2osm/internal/linkmap"
	"comm2osm/internal/source"
	"comm2osm/internal/tags"
	"comm2osm/internal/zlevel"
)

func newBuilder() *Builder {
	return New(interner.New(), linkmap.New(), tags.PassThrough{}, tags.SideTables{})
}

func line(coords ...[2]float64) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c[0], c[1]}
	}
	return ls
}

func TestIngest_NoZLevelProducesSingleWay(t *testing.T) {
	b := newBuilder()
	feat := source.StreetFeature{
		LinkID:    1,
		Geometry:  line([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0}),
		DirTravel: source.DirBoth,
	}
	if err := b.Ingest(feat, nil); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	ids, ok := b.LinkMap.WaysForLink(1)
	if !ok || len(ids) != 1 {
		t.Fatalf("WaysForLink(1) = %v, %v, want exactly one way", ids, ok)
	}
	way, _ := b.LinkMap.Way(ids[0])
	if len(way.Nodes) != 3 {
		t.Errorf("way has %d nodes, want 3", len(way.Nodes))
	}
}

func TestIngest_SplitPreservesLinkOrder(t *testing.T) {
	b := newBuilder()
	feat := source.StreetFeature{
		LinkID: 42,
		Geometry: line(
			[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0},
			[2]float64{3, 0}, [2]float64{4, 0}, [2]float64{5, 0},
		),
		DirTravel: source.DirBoth,
	}
	// z-levels 2 1 0 0 1 2 -> sub-way z-levels [2,1,0,1,2].
	zt := zlevel.Table{
		{VertexIndex: 0, Z: 2}, {VertexIndex: 1, Z: 1},
		{VertexIndex: 4, Z: 1}, {VertexIndex: 5, Z: 2},
	}
	if err := b.Ingest(feat, zt); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	ids, ok := b.LinkMap.WaysForLink(42)
	if !ok || len(ids) != 5 {
		t.Fatalf("WaysForLink(42) = %v, want 5 ways", ids)
	}
	// link_id_map preserves emission order (property 4): consecutive
	// sub-ways share a node at their boundary.
	for i := 0; i+1 < len(ids); i++ {
		wa, _ := b.LinkMap.Way(ids[i])
		wb, _ := b.LinkMap.Way(ids[i+1])
		if wa.Nodes[len(wa.Nodes)-1] != wb.Nodes[0] {
			t.Errorf("sub-way %d last node %d != sub-way %d first node %d", i, wa.Nodes[len(wa.Nodes)-1], i+1, wb.Nodes[0])
		}
	}
}

func TestIngest_EndpointInterningSoundness(t *testing.T) {
	// Property 2: two ways meeting at the same coordinate with the same
	// (zero) effective z-level share a node.
	b := newBuilder()
	shared := [2]float64{5, 5}
	f1 := source.StreetFeature{LinkID: 1, Geometry: line([2]float64{0, 0}, shared), DirTravel: source.DirBoth}
	f2 := source.StreetFeature{LinkID: 2, Geometry: line(shared, [2]float64{10, 10}), DirTravel: source.DirBoth}
	if err := b.Ingest(f1, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Ingest(f2, nil); err != nil {
		t.Fatal(err)
	}
	ids1, _ := b.LinkMap.WaysForLink(1)
	ids2, _ := b.LinkMap.WaysForLink(2)
	w1, _ := b.LinkMap.Way(ids1[0])
	w2, _ := b.LinkMap.Way(ids2[0])
	if w1.Nodes[len(w1.Nodes)-1] != w2.Nodes[0] {
		t.Errorf("shared endpoint got distinct nodes: %d vs %d", w1.Nodes[len(w1.Nodes)-1], w2.Nodes[0])
	}
}

func TestIngest_ZLevelStackingProducesDistinctNodes(t *testing.T) {
	// Property 3: same (lon,lat) but different z-level -> distinct nodes.
	b := newBuilder()
	shared := [2]float64{5, 5}
	f1 := source.StreetFeature{LinkID: 1, Geometry: line([2]float64{0, 0}, shared), DirTravel: source.DirBoth}
	zt1 := zlevel.Table{{VertexIndex: 1, Z: 1}}
	f2 := source.StreetFeature{LinkID: 2, Geometry: line(shared, [2]float64{10, 10}), DirTravel: source.DirBoth}
	zt2 := zlevel.Table{{VertexIndex: 0, Z: 2}}

	if err := b.Ingest(f1, zt1); err != nil {
		t.Fatal(err)
	}
	if err := b.Ingest(f2, zt2); err != nil {
		t.Fatal(err)
	}
	ids1, _ := b.LinkMap.WaysForLink(1)
	ids2, _ := b.LinkMap.WaysForLink(2)
	w1, _ := b.LinkMap.Way(ids1[len(ids1)-1])
	w2, _ := b.LinkMap.Way(ids2[0])
	if w1.Nodes[len(w1.Nodes)-1] == w2.Nodes[0] {
		t.Errorf("distinct z-levels at same coordinate shared a node: %d", w1.Nodes[len(w1.Nodes)-1])
	}
}

func TestIngest_TranslatorLinkIDMismatchFails(t *testing.T) {
	b := newBuilder()
	b.Translator = mismatchTranslator{}
	feat := source.StreetFeature{LinkID: 9, Geometry: line([2]float64{0, 0}, [2]float64{1, 1}), DirTravel: source.DirBoth}
	if err := b.Ingest(feat, nil); err == nil {
		t.Fatal("expected an error when translator link_id disagrees with bookkeeping link_id")
	}
}

func TestIngest_InvalidDirTravelIsAnEnumError(t *testing.T) {
	b := newBuilder()
	feat := source.StreetFeature{LinkID: 1, Geometry: line([2]float64{0, 0}, [2]float64{1, 1}), DirTravel: source.DirTravel('X')}
	err := b.Ingest(feat, nil)
	if _, ok := err.(*EnumError); !ok {
		t.Fatalf("Ingest error = %v (%T), want *EnumError", err, err)
	}
}

func TestIngest_InvalidFerryTypeIsAnEnumError(t *testing.T) {
	b := newBuilder()
	feat := source.StreetFeature{
		LinkID:    1,
		Geometry:  line([2]float64{0, 0}, [2]float64{1, 1}),
		DirTravel: source.DirBoth,
		FerryType: source.FerryType('Z'),
	}
	err := b.Ingest(feat, nil)
	if _, ok := err.(*EnumError); !ok {
		t.Fatalf("Ingest error = %v (%T), want *EnumError", err, err)
	}
}

type mismatchTranslator struct{}

func (mismatchTranslator) Translate(feat source.StreetFeature, _ tags.SideTables) (osm.Tags, uint64) {
	return nil, feat.LinkID + 1
}
