package zlevel

import (
	"reflect"
	"testing"
)

// entriesFromVertexZ builds a Table from a per-vertex z-level vector
// (0 implies absent).
func entriesFromVertexZ(vertexZ []int8) Table {
	var t Table
	for i, z := range vertexZ {
		if z != 0 {
			t = append(t, Entry{VertexIndex: i, Z: z})
		}
	}
	return t
}

func zlevels(subways []SubWay) []int8 {
	out := make([]int8, len(subways))
	for i, s := range subways {
		out[i] = s.Z
	}
	return out
}

func TestSplit_RegressionCorpus(t *testing.T) {
	tests := []struct {
		name     string
		vertexZ  []int8
		wantZ    []int8
	}{
		{"S1", []int8{0, 1}, []int8{1}},
		{"S2", []int8{0, 1, 0}, []int8{1}},
		{"S3", []int8{1, 0, 0}, []int8{1, 0}},
		{"S4", []int8{1, 0, 0, 1}, []int8{1, 0, 1}},
		{"S5", []int8{2, 1, 0, 0, 1, 2}, []int8{2, 1, 0, 1, 2}},
		{"S6", []int8{0, 1, 1, 0, 1, 1, 0, 1, 1, 0}, []int8{1}},
		{"S7", []int8{0, 4, 4, 0, 0, 0, 5, 5, 0, 0}, []int8{4, 0, 5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := entriesFromVertexZ(tt.vertexZ)
			last := len(tt.vertexZ) - 1
			got := zlevels(Split(table, last))
			if !reflect.DeepEqual(got, tt.wantZ) {
				t.Errorf("Split(%v) z-levels = %v, want %v", tt.vertexZ, got, tt.wantZ)
			}
		})
	}
}

func TestSplit_TwoVertexSameNonZeroZLevel(t *testing.T) {
	// Boundary behaviour 9: n=2, both endpoints at z != 0, one way at z.
	table := Table{{VertexIndex: 0, Z: 2}, {VertexIndex: 1, Z: 2}}
	got := Split(table, 1)
	want := []SubWay{{First: 0, Last: 1, Z: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSplit_NoZLevelEntries(t *testing.T) {
	got := Split(nil, 5)
	want := []SubWay{{First: 0, Last: 5, Z: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(nil) = %v, want %v", got, want)
	}
}

func TestSplit_Idempotent(t *testing.T) {
	// Property 8: re-splitting an already-split way (a single sub-way
	// annotated with its own z-level at both ends) yields one way at the
	// same z-level.
	table := Table{{VertexIndex: 0, Z: 3}, {VertexIndex: 2, Z: 3}}
	got := Split(table, 2)
	if len(got) != 1 || got[0].Z != 3 || got[0].First != 0 || got[0].Last != 2 {
		t.Errorf("Split re-applied to a uniform z-level way = %v, want single way at z=3", got)
	}
}

func TestBuild_FiltersZeroAndGroupsByLink(t *testing.T) {
	rows := []Row{
		{LinkID: 1, PointNum: 1, Z: 0},
		{LinkID: 1, PointNum: 2, Z: 2},
		{LinkID: 2, PointNum: 3, Z: -1},
		{LinkID: 1, PointNum: 4, Z: 1},
	}
	tables, err := Build(rows)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want1 := Table{{VertexIndex: 1, Z: 2}, {VertexIndex: 3, Z: 1}}
	if !reflect.DeepEqual(tables[1], want1) {
		t.Errorf("tables[1] = %v, want %v", tables[1], want1)
	}
	want2 := Table{{VertexIndex: 2, Z: -1}}
	if !reflect.DeepEqual(tables[2], want2) {
		t.Errorf("tables[2] = %v, want %v", tables[2], want2)
	}
}

func TestBuild_OutOfRangeIsFatal(t *testing.T) {
	rows := []Row{{LinkID: 7, PointNum: 1, Z: 6}}
	_, err := Build(rows)
	if err == nil {
		t.Fatal("Build with z=6 should return an error")
	}
	var oore *OutOfRangeError
	if !errorsAs(err, &oore) {
		t.Fatalf("error = %v, want *OutOfRangeError", err)
	}
	if oore.LinkID != 7 || oore.PointNum != 1 || oore.Z != 6 {
		t.Errorf("error fields = %+v, want link_id=7 point_num=1 z=6", oore)
	}
}

func errorsAs(err error, target **OutOfRangeError) bool {
	oore, ok := err.(*OutOfRangeError)
	if !ok {
		return false
	}
	*target = oore
	return true
}

func TestRemoveFerryNonEndpointZLevels(t *testing.T) {
	table := Table{
		{VertexIndex: 0, Z: 1},
		{VertexIndex: 2, Z: 3},
		{VertexIndex: 5, Z: 4},
	}
	got := RemoveFerryNonEndpointZLevels(table, 5)
	want := Table{{VertexIndex: 0, Z: 1}, {VertexIndex: 5, Z: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveFerryNonEndpointZLevels = %v, want %v", got, want)
	}
}
