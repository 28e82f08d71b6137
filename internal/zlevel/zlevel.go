// Package zlevel implements the per-link Z-level table and the splitting
// algorithm that the street graph builder (internal/streetgraph)
// drives. The Z-level table and the splitter are the load-bearing pieces of
// the whole conversion: every downstream reference (turn restrictions,
// address interpolation) depends on a split that matches the original
// NAVTEQ/HERE semantics exactly, not just "a" reasonable split.
package zlevel

import "fmt"

// Entry is one non-zero-Z-level row for a link, 0-based vertex index.
type Entry struct {
	VertexIndex int
	Z           int8
}

// Table is the ordered, sparse Z-level list for a single link. Zero-level
// rows are never present: they are filtered out on ingestion.
type Table []Entry

// legal is the set of Z-levels the source format allows.
var legal = map[int8]bool{
	-4: true, -3: true, -2: true, -1: true, 0: true,
	1: true, 2: true, 3: true, 4: true, 5: true,
}

// Legal reports whether z is one of the ten legal values.
func Legal(z int8) bool {
	return legal[z]
}

// OutOfRangeError is returned by Build when a DBF row carries a Z-level
// outside -4..5. It is always fatal for the whole run.
type OutOfRangeError struct {
	LinkID   uint64
	PointNum int
	Z        int8
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("zlevel: link_id=%d point_num=%d z_level=%d out of range -4..5", e.LinkID, e.PointNum, e.Z)
}

// Row is one input row from the Zlevels DBF table: (link_id, point_num,
// z_level), point_num is 1-based.
type Row struct {
	LinkID   uint64
	PointNum int
	Z        int8
}

// Build groups pre-sorted Zlevels rows by link_id, discarding z_level=0
// rows, and returns link_id -> Table. Row order within a link is preserved
// exactly as delivered: the splitter requires stability, not a re-sort.
func Build(rows []Row) (map[uint64]Table, error) {
	tables := make(map[uint64]Table)
	for _, r := range rows {
		if !Legal(r.Z) {
			return nil, &OutOfRangeError{LinkID: r.LinkID, PointNum: r.PointNum, Z: r.Z}
		}
		if r.Z == 0 {
			continue
		}
		tables[r.LinkID] = append(tables[r.LinkID], Entry{VertexIndex: r.PointNum - 1, Z: r.Z})
	}
	return tables, nil
}

// RemoveFerryNonEndpointZLevels implements the ferry special case: zero
// out every Z-level not at a link endpoint, and drop
// any endpoint entry whose vertex index is not actually the first or last
// vertex. Kept as its own function (not inlined into Split) because the
// original `navteq.hpp` structures it as a distinct pre-pass
// (`remove_ferry_non_endpoint_z_levels`) and a faithful port preserves that
// separability for testing.
func RemoveFerryNonEndpointZLevels(t Table, lastVertex int) Table {
	out := make(Table, 0, len(t))
	for _, e := range t {
		if e.VertexIndex != 0 && e.VertexIndex != lastVertex {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SubWay is one emitted range of a split linestring: the inclusive vertex
// index range [First, Last] and the single Z-level the whole range shares.
type SubWay struct {
	First, Last int
	Z           int8
}

func abs8(z int8) int8 {
	if z < 0 {
		return -z
	}
	return z
}

// superior reports whether z1 strictly dominates z2 by absolute value: the
// glossary's "superiority" tie-break.
func superior(z1, z2 int8) bool {
	return abs8(z1) > abs8(z2)
}

func superiorOrEqual(z1, z2 int8) bool {
	return abs8(z1) >= abs8(z2)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Split is a direct port of the original navteq.hpp
// `split_way_by_z_level` / `create_continuing_sub_ways` pair. t
// must be sorted by VertexIndex and contain only non-zero Z-levels (the
// shape Build and RemoveFerryNonEndpointZLevels both produce). last is the
// index of the linestring's final vertex (len(L)-1).
//
// The loop carries a single rolling `start` index that only moves forward
// when a sub-way is actually emitted. Two kinds of runs are skipped without
// emitting and without moving `start`: adjacent equal-Z markers one vertex
// apart (merged into whatever range eventually gets emitted around them),
// and a marker dominated on both sides by an equal-or-larger same-valued
// neighbour two vertices further on (spike smoothing). This is why a long
// alternating run of equal markers collapses into exactly one sub-way
// instead of one per marker.
func Split(t Table, last int) []SubWay {
	if len(t) == 0 {
		return []SubWay{{First: 0, Last: last, Z: 0}}
	}

	var out []SubWay

	start := t[0].VertexIndex
	if start > 0 {
		start--
	}
	if start > 0 {
		out = append(out, SubWay{First: 0, Last: start, Z: 0})
	}

	i := 0
	for i < len(t) {
		idx, z := t[i].VertexIndex, t[i].Z
		lastElement := i == len(t)-1
		notLastElement := !lastElement

		var nextIdx int
		var nextZ int8
		if notLastElement {
			nextIdx, nextZ = t[i+1].VertexIndex, t[i+1].Z
		}

		if notLastElement {
			// Merge adjacent equal-Z markers separated by exactly one
			// vertex: the range keeps extending, nothing emitted yet.
			if idx+2 == nextIdx && z == nextZ {
				i++
				continue
			}
			// Spike smoothing: a marker dominated by an equal-valued
			// marker two vertices on, itself at least as superior as the
			// intervening marker, absorbs the intervening marker.
			if i+2 < len(t) {
				secondNextIdx, secondNextZ := t[i+2].VertexIndex, t[i+2].Z
				if idx+2 == secondNextIdx && superiorOrEqual(secondNextZ, nextZ) && z == secondNextZ {
					i += 2
					continue
				}
			}
		}

		if lastElement || idx+1 < nextIdx || z != nextZ {
			from := start
			var to int
			if lastElement || idx+1 < nextIdx || superior(z, nextZ) {
				to = min(idx+1, last)
			} else {
				to = idx
			}
			if from < to {
				out = append(out, SubWay{First: from, Last: to, Z: z})
				start = to
			}
			if notLastElement && to < nextIdx-1 {
				out = append(out, SubWay{First: to, Last: nextIdx - 1, Z: 0})
				start = nextIdx - 1
			}
		}

		i++
	}

	if start < last {
		out = append(out, SubWay{First: start, Last: last, Z: 0})
	}

	return out
}
