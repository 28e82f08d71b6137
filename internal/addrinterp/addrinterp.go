// Package addrinterp implements the address-interpolation synthesiser:
// for each side of a street feature whose
// address schema opts in, it builds a way running parallel to the street
// centreline, offset by OffsetDistance, with its end nodes tagged
// addr:housenumber and the way itself tagged addr:interpolation.
package addrinterp

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"

	"comm2osm/internal/interner"
	"comm2osm/internal/model"
	"comm2osm/internal/source"
)

// OffsetDistance is the perpendicular offset (in input-geometry units,
// degrees for WGS-84 source data) of the interpolation curve from the
// street centreline.
const OffsetDistance = 0.00005

// MaxEndTrim and EndTrimRatio bound how much of each end of the offset
// curve is trimmed off before the housenumber nodes are placed, so two
// interpolation ways meeting at a junction don't visually overlap.
const (
	MaxEndTrim   = 0.00025
	EndTrimRatio = 0.1
)

// Side identifies which of a street feature's two address sides to build.
type Side int

const (
	Left Side = iota
	Right
)

// Build synthesizes the interpolation way for one side of feat, or reports
// ok=false if that side's schema opts out (empty ref/nref address, empty
// schema, or schema "M"). The two sides fail
// independently: a malformed or opted-out left side never prevents the
// right side from being built, and vice versa.
func Build(in *interner.Interner, feat source.StreetFeature, side Side) (model.Way, bool, error) {
	s := feat.Left
	if side == Right {
		s = feat.Right
	}
	if s.RefAddr == "" || s.NRefAddr == "" || s.AddrSch == "" || s.AddrSch == "M" {
		return model.Way{}, false, nil
	}
	word, ok := interpolationWord(s.AddrSch)
	if !ok {
		return model.Way{}, false, nil
	}

	curve := offsetCurve(feat.Geometry, OffsetDistance, side == Left)
	curve = trimEnds(curve)
	if len(curve) < 2 {
		return model.Way{}, false, fmt.Errorf("addrinterp: link %d: offset curve collapsed to fewer than 2 points", feat.LinkID)
	}

	// offsetCurve preserves input point order on both sides (only the
	// offset normal's direction flips), so the right side's housenumbers
	// must be swapped here to land on the correct end of the curve.
	firstAddr, lastAddr := s.RefAddr, s.NRefAddr
	if side == Right {
		firstAddr, lastAddr = lastAddr, firstAddr
	}

	last := len(curve) - 1
	nodes := make([]model.NodeID, len(curve))
	nodes[0] = in.CreateTaggedNode(model.FromPoint(curve[0]), osm.Tags{{Key: "addr:housenumber", Value: firstAddr}})
	for i := 1; i < last; i++ {
		nodes[i] = in.CreateInternalNode(model.FromPoint(curve[i]))
	}
	nodes[last] = in.CreateTaggedNode(model.FromPoint(curve[last]), osm.Tags{{Key: "addr:housenumber", Value: lastAddr}})

	tags := osm.Tags{{Key: "addr:interpolation", Value: word}}
	if feat.Name != "" {
		tags = append(tags, osm.Tag{Key: "addr:street", Value: feat.Name})
	}

	way := model.Way{ID: model.WayID(in.AllocateID()), Nodes: nodes, Tags: tags}
	if err := way.Validate(); err != nil {
		return model.Way{}, false, fmt.Errorf("addrinterp: link %d: %w", feat.LinkID, err)
	}
	return way, true, nil
}

// interpolationWord maps the Streets ADDR_SCH value to the OSM
// addr:interpolation word; only "E" (even) and "O" (odd) are supported.
func interpolationWord(schema string) (string, bool) {
	switch schema {
	case "E":
		return "even", true
	case "O":
		return "odd", true
	default:
		return "", false
	}
}

// offsetCurve builds a parallel curve to ls, offset perpendicular to the
// line's direction of travel by offset, on the left or right side. Interior
// vertices are offset along the normalized sum of their two adjacent
// segment normals, the standard mitered parallel-curve construction.
func offsetCurve(ls orb.LineString, offset float64, left bool) orb.LineString {
	n := len(ls)
	if n < 2 {
		return append(orb.LineString(nil), ls...)
	}
	out := make(orb.LineString, n)
	for i := 0; i < n; i++ {
		var nrm orb.Point
		switch {
		case i == 0:
			nrm = segmentNormal(ls[0], ls[1], left)
		case i == n-1:
			nrm = segmentNormal(ls[i-1], ls[i], left)
		default:
			n1 := segmentNormal(ls[i-1], ls[i], left)
			n2 := segmentNormal(ls[i], ls[i+1], left)
			sum := orb.Point{n1[0] + n2[0], n1[1] + n2[1]}
			mag := math.Hypot(sum[0], sum[1])
			if mag == 0 {
				nrm = n1
			} else {
				nrm = orb.Point{sum[0] / mag, sum[1] / mag}
			}
		}
		out[i] = orb.Point{ls[i][0] + nrm[0]*offset, ls[i][1] + nrm[1]*offset}
	}
	return out
}

// segmentNormal returns the unit normal of the segment a->b, rotated to the
// requested side. "Left" is the left-hand side when walking from a to b.
func segmentNormal(a, b orb.Point, left bool) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return orb.Point{0, 0}
	}
	nx, ny := -dy/length, dx/length
	if !left {
		nx, ny = -nx, -ny
	}
	return orb.Point{nx, ny}
}

// trimEnds shortens ls at both ends by min(MaxEndTrim, length*EndTrimRatio),
// the "cut caps" step that keeps interpolation ways clear of junctions.
func trimEnds(ls orb.LineString) orb.LineString {
	cut := math.Min(MaxEndTrim, curveLength(ls)*EndTrimRatio)
	ls = cutFront(cut, ls)
	ls = cutBack(cut, ls)
	return ls
}

func curveLength(ls orb.LineString) float64 {
	var total float64
	for i := 0; i+1 < len(ls); i++ {
		total += planar.Distance(ls[i], ls[i+1])
	}
	return total
}

// cutFront removes cut's worth of length from ls's start, deleting whole
// leading points while cut covers them and moving the new first point the
// remaining distance toward its neighbour.
func cutFront(cut float64, ls orb.LineString) orb.LineString {
	for len(ls) > 1 {
		d := planar.Distance(ls[0], ls[1])
		if cut < d {
			break
		}
		ls = ls[1:]
		cut -= d
	}
	if cut > 0 && len(ls) > 1 {
		ls[0] = movePoint(ls[0], ls[1], cut)
	}
	return ls
}

// cutBack is cutFront's mirror image for the end of ls. The intended
// behaviour drops the trailing point outright (like a pop_back); it never
// reads past the last element.
func cutBack(cut float64, ls orb.LineString) orb.LineString {
	for len(ls) > 1 {
		last := len(ls) - 1
		d := planar.Distance(ls[last], ls[last-1])
		if cut < d {
			break
		}
		ls = ls[:last]
		cut -= d
	}
	if cut > 0 && len(ls) > 1 {
		last := len(ls) - 1
		ls[last] = movePoint(ls[last], ls[last-1], cut)
	}
	return ls
}

// movePoint returns moving shifted toward reference by dist along their
// connecting segment (the intercept-theorem construction the original
// trimming step uses).
func movePoint(moving, reference orb.Point, dist float64) orb.Point {
	d := planar.Distance(moving, reference)
	if d == 0 {
		return moving
	}
	ratio := dist / d
	return orb.Point{
		moving[0] + ratio*(reference[0]-moving[0]),
		moving[1] + ratio*(reference[1]-moving[1]),
	}
}
