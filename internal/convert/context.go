package convert

import (
	"comm2osm/internal/interner"
	"comm2osm/internal/linkmap"
	"comm2osm/internal/model"
	"comm2osm/internal/osmio"
	"comm2osm/internal/tags"
)

// RunContext bundles the collaborators one conversion run shares across
// every input directory it processes: a single interner (so the same
// coordinate anywhere in the run interns to the same node), a single
// link-map, and the tag translator plus its side tables. A caller
// converting multiple NAVTEQ tile directories into one OSM file shares one
// RunContext across all of them rather than threading five separate
// collaborators through every call.
type RunContext struct {
	In         *interner.Interner
	LinkMap    *linkmap.Map
	Translator tags.Translator
	Side       tags.SideTables

	// AdminLevelMap converts a NAVTEQ admin_lvl string to an OSM
	// admin_level value. Its table is out of scope; nil is a valid value,
	// meaning no admin_level tag is ever added.
	AdminLevelMap func(string) string

	addrWays  []model.Way
	relations []model.Relation
}

// New returns a RunContext with a fresh interner and link-map, ready to
// convert one or more input directories.
func New(tr tags.Translator, side tags.SideTables) *RunContext {
	return &RunContext{
		In:         interner.New(),
		LinkMap:    linkmap.New(),
		Translator: tr,
		Side:       side,
	}
}

// Commit drains everything the run has produced so far into buf, in
// node-then-way-then-relation order, the order an output writer must
// preserve. It is safe to call only once, after every input directory has
// been converted: the interner and link-map are shared across directories,
// so committing mid-run would not duplicate anything but would leave buf's
// relation list split across an arbitrary point for no reason.
func (rc *RunContext) Commit(buf *osmio.Buffer) {
	for _, n := range rc.In.Nodes() {
		buf.AddNode(n)
	}
	for _, w := range rc.LinkMap.CommittedWays() {
		buf.AddWay(w)
	}
	for _, w := range rc.addrWays {
		buf.AddWay(w)
	}
	for _, r := range rc.relations {
		buf.AddRelation(r)
	}
}
