// Package turnrestriction implements the turn-restriction assembler: it
// groups Rdms manoeuvre rows into ordered link sequences, expands each
// link through internal/linkmap to the way
// chain the street graph builder already committed, infers the chain's
// natural direction (reversing sub-sequences where the source order runs
// backwards), and emits an OSM restriction relation with from/via/to roles.
package turnrestriction

import (
	"fmt"

	"github.com/paulmach/osm"

	"comm2osm/internal/interner"
	"comm2osm/internal/linkmap"
	"comm2osm/internal/model"
	"comm2osm/internal/source"
)

// Restriction is one successfully assembled relation plus a diagnostic not
// reflected in its tags. The source material gives no reliable way to tell
// which of the chain's turns is actually restricted, so the emitted tag is
// always restriction=no_straight_on rather than a guess; inferredReversed
// only records whether the link chain had
// to be walked backwards from its raw Rdms order to connect continuously.
type Restriction struct {
	Relation model.Relation

	// TopologyFallback is true when chain had exactly two ways sharing no
	// common endpoint node, so the relation was emitted with only from/to
	// members instead of the usual from/via/to.
	TopologyFallback bool

	inferredReversed bool
}

// Build groups cdms/rdms into restricted-driving manoeuvres and assembles
// each into a Restriction. Manoeuvres whose link chain references a link the
// street graph never committed, or whose ways do not connect into a single
// chain, are dropped and reported in the returned error slice rather than
// aborting the run.
func Build(cdms []source.CdmsRow, rdms []source.RdmsRow, lm *linkmap.Map, in *interner.Interner) ([]Restriction, []error) {
	var out []Restriction
	var errs []error
	for _, seq := range GroupManoeuvres(cdms, rdms) {
		wayIDs, reversed, ok := collectViaWayIDs(seq, lm)
		if !ok {
			errs = append(errs, fmt.Errorf("turnrestriction: manoeuvre over links %v: way chain does not connect", seq))
			continue
		}
		rel, err := buildRelation(wayIDs, reversed, lm, in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rel)
	}
	return out, errs
}

// GroupManoeuvres scans rdms in order and groups each contiguous run of rows
// sharing a cond_id into one manoeuvre's link sequence:
// [run[0].LinkID, run[0].ManLinkID, run[1].ManLinkID, ...]. A run is skipped
// if cdms names its cond_id with a cond_type other than
// source.RestrictedManoeuvre; a cond_id absent from cdms is treated as
// restricted (matches the original reader: a missing lookup entry never
// disqualifies a run).
func GroupManoeuvres(cdms []source.CdmsRow, rdms []source.RdmsRow) [][]uint64 {
	condType := make(map[uint64]source.CondType, len(cdms))
	for _, r := range cdms {
		condType[r.CondID] = r.CondType
	}

	var out [][]uint64
	for i := 0; i < len(rdms); {
		row := rdms[i]
		if t, ok := condType[row.CondID]; ok && t != source.RestrictedManoeuvre {
			i++
			continue
		}
		seq := []uint64{row.LinkID}
		j := i
		for j < len(rdms) && rdms[j].CondID == row.CondID {
			seq = append(seq, rdms[j].ManLinkID)
			j++
		}
		out = append(out, seq)
		i = j
	}
	return out
}

// collectViaWayIDs expands an ordered link-id sequence into a single
// continuous way chain, reversing each link's own sub-way run where
// necessary so that consecutive ways share an endpoint node. It reports
// ok=false if any link is unresolved or the chain fails to connect, the
// two distinct ways a manoeuvre's link chain can fail to assemble.
func collectViaWayIDs(linkIDs []uint64, lm *linkmap.Map) (chain []model.WayID, reversedChain bool, ok bool) {
	var endFront, endBack model.NodeID
	for ctr, linkID := range linkIDs {
		wayIDs, found := lm.WaysForLink(linkID)
		if !found || len(wayIDs) == 0 {
			return nil, false, false
		}
		firstFront, _, err := lm.Endpoints(wayIDs[0])
		if err != nil {
			return nil, false, false
		}
		_, lastBack, err := lm.Endpoints(wayIDs[len(wayIDs)-1])
		if err != nil {
			return nil, false, false
		}

		switch {
		case ctr == 0:
			endFront, endBack = firstFront, lastBack
		default:
			if ctr == 1 && (endFront == firstFront || endFront == lastBack) {
				reverseWayIDs(chain)
				endFront, endBack = endBack, endFront
				reversedChain = true
			}
			switch {
			case endBack == lastBack:
				endBack = firstFront
			case endBack == firstFront:
				endBack = lastBack
			default:
				return nil, false, false
			}
		}

		reverse := false
		if len(wayIDs) > 1 {
			switch {
			case endBack == firstFront:
				reverse = true
			case endBack == lastBack:
				// already in order
			default:
				return nil, false, false
			}
		}

		if reverse {
			chain = append(chain, reversedCopy(wayIDs)...)
		} else {
			chain = append(chain, wayIDs...)
		}
	}
	return chain, reversedChain, true
}

func reverseWayIDs(s []model.WayID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reversedCopy(s []model.WayID) []model.WayID {
	out := make([]model.WayID, len(s))
	for i, id := range s {
		out[len(s)-1-i] = id
	}
	return out
}

// buildRelation assigns from/via/to roles along chain, inserts the
// common-via-node fallback when chain has exactly two ways and shares an
// endpoint, and allocates the relation's id from in.
func buildRelation(chain []model.WayID, reversed bool, lm *linkmap.Map, in *interner.Interner) (Restriction, error) {
	if len(chain) == 0 {
		return Restriction{}, fmt.Errorf("turnrestriction: empty way chain")
	}

	members := make([]model.Member, len(chain))
	for i, id := range chain {
		role := "via"
		if i == 0 {
			role = "from"
		} else if i == len(chain)-1 {
			role = "to"
		}
		members[i] = model.Member{Kind: model.MemberWay, Ref: int64(id), Role: role}
	}

	var topologyFallback bool
	if len(chain) == 2 {
		if via, ok := commonNodeVia(chain[0], chain[1], lm); ok {
			members = []model.Member{members[0], via, members[1]}
		} else {
			// No shared endpoint: the relation is still emitted with just
			// from/to members -- the original reader logs and moves on
			// rather than dropping the whole manoeuvre.
			topologyFallback = true
		}
	}

	rel := model.Relation{
		ID:      model.RelID(in.AllocateID()),
		Members: members,
		Tags: osm.Tags{
			{Key: "type", Value: "restriction"},
			// todo: get the correct direction. The source carries no
			// reliable signal for which turn is restricted.
			{Key: "restriction", Value: "no_straight_on"},
		},
	}
	return Restriction{Relation: rel, TopologyFallback: topologyFallback, inferredReversed: reversed}, nil
}

// commonNodeVia finds the node shared by fromWay and toWay's endpoints, per
// the four from/to front/back combinations the original assembler checks.
func commonNodeVia(fromWay, toWay model.WayID, lm *linkmap.Map) (model.Member, bool) {
	fFront, fBack, err := lm.Endpoints(fromWay)
	if err != nil {
		return model.Member{}, false
	}
	tFront, tBack, err := lm.Endpoints(toWay)
	if err != nil {
		return model.Member{}, false
	}

	var via model.NodeID
	switch {
	case fFront == tFront:
		via = fFront
	case fFront == tBack:
		via = fFront
	case fBack == tFront:
		via = fBack
	case fBack == tBack:
		via = fBack
	default:
		return model.Member{}, false
	}
	return model.Member{Kind: model.MemberNode, Ref: int64(via), Role: "via"}, true
}
