// Package tags declares the tag-translator contract. Its vocabulary
// tables (ISO-639, highway-class tables, country measurement units) are
// deliberately out of scope: their inputs and outputs are specified, their
// contents are not. This package fixes the
// input/output shape and ships one reference implementation narrow enough
// to exercise every caller in this repo without encoding the real
// vocabulary, the same way pkg/osm/parser.go's isCarAccessible and
// directionFlags are small pure functions of tags plus side lookup tables.
package tags

import (
	"github.com/paulmach/osm"

	"comm2osm/internal/source"
)

// SideTables bundles the read-only reference data a Translator may consult.
type SideTables struct {
	MtdArea      map[uint64][]source.MtdAreaRow // area_id -> rows (one per language)
	CndMod       map[uint64][]source.CndModRow  // cond_id -> modifiers
	AreaGovtCode map[uint64]string              // area_id -> govt code
	CountryRef   map[uint64]source.MtdCntryRefRow
	RouteType    map[uint64]string // link_id -> alt-street route type
	HighwayName  map[uint64]string // link_id -> major/secondary highway name
}

// Translator is a pure function from a street feature plus side tables to
// OSM tags. Implementations must be idempotent: calling
// Translate twice on identical inputs returns identical tags.
type Translator interface {
	// Translate returns the tags for feat and the link-id it observed.
	// The street graph builder asserts the returned link-id equals the
	// one it used for bookkeeping.
	Translate(feat source.StreetFeature, side SideTables) (osm.Tags, uint64)
}

// PassThrough is a reference Translator: it carries the street-level
// attributes that do not require vocabulary lookups (name, highway class
// numeral, oneway, surface, bridge/tunnel/tollway flags) and skips every
// tag that would need the ISO-639 or highway-class dictionaries, which
// stay out of scope. It exists so the core compiles, runs and is testable
// end to end without the real translation tables.
type PassThrough struct{}

// Translate implements Translator.
func (PassThrough) Translate(feat source.StreetFeature, _ SideTables) (osm.Tags, uint64) {
	var t osm.Tags
	add := func(k, v string) {
		if v != "" {
			t = append(t, osm.Tag{Key: k, Value: v})
		}
	}

	add("LINK_ID", uitoa(feat.LinkID))
	add("name", feat.Name)
	add("highway", funcClassHighway(feat.FuncClass))

	switch feat.DirTravel {
	case source.DirForward:
		add("oneway", "yes")
	case source.DirTo:
		add("oneway", "-1")
	}

	if feat.FerryType != source.FerryNone {
		add("route", "ferry")
	}
	if feat.Bridge {
		add("bridge", "yes")
	}
	if feat.Tunnel {
		add("tunnel", "yes")
	}
	if feat.Tollway {
		add("toll", "yes")
	}
	if feat.Roundabout {
		add("junction", "roundabout")
	}
	if !feat.Paved {
		add("surface", "unpaved")
	}

	return t, feat.LinkID
}

// funcClassHighway maps the Streets FUNC_CLASS numeral (1..5, most to
// least significant) onto a plausible OSM highway value. The real
// dictionary (country-specific, vocabulary-table driven) is out of scope;
// this is a minimal stand-in adequate for testing the caller contract.
func funcClassHighway(fc int) string {
	switch fc {
	case 1:
		return "trunk"
	case 2:
		return "primary"
	case 3:
		return "secondary"
	case 4:
		return "tertiary"
	case 5:
		return "residential"
	default:
		return "unclassified"
	}
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
