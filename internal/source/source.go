// Package source declares the typed feature records the converter consumes.
// Producing them (reading Shapefile/DBF files) is an external collaborator
// and is not implemented here; this package only defines the shapes those
// readers are assumed to already yield.
package source

import (
	"github.com/paulmach/orb"
)

// DirTravel is the Streets DIR_TRAVEL field.
type DirTravel byte

const (
	DirForward DirTravel = 'F'
	DirTo      DirTravel = 'T'
	DirBoth    DirTravel = 'B'
)

// FerryType is the Streets FERRY_TYPE field.
type FerryType byte

const (
	FerryNone FerryType = 0
	FerryH    FerryType = 'H'
	FerryB    FerryType = 'B'
	FerryR    FerryType = 'R'
)

// AddrSide holds one side's (left or right) address-range attributes.
type AddrSide struct {
	RefAddr  string // L_REFADDR / R_REFADDR
	NRefAddr string // L_NREFADDR / R_NREFADDR
	AddrSch  string // L_ADDRSCH / R_ADDRSCH: "E", "O" or "M"
}

// StreetFeature is one row of Streets.shp plus its attribute table, the
// entry point to the street graph builder.
type StreetFeature struct {
	LinkID     uint64
	Geometry   orb.LineString // lon,lat, WGS-84, as delivered (no reprojection)
	Name       string         // ST_NAME
	DirTravel  DirTravel
	FuncClass  int // 1..5
	FerryType  FerryType
	LAreaID    uint64
	RAreaID    uint64
	AddrType   string // ADDR_TYPE; "B" enables address interpolation
	Left       AddrSide
	Right      AddrSide
	PhysLanes  uint8
	Paved      bool
	Bridge     bool
	Tunnel     bool
	Tollway    bool
	Roundabout bool
	ContrAcc   bool
	Urban      bool

	// Attrs carries every other DBF column verbatim, keyed by column name,
	// for the tag translator to consume. The core never reads it.
	Attrs map[string]any
}

// ZlevelRow is one row of Zlevels.dbf.
type ZlevelRow struct {
	LinkID   uint64
	PointNum int // 1-based
	ZLevel   int8
}

// CondType is the Cdms COND_TYPE field. Only RestrictedManoeuvre rows feed
// the turn-restriction assembler.
type CondType int

const RestrictedManoeuvre CondType = 7

// CdmsRow is one row of Cdms.dbf.
type CdmsRow struct {
	CondID   uint64
	LinkID   uint64
	CondType CondType
}

// RdmsRow is one row of Rdms.dbf.
type RdmsRow struct {
	CondID    uint64
	LinkID    uint64
	ManLinkID uint64
}

// MtdAreaRow is one row of MtdArea.dbf: area_id -> admin level, area code,
// and one (lang, name) pair. Multiple rows share an area_id, one per
// language; admin_lvl is unique per area_id across its rows.
type MtdAreaRow struct {
	AreaID    uint64
	AdminLvl  int // 1..7
	AreaCode1 uint64
	GovtCode  string
	LangCode  string // ISO-639-2
	AreaName  string
}

// MtdCntryRefRow is one row of MtdCntryRef.dbf. Its content feeds the tag
// translator only, as a side table for measurement units and driving side.
type MtdCntryRefRow struct {
	CountryID    uint64
	ISOCode      string
	Measurement  string // "M" metric, "E" imperial
	DrivingSide  string // "L" or "R"
}

// CndModRow is one row of CndMod.dbf (conditional modifiers): feeds the tag
// translator only.
type CndModRow struct {
	CondID  uint64
	ModType int
	ModVal  string
}

// PolygonFeature is one row of an admin-boundary, water-polygon or
// land-use-polygon shapefile: a (multi-)polygon plus attributes for the
// admin-boundary ring builder.
type PolygonFeature struct {
	Geometry orb.Geometry // orb.Polygon or orb.MultiPolygon
	Attrs    map[string]any
}
