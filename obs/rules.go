// Package obs classifies raw observation filenames into canonical
// observation-type identifiers using an ordered, category-scoped rule table.
package obs

import (
	"strings"

	"github.com/obsforge/obsvalidate/types"
)

// RuleKind tags how a rule produces its identifier.
type RuleKind int

const (
	// FixedMatch rules return a constant identifier.
	FixedMatch RuleKind = iota
	// ConstructedID rules build the identifier from filename substrings.
	ConstructedID
)

// Rule maps filenames within one category to an observation type. Rules
// are evaluated in declaration order and the FIRST matching rule wins;
// order is the disambiguation mechanism for overlapping patterns.
type Rule struct {
	Kind RuleKind
	// Match is the predicate for FixedMatch rules.
	Match func(name string) bool
	// ID is the constant identifier for FixedMatch rules.
	ID types.ObservationTypeID
	// Construct builds the identifier for ConstructedID rules. Returns
	// false when the expected substrings are absent.
	Construct func(name string) (types.ObservationTypeID, bool)
}

// Table is the full ordered rule set, scoped by category. Rules for other
// categories are never consulted: the category comes from the containing
// subdirectory, not from the filename.
type Table map[types.Category][]Rule

// satellite matches RADS altimeter satellite codes embedded as "_<code>."
// or "_<code>_" so that "_3a" never matches inside an unrelated token.
func satellite(code string) func(string) bool {
	dot := "_" + code + "."
	under := "_" + code + "_"
	return func(name string) bool {
		return strings.Contains(name, dot) || strings.Contains(name, under)
	}
}

// contains matches a case-insensitive substring anywhere in the filename.
func contains(sub string) func(string) bool {
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), sub)
	}
}

// always is the catch-all predicate for generic fallback rules.
func always(string) bool { return true }

// constructICEC builds a sea-ice identifier from the filename's
// "icec_<sensor>_<hemisphere>" field. Sea-ice products carry the sensor
// and hemisphere in the name rather than a fixed mission code, so the
// identifier is taken verbatim from that dot-separated field, e.g.
// "gdas.t18z.icec_amsr2_north.nc" yields "icec_amsr2_north".
func constructICEC(name string) (types.ObservationTypeID, bool) {
	for _, field := range strings.Split(name, ".") {
		if strings.HasPrefix(field, "icec_") && len(field) > len("icec_") {
			return types.ObservationTypeID(field), true
		}
	}
	return "", false
}

// DefaultTable returns the shipped classification rules.
//
// adt and sss are closed enumerations: unmatched filenames surface as
// unclassified. sst and sss carry a generic fallback matching the upstream
// product conventions. icec identifiers are constructed from the filename.
func DefaultTable() Table {
	return Table{
		types.CategoryADT: {
			{Kind: FixedMatch, Match: satellite("3a"), ID: "rads_adt_3a"},
			{Kind: FixedMatch, Match: satellite("3b"), ID: "rads_adt_3b"},
			{Kind: FixedMatch, Match: satellite("c2"), ID: "rads_adt_c2"},
			{Kind: FixedMatch, Match: satellite("j3"), ID: "rads_adt_j3"},
			{Kind: FixedMatch, Match: satellite("sa"), ID: "rads_adt_sa"},
		},
		types.CategoryICEC: {
			{Kind: ConstructedID, Construct: constructICEC},
		},
		types.CategorySSS: {
			{Kind: FixedMatch, Match: contains("smap"), ID: "sss_smap_l2"},
			{Kind: FixedMatch, Match: contains("smos"), ID: "sss_smos_l3"},
			{Kind: FixedMatch, Match: always, ID: "sss_generic"},
		},
		types.CategorySST: {
			{Kind: FixedMatch, Match: contains("viirs"), ID: "sst_viirs_npp_l3u"},
			{Kind: FixedMatch, Match: contains("avhrr"), ID: "sst_avhrr_metop_l3u"},
			{Kind: FixedMatch, Match: contains("amsre"), ID: "sst_amsre_l3u"},
			{Kind: FixedMatch, Match: contains("modis"), ID: "sst_modis_l3u"},
			{Kind: FixedMatch, Match: always, ID: "sst_generic"},
		},
		types.CategoryInsitu: {
			{Kind: FixedMatch, Match: contains("drifter"), ID: "insitu_temp_surface_drifter"},
			{Kind: FixedMatch, Match: contains("salt"), ID: "insitu_salt_profile_argo"},
			{Kind: FixedMatch, Match: contains("temp"), ID: "insitu_temp_profile_argo"},
		},
	}
}
