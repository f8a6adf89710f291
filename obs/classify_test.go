package obs_test

import (
	"testing"

	"github.com/obsforge/obsvalidate/obs"
	"github.com/obsforge/obsvalidate/types"
)

func TestClassify_ADT(t *testing.T) {
	table := obs.DefaultTable()

	tests := []struct {
		filename string
		want     types.ObservationTypeID
		ok       bool
	}{
		{"gdas.t18z.rads_adt_3a.nc", "rads_adt_3a", true},
		{"gdas.t18z.rads_adt_3b.nc", "rads_adt_3b", true},
		{"gdas.t18z.rads_adt_c2.nc", "rads_adt_c2", true},
		{"gdas.t18z.rads_adt_j3.nc", "rads_adt_j3", true},
		{"gdas.t18z.rads_adt_sa.nc", "rads_adt_sa", true},
		{"gfs.t00z.rads_adt_j3_subset.nc", "rads_adt_j3", true},
		// Closed enumeration: unknown mission codes surface as unclassified.
		{"gdas.t18z.rads_adt_xx.nc", "", false},
		{"random_file.nc", "", false},
	}

	for _, tt := range tests {
		got, ok := table.Classify(types.CategoryADT, tt.filename)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Classify(adt, %q) = (%q, %v), want (%q, %v)",
				tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// A filename carrying two rule substrings must resolve via the first
	// rule in declared order, not an arbitrary one.
	table := obs.Table{
		types.CategoryADT: {
			{Kind: obs.FixedMatch, Match: func(n string) bool { return true }, ID: "first"},
			{Kind: obs.FixedMatch, Match: func(n string) bool { return true }, ID: "second"},
		},
	}

	got, ok := table.Classify(types.CategoryADT, "gdas.t18z.rads_adt_3a_3b.nc")
	if !ok || got != "first" {
		t.Errorf("Classify = (%q, %v), want (first, true)", got, ok)
	}
}

func TestClassify_CategoryScoping(t *testing.T) {
	table := obs.DefaultTable()

	// An adt filename presented under sss must not consult adt rules.
	// It falls through to the sss generic fallback instead.
	got, ok := table.Classify(types.CategorySSS, "gdas.t18z.rads_adt_3a.nc")
	if !ok || got != "sss_generic" {
		t.Errorf("Classify(sss, adt file) = (%q, %v), want (sss_generic, true)", got, ok)
	}

	// Unknown categories have no rules: everything is unclassified.
	if _, ok := table.Classify(types.Category("bogus"), "anything.nc"); ok {
		t.Error("Classify with unknown category should not match")
	}
}

func TestClassify_SST(t *testing.T) {
	table := obs.DefaultTable()

	tests := []struct {
		filename string
		want     types.ObservationTypeID
	}{
		{"gdas.t18z.sst_viirs_npp.nc", "sst_viirs_npp_l3u"},
		{"gdas.t18z.sst_AVHRR_metop.nc", "sst_avhrr_metop_l3u"},
		{"gdas.t18z.sst_amsre.nc", "sst_amsre_l3u"},
		{"gdas.t18z.sst_modis.nc", "sst_modis_l3u"},
		// No sensor substring: generic fallback, never unclassified.
		{"gdas.t18z.sst_unknown_sensor.nc", "sst_generic"},
	}

	for _, tt := range tests {
		got, ok := table.Classify(types.CategorySST, tt.filename)
		if !ok || got != tt.want {
			t.Errorf("Classify(sst, %q) = (%q, %v), want (%q, true)",
				tt.filename, got, ok, tt.want)
		}
	}
}

func TestClassify_SSS(t *testing.T) {
	table := obs.DefaultTable()

	tests := []struct {
		filename string
		want     types.ObservationTypeID
	}{
		{"gdas.t18z.sss_smap.nc", "sss_smap_l2"},
		{"gdas.t18z.sss_smos.nc", "sss_smos_l3"},
		{"gdas.t18z.sss_other.nc", "sss_generic"},
	}

	for _, tt := range tests {
		got, ok := table.Classify(types.CategorySSS, tt.filename)
		if !ok || got != tt.want {
			t.Errorf("Classify(sss, %q) = (%q, %v), want (%q, true)",
				tt.filename, got, ok, tt.want)
		}
	}
}

func TestClassify_ICEC_ConstructedID(t *testing.T) {
	table := obs.DefaultTable()

	tests := []struct {
		filename string
		want     types.ObservationTypeID
		ok       bool
	}{
		{"gdas.t18z.icec_amsr2_north.nc", "icec_amsr2_north", true},
		{"gdas.t18z.icec_amsr2_south.nc", "icec_amsr2_south", true},
		{"gfs.t06z.icec_ssmis.nc", "icec_ssmis", true},
		// Expected substrings absent: unclassified, never an error.
		{"gdas.t18z.seaice_conc.nc", "", false},
		{"gdas.t18z.icec_.nc", "", false},
	}

	for _, tt := range tests {
		got, ok := table.Classify(types.CategoryICEC, tt.filename)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Classify(icec, %q) = (%q, %v), want (%q, %v)",
				tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClassify_Insitu(t *testing.T) {
	table := obs.DefaultTable()

	tests := []struct {
		filename string
		want     types.ObservationTypeID
		ok       bool
	}{
		{"gdas.t18z.drifter_temp.nc", "insitu_temp_surface_drifter", true},
		{"gdas.t18z.argo_salt_profile.nc", "insitu_salt_profile_argo", true},
		{"gdas.t18z.argo_temp_profile.nc", "insitu_temp_profile_argo", true},
		{"gdas.t18z.glider.nc", "", false},
	}

	for _, tt := range tests {
		got, ok := table.Classify(types.CategoryInsitu, tt.filename)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Classify(insitu, %q) = (%q, %v), want (%q, %v)",
				tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}
