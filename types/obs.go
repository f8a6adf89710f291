package types

// Category is a fixed top-level grouping of observation files within a
// cycle's ocean layer.
type Category string

// Known observation categories.
const (
	CategoryADT    Category = "adt"
	CategoryICEC   Category = "icec"
	CategorySSS    Category = "sss"
	CategorySST    Category = "sst"
	CategoryInsitu Category = "insitu"
)

// Categories returns the known categories in scan order. The order is
// significant: it fixes the deterministic iteration order of per-cycle
// results.
func Categories() []Category {
	return []Category{CategoryADT, CategoryICEC, CategorySSS, CategorySST, CategoryInsitu}
}

// ObservationTypeID is the canonical token identifying a specific
// instrument/mission/processing-level combination, e.g. "rads_adt_j3" or
// "sst_viirs_npp_l3u". It keys the template catalog.
type ObservationTypeID string

// ObservationFile is one observation file discovered by the scanner.
// Read-only downstream of the scanner.
type ObservationFile struct {
	// Path is the absolute path to the file.
	Path string `yaml:"path" json:"path"`
	// Category is the containing category subdirectory.
	Category Category `yaml:"category" json:"category"`
	// Name is the raw filename.
	Name string `yaml:"name" json:"name"`
}
