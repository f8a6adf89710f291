package types

// CycleResult is the per-cycle resolution and execution record. Produced
// once by the cycle resolver, then enriched with rendering and execution
// fields by the orchestrator; immutable once the batch summary is built.
type CycleResult struct {
	// Identity identifies the cycle.
	Identity CycleIdentity `yaml:"cycle" json:"cycle"`
	// Observations lists discovered file names per category. Categories
	// with no files are omitted.
	Observations map[Category][]string `yaml:"observations" json:"observations"`
	// Included is the set of observation types that classified AND
	// resolved against the template catalog, in first-seen scan order.
	Included []ObservationTypeID `yaml:"included" json:"included"`
	// Unresolved holds observation types that classified but have no
	// template in the catalog. Recorded, never silently dropped.
	Unresolved []ObservationTypeID `yaml:"unresolved,omitempty" json:"unresolved,omitempty"`
	// Unclassified holds filenames no rule matched.
	Unclassified []string `yaml:"unclassified,omitempty" json:"unclassified,omitempty"`
	// JobCardGenerated reports whether a job card was written. Always
	// false when Included is empty.
	JobCardGenerated bool `yaml:"job_card_generated" json:"job_card_generated"`
	// JobCardPath is the path to the generated job card, if any.
	JobCardPath string `yaml:"job_card,omitempty" json:"job_card,omitempty"`
	// ConfigPath is the path to the generated 3DVAR config, if any.
	ConfigPath string `yaml:"config_file,omitempty" json:"config_file,omitempty"`
	// Execution is the normalized execution outcome.
	Execution ExecutionOutcome `yaml:"execution" json:"execution"`
	// Error records a per-cycle processing failure (scan I/O, render or
	// submit error). Empty for successfully processed cycles.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Failed reports whether cycle processing failed. Skipped cycles are not
// failures.
func (r *CycleResult) Failed() bool {
	return r.Error != ""
}

// HasObservations reports whether any observation files were found.
func (r *CycleResult) HasObservations() bool {
	for _, files := range r.Observations {
		if len(files) > 0 {
			return true
		}
	}
	return false
}
