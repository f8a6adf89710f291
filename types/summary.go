package types

import "fmt"

// ExecutionTally counts cycles per execution outcome variant.
type ExecutionTally struct {
	NotRequested int `yaml:"not_requested" json:"not_requested"`
	Submitted    int `yaml:"submitted" json:"submitted"`
	Completed    int `yaml:"completed" json:"completed"`
	Failed       int `yaml:"failed" json:"failed"`
	Skipped      int `yaml:"skipped" json:"skipped"`
}

// Total returns the sum across all variants.
func (t ExecutionTally) Total() int {
	return t.NotRequested + t.Submitted + t.Completed + t.Failed + t.Skipped
}

// Add counts one outcome.
func (t *ExecutionTally) Add(status OutcomeStatus) {
	switch status {
	case OutcomeNotRequested:
		t.NotRequested++
	case OutcomeSubmitted:
		t.Submitted++
	case OutcomeCompleted:
		t.Completed++
	case OutcomeFailed:
		t.Failed++
	case OutcomeSkipped:
		t.Skipped++
	}
}

// BatchSummary is the write-once batch result, serialized as YAML
// (processing summary file) and JSON (report output). Field names are
// stable; downstream report writers depend on them.
type BatchSummary struct {
	// TotalCycles is the number of cycles discovered.
	TotalCycles int `yaml:"total_cycles" json:"total_cycles"`
	// ProcessedCycles is the number of cycles processed without error.
	ProcessedCycles int `yaml:"processed_cycles" json:"processed_cycles"`
	// FailedCycles is the number of cycles whose processing failed.
	FailedCycles int `yaml:"failed_cycles" json:"failed_cycles"`
	// Cycles holds the per-cycle results in ascending (family, date,
	// hour) order.
	Cycles []*CycleResult `yaml:"cycles" json:"cycles"`
	// Execution tallies execution outcomes across all cycles.
	Execution ExecutionTally `yaml:"execution_tally" json:"execution_tally"`
}

// Validate checks the tally invariants: processed + failed must equal the
// total cycle count, and the execution tally must account for every cycle.
func (s *BatchSummary) Validate() error {
	if s.ProcessedCycles+s.FailedCycles != s.TotalCycles {
		return fmt.Errorf("tally mismatch: processed %d + failed %d != total %d",
			s.ProcessedCycles, s.FailedCycles, s.TotalCycles)
	}
	if len(s.Cycles) != s.TotalCycles {
		return fmt.Errorf("tally mismatch: %d cycle records for %d cycles",
			len(s.Cycles), s.TotalCycles)
	}
	if got := s.Execution.Total(); got != s.TotalCycles {
		return fmt.Errorf("execution tally mismatch: %d outcomes for %d cycles",
			got, s.TotalCycles)
	}
	return nil
}

// CyclesForFamily returns the subset of cycle results for one family,
// preserving order.
func (s *BatchSummary) CyclesForFamily(family Family) []*CycleResult {
	var out []*CycleResult
	for _, c := range s.Cycles {
		if c.Identity.Family == family {
			out = append(out, c)
		}
	}
	return out
}
