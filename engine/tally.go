package engine

import (
	"fmt"

	"github.com/obsforge/obsvalidate/types"
)

// Summarize folds per-cycle results into the batch summary and verifies
// the tally invariants before returning it. A cycle counts as failed only
// when its Error field is set; skipped cycles count as processed.
func Summarize(results []*types.CycleResult) (*types.BatchSummary, error) {
	summary := &types.BatchSummary{
		TotalCycles: len(results),
		Cycles:      results,
	}

	for _, r := range results {
		if r.Failed() {
			summary.FailedCycles++
		} else {
			summary.ProcessedCycles++
		}
		summary.Execution.Add(r.Execution.Status)
	}

	if err := summary.Validate(); err != nil {
		return nil, fmt.Errorf("inconsistent batch summary: %w", err)
	}
	return summary, nil
}
