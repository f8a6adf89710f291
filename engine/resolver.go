// Package engine drives cycle resolution and batch processing: it turns
// scanned observation files into per-cycle results, orchestrates rendering
// and execution, and aggregates batch summaries.
package engine

import (
	"github.com/obsforge/obsvalidate/catalog"
	"github.com/obsforge/obsvalidate/obs"
	"github.com/obsforge/obsvalidate/types"
)

// ResolveCycle classifies a cycle's observation files and resolves the
// resulting observation types against the template catalog. The returned
// result partitions every input file into exactly one of included,
// unresolved or unclassified. Pure with respect to the filesystem; all
// I/O happens before (scan) and after (render) this step.
func ResolveCycle(
	id types.CycleIdentity,
	files map[types.Category][]types.ObservationFile,
	table obs.Table,
	cat catalog.Catalog,
) *types.CycleResult {
	result := &types.CycleResult{
		Identity:     id,
		Observations: make(map[types.Category][]string),
	}

	// Deduplicate observation types in first-seen order: many files can
	// classify to the same type but it is included at most once.
	seen := make(map[types.ObservationTypeID]bool)

	for _, category := range types.Categories() {
		for _, file := range files[category] {
			result.Observations[category] = append(result.Observations[category], file.Name)

			obsType, ok := table.Classify(category, file.Name)
			if !ok {
				result.Unclassified = append(result.Unclassified, file.Name)
				continue
			}
			if seen[obsType] {
				continue
			}
			seen[obsType] = true

			if _, ok := cat.Resolve(obsType); ok {
				result.Included = append(result.Included, obsType)
			} else {
				result.Unresolved = append(result.Unresolved, obsType)
			}
		}
	}

	if len(result.Included) == 0 {
		result.Execution = types.SkippedOutcome("no observations")
	}

	return result
}
