package engine

import (
	"context"

	"github.com/obsforge/obsvalidate/catalog"
	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/obs"
	"github.com/obsforge/obsvalidate/scanner"
	"github.com/obsforge/obsvalidate/types"
)

// JobRenderer writes the job card and assimilation config for one resolved
// cycle, filling in the result's JobCardPath, ConfigPath and
// JobCardGenerated fields.
type JobRenderer interface {
	Render(result *types.CycleResult) error
}

// Invoker executes a rendered job card and reports the normalized outcome.
// The returned error covers invoker-internal faults only; a job that was
// handed off and then failed is a failed outcome, not an error.
type Invoker interface {
	Submit(ctx context.Context, script string) (types.ExecutionOutcome, error)
}

// Orchestrator runs the full batch pipeline: discover cycles, resolve each
// one, render job cards, optionally execute them.
type Orchestrator struct {
	Scanner  *scanner.Scanner
	Table    obs.Table
	Catalog  catalog.Catalog
	Renderer JobRenderer
	// Invoker is optional. When nil, rendered cycles carry a
	// not_requested outcome.
	Invoker Invoker
	Logger  *log.Logger
}

// ProcessAll processes every cycle for the requested families within the
// date range, in ascending (family, date, hour) order. A failure in one
// cycle is recorded on that cycle's result and never aborts the batch; the
// returned error covers discovery only.
func (o *Orchestrator) ProcessAll(ctx context.Context, families []types.Family, dateRange scanner.DateRange) ([]*types.CycleResult, error) {
	cycles, err := o.Scanner.FindCycles(families, dateRange)
	if err != nil {
		return nil, err
	}

	o.Logger.Info("batch started", map[string]any{
		"cycles":   len(cycles),
		"families": families,
	})

	results := make([]*types.CycleResult, 0, len(cycles))
	for _, id := range cycles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, o.ProcessCycle(ctx, id))
	}
	return results, nil
}

// ProcessCycle runs one cycle through scan, resolve, render and execute.
// Every failure mode lands in the result; ProcessCycle never returns nil.
func (o *Orchestrator) ProcessCycle(ctx context.Context, id types.CycleIdentity) *types.CycleResult {
	logger := o.Logger.WithCycle(id)

	files, err := o.Scanner.ScanCycle(id)
	if err != nil {
		logger.Error("cycle scan failed", map[string]any{"error": err.Error()})
		return &types.CycleResult{
			Identity:  id,
			Error:     err.Error(),
			Execution: types.FailedOutcome("", err.Error()),
		}
	}

	result := ResolveCycle(id, files, o.Table, o.Catalog)
	logger.Info("cycle resolved", map[string]any{
		"included":     len(result.Included),
		"unresolved":   len(result.Unresolved),
		"unclassified": len(result.Unclassified),
	})

	// Nothing to assimilate: no job card, no execution attempt.
	if len(result.Included) == 0 {
		logger.Info("cycle skipped", map[string]any{"reason": result.Execution.Reason})
		return result
	}

	if err := o.Renderer.Render(result); err != nil {
		logger.Error("job card rendering failed", map[string]any{"error": err.Error()})
		result.Error = err.Error()
		result.Execution = types.FailedOutcome("", err.Error())
		return result
	}
	logger.Info("job card generated", map[string]any{
		"job_card": result.JobCardPath,
		"config":   result.ConfigPath,
	})

	if o.Invoker == nil {
		result.Execution = types.NotRequestedOutcome()
		return result
	}

	outcome, err := o.Invoker.Submit(ctx, result.JobCardPath)
	if err != nil {
		logger.Error("job submission failed", map[string]any{"error": err.Error()})
		result.Error = err.Error()
		result.Execution = types.FailedOutcome(outcome.Mode, err.Error())
		return result
	}
	result.Execution = outcome
	logger.Info("execution outcome", map[string]any{"outcome": outcome.String()})

	return result
}
