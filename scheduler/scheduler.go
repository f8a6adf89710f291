// Package scheduler executes rendered job cards: it submits them to a
// batch scheduler (Slurm or PBS) or runs them directly, and normalizes
// every outcome into types.ExecutionOutcome.
package scheduler

import (
	"context"
	"fmt"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

// Mode selects how job cards are executed.
type Mode string

// Execution modes.
const (
	ModeSlurm Mode = "sbatch"
	ModePBS   Mode = "qsub"
	ModeLocal Mode = "bash"
)

// ParseMode parses an execution mode token.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSlurm, ModePBS, ModeLocal:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid execution mode: %q (must be sbatch, qsub or bash)", s)
	}
}

// Invoker executes one job card script. Submission and execution failures
// are reported in the outcome; the error return covers invoker-internal
// faults only.
type Invoker interface {
	Submit(ctx context.Context, script string) (types.ExecutionOutcome, error)
}

// New returns the invoker for the given mode.
func New(mode Mode, logger *log.Logger) (Invoker, error) {
	switch mode {
	case ModeSlurm:
		return &SlurmInvoker{logger: logger}, nil
	case ModePBS:
		return &PBSInvoker{logger: logger}, nil
	case ModeLocal:
		return &LocalInvoker{logger: logger}, nil
	default:
		return nil, fmt.Errorf("invalid execution mode: %q", mode)
	}
}
