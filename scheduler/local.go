package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

// LocalInvoker runs job cards directly under bash, without a scheduler.
type LocalInvoker struct {
	logger *log.Logger
}

// Submit runs the script to completion from its own directory. Exit code
// zero completes the cycle; any other exit code is a failed outcome
// carrying the return code.
func (l *LocalInvoker) Submit(ctx context.Context, script string) (types.ExecutionOutcome, error) {
	cmd := exec.CommandContext(ctx, "bash", filepath.Base(script))
	cmd.Dir = filepath.Dir(script)

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			rc := exitErr.ExitCode()
			l.logger.Error("local run failed", map[string]any{
				"script":      script,
				"return_code": rc,
			})
			return types.FailedRunOutcome(string(ModeLocal), rc), nil
		}
		// bash missing or never started.
		reason := fmt.Sprintf("cannot run %s: %v", script, err)
		return types.FailedOutcome(string(ModeLocal), reason), nil
	}

	l.logger.Info("local run completed", map[string]any{
		"script": script,
		"output": len(output),
	})
	return types.CompletedOutcome(string(ModeLocal)), nil
}
