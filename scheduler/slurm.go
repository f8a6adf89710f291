package scheduler

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

// sbatchJobID extracts the job id from sbatch's acknowledgment line.
var sbatchJobID = regexp.MustCompile(`Submitted batch job (\d+)`)

// SlurmInvoker submits job cards through sbatch.
type SlurmInvoker struct {
	logger *log.Logger
}

// Submit hands the script to sbatch from the script's own directory, so
// relative paths inside the job card resolve against it. A failed
// submission yields a failed outcome, not an error.
func (s *SlurmInvoker) Submit(ctx context.Context, script string) (types.ExecutionOutcome, error) {
	cmd := exec.CommandContext(ctx, "sbatch", filepath.Base(script))
	cmd.Dir = filepath.Dir(script)

	output, err := cmd.CombinedOutput()
	if err != nil {
		reason := fmt.Sprintf("sbatch failed: %v: %s", err, output)
		s.logger.Error("slurm submission failed", map[string]any{
			"script": script,
			"error":  reason,
		})
		return types.FailedOutcome(string(ModeSlurm), reason), nil
	}

	m := sbatchJobID.FindSubmatch(output)
	if m == nil {
		reason := fmt.Sprintf("sbatch output missing job id: %s", output)
		return types.FailedOutcome(string(ModeSlurm), reason), nil
	}
	jobID, err := strconv.ParseInt(string(m[1]), 10, 64)
	if err != nil {
		return types.FailedOutcome(string(ModeSlurm), fmt.Sprintf("invalid job id: %v", err)), nil
	}

	s.logger.Info("submitted to slurm", map[string]any{
		"script": script,
		"job_id": jobID,
	})
	return types.SubmittedOutcome(string(ModeSlurm), jobID), nil
}
