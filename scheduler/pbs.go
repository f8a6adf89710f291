package scheduler

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

// PBSInvoker submits job cards through qsub.
type PBSInvoker struct {
	logger *log.Logger
}

// Submit hands the script to qsub from the script's own directory. qsub
// prints the job identifier ("12345.servername") on stdout; the leading
// numeric component is the job id.
func (p *PBSInvoker) Submit(ctx context.Context, script string) (types.ExecutionOutcome, error) {
	cmd := exec.CommandContext(ctx, "qsub", filepath.Base(script))
	cmd.Dir = filepath.Dir(script)

	output, err := cmd.CombinedOutput()
	if err != nil {
		reason := fmt.Sprintf("qsub failed: %v: %s", err, output)
		p.logger.Error("pbs submission failed", map[string]any{
			"script": script,
			"error":  reason,
		})
		return types.FailedOutcome(string(ModePBS), reason), nil
	}

	jobID, ok := parsePBSJobID(string(output))
	if !ok {
		reason := fmt.Sprintf("qsub output missing job id: %s", output)
		return types.FailedOutcome(string(ModePBS), reason), nil
	}

	p.logger.Info("submitted to pbs", map[string]any{
		"script": script,
		"job_id": jobID,
	})
	return types.SubmittedOutcome(string(ModePBS), jobID), nil
}

// parsePBSJobID extracts the numeric job id from qsub output.
func parsePBSJobID(output string) (int64, bool) {
	token := strings.TrimSpace(output)
	if i := strings.IndexByte(token, '.'); i >= 0 {
		token = token[:i]
	}
	jobID, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, false
	}
	return jobID, true
}
