package types

import "fmt"

// OutcomeStatus is the normalized execution status of a cycle's job card.
type OutcomeStatus string

// Outcome statuses. Reporting code branches only on these, never on
// scheduler-specific fields.
const (
	// OutcomeNotRequested indicates no execution mode was requested.
	OutcomeNotRequested OutcomeStatus = "not_requested"
	// OutcomeSubmitted indicates the job was handed to a batch scheduler.
	OutcomeSubmitted OutcomeStatus = "submitted"
	// OutcomeCompleted indicates local execution finished with exit code 0.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomeFailed indicates submission or execution failed.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeSkipped indicates the cycle produced no job card.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ExecutionOutcome is the normalized execution result for one cycle,
// regardless of which scheduler produced it. Scheduler-specific signals
// (a Slurm job id, a PBS job id, a local return code) are carried in the
// optional fields; the Status field alone drives reporting.
type ExecutionOutcome struct {
	Status OutcomeStatus `yaml:"status" json:"status" msgpack:"status"`
	// Mode is the execution mode token that produced this outcome
	// (sbatch, qsub, bash). Empty for not_requested and skipped.
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty" msgpack:"mode,omitempty"`
	// JobID is the scheduler-assigned job identifier, when submitted.
	JobID *int64 `yaml:"job_id,omitempty" json:"job_id,omitempty" msgpack:"job_id,omitempty"`
	// ReturnCode is the local process exit code, when run directly.
	ReturnCode *int `yaml:"return_code,omitempty" json:"return_code,omitempty" msgpack:"return_code,omitempty"`
	// Reason carries the skip reason or failure message.
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// NotRequestedOutcome is the outcome for cycles processed without an
// execution mode.
func NotRequestedOutcome() ExecutionOutcome {
	return ExecutionOutcome{Status: OutcomeNotRequested}
}

// SubmittedOutcome records a successful scheduler submission.
func SubmittedOutcome(mode string, jobID int64) ExecutionOutcome {
	return ExecutionOutcome{Status: OutcomeSubmitted, Mode: mode, JobID: &jobID}
}

// CompletedOutcome records a local run that exited with code 0.
func CompletedOutcome(mode string) ExecutionOutcome {
	rc := 0
	return ExecutionOutcome{Status: OutcomeCompleted, Mode: mode, ReturnCode: &rc}
}

// FailedOutcome records a failed submission or execution.
func FailedOutcome(mode, reason string) ExecutionOutcome {
	return ExecutionOutcome{Status: OutcomeFailed, Mode: mode, Reason: reason}
}

// FailedRunOutcome records a local run that exited non-zero.
func FailedRunOutcome(mode string, returnCode int) ExecutionOutcome {
	return ExecutionOutcome{
		Status:     OutcomeFailed,
		Mode:       mode,
		ReturnCode: &returnCode,
		Reason:     fmt.Sprintf("exit status %d", returnCode),
	}
}

// SkippedOutcome records a cycle that never produced a job card.
func SkippedOutcome(reason string) ExecutionOutcome {
	return ExecutionOutcome{Status: OutcomeSkipped, Reason: reason}
}

// String renders the outcome for log output.
func (o ExecutionOutcome) String() string {
	switch o.Status {
	case OutcomeSubmitted:
		if o.JobID != nil {
			return fmt.Sprintf("submitted (job %d)", *o.JobID)
		}
		return "submitted"
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		if o.Reason != "" {
			return "failed: " + o.Reason
		}
		return "failed"
	case OutcomeSkipped:
		if o.Reason != "" {
			return "skipped: " + o.Reason
		}
		return "skipped"
	default:
		return string(o.Status)
	}
}
