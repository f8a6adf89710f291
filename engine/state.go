package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/obsforge/obsvalidate/iox"
	"github.com/obsforge/obsvalidate/types"
)

// LedgerFilename is the default name of the submitted-job ledger.
const LedgerFilename = "submitted_jobs.msgpack"

// LedgerEntry records one submitted job for later status checking.
type LedgerEntry struct {
	Cycle  types.CycleIdentity `msgpack:"cycle"`
	JobID  int64               `msgpack:"job_id"`
	Script string              `msgpack:"script"`
}

// Ledger is the cross-invocation handoff between a submitting run and a
// later status check. It records only jobs that were actually handed to a
// scheduler.
type Ledger struct {
	CreatedAt time.Time     `msgpack:"created_at"`
	Mode      string        `msgpack:"mode"`
	Entries   []LedgerEntry `msgpack:"entries"`
}

// BuildLedger collects the submitted jobs from a batch of cycle results.
// Cycles without a scheduler job id contribute nothing.
func BuildLedger(mode string, results []*types.CycleResult) *Ledger {
	ledger := &Ledger{CreatedAt: time.Now().UTC(), Mode: mode}
	for _, r := range results {
		if r.Execution.Status != types.OutcomeSubmitted || r.Execution.JobID == nil {
			continue
		}
		ledger.Entries = append(ledger.Entries, LedgerEntry{
			Cycle:  r.Identity,
			JobID:  *r.Execution.JobID,
			Script: r.JobCardPath,
		})
	}
	return ledger
}

// Write serializes the ledger to path, creating parent directories as
// needed.
func (l *Ledger) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ledger %s: %w", path, err)
	}
	if err := msgpack.NewEncoder(f).Encode(l); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	return f.Close()
}

// LoadLedger reads a ledger back from path.
func LoadLedger(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger %s: %w", path, err)
	}
	defer iox.DiscardClose(f)

	var ledger Ledger
	if err := msgpack.NewDecoder(f).Decode(&ledger); err != nil {
		return nil, fmt.Errorf("cannot decode ledger %s: %w", path, err)
	}
	return &ledger, nil
}

// CycleForJob looks up the cycle a scheduler job id belongs to.
func (l *Ledger) CycleForJob(jobID int64) (types.CycleIdentity, bool) {
	for _, e := range l.Entries {
		if e.JobID == jobID {
			return e.Cycle, true
		}
	}
	return types.CycleIdentity{}, false
}
