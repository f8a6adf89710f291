package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/obsforge/obsvalidate/types"
)

// slurmOutputName matches 3DVAR job output files, with or without the
// scheduler-appended job id: 3dvar_gdas.20210831.18.12345.out or
// 3dvar_gdas.20210831.18.out.
var slurmOutputName = regexp.MustCompile(`^3dvar_(\w+)\.(\d{8})\.(\d{2})(?:\.(\d+))?\.out$`)

// pbsOutputName matches PBS output files: <jobname>.o<jobid>.
var pbsOutputName = regexp.MustCompile(`\.o(\d+)$`)

// pbsExitStatus extracts the exit code from a PBS epilogue.
var pbsExitStatus = regexp.MustCompile(`Exit Status:\s*(\d+)`)

// pbsCycleName extracts a cycle name embedded in a PBS output path.
var pbsCycleName = regexp.MustCompile(`(gdas|gfs)\.(\d{8})\.(\d{2})`)

// JobCheck is the completion verdict for one finished job, recovered
// from its scheduler output file.
type JobCheck struct {
	Cycle   types.CycleIdentity `yaml:"cycle" json:"cycle"`
	JobID   *int64              `yaml:"job_id,omitempty" json:"job_id,omitempty"`
	Output  string              `yaml:"output" json:"output"`
	Success bool                `yaml:"success" json:"success"`
	Details string              `yaml:"details" json:"details"`
}

// CheckSlurmOutputs scans dir recursively for 3DVAR Slurm output files
// and judges each job by its success marker: a completed run prints
// "3DVAR completed successfully for <cycle>" before exiting.
func CheckSlurmOutputs(dir string) ([]JobCheck, error) {
	var checks []JobCheck

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := slurmOutputName.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}

		check, err := checkSlurmOutput(path, m)
		if err != nil {
			return err
		}
		checks = append(checks, check)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan job outputs under %s: %w", dir, err)
	}

	sortChecks(checks)
	return checks, nil
}

func checkSlurmOutput(path string, m []string) (JobCheck, error) {
	family, date, hourToken, jobToken := m[1], m[2], m[3], m[4]

	hour, err := strconv.Atoi(hourToken)
	if err != nil {
		return JobCheck{}, fmt.Errorf("invalid hour in %s: %w", path, err)
	}
	check := JobCheck{
		Cycle:  types.CycleIdentity{Family: types.Family(family), Date: date, Hour: hour},
		Output: path,
	}
	if jobToken != "" {
		if jobID, err := strconv.ParseInt(jobToken, 10, 64); err == nil {
			check.JobID = &jobID
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		check.Details = fmt.Sprintf("cannot read output: %v", err)
		return check, nil
	}
	content := string(data)

	marker := fmt.Sprintf("3DVAR completed successfully for %s", check.Cycle.Name())
	switch {
	case strings.Contains(content, marker):
		check.Success = true
		check.Details = "found success message"
	case strings.Contains(content, "3DVAR failed for"):
		check.Details = "found failure message in output"
	case strings.Contains(content, "CANCELLED"):
		check.Details = "job was cancelled by the scheduler"
	case strings.Contains(content, "Error:"):
		check.Details = "found error messages in output"
	default:
		check.Details = "success message not found in output"
	}
	return check, nil
}

// CheckPBSOutputs scans dir recursively for PBS output files (*.o<jobid>)
// and judges each job by the epilogue's Exit Status line.
func CheckPBSOutputs(dir string) ([]JobCheck, error) {
	var checks []JobCheck

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := pbsOutputName.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}

		checks = append(checks, checkPBSOutput(path, m[1]))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan job outputs under %s: %w", dir, err)
	}

	sortChecks(checks)
	return checks, nil
}

func checkPBSOutput(path, jobToken string) JobCheck {
	check := JobCheck{Output: path}

	if jobID, err := strconv.ParseInt(jobToken, 10, 64); err == nil {
		check.JobID = &jobID
	}
	if m := pbsCycleName.FindStringSubmatch(path); m != nil {
		if hour, err := strconv.Atoi(m[3]); err == nil {
			check.Cycle = types.CycleIdentity{
				Family: types.Family(m[1]),
				Date:   m[2],
				Hour:   hour,
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		check.Details = fmt.Sprintf("cannot read output: %v", err)
		return check
	}

	m := pbsExitStatus.FindStringSubmatch(string(data))
	if m == nil {
		check.Details = "no exit status in output"
		return check
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		check.Details = fmt.Sprintf("invalid exit status: %v", err)
		return check
	}
	check.Success = code == 0
	check.Details = fmt.Sprintf("exit status %d", code)
	return check
}

func sortChecks(checks []JobCheck) {
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].Cycle != checks[j].Cycle {
			return checks[i].Cycle.Before(checks[j].Cycle)
		}
		return checks[i].Output < checks[j].Output
	})
}
