package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/obsforge/obsvalidate/types"
)

// SummaryFilename is the default name of the YAML processing summary.
const SummaryFilename = "processing_summary.yaml"

// WriteSummary writes the batch summary as YAML to path, creating parent
// directories as needed.
func WriteSummary(summary *types.BatchSummary, path string) error {
	if path == "" {
		return errors.New("summary path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary to %s: %w", path, err)
	}
	return nil
}

// LoadSummary reads a YAML batch summary back from path and verifies its
// tally invariants.
func LoadSummary(path string) (*types.BatchSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read summary %s: %w", path, err)
	}

	var summary types.BatchSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("cannot parse summary %s: %w", path, err)
	}
	if err := summary.Validate(); err != nil {
		return nil, fmt.Errorf("invalid summary %s: %w", path, err)
	}
	return &summary, nil
}

// WriteJSONReport writes the summary as indented JSON to the specified
// path. If path is "-", writes to stderr.
func WriteJSONReport(summary *types.BatchSummary, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		return writeJSONReportTo(summary, os.Stderr)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	if err := writeJSONReportTo(summary, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return f.Close()
}

func writeJSONReportTo(summary *types.BatchSummary, w io.Writer) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
