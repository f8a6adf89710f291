package config

import (
	"fmt"

	"github.com/obsforge/obsvalidate/publish"
	"github.com/obsforge/obsvalidate/types"
)

// Config represents an obsvalidate.yaml configuration file.
// All values are optional and act as defaults for process flags.
// CLI flags always override config values.
type Config struct {
	// Root is the obsForge directory to scan.
	Root string `yaml:"root"`
	// OutputDir receives job cards, configs and reports.
	OutputDir string `yaml:"output_dir"`
	// Catalog is the directory of observation templates.
	Catalog string `yaml:"catalog"`
	// Families restricts processing to the listed cycle families.
	// Empty means all families.
	Families []string `yaml:"families"`
	// StartDate and EndDate bound the processed dates (YYYYMMDD,
	// inclusive).
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`

	Execution ExecutionConfig `yaml:"execution"`
	JobCard   JobCardConfig   `yaml:"job_card"`
	Publish   publish.Config  `yaml:"publish"`
}

// ExecutionConfig holds execution defaults from the config file.
type ExecutionConfig struct {
	// Mode is the execution mode: sbatch, qsub or bash. Empty disables
	// execution.
	Mode string `yaml:"mode"`
	// Ledger is the path to write the submitted-job ledger.
	Ledger string `yaml:"ledger"`
}

// JobCardConfig holds scheduler directive defaults for generated job
// cards.
type JobCardConfig struct {
	JobTime   string `yaml:"job_time"`
	NTasks    int    `yaml:"ntasks"`
	Partition string `yaml:"partition"`
}

// ParsedFamilies resolves the configured family tokens, defaulting to
// all families when none are listed.
func (c *Config) ParsedFamilies() ([]types.Family, error) {
	if len(c.Families) == 0 {
		return types.AllFamilies(), nil
	}
	families := make([]types.Family, 0, len(c.Families))
	for _, token := range c.Families {
		f, err := types.ParseFamily(token)
		if err != nil {
			return nil, fmt.Errorf("config families: %w", err)
		}
		families = append(families, f)
	}
	return families, nil
}
