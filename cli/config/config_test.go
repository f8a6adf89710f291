package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/obsforge/obsvalidate/cli/config"
	"github.com/obsforge/obsvalidate/types"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("OBSVAL_TEST_ROOT", "/data/obsforge")
	t.Setenv("OBSVAL_TEST_EMPTY", "")

	tests := []struct {
		input string
		want  string
	}{
		{"root: ${OBSVAL_TEST_ROOT}", "root: /data/obsforge"},
		{"root: ${OBSVAL_TEST_UNSET}", "root: "},
		{"root: ${OBSVAL_TEST_UNSET:-/fallback}", "root: /fallback"},
		{"root: ${OBSVAL_TEST_EMPTY:-/fallback}", "root: /fallback"},
		{"no variables here", "no variables here"},
	}

	for _, tt := range tests {
		if got := config.ExpandEnv(tt.input); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("OBSVAL_TEST_BUCKET", "obsforge-reports")

	path := filepath.Join(t.TempDir(), "obsvalidate.yaml")
	content := `
root: /data/obsforge
output_dir: /data/output
catalog: /data/templates
families: [gdas]
start_date: "20210831"
end_date: "20210901"
execution:
  mode: sbatch
  ledger: /data/output/submitted_jobs.msgpack
job_card:
  job_time: "04:00:00"
  ntasks: 48
  partition: ocean
publish:
  bucket: ${OBSVAL_TEST_BUCKET}
  prefix: batches
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Root != "/data/obsforge" || cfg.OutputDir != "/data/output" {
		t.Errorf("paths not loaded: %+v", cfg)
	}
	if cfg.Execution.Mode != "sbatch" {
		t.Errorf("execution mode = %q", cfg.Execution.Mode)
	}
	if cfg.JobCard.NTasks != 48 || cfg.JobCard.Partition != "ocean" {
		t.Errorf("job card config = %+v", cfg.JobCard)
	}
	if cfg.Publish.Bucket != "obsforge-reports" {
		t.Errorf("publish bucket = %q, env not expanded", cfg.Publish.Bucket)
	}

	families, err := cfg.ParsedFamilies()
	if err != nil {
		t.Fatalf("ParsedFamilies: %v", err)
	}
	if len(families) != 1 || families[0] != types.FamilyGDAS {
		t.Errorf("families = %v", families)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestParsedFamilies_Default(t *testing.T) {
	cfg := &config.Config{}
	families, err := cfg.ParsedFamilies()
	if err != nil {
		t.Fatalf("ParsedFamilies: %v", err)
	}
	if len(families) != 2 {
		t.Errorf("families = %v, want all", families)
	}

	cfg.Families = []string{"gdas", "bogus"}
	if _, err := cfg.ParsedFamilies(); err == nil {
		t.Error("expected error for unknown family")
	}
}
