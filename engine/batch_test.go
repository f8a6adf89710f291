package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/obsforge/obsvalidate/catalog"
	"github.com/obsforge/obsvalidate/engine"
	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/obs"
	"github.com/obsforge/obsvalidate/scanner"
	"github.com/obsforge/obsvalidate/types"
)

// fakeRenderer records render calls and can be told to fail for specific
// cycles.
type fakeRenderer struct {
	calls  []types.CycleIdentity
	failOn map[string]bool
}

func (f *fakeRenderer) Render(result *types.CycleResult) error {
	f.calls = append(f.calls, result.Identity)
	if f.failOn[result.Identity.Name()] {
		return errors.New("template execution failed")
	}
	result.JobCardGenerated = true
	result.JobCardPath = "/out/" + result.Identity.Name() + ".sh"
	result.ConfigPath = "/out/" + result.Identity.Name() + ".yaml"
	return nil
}

type fakeInvoker struct {
	scripts []string
	outcome types.ExecutionOutcome
}

func (f *fakeInvoker) Submit(_ context.Context, script string) (types.ExecutionOutcome, error) {
	f.scripts = append(f.scripts, script)
	return f.outcome, nil
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.NewLoggerWithWriter(io.Discard, zapcore.ErrorLevel)
}

func touch(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", f, err)
		}
		if err := os.WriteFile(path, []byte("netcdf"), 0o644); err != nil {
			t.Fatalf("touch %s: %v", f, err)
		}
	}
}

func newOrchestrator(t *testing.T, root string, cat catalog.Catalog) (*engine.Orchestrator, *fakeRenderer) {
	t.Helper()
	s, err := scanner.New(root, testLogger(t))
	if err != nil {
		t.Fatalf("scanner.New: %v", err)
	}
	renderer := &fakeRenderer{failOn: map[string]bool{}}
	return &engine.Orchestrator{
		Scanner:  s,
		Table:    obs.DefaultTable(),
		Catalog:  cat,
		Renderer: renderer,
		Logger:   testLogger(t),
	}, renderer
}

func TestProcessAll_MixedBatch(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		// Resolves: one adt type catalogued.
		"gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc",
		// Classifies but not catalogued: skipped with unresolved record.
		"gdas.20210901/00/ocean/adt/gdas.t00z.rads_adt_j3.nc",
	)
	// No ocean layer at all: skipped.
	if err := os.MkdirAll(filepath.Join(root, "gfs.20210831", "12"), 0o755); err != nil {
		t.Fatal(err)
	}

	cat := catalog.MemCatalog{"rads_adt_3a": "- obs space: a\n"}
	o, renderer := newOrchestrator(t, root, cat)

	results, err := o.ProcessAll(context.Background(), types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// Ascending (family, date, hour) order.
	if results[0].Identity.Name() != "gdas.20210831.18" ||
		results[1].Identity.Name() != "gdas.20210901.00" ||
		results[2].Identity.Name() != "gfs.20210831.12" {
		t.Fatalf("unexpected result order: %v, %v, %v",
			results[0].Identity, results[1].Identity, results[2].Identity)
	}

	if !results[0].JobCardGenerated || results[0].Execution.Status != types.OutcomeNotRequested {
		t.Errorf("resolved cycle: generated=%v status=%s",
			results[0].JobCardGenerated, results[0].Execution.Status)
	}
	if results[1].Execution.Status != types.OutcomeSkipped || len(results[1].Unresolved) != 1 {
		t.Errorf("uncatalogued cycle: status=%s unresolved=%v",
			results[1].Execution.Status, results[1].Unresolved)
	}
	if results[2].Execution.Status != types.OutcomeSkipped {
		t.Errorf("empty cycle: status=%s", results[2].Execution.Status)
	}

	// The renderer runs only for the cycle that resolved.
	if len(renderer.calls) != 1 || renderer.calls[0].Name() != "gdas.20210831.18" {
		t.Errorf("renderer calls = %v, want only gdas.20210831.18", renderer.calls)
	}
}

func TestProcessAll_RenderFailureIsolation(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"gdas.20210831/06/ocean/adt/gdas.t06z.rads_adt_3a.nc",
		"gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc",
	)

	cat := catalog.MemCatalog{"rads_adt_3a": "- obs space: a\n"}
	o, renderer := newOrchestrator(t, root, cat)
	renderer.failOn["gdas.20210831.06"] = true

	results, err := o.ProcessAll(context.Background(), types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// The first cycle fails, the second still processes.
	if !results[0].Failed() || results[0].Execution.Status != types.OutcomeFailed {
		t.Errorf("failed cycle: error=%q status=%s", results[0].Error, results[0].Execution.Status)
	}
	if results[1].Failed() || !results[1].JobCardGenerated {
		t.Errorf("second cycle affected by first failure: %+v", results[1])
	}

	summary, err := engine.Summarize(results)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.FailedCycles != 1 || summary.ProcessedCycles != 1 {
		t.Errorf("summary tallies = %d failed / %d processed", summary.FailedCycles, summary.ProcessedCycles)
	}
}

func TestProcessAll_ScanFailureIsolation(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc",
		// The ocean layer as a regular file makes category listing fail
		// with a real I/O error rather than plain absence.
		"gdas.20210901/00/ocean",
	)

	cat := catalog.MemCatalog{"rads_adt_3a": "- obs space: a\n"}
	o, _ := newOrchestrator(t, root, cat)

	results, err := o.ProcessAll(context.Background(), types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// The healthy cycle processes; the corrupted one is recorded, not fatal.
	if results[0].Failed() || !results[0].JobCardGenerated {
		t.Errorf("healthy cycle affected by scan failure: %+v", results[0])
	}
	if !results[1].Failed() || results[1].Execution.Status != types.OutcomeFailed {
		t.Errorf("corrupted cycle: error=%q status=%s", results[1].Error, results[1].Execution.Status)
	}

	summary, err := engine.Summarize(results)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.ProcessedCycles != 1 || summary.FailedCycles != 1 {
		t.Errorf("summary tallies = %d processed / %d failed", summary.ProcessedCycles, summary.FailedCycles)
	}
}

func TestProcessAll_InvokerOutcome(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc")

	cat := catalog.MemCatalog{"rads_adt_3a": "- obs space: a\n"}
	o, _ := newOrchestrator(t, root, cat)
	invoker := &fakeInvoker{outcome: types.SubmittedOutcome("sbatch", 12345)}
	o.Invoker = invoker

	results, err := o.ProcessAll(context.Background(), types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	got := results[0].Execution
	if got.Status != types.OutcomeSubmitted || got.JobID == nil || *got.JobID != 12345 {
		t.Errorf("execution = %+v, want submitted job 12345", got)
	}
	if len(invoker.scripts) != 1 || invoker.scripts[0] != results[0].JobCardPath {
		t.Errorf("invoker received %v, want the rendered job card", invoker.scripts)
	}
}

func TestProcessAll_DateRangeFilter(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"gdas.20210830/18/ocean/adt/gdas.t18z.rads_adt_3a.nc",
		"gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc",
	)

	cat := catalog.MemCatalog{"rads_adt_3a": "- obs space: a\n"}
	o, _ := newOrchestrator(t, root, cat)

	results, err := o.ProcessAll(context.Background(), types.AllFamilies(),
		scanner.DateRange{Start: "20210831", End: "20210831"})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 1 || results[0].Identity.Date != "20210831" {
		t.Errorf("results = %v, want only 20210831", results)
	}
}

func TestProcessAll_Idempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc")

	cat := catalog.MemCatalog{"rads_adt_3a": "- obs space: a\n"}
	o, _ := newOrchestrator(t, root, cat)

	first, err := o.ProcessAll(context.Background(), types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("first ProcessAll: %v", err)
	}
	second, err := o.ProcessAll(context.Background(), types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("second ProcessAll: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("run sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Identity != second[i].Identity ||
			first[i].Execution.Status != second[i].Execution.Status {
			t.Errorf("result %d differs between runs", i)
		}
	}
}

func TestProcessAll_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc")

	o, _ := newOrchestrator(t, root, catalog.MemCatalog{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.ProcessAll(ctx, types.AllFamilies(), scanner.DateRange{}); err == nil {
		t.Error("expected context error")
	}
}
