package scanner_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/scanner"
	"github.com/obsforge/obsvalidate/types"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
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

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.NewLoggerWithWriter(io.Discard, zapcore.ErrorLevel)
}

func TestNew_MissingRoot(t *testing.T) {
	if _, err := scanner.New(filepath.Join(t.TempDir(), "absent"), testLogger(t)); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestFindCycles_SortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"gdas.20210901/00",
		"gdas.20210831/18",
		"gdas.20210831/06",
		"gfs.20210831/12",
		"gfs.20210902/00",
		// Not cycle directories.
		"logs",
		"gdas.2021083",     // malformed date
		"gdas.20210831/xx", // non-numeric hour
		"gdas.20210831/25", // out of range hour
	)
	touch(t, root, "gdas.20210830") // file, not directory

	s, err := scanner.New(root, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cycles, err := s.FindCycles(types.AllFamilies(), scanner.DateRange{})
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}

	want := []types.CycleIdentity{
		{Family: types.FamilyGDAS, Date: "20210831", Hour: 6},
		{Family: types.FamilyGDAS, Date: "20210831", Hour: 18},
		{Family: types.FamilyGDAS, Date: "20210901", Hour: 0},
		{Family: types.FamilyGFS, Date: "20210831", Hour: 12},
		{Family: types.FamilyGFS, Date: "20210902", Hour: 0},
	}
	if len(cycles) != len(want) {
		t.Fatalf("got %d cycles, want %d: %v", len(cycles), len(want), cycles)
	}
	for i := range want {
		if cycles[i] != want[i] {
			t.Errorf("cycles[%d] = %v, want %v", i, cycles[i], want[i])
		}
	}
}

func TestFindCycles_FamilyFilter(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "gdas.20210831/18", "gfs.20210831/18")

	s, err := scanner.New(root, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cycles, err := s.FindCycles([]types.Family{types.FamilyGFS}, scanner.DateRange{})
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 1 || cycles[0].Family != types.FamilyGFS {
		t.Errorf("expected one gfs cycle, got %v", cycles)
	}
}

func TestFindCycles_DateRange(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"gdas.20210830/18",
		"gdas.20210831/18",
		"gdas.20210901/18",
		"gdas.20210902/18",
	)

	s, err := scanner.New(root, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Bounds are inclusive on both ends.
	cycles, err := s.FindCycles(types.AllFamilies(), scanner.DateRange{Start: "20210831", End: "20210901"})
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("got %d cycles, want 2: %v", len(cycles), cycles)
	}
	if cycles[0].Date != "20210831" || cycles[1].Date != "20210901" {
		t.Errorf("unexpected dates: %v", cycles)
	}

	if _, err := s.FindCycles(types.AllFamilies(), scanner.DateRange{Start: "20210901", End: "20210831"}); err == nil {
		t.Error("expected error for inverted date range")
	}
	if _, err := s.FindCycles(types.AllFamilies(), scanner.DateRange{Start: "2021-08-31"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestScanCycle(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_3a.nc",
		"gdas.20210831/18/ocean/adt/gdas.t18z.rads_adt_j3.nc",
		"gdas.20210831/18/ocean/sst/gdas.t18z.sst_viirs_npp.nc",
		"gdas.20210831/18/ocean/adt/readme.txt", // not an observation file
	)
	mkdirs(t, root, "gdas.20210831/18/ocean/icec") // empty category

	s, err := scanner.New(root, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	id := types.CycleIdentity{Family: types.FamilyGDAS, Date: "20210831", Hour: 18}
	observations, err := s.ScanCycle(id)
	if err != nil {
		t.Fatalf("ScanCycle: %v", err)
	}

	adt := observations[types.CategoryADT]
	if len(adt) != 2 {
		t.Fatalf("got %d adt files, want 2: %v", len(adt), adt)
	}
	// Sorted by name.
	if adt[0].Name != "gdas.t18z.rads_adt_3a.nc" || adt[1].Name != "gdas.t18z.rads_adt_j3.nc" {
		t.Errorf("adt files not sorted: %v", adt)
	}
	if adt[0].Category != types.CategoryADT {
		t.Errorf("wrong category on %v", adt[0])
	}

	if len(observations[types.CategorySST]) != 1 {
		t.Errorf("expected one sst file, got %v", observations[types.CategorySST])
	}
	if _, ok := observations[types.CategoryICEC]; ok {
		t.Error("empty icec directory should yield no map entry")
	}
	if _, ok := observations[types.CategorySSS]; ok {
		t.Error("absent sss directory should yield no map entry")
	}
}

func TestScanCycle_MissingOcean(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "gdas.20210831/18")

	s, err := scanner.New(root, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	id := types.CycleIdentity{Family: types.FamilyGDAS, Date: "20210831", Hour: 18}
	observations, err := s.ScanCycle(id)
	if err != nil {
		t.Fatalf("missing ocean directory must not error, got %v", err)
	}
	if len(observations) != 0 {
		t.Errorf("expected empty observation map, got %v", observations)
	}
}
