// Package scanner discovers forecast cycles and their observation files
// under an obsForge root directory.
//
// Expected layout:
//
//	root/
//	├── gdas.YYYYMMDD/HH/ocean/{adt,icec,sss,sst,insitu}/*.nc
//	└── gfs.YYYYMMDD/HH/ocean/{adt,icec,sss,sst,insitu}/*.nc
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

// oceanLayer is the fixed subdirectory holding observation categories.
const oceanLayer = "ocean"

// cyclePattern matches dated cycle directories: gdas.YYYYMMDD or gfs.YYYYMMDD.
var cyclePattern = regexp.MustCompile(`^(gdas|gfs)\.(\d{8})$`)

// DateRange is an inclusive closed interval on YYYYMMDD dates. Zero-value
// fields leave the corresponding bound open.
type DateRange struct {
	Start string
	End   string
}

// Contains reports whether date falls within the range. YYYYMMDD compares
// correctly as a string.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// Validate checks that both bounds, when set, are YYYYMMDD and ordered.
func (r DateRange) Validate() error {
	for _, d := range []string{r.Start, r.End} {
		if d == "" {
			continue
		}
		if len(d) != 8 {
			return fmt.Errorf("invalid date %q: must be YYYYMMDD", d)
		}
		if _, err := strconv.Atoi(d); err != nil {
			return fmt.Errorf("invalid date %q: must be YYYYMMDD", d)
		}
	}
	if r.Start != "" && r.End != "" && r.End < r.Start {
		return fmt.Errorf("invalid date range: end %s before start %s", r.End, r.Start)
	}
	return nil
}

// Scanner walks the obsForge directory tree. The tree is read-only from
// the scanner's perspective.
type Scanner struct {
	root   string
	logger *log.Logger
}

// New creates a scanner for the given root. The root must exist.
func New(root string, logger *log.Logger) (*Scanner, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("obsForge directory not found: %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("obsForge root is not a directory: %s", root)
	}
	return &Scanner{root: root, logger: logger}, nil
}

// Root returns the scan root path.
func (s *Scanner) Root() string { return s.root }

// FindCycles enumerates cycles for the requested families within the date
// range, sorted ascending by (family, date, hour). Cycles outside the
// range are never discovered, not reported as skipped. Only the identity
// enumeration happens here; observation listing is deferred to ScanCycle
// so batches over long ranges stay one-cycle-at-a-time. An unreadable
// dated directory aborts discovery; per-cycle failure isolation applies
// only to cycles already discovered.
func (s *Scanner) FindCycles(families []types.Family, dateRange DateRange) ([]types.CycleIdentity, error) {
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	wanted := make(map[types.Family]bool, len(families))
	for _, f := range families {
		wanted[f] = true
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("cannot read obsForge root %q: %w", s.root, err)
	}

	var cycles []types.CycleIdentity
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := cyclePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		family, date := types.Family(m[1]), m[2]
		if !wanted[family] || !dateRange.Contains(date) {
			continue
		}

		hours, err := s.listHours(filepath.Join(s.root, entry.Name()))
		if err != nil {
			return nil, err
		}
		for _, hour := range hours {
			cycles = append(cycles, types.CycleIdentity{Family: family, Date: date, Hour: hour})
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Before(cycles[j]) })
	return cycles, nil
}

// listHours returns the numeric hour subdirectories of one cycle directory.
func (s *Scanner) listHours(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read cycle directory %q: %w", dir, err)
	}

	var hours []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		hour, err := strconv.Atoi(entry.Name())
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		hours = append(hours, hour)
	}
	return hours, nil
}

// ScanCycle lists the observation files of one cycle, keyed by category.
// A missing category subdirectory yields no entry for that category; a
// cycle without an ocean layer yields an empty map. Both degenerate to the
// zero-observation case downstream. I/O errors other than absence are
// surfaced as scan failures.
func (s *Scanner) ScanCycle(id types.CycleIdentity) (map[types.Category][]types.ObservationFile, error) {
	oceanDir := filepath.Join(s.root, id.Dir(), id.HourDir(), oceanLayer)

	observations := make(map[types.Category][]types.ObservationFile)

	if _, err := os.Stat(oceanDir); err != nil {
		if os.IsNotExist(err) {
			s.logger.WithCycle(id).Warn("ocean directory not found", map[string]any{
				"path": oceanDir,
			})
			return observations, nil
		}
		return nil, fmt.Errorf("cannot stat %q: %w", oceanDir, err)
	}

	for _, category := range types.Categories() {
		files, err := s.listCategory(oceanDir, category)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			observations[category] = files
			s.logger.WithCycle(id).Info("found observation files", map[string]any{
				"category": string(category),
				"count":    len(files),
			})
		}
	}

	return observations, nil
}

// listCategory lists the .nc files of one category subdirectory, sorted by
// name for deterministic downstream iteration.
func (s *Scanner) listCategory(oceanDir string, category types.Category) ([]types.ObservationFile, error) {
	dir := filepath.Join(oceanDir, string(category))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read category directory %q: %w", dir, err)
	}

	var files []types.ObservationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".nc") {
			continue
		}
		files = append(files, types.ObservationFile{
			Path:     filepath.Join(dir, entry.Name()),
			Category: category,
			Name:     entry.Name(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
