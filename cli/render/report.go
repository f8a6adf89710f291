package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/obsforge/obsvalidate/types"
)

// Status icon styles for the human-readable report.
var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// statusIcon maps a cycle's state to its visual marker.
func (r *Renderer) statusIcon(c *types.CycleResult) string {
	icon, style := rawStatusIcon(c)
	if r.noColor {
		return icon
	}
	return style.Render(icon)
}

func rawStatusIcon(c *types.CycleResult) (string, lipgloss.Style) {
	if c.Failed() {
		return "✗", failStyle
	}
	if !c.HasObservations() || !c.JobCardGenerated {
		return "○", mutedStyle
	}
	switch c.Execution.Status {
	case types.OutcomeCompleted:
		return "✓", okStyle
	case types.OutcomeSubmitted:
		return "…", pendingStyle
	case types.OutcomeFailed:
		return "✗", failStyle
	default:
		return "✓", okStyle
	}
}

// renderReport writes the human-readable batch report.
func (r *Renderer) renderReport(summary *types.BatchSummary) error {
	var b strings.Builder

	header := func(s string) string {
		if r.noColor {
			return s
		}
		return headerStyle.Render(s)
	}

	b.WriteString(header("Batch Processing Summary") + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Total cycles:     %d\n", summary.TotalCycles)
	fmt.Fprintf(&b, "Processed:        %d\n", summary.ProcessedCycles)
	fmt.Fprintf(&b, "Failed:           %d\n", summary.FailedCycles)
	b.WriteString("\n" + header("Execution") + "\n")
	fmt.Fprintf(&b, "  Submitted:      %d\n", summary.Execution.Submitted)
	fmt.Fprintf(&b, "  Completed:      %d\n", summary.Execution.Completed)
	fmt.Fprintf(&b, "  Failed:         %d\n", summary.Execution.Failed)
	fmt.Fprintf(&b, "  Skipped:        %d\n", summary.Execution.Skipped)
	fmt.Fprintf(&b, "  Not requested:  %d\n", summary.Execution.NotRequested)

	b.WriteString("\n" + header("Cycles") + "\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	if len(summary.Cycles) == 0 {
		b.WriteString("No cycles processed.\n")
	}
	for _, c := range summary.Cycles {
		fmt.Fprintf(&b, "%s %s", r.statusIcon(c), c.Identity.Name())
		if len(c.Included) > 0 {
			fmt.Fprintf(&b, "  [%d types]", len(c.Included))
		}
		fmt.Fprintf(&b, "  %s", c.Execution.String())
		if c.Error != "" {
			fmt.Fprintf(&b, "  error: %s", c.Error)
		}
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(r.out, b.String())
	return err
}

// WriteFamilyReports writes one markdown status report per family
// (gdas_status_report.md, gfs_status_report.md) under dir and returns
// the written paths.
func WriteFamilyReports(summary *types.BatchSummary, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create report directory: %w", err)
	}

	var paths []string
	for _, family := range types.AllFamilies() {
		path := filepath.Join(dir, fmt.Sprintf("%s_status_report.md", family))
		content := familyReport(family, summary.CyclesForFamily(family))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("cannot write status report %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// familyReport builds one family's markdown status report.
func familyReport(family types.Family, cycles []*types.CycleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Cycle Status Report\n\n", strings.ToUpper(string(family)))

	if len(cycles) == 0 {
		b.WriteString("No cycles processed.\n")
		return b.String()
	}

	for _, c := range cycles {
		icon, _ := rawStatusIcon(c)
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "### %s %s\n", icon, c.Identity.Name())

		if c.HasObservations() {
			b.WriteString("**Observations Found:**\n")
			categories := make([]string, 0, len(c.Observations))
			for category := range c.Observations {
				categories = append(categories, string(category))
			}
			sort.Strings(categories)
			for _, category := range categories {
				files := c.Observations[types.Category(category)]
				fmt.Fprintf(&b, "- %s: %d files\n", strings.ToUpper(category), len(files))
				for _, file := range files {
					fmt.Fprintf(&b, "    - %s\n", file)
				}
			}
		} else {
			b.WriteString("**Observations Found:** None\n")
		}

		if len(c.Included) > 0 {
			b.WriteString("**Types for Assimilation:**\n")
			for _, t := range c.Included {
				fmt.Fprintf(&b, "- %s\n", t)
			}
		} else {
			b.WriteString("**Types for Assimilation:** None\n")
		}

		if c.JobCardGenerated {
			fmt.Fprintf(&b, "**Job Card:** Generated (%s)\n", filepath.Base(c.JobCardPath))
		} else {
			b.WriteString("**Job Card:** Not generated (no observations)\n")
		}

		fmt.Fprintf(&b, "**Execution:** %s\n\n", executionLine(c.Execution))
	}
	return b.String()
}

func executionLine(e types.ExecutionOutcome) string {
	switch e.Status {
	case types.OutcomeSubmitted:
		if e.JobID != nil {
			return fmt.Sprintf("SUBMITTED (%s, Job ID: %d)", e.Mode, *e.JobID)
		}
		return fmt.Sprintf("SUBMITTED (%s)", e.Mode)
	case types.OutcomeCompleted:
		if e.ReturnCode != nil {
			return fmt.Sprintf("COMPLETED (%s, return code: %d)", e.Mode, *e.ReturnCode)
		}
		return fmt.Sprintf("COMPLETED (%s)", e.Mode)
	case types.OutcomeFailed:
		return fmt.Sprintf("FAILED (%s) - %s", e.Mode, e.Reason)
	case types.OutcomeSkipped:
		return fmt.Sprintf("SKIPPED - %s", e.Reason)
	default:
		return "Not executed"
	}
}
