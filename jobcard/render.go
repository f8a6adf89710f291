// Package jobcard renders executable job cards and 3DVAR assimilation
// configurations for resolved cycles.
package jobcard

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/obsforge/obsvalidate/catalog"
	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

//go:embed templates/job_card.sh.tmpl
var templateFS embed.FS

// Options tunes the batch-scheduler directives in generated job cards.
type Options struct {
	JobTime   string
	NTasks    int
	Partition string
}

// DefaultOptions returns the scheduler directives used when none are
// configured.
func DefaultOptions() Options {
	return Options{JobTime: "02:00:00", NTasks: 24, Partition: "analysis"}
}

// Renderer writes job cards and 3DVAR configs under an output directory.
// It implements the orchestrator's JobRenderer contract.
type Renderer struct {
	outputDir    string
	obsforgeRoot string
	catalog      catalog.Catalog
	options      Options
	logger       *log.Logger
	jobCard      *template.Template
}

// NewRenderer creates a renderer writing under outputDir. The obsforgeRoot
// is baked into job cards so they can link observation data at run time.
func NewRenderer(outputDir, obsforgeRoot string, cat catalog.Catalog, opts Options, logger *log.Logger) (*Renderer, error) {
	tmpl, err := template.New("job_card.sh.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/job_card.sh.tmpl")
	if err != nil {
		return nil, fmt.Errorf("cannot parse job card template: %w", err)
	}
	return &Renderer{
		outputDir:    outputDir,
		obsforgeRoot: obsforgeRoot,
		catalog:      cat,
		options:      opts,
		logger:       logger,
		jobCard:      tmpl,
	}, nil
}

// jobCardContext is the template context for one job card.
type jobCardContext struct {
	CycleName    string
	Family       string
	Date         string
	Hour         string
	ObsTypes     []string
	ObsForgeRoot string
	Categories   []string
	JobTime      string
	NTasks       int
	Partition    string
}

// Render writes the job card and 3DVAR config for one resolved cycle and
// records their paths on the result. Callers guarantee Included is
// non-empty.
func (r *Renderer) Render(result *types.CycleResult) error {
	id := result.Identity
	cycleDir := filepath.Join(r.outputDir, id.Dir(), id.HourDir())
	if err := os.MkdirAll(cycleDir, 0o755); err != nil {
		return fmt.Errorf("cannot create cycle output directory: %w", err)
	}

	cardPath, err := r.renderJobCard(result, cycleDir)
	if err != nil {
		return err
	}
	configPath, err := r.renderConfig(result, cycleDir)
	if err != nil {
		return err
	}

	result.JobCardGenerated = true
	result.JobCardPath = cardPath
	result.ConfigPath = configPath
	return nil
}

func (r *Renderer) renderJobCard(result *types.CycleResult, cycleDir string) (string, error) {
	id := result.Identity

	obsTypes := make([]string, len(result.Included))
	for i, t := range result.Included {
		obsTypes[i] = string(t)
	}

	categories := make([]string, 0, len(result.Observations))
	for category := range result.Observations {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	ctx := jobCardContext{
		CycleName:    id.Name(),
		Family:       string(id.Family),
		Date:         id.Date,
		Hour:         id.HourDir(),
		ObsTypes:     obsTypes,
		ObsForgeRoot: r.obsforgeRoot,
		Categories:   categories,
		JobTime:      r.options.JobTime,
		NTasks:       r.options.NTasks,
		Partition:    r.options.Partition,
	}

	var buf bytes.Buffer
	if err := r.jobCard.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("cannot render job card for %s: %w", id.Name(), err)
	}

	path := filepath.Join(cycleDir, fmt.Sprintf("job_%s.sh", id.Name()))
	// Job cards are handed directly to a scheduler or shell.
	if err := os.WriteFile(path, buf.Bytes(), 0o755); err != nil {
		return "", fmt.Errorf("cannot write job card %s: %w", path, err)
	}
	return path, nil
}
