package jobcard

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obsforge/obsvalidate/types"
)

// Assimilation window and model constants for the 3DVAR configuration.
const (
	windowHalfWidth = 3 * time.Hour
	windowLength    = "PT6H"
	modelName       = "MOM6"
	timeLayout      = "2006-01-02T15:04:05Z"
)

// fragmentContext is the template context handed to each observer
// fragment in the catalog.
type fragmentContext struct {
	ObservationType  string
	WindowBegin      string
	WindowMiddle     string
	WindowEnd        string
	WindowLength     string
	Family           string
	Date             string
	Hour             string
	ObsDataInPath    string
	ObsDataInPrefix  string
	ObsDataInSuffix  string
	ObsDataOutPath   string
	ObsDataOutSuffix string
}

// renderConfig assembles the 3DVAR YAML configuration for one cycle:
// every included observation type's catalog fragment is rendered and
// spliced into the observers list of the full cost-function document.
// A fragment that fails to render is logged and skipped; it never fails
// the cycle.
func (r *Renderer) renderConfig(result *types.CycleResult, cycleDir string) (string, error) {
	id := result.Identity

	cycleTime, err := id.Time()
	if err != nil {
		return "", err
	}
	windowBegin := cycleTime.Add(-windowHalfWidth)
	windowEnd := cycleTime.Add(windowHalfWidth)

	base := fragmentContext{
		WindowBegin:      windowBegin.UTC().Format(timeLayout),
		WindowMiddle:     cycleTime.UTC().Format(timeLayout),
		WindowEnd:        windowEnd.UTC().Format(timeLayout),
		WindowLength:     windowLength,
		Family:           string(id.Family),
		Date:             id.Date,
		Hour:             id.HourDir(),
		ObsDataInPath:    ".",
		ObsDataInPrefix:  fmt.Sprintf("%s.t%sz.", id.Family, id.HourDir()),
		ObsDataInSuffix:  ".nc",
		ObsDataOutPath:   ".",
		ObsDataOutSuffix: ".out.nc",
	}

	var observers []any
	for _, obsType := range result.Included {
		blocks, err := r.renderFragment(obsType, base)
		if err != nil {
			r.logger.WithCycle(id).Warn("observer fragment skipped", map[string]any{
				"type":  string(obsType),
				"error": err.Error(),
			})
			continue
		}
		observers = append(observers, blocks...)
	}

	config := buildConfig(base, id, observers)

	data, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("cannot marshal 3DVAR config for %s: %w", id.Name(), err)
	}

	path := filepath.Join(cycleDir, fmt.Sprintf("config_%s.yaml", id.Name()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("cannot write 3DVAR config %s: %w", path, err)
	}
	return path, nil
}

// renderFragment renders one observation type's catalog template and
// parses it as a YAML list of observer blocks.
func (r *Renderer) renderFragment(obsType types.ObservationTypeID, base fragmentContext) ([]any, error) {
	entry, ok := r.catalog.Resolve(obsType)
	if !ok {
		// The resolver only includes catalogued types; a miss here means
		// the catalog changed mid-run.
		return nil, fmt.Errorf("template disappeared from catalog: %s", obsType)
	}
	text, err := entry.Load()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(string(obsType)).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template for %s: %w", obsType, err)
	}

	ctx := base
	ctx.ObservationType = string(obsType)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("cannot render template for %s: %w", obsType, err)
	}

	var blocks []any
	if err := yaml.Unmarshal(buf.Bytes(), &blocks); err != nil {
		return nil, fmt.Errorf("rendered template for %s is not a YAML list: %w", obsType, err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("rendered template for %s is empty", obsType)
	}
	return blocks, nil
}

// buildConfig produces the full 3DVAR document with the rendered
// observers spliced in.
func buildConfig(base fragmentContext, id types.CycleIdentity, observers []any) map[string]any {
	cycleName := id.Name()
	return map[string]any{
		"cost_function": map[string]any{
			"cost_type":     "3D-Var",
			"window_begin":  base.WindowBegin,
			"window_length": base.WindowLength,
			"background": map[string]any{
				"type": "ensemble",
				"date": base.WindowBegin,
				"members from template": map[string]any{
					"template": map[string]any{
						"filename": "background_%mem%.nc",
					},
					"pattern":  "%mem%",
					"nmembers": 20,
				},
			},
			"model": map[string]any{
				"name":  modelName,
				"tstep": "PT1H",
				"model variables": []string{
					"ocean_temperature",
					"ocean_salinity",
					"sea_surface_height",
					"ocean_u_velocity",
					"ocean_v_velocity",
				},
			},
			"observations": map[string]any{
				"observers": observers,
			},
		},
		"variational": map[string]any{
			"minimizer": map[string]any{
				"algorithm": "DRIPCG",
			},
			"iterations": []any{
				map[string]any{
					"ninner":                  10,
					"gradient_norm_reduction": 1e-10,
					"test":                    "on",
					"geometry": map[string]any{
						"nml_file_in":     "input.nml",
						"fields metadata": "fields_metadata.yaml",
					},
				},
			},
		},
		"output": map[string]any{
			"filetype":  "cube",
			"datadir":   fmt.Sprintf("./output_%s", cycleName),
			"filename":  fmt.Sprintf("analysis_%s.nc", cycleName),
			"first":     "PT0H",
			"frequency": windowLength,
		},
	}
}
