// Package render provides centralized output rendering for the
// obsvalidate CLI.
//
// Format selection rules:
//   - If output is a TTY, default to report (human-readable)
//   - If output is not a TTY, default to json
//   - --format flag always overrides defaults
//   - Invalid formats are errors
//
// Color handling:
//   - --no-color affects report output only
//   - TUI mode is unaffected by --no-color (uses its own styling)
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/obsforge/obsvalidate/iox"
	"github.com/obsforge/obsvalidate/types"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatReport Format = "report"
)

// ParseFormat parses a format string, returning an error for invalid
// formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	case "report":
		return FormatReport, nil
	case "":
		return "", nil // Let caller decide default
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, yaml, or report)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// NewRenderer creates a renderer from CLI context, applying the format
// selection rules.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	if format == "" {
		if isTTY(os.Stdout) {
			format = FormatReport
		} else {
			format = FormatJSON
		}
	}

	return &Renderer{
		format:  format,
		noColor: c.Bool("no-color"),
		out:     os.Stdout,
	}, nil
}

// NewRendererWithWriter creates a renderer with a custom writer (for
// testing).
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{
		format:  format,
		noColor: noColor,
		out:     out,
	}
}

// Render outputs the batch summary in the configured format.
func (r *Renderer) Render(summary *types.BatchSummary) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(summary)
	case FormatYAML:
		return r.renderYAML(summary)
	case FormatReport:
		return r.renderReport(summary)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// RenderValue outputs an arbitrary payload (version info, job checks) in
// the configured format. Report format falls back to YAML, which reads
// fine for small payloads.
func (r *Renderer) RenderValue(data any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(data)
	default:
		return r.renderYAML(data)
	}
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Renderer) renderYAML(data any) error {
	enc := yaml.NewEncoder(r.out)
	defer iox.DiscardErr(enc.Close)
	enc.SetIndent(2)
	return enc.Encode(data)
}

// isTTY returns true if the writer is a TTY.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
