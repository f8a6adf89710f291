package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/obsforge/obsvalidate/cli/render"
	"github.com/obsforge/obsvalidate/cli/tui"
	"github.com/obsforge/obsvalidate/engine"
)

// ReportCommand returns the report command, a read-only view over a
// previously written processing summary.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render a processing summary",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "summary",
				Usage:    "Path to the YAML processing summary",
				Required: true,
			},
		}, ReadOnlyFlags()...),
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	summary, err := engine.LoadSummary(c.String("summary"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return tui.Run(summary)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(summary)
}
