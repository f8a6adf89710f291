package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/obsforge/obsvalidate/cli/render"
	"github.com/obsforge/obsvalidate/scheduler"
)

// CheckCommand returns the check command, which verifies completed
// scheduler jobs from their output files.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check completion status of submitted jobs from scheduler output files",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "output-dir",
				Usage:    "Directory holding job output files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "scheduler",
				Usage: "Scheduler that produced the outputs: slurm or pbs",
				Value: "slurm",
			},
		}, ReadOnlyFlags()...),
		Action: checkAction,
	}
}

// checkReport is the payload rendered by the check command.
type checkReport struct {
	Total      int                  `json:"total" yaml:"total"`
	Successful int                  `json:"successful" yaml:"successful"`
	Failed     int                  `json:"failed" yaml:"failed"`
	Jobs       []scheduler.JobCheck `json:"jobs" yaml:"jobs"`
}

func checkAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for check command", 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	dir := c.String("output-dir")

	var checks []scheduler.JobCheck
	switch c.String("scheduler") {
	case "slurm":
		checks, err = scheduler.CheckSlurmOutputs(dir)
	case "pbs":
		checks, err = scheduler.CheckPBSOutputs(dir)
	default:
		return cli.Exit(fmt.Sprintf("invalid scheduler: %q (must be slurm or pbs)", c.String("scheduler")), 1)
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	report := checkReport{Total: len(checks), Jobs: checks}
	for _, check := range checks {
		if check.Success {
			report.Successful++
		} else {
			report.Failed++
		}
	}

	if err := r.RenderValue(report); err != nil {
		return err
	}

	if report.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
