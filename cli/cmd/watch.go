package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/obsforge/obsvalidate/catalog"
	"github.com/obsforge/obsvalidate/engine"
	"github.com/obsforge/obsvalidate/jobcard"
	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/obs"
	"github.com/obsforge/obsvalidate/scanner"
	"github.com/obsforge/obsvalidate/scheduler"
	"github.com/obsforge/obsvalidate/types"
	"github.com/obsforge/obsvalidate/watch"
)

// WatchCommand returns the watch command, which processes cycles as they
// arrive under the obsForge root.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the obsForge root and process cycles as they arrive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "root",
				Usage:    "obsForge directory to watch",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output-dir",
				Usage:    "Directory for job cards and configs",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "catalog",
				Usage:    "Directory of observation templates",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "execute",
				Usage: "Execute generated job cards: sbatch, qsub, or bash",
			},
			&cli.DurationFlag{
				Name:  "settle",
				Usage: "Quiet period before a new cycle is processed",
				Value: 30 * time.Second,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	logger := log.NewLogger()
	if c.Bool("verbose") {
		logger = log.NewVerboseLogger()
	}

	s, err := scanner.New(c.String("root"), logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cat, err := catalog.NewDirCatalog(c.String("catalog"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	renderer, err := jobcard.NewRenderer(c.String("output-dir"), c.String("root"), cat, jobcard.DefaultOptions(), logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	orchestrator := &engine.Orchestrator{
		Scanner:  s,
		Table:    obs.DefaultTable(),
		Catalog:  cat,
		Renderer: renderer,
		Logger:   logger,
	}

	if token := c.String("execute"); token != "" {
		mode, err := scheduler.ParseMode(token)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		invoker, err := scheduler.New(mode, logger)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		orchestrator.Invoker = invoker
	}

	handler := func(ctx context.Context, id types.CycleIdentity) {
		result := orchestrator.ProcessCycle(ctx, id)
		if result.Failed() {
			logger.WithCycle(id).Error("cycle processing failed", map[string]any{
				"error": result.Error,
			})
		}
	}

	w, err := watch.New(c.String("root"), c.Duration("settle"), handler, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
