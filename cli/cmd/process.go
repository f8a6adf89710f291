package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/obsforge/obsvalidate/catalog"
	cliconfig "github.com/obsforge/obsvalidate/cli/config"
	"github.com/obsforge/obsvalidate/cli/render"
	"github.com/obsforge/obsvalidate/engine"
	"github.com/obsforge/obsvalidate/jobcard"
	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/obs"
	"github.com/obsforge/obsvalidate/publish"
	"github.com/obsforge/obsvalidate/scanner"
	"github.com/obsforge/obsvalidate/scheduler"
	"github.com/obsforge/obsvalidate/types"
)

// ProcessCommand returns the process command, the only command that
// writes job cards or executes work.
func ProcessCommand() *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Discover cycles, resolve observations, and generate job cards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to YAML config file",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "obsForge directory to scan",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for job cards, configs and reports",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Directory of observation templates",
			},
			&cli.StringSliceFlag{
				Name:  "family",
				Usage: "Cycle family to process (gdas, gfs); repeatable",
			},
			&cli.StringFlag{
				Name:  "start-date",
				Usage: "First date to process (YYYYMMDD, inclusive)",
			},
			&cli.StringFlag{
				Name:  "end-date",
				Usage: "Last date to process (YYYYMMDD, inclusive)",
			},
			&cli.StringFlag{
				Name:  "execute",
				Usage: "Execute generated job cards: sbatch, qsub, or bash",
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: "Path for the YAML processing summary (default: <output-dir>/processing_summary.yaml)",
			},
			&cli.StringFlag{
				Name:  "ledger",
				Usage: "Path for the submitted-job ledger (default: <output-dir>/submitted_jobs.msgpack)",
			},
			&cli.BoolFlag{
				Name:  "status-report",
				Usage: "Write per-family markdown status reports",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Upload summary and reports to the configured S3 bucket",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: processAction,
	}
}

// processOptions is the merged flag/config view the action runs on.
type processOptions struct {
	root       string
	outputDir  string
	catalogDir string
	families   []types.Family
	dateRange  scanner.DateRange
	mode       string
	summary    string
	ledger     string
	report     bool
	publish    bool
	jobCard    jobcard.Options
	publishCfg publish.Config
}

// resolveOptions merges the config file with flags. Flags win.
func resolveOptions(c *cli.Context) (*processOptions, error) {
	cfg := &cliconfig.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := cliconfig.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	opts := &processOptions{
		root:       firstOf(c.String("root"), cfg.Root),
		outputDir:  firstOf(c.String("output-dir"), cfg.OutputDir),
		catalogDir: firstOf(c.String("catalog"), cfg.Catalog),
		dateRange: scanner.DateRange{
			Start: firstOf(c.String("start-date"), cfg.StartDate),
			End:   firstOf(c.String("end-date"), cfg.EndDate),
		},
		mode:       firstOf(c.String("execute"), cfg.Execution.Mode),
		summary:    c.String("summary"),
		ledger:     firstOf(c.String("ledger"), cfg.Execution.Ledger),
		report:     c.Bool("status-report"),
		publish:    c.Bool("publish"),
		publishCfg: cfg.Publish,
	}

	if opts.root == "" {
		return nil, cli.Exit("--root (or config root) is required", 1)
	}
	if opts.outputDir == "" {
		return nil, cli.Exit("--output-dir (or config output_dir) is required", 1)
	}
	if opts.catalogDir == "" {
		return nil, cli.Exit("--catalog (or config catalog) is required", 1)
	}
	if opts.summary == "" {
		opts.summary = filepath.Join(opts.outputDir, engine.SummaryFilename)
	}
	if opts.ledger == "" {
		opts.ledger = filepath.Join(opts.outputDir, engine.LedgerFilename)
	}

	if tokens := c.StringSlice("family"); len(tokens) > 0 {
		for _, token := range tokens {
			f, err := types.ParseFamily(token)
			if err != nil {
				return nil, err
			}
			opts.families = append(opts.families, f)
		}
	} else {
		families, err := cfg.ParsedFamilies()
		if err != nil {
			return nil, err
		}
		opts.families = families
	}

	opts.jobCard = jobcard.DefaultOptions()
	if cfg.JobCard.JobTime != "" {
		opts.jobCard.JobTime = cfg.JobCard.JobTime
	}
	if cfg.JobCard.NTasks > 0 {
		opts.jobCard.NTasks = cfg.JobCard.NTasks
	}
	if cfg.JobCard.Partition != "" {
		opts.jobCard.Partition = cfg.JobCard.Partition
	}

	return opts, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func processAction(c *cli.Context) error {
	opts, err := resolveOptions(c)
	if err != nil {
		return err
	}

	logger := log.NewLogger()
	if c.Bool("verbose") {
		logger = log.NewVerboseLogger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scanner.New(opts.root, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cat, err := catalog.NewDirCatalog(opts.catalogDir)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	renderer, err := jobcard.NewRenderer(opts.outputDir, opts.root, cat, opts.jobCard, logger)
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

	if opts.mode != "" {
		mode, err := scheduler.ParseMode(opts.mode)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		invoker, err := scheduler.New(mode, logger)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		orchestrator.Invoker = invoker
	}

	results, err := orchestrator.ProcessAll(ctx, opts.families, opts.dateRange)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	summary, err := engine.Summarize(results)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := engine.WriteSummary(summary, opts.summary); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger.Info("summary written", map[string]any{"path": opts.summary})

	var reportPaths []string
	if opts.report {
		reportPaths, err = render.WriteFamilyReports(summary, opts.outputDir)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	if summary.Execution.Submitted > 0 {
		ledger := engine.BuildLedger(opts.mode, results)
		if err := ledger.Write(opts.ledger); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		logger.Info("job ledger written", map[string]any{
			"path": opts.ledger,
			"jobs": len(ledger.Entries),
		})
	}

	if opts.publish {
		publisher, err := publish.New(ctx, opts.publishCfg, logger)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		if err := publisher.PublishSummary(ctx, opts.summary, reportPaths); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	logger.Info("batch complete", map[string]any{
		"total":     summary.TotalCycles,
		"processed": summary.ProcessedCycles,
		"failed":    summary.FailedCycles,
	})

	if summary.FailedCycles > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d cycles failed", summary.FailedCycles, summary.TotalCycles), 1)
	}
	return nil
}
